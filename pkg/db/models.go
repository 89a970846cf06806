package db

// Tournament represents a database tournament record
type Tournament struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Athlete represents an athlete registered for a tournament
type Athlete struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	TeamID    string `json:"team_id"`
	TeamName  string `json:"team_name"`
	Division  string `json:"division"`
	Gender    string `json:"gender"`
	Active    bool   `json:"active"`
}

// FullName returns "First Last"
func (a Athlete) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	if a.FirstName == "" {
		return a.LastName
	}
	return a.FirstName + " " + a.LastName
}

// Discipline represents a database discipline record.
// StructuralMode is empty unless the tournament overrides the mode for this discipline.
type Discipline struct {
	ID             string `json:"id"`
	TournamentID   string `json:"tournament_id"`
	Name           string `json:"name"`
	StructuralMode string `json:"structural_mode"`
}

// Registration represents an athlete registered for one discipline of a tournament
type Registration struct {
	TournamentID string `json:"tournament_id"`
	AthleteID    string `json:"athlete_id"`
	DisciplineID string `json:"discipline_id"`
}

// TimeSlot represents a database time slot record
type TimeSlot struct {
	ID           string `json:"id"`
	TournamentID string `json:"tournament_id"`
	DisciplineID string `json:"discipline_id"`
	Date         string `json:"date"`       // 2006-01-02
	StartTime    string `json:"start_time"` // 15:04
	EndTime      string `json:"end_time"`   // 15:04
	Field        string `json:"field"`
	Capacity     int    `json:"capacity"`
}

// Squad represents a database squad record
type Squad struct {
	ID           string `json:"id"`
	TournamentID string `json:"tournament_id"`
	TimeSlotID   string `json:"time_slot_id"`
	Name         string `json:"name"`
	Field        string `json:"field"`
	Capacity     int    `json:"capacity"`
	TeamOnly     bool   `json:"team_only"`
}

// SquadMember represents one athlete's seat in a squad
type SquadMember struct {
	ID        string `json:"id"`
	SquadID   string `json:"squad_id"`
	AthleteID string `json:"athlete_id"`
	Position  int    `json:"position"`
}
