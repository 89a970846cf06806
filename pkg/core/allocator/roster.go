package allocator

// Registration lists the disciplines one athlete is registered for
type Registration struct {
	AthleteID     string
	DisciplineIDs []string
}

// RosterIndex is a read-only view of who is registered for what.
// Athlete order is the order athletes were supplied in, which keeps grouping deterministic.
type RosterIndex struct {
	athletes      map[string]*Athlete
	order         []string
	registrations map[string]map[string]bool
}

// NewRosterIndex builds an index from athletes and their registrations.
// Registrations for unknown athletes are ignored.
func NewRosterIndex(athletes []Athlete, registrations []Registration) *RosterIndex {
	index := &RosterIndex{
		athletes:      make(map[string]*Athlete, len(athletes)),
		order:         make([]string, 0, len(athletes)),
		registrations: make(map[string]map[string]bool, len(athletes)),
	}

	for i := range athletes {
		athlete := athletes[i]
		if _, exists := index.athletes[athlete.ID]; exists {
			continue
		}
		index.athletes[athlete.ID] = &athlete
		index.order = append(index.order, athlete.ID)
	}

	for _, reg := range registrations {
		if _, exists := index.athletes[reg.AthleteID]; !exists {
			continue
		}
		disciplines, exists := index.registrations[reg.AthleteID]
		if !exists {
			disciplines = make(map[string]bool)
			index.registrations[reg.AthleteID] = disciplines
		}
		for _, disciplineID := range reg.DisciplineIDs {
			disciplines[disciplineID] = true
		}
	}

	return index
}

// Athlete returns the athlete with the given ID
func (r *RosterIndex) Athlete(id string) (*Athlete, bool) {
	athlete, ok := r.athletes[id]
	return athlete, ok
}

// Len returns the number of athletes in the index
func (r *RosterIndex) Len() int {
	return len(r.order)
}

// IsRegistered returns true if the athlete is registered for the discipline
func (r *RosterIndex) IsRegistered(athleteID, disciplineID string) bool {
	return r.registrations[athleteID][disciplineID]
}

// RegisteredFor returns the active athletes registered for a discipline, in roster order
func (r *RosterIndex) RegisteredFor(disciplineID string) []*Athlete {
	result := make([]*Athlete, 0)
	for _, id := range r.order {
		athlete := r.athletes[id]
		if !athlete.Active {
			continue
		}
		if r.registrations[id][disciplineID] {
			result = append(result, athlete)
		}
	}
	return result
}

// Unassigned returns the active athletes registered for a discipline who hold
// no squad membership in it yet
func (r *RosterIndex) Unassigned(disciplineID string, catalog *Catalog) []*Athlete {
	registered := r.RegisteredFor(disciplineID)
	result := make([]*Athlete, 0, len(registered))
	for _, athlete := range registered {
		if _, _, found := catalog.MembershipIn(athlete.ID, disciplineID); found {
			continue
		}
		result = append(result, athlete)
	}
	return result
}
