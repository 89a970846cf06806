package allocator

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// StructuralMode governs how many squads a discipline may hold per time slot
type StructuralMode int

const (
	// ModeMultiSquad allows any number of squads per slot, bounded only by capacity
	ModeMultiSquad StructuralMode = iota

	// ModeSingleSquadPerSlot allows at most one squad per time slot (skeet, five-stand)
	ModeSingleSquadPerSlot

	// ModeSingleSquadPerField allows at most one squad per (time slot, field) pair (trap)
	ModeSingleSquadPerField
)

func (m StructuralMode) String() string {
	switch m {
	case ModeSingleSquadPerSlot:
		return "single-squad-per-slot"
	case ModeSingleSquadPerField:
		return "single-squad-per-field"
	default:
		return "multi-squad"
	}
}

// ParseStructuralMode converts the configuration spelling of a mode into a StructuralMode
func ParseStructuralMode(s string) (StructuralMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single-squad-per-slot":
		return ModeSingleSquadPerSlot, nil
	case "single-squad-per-field":
		return ModeSingleSquadPerField, nil
	case "multi-squad":
		return ModeMultiSquad, nil
	}
	return ModeMultiSquad, fmt.Errorf("unknown structural mode %q", s)
}

// builtinModes maps normalized discipline names to their structural mode.
// Anything not listed is multi-squad.
var builtinModes = map[string]StructuralMode{
	"trap":      ModeSingleSquadPerField,
	"skeet":     ModeSingleSquadPerSlot,
	"fivestand": ModeSingleSquadPerSlot,
	"5stand":    ModeSingleSquadPerSlot,
}

// NormalizeDisciplineName lowercases a discipline name and strips separators
// so "Five Stand", "five-stand" and "FIVE_STAND" compare equal
func NormalizeDisciplineName(name string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "_", "")
	return replacer.Replace(strings.ToLower(strings.TrimSpace(name)))
}

// ModeForDiscipline resolves the structural mode for a discipline name.
// Overrides are keyed by discipline name and take precedence over the built-in table.
// When several keys normalize to the name, the lexically first key wins.
func ModeForDiscipline(name string, overrides map[string]StructuralMode) StructuralMode {
	normalized := NormalizeDisciplineName(name)
	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if NormalizeDisciplineName(key) == normalized {
			return overrides[key]
		}
	}
	if mode, ok := builtinModes[normalized]; ok {
		return mode
	}
	return ModeMultiSquad
}

// ClockTime is a time of day expressed as minutes after midnight
type ClockTime int

// ParseClockTime parses a "15:04" formatted time of day
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Athlete is a registered competitor. Immutable for the duration of a run.
type Athlete struct {
	ID       string
	Name     string
	TeamID   string // Empty string if no team
	TeamName string
	Division string // Empty string if no division
	Gender   string
	Active   bool
}

// Discipline is a shooting event with its resolved structural mode
type Discipline struct {
	ID   string
	Name string
	Mode StructuralMode
}

// TimeSlot is a scheduled window for one discipline
type TimeSlot struct {
	ID           string
	DisciplineID string

	// Date in 2006-01-02 format
	Date  string
	Start ClockTime
	End   ClockTime

	// Field is the field or station label (empty if the slot is not tied to one)
	Field string

	// Capacity is the maximum number of athletes per squad at this slot
	Capacity int

	// Squads currently at this slot, in creation order
	Squads []*Squad
}

// Overlaps reports whether two slots share a date and their time ranges intersect.
// Ranges are half-open, so slots that only touch do not overlap.
func (ts *TimeSlot) Overlaps(other *TimeSlot) bool {
	if ts.Date != other.Date {
		return false
	}
	return ts.Start < other.End && other.Start < ts.End
}

// Label returns a human-readable description of the slot
func (ts *TimeSlot) Label() string {
	label := fmt.Sprintf("%s %s-%s", ts.Date, ts.Start, ts.End)
	if ts.Field != "" {
		label += " (" + ts.Field + ")"
	}
	return label
}

// squadsOnField returns the squads at this slot that share the slot's field label
func (ts *TimeSlot) squadsOnField() []*Squad {
	result := make([]*Squad, 0, len(ts.Squads))
	for _, squad := range ts.Squads {
		if squad.Field == ts.Field {
			result = append(result, squad)
		}
	}
	return result
}

// Squad is a capacity-bounded set of athletes sharing one time slot
type Squad struct {
	ID         string
	Name       string
	TimeSlotID string
	Field      string
	Capacity   int
	TeamOnly   bool

	// Members ordered by position
	Members []*Member
}

// Member is one athlete's seat in a squad
type Member struct {
	AthleteID string
	TeamID    string
	Position  int
}

// Size returns the number of athletes in the squad
func (s *Squad) Size() int {
	return len(s.Members)
}

// RemainingCapacity returns how many more athletes the squad can take
func (s *Squad) RemainingCapacity() int {
	return max(s.Capacity-len(s.Members), 0)
}

// IsFull returns true if the squad has reached its capacity
func (s *Squad) IsFull() bool {
	return len(s.Members) >= s.Capacity
}

// HasMember returns true if the athlete holds a seat in this squad
func (s *Squad) HasMember(athleteID string) bool {
	for _, member := range s.Members {
		if member.AthleteID == athleteID {
			return true
		}
	}
	return false
}

// memberTeam returns the team shared by the current members, if any
func (s *Squad) memberTeam() (string, bool) {
	if len(s.Members) == 0 {
		return "", false
	}
	team := s.Members[0].TeamID
	for _, member := range s.Members[1:] {
		if member.TeamID != team {
			return "", false
		}
	}
	return team, true
}

// addMember appends an athlete after the last seat and returns the new position
func (s *Squad) addMember(athlete *Athlete) int {
	position := 1
	if n := len(s.Members); n > 0 {
		position = s.Members[n-1].Position + 1
	}
	s.Members = append(s.Members, &Member{
		AthleteID: athlete.ID,
		TeamID:    athlete.TeamID,
		Position:  position,
	})
	return position
}

// removeMember drops an athlete and renumbers the remaining positions.
// Returns false if the athlete was not a member.
func (s *Squad) removeMember(athleteID string) bool {
	for i, member := range s.Members {
		if member.AthleteID != athleteID {
			continue
		}
		s.Members = append(s.Members[:i], s.Members[i+1:]...)
		for j, remaining := range s.Members {
			remaining.Position = j + 1
		}
		return true
	}
	return false
}

// Placement records one athlete seated in a squad
type Placement struct {
	AthleteID    string
	DisciplineID string
	SquadID      string
	TimeSlotID   string
	Position     int
}

// Options control cohesion and ordering during a bulk run
type Options struct {
	KeepTeamsTogether               bool
	KeepDivisionsTogether           bool
	KeepTeamsCloseInTime            bool
	IncludeAthletesWithoutTeams     bool
	IncludeAthletesWithoutDivisions bool
}

// DefaultOptions returns options with no cohesion and every athlete included
func DefaultOptions() Options {
	return Options{
		IncludeAthletesWithoutTeams:     true,
		IncludeAthletesWithoutDivisions: true,
	}
}

// includes reports whether an athlete takes part in the run
func (o Options) includes(athlete *Athlete) bool {
	if athlete.TeamID == "" && !o.IncludeAthletesWithoutTeams {
		return false
	}
	if athlete.Division == "" && !o.IncludeAthletesWithoutDivisions {
		return false
	}
	return true
}

// cohesive returns true if any cohesion flag is set
func (o Options) cohesive() bool {
	return o.KeepTeamsTogether || o.KeepDivisionsTogether
}

// grouping extracts the grouping configuration from the options
func (o Options) grouping() GroupingConfig {
	return GroupingConfig{
		KeepTeamsTogether:     o.KeepTeamsTogether,
		KeepDivisionsTogether: o.KeepDivisionsTogether,
	}
}
