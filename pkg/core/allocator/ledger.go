package allocator

import (
	"fmt"
	"strings"
)

// FailureReason explains why an athlete could not be seated.
// The set of reasons is closed.
type FailureReason string

const (
	ReasonTimeConflict     FailureReason = "Time conflict with other assignments"
	ReasonStructuralLimit  FailureReason = "Time slot or field already has a squad"
	ReasonNoCapacity       FailureReason = "No squad with enough remaining capacity"
	ReasonTeamOnlyMismatch FailureReason = "Existing squads are team-only for a different team"
	ReasonNoTimeSlots      FailureReason = "No available time slots"
)

// roomRelated reports whether the reason only means the slot had no room
func (r FailureReason) roomRelated() bool {
	return r == ReasonStructuralLimit || r == ReasonNoCapacity
}

// UnassignedAthlete is one athlete left without a squad
type UnassignedAthlete struct {
	AthleteID   string
	AthleteName string
	TeamName    string
	Reason      FailureReason
}

// Ledger records the outcome of a run. It performs no allocation itself.
type Ledger struct {
	AssignmentsMade int
	SquadsCreated   int

	reusedSquads     map[string]bool
	unassigned       map[string][]UnassignedAthlete
	disciplineOrder  []string
	assignedByDiscip map[string]int
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{
		reusedSquads:     make(map[string]bool),
		unassigned:       make(map[string][]UnassignedAthlete),
		assignedByDiscip: make(map[string]int),
	}
}

// RecordAssignment counts one athlete seated in a discipline
func (l *Ledger) RecordAssignment(discipline string) {
	l.AssignmentsMade++
	l.assignedByDiscip[discipline]++
}

// RecordSquadCreated counts a squad created during the run
func (l *Ledger) RecordSquadCreated() {
	l.SquadsCreated++
}

// RecordSquadReused notes that an existing squad received athletes
func (l *Ledger) RecordSquadReused(squadID string) {
	l.reusedSquads[squadID] = true
}

// RecordFailure adds an athlete to the unassigned list of a discipline
func (l *Ledger) RecordFailure(discipline string, athlete *Athlete, reason FailureReason) {
	if _, exists := l.unassigned[discipline]; !exists {
		l.disciplineOrder = append(l.disciplineOrder, discipline)
	}
	l.unassigned[discipline] = append(l.unassigned[discipline], UnassignedAthlete{
		AthleteID:   athlete.ID,
		AthleteName: athlete.Name,
		TeamName:    athlete.TeamName,
		Reason:      reason,
	})
}

// SquadsReused returns the number of distinct existing squads that received athletes
func (l *Ledger) SquadsReused() int {
	return len(l.reusedSquads)
}

// AssignmentsFor returns the number of athletes seated in a discipline
func (l *Ledger) AssignmentsFor(discipline string) int {
	return l.assignedByDiscip[discipline]
}

// HasUnassigned returns true if any athlete was left without a squad
func (l *Ledger) HasUnassigned() bool {
	return len(l.disciplineOrder) > 0
}

// UnassignedCount returns the total number of unassigned athletes
func (l *Ledger) UnassignedCount() int {
	count := 0
	for _, athletes := range l.unassigned {
		count += len(athletes)
	}
	return count
}

// UnassignedDisciplines returns the disciplines with unassigned athletes, in the order first recorded
func (l *Ledger) UnassignedDisciplines() []string {
	return append([]string(nil), l.disciplineOrder...)
}

// UnassignedByDiscipline returns a copy of the unassigned athletes keyed by discipline name
func (l *Ledger) UnassignedByDiscipline() map[string][]UnassignedAthlete {
	result := make(map[string][]UnassignedAthlete, len(l.unassigned))
	for discipline, athletes := range l.unassigned {
		result[discipline] = append([]UnassignedAthlete(nil), athletes...)
	}
	return result
}

// Summary returns a single human-readable message describing the run
func (l *Ledger) Summary() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Assigned %d %s to squads", l.AssignmentsMade, plural(l.AssignmentsMade, "athlete", "athletes"))
	fmt.Fprintf(&sb, " (%d new %s", l.SquadsCreated, plural(l.SquadsCreated, "squad", "squads"))
	if reused := l.SquadsReused(); reused > 0 {
		fmt.Fprintf(&sb, ", %d existing %s filled", reused, plural(reused, "squad", "squads"))
	}
	sb.WriteString(").")

	if l.HasUnassigned() {
		count := l.UnassignedCount()
		fmt.Fprintf(&sb, " %d %s could not be assigned in %s.",
			count, plural(count, "athlete", "athletes"), strings.Join(l.disciplineOrder, ", "))
	}

	return sb.String()
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}
