package allocator

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// RunContext carries the mutable state of one allocation run. Every step of the
// algorithm receives it explicitly; nothing is held in package-level state.
type RunContext struct {
	Catalog  *Catalog
	Roster   *RosterIndex
	Detector *Detector
	Options  Options
	Criteria []Criterion

	// Placed holds every placement made so far in this run, in order
	Placed []Placement

	// NewSquads holds the squads created during this run, in creation order
	NewSquads []*Squad

	Ledger *Ledger

	// NewSquadID generates identifiers for created squads
	NewSquadID func() string

	created map[string]bool
}

// NewRunContext prepares a run over the given catalog and roster.
// The detector snapshots the catalog's current seats, so it must be built before any mutation.
func NewRunContext(catalog *Catalog, roster *RosterIndex, options Options, criteria []Criterion, newSquadID func() string) *RunContext {
	if newSquadID == nil {
		newSquadID = uuid.NewString
	}
	return &RunContext{
		Catalog:    catalog,
		Roster:     roster,
		Detector:   NewDetector(catalog),
		Options:    options,
		Criteria:   criteria,
		Placed:     make([]Placement, 0),
		NewSquads:  make([]*Squad, 0),
		Ledger:     NewLedger(),
		NewSquadID: newSquadID,
		created:    make(map[string]bool),
	}
}

// AllocationConfig contains the inputs for a bulk allocation run
type AllocationConfig struct {
	// Catalog of disciplines and time slots, including squads from earlier runs
	Catalog *Catalog

	// Roster of athletes and their registrations
	Roster *RosterIndex

	Options Options

	// Criteria to veto slots and validate the final state
	Criteria []Criterion

	// NewSquadID generates identifiers for created squads (defaults to random UUIDs)
	NewSquadID func() string
}

// AllocationOutcome represents the result of a bulk run
type AllocationOutcome struct {
	// Placements made during the run, in the order they were made
	Placements []Placement

	// NewSquads created during the run, with their final members
	NewSquads []*Squad

	Ledger *Ledger

	// Skipped athletes were left out because they lack a team or division and the
	// options exclude such athletes
	Skipped []*Athlete

	// ValidationErrors contains any validation errors found in the final state
	ValidationErrors []ValidationError

	// Success is true when the final state passed validation
	Success bool
}

// Allocate seats every registered, unassigned athlete of every discipline in the catalog
func Allocate(config AllocationConfig) (*AllocationOutcome, error) {
	if config.Catalog == nil {
		return nil, errors.New("allocation requires a catalog")
	}
	if config.Roster == nil {
		return nil, errors.New("allocation requires a roster")
	}

	run := NewRunContext(config.Catalog, config.Roster, config.Options, config.Criteria, config.NewSquadID)

	skipped := make([]*Athlete, 0)
	seenSkipped := make(map[string]bool)

	for _, discipline := range run.Catalog.Disciplines() {
		athletes := run.Roster.Unassigned(discipline.ID, run.Catalog)

		eligible := make([]*Athlete, 0, len(athletes))
		for _, athlete := range athletes {
			if !config.Options.includes(athlete) {
				if !seenSkipped[athlete.ID] {
					seenSkipped[athlete.ID] = true
					skipped = append(skipped, athlete)
				}
				continue
			}
			eligible = append(eligible, athlete)
		}
		if len(eligible) == 0 {
			continue
		}

		groups := BuildGroups(discipline.ID, eligible, config.Options.grouping())
		AllocateDiscipline(run, discipline, groups, run.Catalog.SlotsFor(discipline.ID))
	}

	outcome := &AllocationOutcome{
		Placements:       run.Placed,
		NewSquads:        run.NewSquads,
		Ledger:           run.Ledger,
		Skipped:          skipped,
		ValidationErrors: ValidateRunState(run, config.Criteria),
	}
	outcome.Success = len(outcome.ValidationErrors) == 0

	return outcome, nil
}

// AllocateDiscipline places groups of one discipline into its time slots and
// returns the placements made for this discipline
func AllocateDiscipline(run *RunContext, discipline Discipline, groups []*Group, slots []*TimeSlot) []Placement {
	placedBefore := len(run.Placed)

	if run.Options.KeepTeamsCloseInTime {
		slots = chronological(slots)
	}

	cursor := 0
	for _, group := range groups {
		landed, reason := scanSlots(run, discipline, group.Members, slots, cursor)
		if landed >= 0 {
			if run.Options.KeepTeamsCloseInTime {
				cursor = landed
			}
			continue
		}

		if run.Options.cohesive() || group.Size() == 1 {
			for _, athlete := range group.Members {
				run.Ledger.RecordFailure(discipline.Name, athlete, reason)
			}
			continue
		}

		// Per-athlete fallback, each athlete scanning every slot from the start
		for _, athlete := range group.Members {
			if idx, reason := scanSlots(run, discipline, []*Athlete{athlete}, slots, 0); idx < 0 {
				run.Ledger.RecordFailure(discipline.Name, athlete, reason)
			}
		}
	}

	return slices.Clone(run.Placed[placedBefore:])
}

// scanSlots tries each slot in turn, starting at cursor and wrapping around, until
// the members can all be seated in one squad. Returns the index of the slot used,
// or -1 together with the reason to report for the members: the last conflict or
// team-only rejection seen, or ReasonNoTimeSlots when every slot was full.
func scanSlots(run *RunContext, discipline Discipline, members []*Athlete, slots []*TimeSlot, cursor int) (int, FailureReason) {
	if len(slots) == 0 {
		return -1, ReasonNoTimeSlots
	}
	if cursor < 0 || cursor >= len(slots) {
		cursor = 0
	}

	var lastNonRoom FailureReason

	for n := 0; n < len(slots); n++ {
		idx := (cursor + n) % len(slots)
		slot := slots[idx]

		reason := trySlot(run, discipline, members, slot)
		if reason == "" {
			return idx, ""
		}
		if !reason.roomRelated() {
			lastNonRoom = reason
		}
	}

	if lastNonRoom == "" {
		return -1, ReasonNoTimeSlots
	}
	return -1, lastNonRoom
}

// trySlot seats all members in one squad at the slot, or returns why it could not
func trySlot(run *RunContext, discipline Discipline, members []*Athlete, slot *TimeSlot) FailureReason {
	for _, athlete := range members {
		if run.Detector.HasConflict(athlete.ID, slot, run.Placed) {
			return ReasonTimeConflict
		}
	}

	if valid, reason := isSlotValidForMembers(run, discipline, members, slot); !valid {
		return reason
	}

	squad, reason := selectSquad(discipline.Mode, members, slot)
	if reason != "" {
		return reason
	}

	if squad == nil {
		squad = newSquad(run.Catalog, discipline, slot, run.Options.KeepTeamsTogether, run.NewSquadID())
		run.created[squad.ID] = true
		run.NewSquads = append(run.NewSquads, squad)
		run.Ledger.RecordSquadCreated()
	} else if !run.created[squad.ID] {
		run.Ledger.RecordSquadReused(squad.ID)
	}

	for _, athlete := range members {
		position := squad.addMember(athlete)
		run.Placed = append(run.Placed, Placement{
			AthleteID:    athlete.ID,
			DisciplineID: discipline.ID,
			SquadID:      squad.ID,
			TimeSlotID:   slot.ID,
			Position:     position,
		})
		run.Ledger.RecordAssignment(discipline.Name)
	}

	return ""
}

// selectSquad finds an existing squad at the slot that can take every member.
// A nil squad with an empty reason means a new squad may be created.
func selectSquad(mode StructuralMode, members []*Athlete, slot *TimeSlot) (*Squad, FailureReason) {
	var reason FailureReason
	for _, squad := range candidateSquads(mode, slot) {
		r := admits(squad, members)
		if r == "" {
			return squad, ""
		}
		if reason == "" || r == ReasonTeamOnlyMismatch {
			reason = r
		}
	}

	if !canCreateSquad(mode, slot) {
		if reason == ReasonTeamOnlyMismatch {
			return nil, reason
		}
		return nil, ReasonStructuralLimit
	}
	if len(members) > slot.Capacity {
		return nil, ReasonNoCapacity
	}
	return nil, ""
}

// candidateSquads returns the squads at a slot that count toward its structural mode
func candidateSquads(mode StructuralMode, slot *TimeSlot) []*Squad {
	if mode == ModeSingleSquadPerField {
		return slot.squadsOnField()
	}
	return slot.Squads
}

// canCreateSquad reports whether the structural mode permits another squad at the slot
func canCreateSquad(mode StructuralMode, slot *TimeSlot) bool {
	switch mode {
	case ModeSingleSquadPerSlot:
		return len(slot.Squads) == 0
	case ModeSingleSquadPerField:
		return len(slot.squadsOnField()) == 0
	default:
		return true
	}
}

// admits checks capacity and the team-only rule for a squad
func admits(squad *Squad, members []*Athlete) FailureReason {
	if squad.RemainingCapacity() < len(members) {
		return ReasonNoCapacity
	}
	if squad.TeamOnly && squad.Size() > 0 {
		team, ok := squad.memberTeam()
		if !ok {
			return ReasonTeamOnlyMismatch
		}
		for _, athlete := range members {
			if athlete.TeamID != team {
				return ReasonTeamOnlyMismatch
			}
		}
	}
	return ""
}

// newSquad creates an empty squad at the slot and registers it with the catalog
func newSquad(catalog *Catalog, discipline Discipline, slot *TimeSlot, teamOnly bool, id string) *Squad {
	index := nextSquadIndex(catalog.SlotsFor(discipline.ID))

	name := fmt.Sprintf("Squad %d", index)
	if slot.Field != "" {
		name = fmt.Sprintf("%s - Squad %d", slot.Field, index)
	}

	squad := &Squad{
		ID:       id,
		Name:     name,
		Field:    slot.Field,
		Capacity: slot.Capacity,
		TeamOnly: teamOnly,
		Members:  make([]*Member, 0, slot.Capacity),
	}
	catalog.addSquad(slot, squad)
	return squad
}

// nextSquadIndex returns one past the larger of the discipline's squad count and the
// highest index already used in a squad name
func nextSquadIndex(slots []*TimeSlot) int {
	count, highest := 0, 0
	for _, slot := range slots {
		for _, squad := range slot.Squads {
			count++
			if n, ok := squadIndex(squad.Name); ok {
				highest = max(highest, n)
			}
		}
	}
	return max(count, highest) + 1
}

// squadIndex extracts n from a generated name such as "Field 1 - Squad n"
func squadIndex(name string) (int, bool) {
	i := strings.LastIndex(name, "Squad ")
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(name[i+len("Squad "):])
	if err != nil {
		return 0, false
	}
	return n, true
}

// placedBySquad maps each squad that took athletes in this run to those athletes
func (r *RunContext) placedBySquad() map[string]map[string]bool {
	result := make(map[string]map[string]bool)
	for _, p := range r.Placed {
		if result[p.SquadID] == nil {
			result[p.SquadID] = make(map[string]bool)
		}
		result[p.SquadID][p.AthleteID] = true
	}
	return result
}
