package allocator

import "fmt"

// StructuralModeCriterion enforces each discipline's squad-count rule.
//
// Validity:
//   - Multi-squad disciplines are always valid
//   - In single-squad modes, returns false if the slot (or the slot's field) already
//     has a squad and that squad has no room for the members
//
// Validation:
//   - single-squad-per-slot: no slot holds more than one squad
//   - single-squad-per-field: no slot holds more than one squad per field
type StructuralModeCriterion struct{}

// NewStructuralModeCriterion creates a new StructuralModeCriterion
func NewStructuralModeCriterion() *StructuralModeCriterion {
	return &StructuralModeCriterion{}
}

func (c *StructuralModeCriterion) Name() string {
	return "StructuralMode"
}

func (c *StructuralModeCriterion) IsSlotValid(run *RunContext, discipline Discipline, members []*Athlete, slot *TimeSlot) (bool, FailureReason) {
	if discipline.Mode == ModeMultiSquad {
		return true, ""
	}

	squads := candidateSquads(discipline.Mode, slot)
	if len(squads) == 0 {
		return true, ""
	}
	for _, squad := range squads {
		if squad.RemainingCapacity() >= len(members) {
			return true, ""
		}
	}
	return false, ReasonStructuralLimit
}

func (c *StructuralModeCriterion) ValidateRunState(run *RunContext) []ValidationError {
	var errors []ValidationError

	for _, discipline := range run.Catalog.Disciplines() {
		for _, slot := range run.Catalog.SlotsFor(discipline.ID) {
			switch discipline.Mode {
			case ModeSingleSquadPerSlot:
				if len(slot.Squads) > 1 {
					errors = append(errors, ValidationError{
						TimeSlotID:    slot.ID,
						CriterionName: c.Name(),
						Description: fmt.Sprintf("%s slot %s has %d squads but allows one",
							discipline.Name, slot.Label(), len(slot.Squads)),
					})
				}
			case ModeSingleSquadPerField:
				perField := make(map[string]int)
				for _, squad := range slot.Squads {
					perField[squad.Field]++
				}
				for _, squad := range slot.Squads {
					if perField[squad.Field] > 1 {
						errors = append(errors, ValidationError{
							TimeSlotID:    slot.ID,
							SquadID:       squad.ID,
							CriterionName: c.Name(),
							Description: fmt.Sprintf("%s slot %s has %d squads on field %q but allows one",
								discipline.Name, slot.Label(), perField[squad.Field], squad.Field),
						})
						perField[squad.Field] = 0
					}
				}
			}
		}
	}

	return errors
}
