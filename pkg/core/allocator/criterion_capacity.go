package allocator

import "fmt"

// CapacityCriterion keeps squads within their capacity.
//
// Validity:
//   - Returns false if the members could not fit in any squad at the slot,
//     existing or new, because they outnumber the largest capacity available there
//
// Validation:
//   - Every squad has no more members than its capacity
//   - Squads created by the run hold positions 1..n without gaps
//   - Seats added to existing squads come after every earlier seat
type CapacityCriterion struct{}

// NewCapacityCriterion creates a new CapacityCriterion
func NewCapacityCriterion() *CapacityCriterion {
	return &CapacityCriterion{}
}

func (c *CapacityCriterion) Name() string {
	return "Capacity"
}

func (c *CapacityCriterion) IsSlotValid(run *RunContext, discipline Discipline, members []*Athlete, slot *TimeSlot) (bool, FailureReason) {
	largest := slot.Capacity
	for _, squad := range slot.Squads {
		largest = max(largest, squad.Capacity)
	}
	if len(members) > largest {
		return false, ReasonNoCapacity
	}
	return true, ""
}

func (c *CapacityCriterion) ValidateRunState(run *RunContext) []ValidationError {
	var errors []ValidationError
	placed := run.placedBySquad()

	for _, slot := range run.Catalog.AllSlots() {
		for _, squad := range slot.Squads {
			if squad.Size() > squad.Capacity {
				errors = append(errors, ValidationError{
					TimeSlotID:    slot.ID,
					SquadID:       squad.ID,
					CriterionName: c.Name(),
					Description: fmt.Sprintf("Squad %s is overfilled: has %d athletes but capacity is %d",
						squad.Name, squad.Size(), squad.Capacity),
				})
			}

			switch {
			case run.created[squad.ID]:
				errors = append(errors, c.checkContiguous(slot, squad)...)
			case len(placed[squad.ID]) > 0:
				errors = append(errors, c.checkAppended(slot, squad, placed[squad.ID])...)
			}
		}
	}

	return errors
}

// checkContiguous requires positions 1..n in a squad created by the run
func (c *CapacityCriterion) checkContiguous(slot *TimeSlot, squad *Squad) []ValidationError {
	var errors []ValidationError
	for i, member := range squad.Members {
		if member.Position != i+1 {
			errors = append(errors, ValidationError{
				TimeSlotID:    slot.ID,
				SquadID:       squad.ID,
				AthleteID:     member.AthleteID,
				CriterionName: c.Name(),
				Description: fmt.Sprintf("Squad %s has athlete %s at position %d, expected %d",
					squad.Name, member.AthleteID, member.Position, i+1),
			})
		}
	}
	return errors
}

// checkAppended requires the run's seats in an existing squad to follow every
// earlier seat without sharing a position
func (c *CapacityCriterion) checkAppended(slot *TimeSlot, squad *Squad, seated map[string]bool) []ValidationError {
	var errors []ValidationError

	earlier := 0
	for _, member := range squad.Members {
		if !seated[member.AthleteID] {
			earlier = max(earlier, member.Position)
		}
	}

	taken := make(map[int]bool)
	for _, member := range squad.Members {
		if !seated[member.AthleteID] {
			continue
		}
		if member.Position <= earlier || taken[member.Position] {
			errors = append(errors, ValidationError{
				TimeSlotID:    slot.ID,
				SquadID:       squad.ID,
				AthleteID:     member.AthleteID,
				CriterionName: c.Name(),
				Description: fmt.Sprintf("Squad %s has athlete %s at position %d, which collides with an existing seat",
					squad.Name, member.AthleteID, member.Position),
			})
		}
		taken[member.Position] = true
	}

	return errors
}
