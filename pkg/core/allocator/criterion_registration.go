package allocator

import "fmt"

// RegistrationCriterion keeps athletes out of disciplines they did not register for.
//
// Validity:
//   - Returns false if any member is unknown to the roster or not registered
//     for the discipline
//
// Validation:
//   - Every athlete seated by the run is registered for the discipline. Seats from
//     earlier runs are left alone, since a registration may be withdrawn later.
type RegistrationCriterion struct{}

// NewRegistrationCriterion creates a new RegistrationCriterion
func NewRegistrationCriterion() *RegistrationCriterion {
	return &RegistrationCriterion{}
}

func (c *RegistrationCriterion) Name() string {
	return "Registration"
}

func (c *RegistrationCriterion) IsSlotValid(run *RunContext, discipline Discipline, members []*Athlete, slot *TimeSlot) (bool, FailureReason) {
	for _, member := range members {
		if !run.Roster.IsRegistered(member.ID, discipline.ID) {
			return false, ReasonNoTimeSlots
		}
	}
	return true, ""
}

func (c *RegistrationCriterion) ValidateRunState(run *RunContext) []ValidationError {
	var errors []ValidationError

	for _, placement := range run.Placed {
		if run.Roster.IsRegistered(placement.AthleteID, placement.DisciplineID) {
			continue
		}
		errors = append(errors, ValidationError{
			TimeSlotID:    placement.TimeSlotID,
			SquadID:       placement.SquadID,
			AthleteID:     placement.AthleteID,
			CriterionName: c.Name(),
			Description: fmt.Sprintf("Athlete %s was seated in squad %s but is not registered for discipline %s",
				placement.AthleteID, placement.SquadID, placement.DisciplineID),
		})
	}

	return errors
}
