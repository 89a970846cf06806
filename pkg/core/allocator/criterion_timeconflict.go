package allocator

import "fmt"

// TimeConflictCriterion guards the one-seat-per-overlapping-window rule.
//
// Validity:
//   - Always valid. Overlaps are rejected by the Detector before criteria run.
//
// Validation:
//   - No athlete sits in two squads whose time slots overlap, in any discipline
//   - No athlete holds more than one seat in the same discipline
type TimeConflictCriterion struct{}

// NewTimeConflictCriterion creates a new TimeConflictCriterion
func NewTimeConflictCriterion() *TimeConflictCriterion {
	return &TimeConflictCriterion{}
}

func (c *TimeConflictCriterion) Name() string {
	return "TimeConflict"
}

func (c *TimeConflictCriterion) IsSlotValid(run *RunContext, discipline Discipline, members []*Athlete, slot *TimeSlot) (bool, FailureReason) {
	return true, ""
}

func (c *TimeConflictCriterion) ValidateRunState(run *RunContext) []ValidationError {
	type seat struct {
		squad *Squad
		slot  *TimeSlot
	}

	var errors []ValidationError
	seats := make(map[string][]seat)
	order := make([]string, 0)

	for _, slot := range run.Catalog.AllSlots() {
		for _, squad := range slot.Squads {
			for _, member := range squad.Members {
				if _, exists := seats[member.AthleteID]; !exists {
					order = append(order, member.AthleteID)
				}
				seats[member.AthleteID] = append(seats[member.AthleteID], seat{squad: squad, slot: slot})
			}
		}
	}

	for _, athleteID := range order {
		athleteSeats := seats[athleteID]
		for i := 0; i < len(athleteSeats); i++ {
			for j := i + 1; j < len(athleteSeats); j++ {
				a, b := athleteSeats[i], athleteSeats[j]
				if a.slot.DisciplineID == b.slot.DisciplineID {
					errors = append(errors, ValidationError{
						TimeSlotID:    b.slot.ID,
						SquadID:       b.squad.ID,
						AthleteID:     athleteID,
						CriterionName: c.Name(),
						Description: fmt.Sprintf("Athlete %s holds seats in squads %s and %s of the same discipline",
							athleteID, a.squad.ID, b.squad.ID),
					})
					continue
				}
				if a.slot.Overlaps(b.slot) {
					errors = append(errors, ValidationError{
						TimeSlotID:    b.slot.ID,
						SquadID:       b.squad.ID,
						AthleteID:     athleteID,
						CriterionName: c.Name(),
						Description: fmt.Sprintf("Athlete %s is seated at overlapping slots %s and %s",
							athleteID, a.slot.Label(), b.slot.Label()),
					})
				}
			}
		}
	}

	return errors
}
