package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorsFrom(errs []ValidationError, criterion string) []ValidationError {
	result := make([]ValidationError, 0)
	for _, err := range errs {
		if err.CriterionName == criterion {
			result = append(result, err)
		}
	}
	return result
}

func validationRun(t *testing.T, disciplines []Discipline, athletes []Athlete, registrations []Registration, slots ...*TimeSlot) *RunContext {
	t.Helper()
	catalog := mustCatalog(t, disciplines, slots...)
	return NewRunContext(catalog, NewRosterIndex(athletes, registrations), DefaultOptions(), nil, nil)
}

func validate(t *testing.T, disciplines []Discipline, athletes []Athlete, registrations []Registration, slots ...*TimeSlot) []ValidationError {
	t.Helper()
	return ValidateRunState(validationRun(t, disciplines, athletes, registrations, slots...), DefaultCriteria())
}

// seat records a placement as if the run had made it
func seat(run *RunContext, squad *Squad, slot *TimeSlot, athlete Athlete) {
	position := squad.addMember(&athlete)
	run.Placed = append(run.Placed, Placement{
		AthleteID:    athlete.ID,
		DisciplineID: slot.DisciplineID,
		SquadID:      squad.ID,
		TimeSlotID:   slot.ID,
		Position:     position,
	})
}

func TestValidateRunState_ValidState(t *testing.T) {
	a1, a2 := newAthlete("a1", "t1", ""), newAthlete("a2", "t1", "")
	athletes := []Athlete{a1, a2}

	errs := validate(t, []Discipline{trap, skeet}, athletes, registerAll(athletes, trap, skeet),
		newSlot("trap-1", trap, "08:00", "10:00", "Field 1", 2, existingSquad("sq-1", "Field 1", false, a1, a2)),
		newSlot("skeet-1", skeet, "10:00", "11:00", "", 2, existingSquad("sq-2", "", false, a2, a1)),
	)

	assert.Empty(t, errs)
}

func TestValidateRunState_OverlappingSeats(t *testing.T) {
	a1 := newAthlete("a1", "t1", "")
	athletes := []Athlete{a1}

	errs := validate(t, []Discipline{trap, skeet}, athletes, registerAll(athletes, trap, skeet),
		newSlot("trap-1", trap, "08:00", "10:00", "Field 1", 2, existingSquad("sq-1", "Field 1", false, a1)),
		newSlot("skeet-1", skeet, "09:59", "11:00", "", 2, existingSquad("sq-2", "", false, a1)),
	)

	conflicts := errorsFrom(errs, "TimeConflict")
	require.Len(t, conflicts, 1)
	assert.Equal(t, "a1", conflicts[0].AthleteID)
	assert.Equal(t, "sq-2", conflicts[0].SquadID)
	assert.Contains(t, conflicts[0].Description, "overlapping")
}

func TestValidateRunState_TwoSeatsInOneDiscipline(t *testing.T) {
	a1 := newAthlete("a1", "t1", "")
	athletes := []Athlete{a1}

	errs := validate(t, []Discipline{sporting}, athletes, registerAll(athletes, sporting),
		newSlot("sporting-1", sporting, "08:00", "09:00", "", 2, existingSquad("sq-1", "", false, a1)),
		newSlot("sporting-2", sporting, "13:00", "14:00", "", 2, existingSquad("sq-2", "", false, a1)),
	)

	conflicts := errorsFrom(errs, "TimeConflict")
	require.Len(t, conflicts, 1)
	assert.Contains(t, conflicts[0].Description, "same discipline")
}

func TestValidateRunState_Overfilled(t *testing.T) {
	a1, a2, a3 := newAthlete("a1", "", ""), newAthlete("a2", "", ""), newAthlete("a3", "", "")
	athletes := []Athlete{a1, a2, a3}

	errs := validate(t, []Discipline{sporting}, athletes, registerAll(athletes, sporting),
		newSlot("sporting-1", sporting, "08:00", "09:00", "", 2, existingSquad("sq-1", "", false, a1, a2, a3)),
	)

	capacity := errorsFrom(errs, "Capacity")
	require.Len(t, capacity, 1)
	assert.Contains(t, capacity[0].Description, "has 3 athletes but capacity is 2")
}

func TestValidateRunState_PositionGapInExistingSquadIsTolerated(t *testing.T) {
	a1, a2, a3 := newAthlete("a1", "", ""), newAthlete("a2", "", ""), newAthlete("a3", "", "")
	athletes := []Athlete{a1, a2, a3}
	squad := existingSquad("sq-1", "", false, a1, a2)
	squad.Members[1].Position = 4
	slot := newSlot("sporting-1", sporting, "08:00", "09:00", "", 5, squad)

	run := validationRun(t, []Discipline{sporting}, athletes, registerAll(athletes, sporting), slot)
	seat(run, squad, slot, a3)

	assert.Empty(t, ValidateRunState(run, DefaultCriteria()))
	assert.Equal(t, 5, squad.Members[2].Position, "new seats follow the last existing seat")
}

func TestValidateRunState_PositionGapInCreatedSquad(t *testing.T) {
	a1, a2 := newAthlete("a1", "", ""), newAthlete("a2", "", "")
	athletes := []Athlete{a1, a2}
	squad := existingSquad("new-1", "", false, a1, a2)
	squad.Members[1].Position = 4
	slot := newSlot("sporting-1", sporting, "08:00", "09:00", "", 5, squad)

	run := validationRun(t, []Discipline{sporting}, athletes, registerAll(athletes, sporting), slot)
	run.created[squad.ID] = true

	capacity := errorsFrom(ValidateRunState(run, DefaultCriteria()), "Capacity")
	require.Len(t, capacity, 1)
	assert.Equal(t, "a2", capacity[0].AthleteID)
}

func TestValidateRunState_SeatCollidesWithExistingPosition(t *testing.T) {
	a1, a2, a3 := newAthlete("a1", "", ""), newAthlete("a2", "", ""), newAthlete("a3", "", "")
	athletes := []Athlete{a1, a2, a3}
	squad := existingSquad("sq-1", "", false, a1, a2)
	slot := newSlot("sporting-1", sporting, "08:00", "09:00", "", 5, squad)

	run := validationRun(t, []Discipline{sporting}, athletes, registerAll(athletes, sporting), slot)
	seat(run, squad, slot, a3)
	squad.Members[2].Position = 2

	capacity := errorsFrom(ValidateRunState(run, DefaultCriteria()), "Capacity")
	require.Len(t, capacity, 1)
	assert.Equal(t, "a3", capacity[0].AthleteID)
	assert.Contains(t, capacity[0].Description, "collides")
}

func TestValidateRunState_StructuralModes(t *testing.T) {
	a1, a2, a3, a4 := newAthlete("a1", "", ""), newAthlete("a2", "", ""), newAthlete("a3", "", ""), newAthlete("a4", "", "")
	athletes := []Athlete{a1, a2, a3, a4}

	errs := validate(t, []Discipline{skeet, trap, sporting}, athletes, registerAll(athletes, trap, skeet, sporting),
		newSlot("skeet-1", skeet, "08:00", "09:00", "", 5,
			existingSquad("sk-1", "", false, a1), existingSquad("sk-2", "", false, a2)),
		newSlot("trap-1", trap, "10:00", "11:00", "Field 1", 5,
			existingSquad("tr-1", "Field 1", false, a1), existingSquad("tr-2", "Field 1", false, a2),
			existingSquad("tr-3", "Field 2", false, a3)),
		newSlot("sporting-1", sporting, "12:00", "13:00", "", 5,
			existingSquad("sp-1", "", false, a1), existingSquad("sp-2", "", false, a2)),
	)

	structural := errorsFrom(errs, "StructuralMode")
	require.Len(t, structural, 2)
	assert.Equal(t, "skeet-1", structural[0].TimeSlotID)
	assert.Equal(t, "trap-1", structural[1].TimeSlotID)
	assert.Contains(t, structural[1].Description, `field "Field 1"`)
}

func TestValidateRunState_UnregisteredSeatFromThisRun(t *testing.T) {
	a1 := newAthlete("a1", "", "")
	athletes := []Athlete{a1}
	squad := existingSquad("sq-1", "", false)
	slot := newSlot("sporting-1", sporting, "08:00", "09:00", "", 5, squad)

	run := validationRun(t, []Discipline{skeet, sporting}, athletes, registerAll(athletes, skeet), slot)
	seat(run, squad, slot, a1)

	registration := errorsFrom(ValidateRunState(run, DefaultCriteria()), "Registration")
	require.Len(t, registration, 1)
	assert.Equal(t, "sq-1", registration[0].SquadID)
	assert.Equal(t, "a1", registration[0].AthleteID)
}

func TestValidateRunState_WithdrawnRegistrationOfEarlierSeatIsTolerated(t *testing.T) {
	a1 := newAthlete("a1", "", "")
	athletes := []Athlete{a1}

	errs := validate(t, []Discipline{skeet, sporting}, athletes, registerAll(athletes, skeet),
		newSlot("sporting-1", sporting, "08:00", "09:00", "", 5, existingSquad("sq-1", "", false, a1)),
	)

	assert.Empty(t, errorsFrom(errs, "Registration"))
}

func TestCriteria_Vetoes(t *testing.T) {
	x1 := newAthlete("x1", "", "")
	a1, a2, a3 := newAthlete("a1", "", ""), newAthlete("a2", "", ""), newAthlete("a3", "", "")
	full := newSlot("skeet-1", skeet, "08:00", "09:00", "", 1, existingSquad("sq-1", "", false, x1))
	empty := newSlot("skeet-2", skeet, "09:00", "10:00", "", 2)
	catalog := mustCatalog(t, []Discipline{skeet}, full, empty)

	athletes := []Athlete{x1, a1, a2, a3}
	roster := NewRosterIndex(athletes, registerAll([]Athlete{x1, a1, a2}, skeet))
	run := NewRunContext(catalog, roster, DefaultOptions(), DefaultCriteria(), nil)

	member := func(id string) *Athlete {
		athlete, _ := roster.Athlete(id)
		return athlete
	}

	valid, reason := NewStructuralModeCriterion().IsSlotValid(run, skeet, []*Athlete{member("a1")}, full)
	assert.False(t, valid)
	assert.Equal(t, ReasonStructuralLimit, reason)

	valid, _ = NewStructuralModeCriterion().IsSlotValid(run, skeet, []*Athlete{member("a1")}, empty)
	assert.True(t, valid)

	valid, _ = NewStructuralModeCriterion().IsSlotValid(run, sporting, []*Athlete{member("a1")}, full)
	assert.True(t, valid, "multi-squad disciplines are never limited")

	valid, reason = NewCapacityCriterion().IsSlotValid(run, skeet, []*Athlete{member("a1"), member("a2"), member("a3")}, empty)
	assert.False(t, valid)
	assert.Equal(t, ReasonNoCapacity, reason)

	valid, _ = NewRegistrationCriterion().IsSlotValid(run, skeet, []*Athlete{member("a1"), member("a2")}, empty)
	assert.True(t, valid)

	valid, _ = NewRegistrationCriterion().IsSlotValid(run, skeet, []*Athlete{member("a3")}, empty)
	assert.False(t, valid)

	valid, _ = NewTimeConflictCriterion().IsSlotValid(run, skeet, []*Athlete{member("x1")}, full)
	assert.True(t, valid)
}
