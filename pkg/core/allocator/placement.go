package allocator

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrUnknownAthlete  = errors.New("athlete not found")
	ErrUnknownSquad    = errors.New("squad not found")
	ErrUnknownTimeSlot = errors.New("time slot not found")
	ErrNotRegistered   = errors.New("athlete is not registered for this discipline")
	ErrNotInSquad      = errors.New("athlete is not a member of this squad")
	ErrNoTarget        = errors.New("placement needs a squad or a time slot")
)

// PlacementError reports a manual placement rejected by the allocation rules
type PlacementError struct {
	Reason FailureReason

	// ConflictingSlot is the already occupied slot when Reason is a time conflict
	ConflictingSlot *TimeSlot
}

func (e *PlacementError) Error() string {
	if e.ConflictingSlot != nil {
		return fmt.Sprintf("%s: overlaps %s", e.Reason, e.ConflictingSlot.Label())
	}
	return string(e.Reason)
}

// PlacementRequest moves one athlete into a squad. Either SquadID names the squad to
// join, or TimeSlotID names a slot where the athlete joins a squad with room or a
// new squad is created if the structural mode permits.
type PlacementRequest struct {
	AthleteID  string
	SquadID    string
	TimeSlotID string
}

// PlacementResult describes a successful manual placement
type PlacementResult struct {
	Placement Placement
	Squad     *Squad

	// Created is true if the squad was created for this placement
	Created bool

	// Previous is the squad the athlete left in the same discipline, if any.
	// Its remaining members have been renumbered.
	Previous *Squad

	// Unchanged is true when the athlete already sat in the requested squad or time slot
	Unchanged bool
}

// PlaceAthlete applies a single manual placement using the same conflict, capacity,
// team-only and structural rules as the bulk allocator. The catalog is mutated in place.
func PlaceAthlete(catalog *Catalog, roster *RosterIndex, req PlacementRequest, newSquadID func() string) (*PlacementResult, error) {
	if newSquadID == nil {
		newSquadID = uuid.NewString
	}

	athlete, ok := roster.Athlete(req.AthleteID)
	if !ok {
		return nil, ErrUnknownAthlete
	}

	var (
		target *Squad
		slot   *TimeSlot
	)
	switch {
	case req.SquadID != "":
		target, slot, ok = catalog.Squad(req.SquadID)
		if !ok {
			return nil, ErrUnknownSquad
		}
	case req.TimeSlotID != "":
		slot, ok = catalog.Slot(req.TimeSlotID)
		if !ok {
			return nil, ErrUnknownTimeSlot
		}
	default:
		return nil, ErrNoTarget
	}

	discipline, ok := catalog.Discipline(slot.DisciplineID)
	if !ok {
		return nil, fmt.Errorf("time slot %s references unknown discipline %s", slot.ID, slot.DisciplineID)
	}
	if !roster.IsRegistered(athlete.ID, discipline.ID) {
		return nil, ErrNotRegistered
	}

	previous, previousSlot, hasPrevious := catalog.MembershipIn(athlete.ID, discipline.ID)
	if hasPrevious && (target != nil && previous.ID == target.ID || target == nil && previousSlot.ID == slot.ID) {
		return &PlacementResult{
			Placement: placementFor(athlete.ID, discipline.ID, previous, previousSlot),
			Squad:     previous,
			Unchanged: true,
		}, nil
	}

	detector := NewDetector(catalog)
	if hasPrevious {
		detector = detector.Ignoring(previous.ID)
	}
	if conflict, found := detector.FindConflict(athlete.ID, slot, nil); found {
		return nil, &PlacementError{Reason: ReasonTimeConflict, ConflictingSlot: conflict}
	}

	members := []*Athlete{athlete}
	created := false

	if target != nil {
		if reason := admits(target, members); reason != "" {
			return nil, &PlacementError{Reason: reason}
		}
	} else {
		squad, reason := selectSquad(discipline.Mode, members, slot)
		if reason != "" {
			return nil, &PlacementError{Reason: reason}
		}
		if squad == nil {
			squad = newSquad(catalog, discipline, slot, false, newSquadID())
			created = true
		}
		target = squad
	}

	result := &PlacementResult{
		Squad:   target,
		Created: created,
	}
	if hasPrevious {
		previous.removeMember(athlete.ID)
		result.Previous = previous
	}

	target.addMember(athlete)
	result.Placement = placementFor(athlete.ID, discipline.ID, target, slot)

	return result, nil
}

// RemoveAthlete takes an athlete out of a squad and renumbers the remaining members
func RemoveAthlete(catalog *Catalog, athleteID, squadID string) (*Squad, error) {
	squad, _, ok := catalog.Squad(squadID)
	if !ok {
		return nil, ErrUnknownSquad
	}
	if !squad.removeMember(athleteID) {
		return nil, ErrNotInSquad
	}
	return squad, nil
}

func placementFor(athleteID, disciplineID string, squad *Squad, slot *TimeSlot) Placement {
	position := 0
	for _, member := range squad.Members {
		if member.AthleteID == athleteID {
			position = member.Position
			break
		}
	}
	return Placement{
		AthleteID:    athleteID,
		DisciplineID: disciplineID,
		SquadID:      squad.ID,
		TimeSlotID:   slot.ID,
		Position:     position,
	}
}
