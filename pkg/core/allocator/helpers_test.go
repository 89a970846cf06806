package allocator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

const testDate = "2024-06-01"

var (
	trap     = Discipline{ID: "d-trap", Name: "Trap", Mode: ModeSingleSquadPerField}
	skeet    = Discipline{ID: "d-skeet", Name: "Skeet", Mode: ModeSingleSquadPerSlot}
	sporting = Discipline{ID: "d-sporting", Name: "Sporting Clays", Mode: ModeMultiSquad}
)

func clock(s string) ClockTime {
	c, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

func newAthlete(id, team, division string) Athlete {
	return Athlete{
		ID:       id,
		Name:     "Athlete " + id,
		TeamID:   team,
		TeamName: team,
		Division: division,
		Active:   true,
	}
}

func newSlot(id string, discipline Discipline, start, end, field string, capacity int, squads ...*Squad) *TimeSlot {
	return &TimeSlot{
		ID:           id,
		DisciplineID: discipline.ID,
		Date:         testDate,
		Start:        clock(start),
		End:          clock(end),
		Field:        field,
		Capacity:     capacity,
		Squads:       squads,
	}
}

// existingSquad builds a persisted squad whose members sit at positions 1..n
func existingSquad(id, field string, teamOnly bool, members ...Athlete) *Squad {
	squad := &Squad{ID: id, Name: id, Field: field, TeamOnly: teamOnly}
	for i, athlete := range members {
		squad.Members = append(squad.Members, &Member{AthleteID: athlete.ID, TeamID: athlete.TeamID, Position: i + 1})
	}
	return squad
}

func registerAll(athletes []Athlete, disciplines ...Discipline) []Registration {
	ids := make([]string, 0, len(disciplines))
	for _, d := range disciplines {
		ids = append(ids, d.ID)
	}
	registrations := make([]Registration, 0, len(athletes))
	for _, athlete := range athletes {
		registrations = append(registrations, Registration{AthleteID: athlete.ID, DisciplineIDs: ids})
	}
	return registrations
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	}
}

func mustCatalog(t *testing.T, disciplines []Discipline, slots ...*TimeSlot) *Catalog {
	t.Helper()
	catalog, err := NewCatalog(disciplines, slots)
	require.NoError(t, err)
	return catalog
}

func teamOptions() Options {
	opts := DefaultOptions()
	opts.KeepTeamsTogether = true
	return opts
}

// squadOf returns the squad an athlete was placed in
func squadOf(t *testing.T, placements []Placement, athleteID, disciplineID string) string {
	t.Helper()
	for _, p := range placements {
		if p.AthleteID == athleteID && p.DisciplineID == disciplineID {
			return p.SquadID
		}
	}
	t.Fatalf("athlete %s has no placement in %s", athleteID, disciplineID)
	return ""
}

func slotOf(t *testing.T, placements []Placement, athleteID, disciplineID string) string {
	t.Helper()
	for _, p := range placements {
		if p.AthleteID == athleteID && p.DisciplineID == disciplineID {
			return p.TimeSlotID
		}
	}
	t.Fatalf("athlete %s has no placement in %s", athleteID, disciplineID)
	return ""
}
