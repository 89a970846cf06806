package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/georgewallace/claytargettracker-sub000/pkg/core/allocator"
	"github.com/georgewallace/claytargettracker-sub000/pkg/core/services"
)

func TestFillColor(t *testing.T) {
	full, partial, low := "FULL", "PARTIAL", "LOW"

	tests := []struct {
		name     string
		size     int
		capacity int
		expected string
	}{
		{"5 of 5 - full", 5, 5, full},
		{"3 of 5 - partial (>=half)", 3, 5, partial},
		{"2 of 4 - partial (half)", 2, 4, partial},
		{"2 of 5 - low (<half)", 2, 5, low},
		{"0 of 5 - low", 0, 5, low},
		{"0 of 0 - partial", 0, 0, partial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, fillColor(tt.size, tt.capacity, full, partial, low))
		})
	}
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "squad", plural(1, "squad", "squads"))
	assert.Equal(t, "squads", plural(0, "squad", "squads"))
	assert.Equal(t, "squads", plural(2, "squad", "squads"))
}

func TestPrintAllocateResult(t *testing.T) {
	result := &services.AllocateResult{
		TournamentID:            "tour-1",
		TournamentName:          "Spring Open",
		Message:                 "Assigned 2 athletes, 1 could not be placed",
		AssignmentsMade:         2,
		AssignmentsByDiscipline: map[string]int{"Trap": 2},
		SquadsCreated:           1,
		UnassignedByDiscipline: map[string][]allocator.UnassignedAthlete{
			"Trap": {{AthleteID: "a3", AthleteName: "Cal Cole", TeamName: "Hawks", Reason: allocator.ReasonTimeConflict}},
		},
		HasUnassigned:   true,
		SkippedAthletes: []allocator.Athlete{{ID: "a4", Name: "Dee Dunn"}},
		DryRun:          true,
	}

	var buf bytes.Buffer
	printAllocateResult(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "Dry run")
	assert.Contains(t, out, "Assigned 2 athletes, 1 could not be placed")
	assert.Contains(t, out, "Spring Open (tour-1)")
	assert.Contains(t, out, "Cal Cole [Hawks]: Time conflict with other assignments")
	assert.Contains(t, out, "Skipped by options (1)")
	assert.Contains(t, out, "Dee Dunn")
	assert.NotContains(t, out, "Squads deleted")
}

func TestDescribeAssignment(t *testing.T) {
	t.Run("moved into new squad", func(t *testing.T) {
		out := describeAssignment(&services.AssignResult{
			AthleteName:     "Ann Adams",
			SquadID:         "sq-9",
			SquadName:       "Trap 3",
			TimeSlot:        "2026-05-02 08:00-09:00 Field 1",
			Position:        1,
			Created:         true,
			PreviousSquadID: "sq-1",
		})
		assert.Contains(t, out, "Ann Adams placed in Trap 3 at 2026-05-02 08:00-09:00 Field 1 (position 1)")
		assert.Contains(t, out, "New squad created: sq-9")
		assert.Contains(t, out, "Moved from squad:  sq-1")
	})

	t.Run("unchanged", func(t *testing.T) {
		out := describeAssignment(&services.AssignResult{AthleteName: "Ann Adams", SquadName: "Trap 1", Unchanged: true})
		assert.Contains(t, out, "Ann Adams is already in Trap 1")
		assert.NotContains(t, out, "position")
	})
}

func TestPrintSquadsView(t *testing.T) {
	view := &services.SquadsView{
		TournamentName: "Spring Open",
		Disciplines: []services.DisciplineView{
			{
				Discipline: allocator.Discipline{ID: "d-trap", Name: "Trap", Mode: allocator.ModeMultiSquad},
				Slots: []services.SlotView{
					{
						Slot: allocator.TimeSlot{ID: "ts-1", Date: "2026-05-02", Start: 8 * 60, End: 9 * 60, Field: "Field 1", Capacity: 5},
						Squads: []services.SquadView{{
							ID: "sq-1", Name: "Trap 1", Capacity: 5,
							Members: []services.MemberView{
								{Position: 1, AthleteID: "a1", Name: "Ann Adams", TeamName: "Eagles"},
								{Position: 2, AthleteID: "gone"},
							},
						}},
					},
				},
				Unassigned: []allocator.Athlete{{ID: "a3", Name: "Cal Cole"}},
			},
			{Discipline: allocator.Discipline{ID: "d-skeet", Name: "Skeet"}},
		},
	}

	var buf bytes.Buffer
	printSquadsView(&buf, view)
	out := buf.String()

	assert.Contains(t, out, "Squads for Spring Open")
	assert.Contains(t, out, "1. Ann Adams [Eagles]")
	assert.Contains(t, out, "unregistered gone")
	assert.Contains(t, out, "Unassigned (1)")
	assert.Contains(t, out, "No time slots")
}
