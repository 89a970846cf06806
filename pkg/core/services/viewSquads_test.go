package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/georgewallace/claytargettracker-sub000/internal/config"
	"github.com/georgewallace/claytargettracker-sub000/pkg/core/allocator"
	"github.com/georgewallace/claytargettracker-sub000/pkg/db"
)

func TestViewSquads(t *testing.T) {
	store := newMockStore()
	withSquad(store, "sq-1", "a2", "a1")
	store.members = append(store.members, db.SquadMember{ID: "m-ghost", SquadID: "sq-1", AthleteID: "ghost", Position: 3})

	view, err := ViewSquads(context.Background(), store, nil, zap.NewNop(), testTournament)
	require.NoError(t, err)

	assert.Equal(t, "Spring Open", view.TournamentName)
	require.Len(t, view.Disciplines, 3)
	assert.Equal(t, "Skeet", view.Disciplines[0].Discipline.Name)
	assert.Equal(t, allocator.ModeSingleSquadPerSlot, view.Disciplines[0].Discipline.Mode)
	assert.Empty(t, view.Disciplines[0].Unassigned)

	trap := view.Disciplines[2]
	assert.Equal(t, "Trap", trap.Discipline.Name)
	assert.Equal(t, allocator.ModeSingleSquadPerField, trap.Discipline.Mode)
	require.Len(t, trap.Slots, 2)
	assert.Equal(t, "ts-trap-1", trap.Slots[0].Slot.ID)
	assert.Empty(t, trap.Slots[1].Squads)

	require.Len(t, trap.Slots[0].Squads, 1)
	squad := trap.Slots[0].Squads[0]
	assert.Equal(t, "Field 1 - Squad 1", squad.Name)
	assert.Equal(t, []MemberView{
		{Position: 1, AthleteID: "a2", Name: "Bea Brown", TeamName: "Eagles"},
		{Position: 2, AthleteID: "a1", Name: "Ann Adams", TeamName: "Eagles"},
		{Position: 3, AthleteID: "ghost"},
	}, squad.Members)

	unassigned := make([]string, 0, len(trap.Unassigned))
	for _, athlete := range trap.Unassigned {
		unassigned = append(unassigned, athlete.ID)
	}
	assert.Equal(t, []string{"a3", "a4"}, unassigned)
}

func TestViewSquads_ModeOverrides(t *testing.T) {
	store := newMockStore()
	store.disciplines[0].StructuralMode = "multi-squad"
	cfg := &config.Config{DisciplineModes: map[string]string{
		"Skeet": "single-squad-per-field",
		"trap":  "multi-squad",
	}}

	view, err := ViewSquads(context.Background(), store, cfg, zap.NewNop(), testTournament)
	require.NoError(t, err)

	assert.Equal(t, allocator.ModeMultiSquad, view.Disciplines[0].Discipline.Mode, "a stored mode wins over configuration")
	assert.Equal(t, allocator.ModeMultiSquad, view.Disciplines[1].Discipline.Mode)
	assert.Equal(t, allocator.ModeMultiSquad, view.Disciplines[2].Discipline.Mode, "configuration wins over the built-in table")
}

func TestViewSquads_Errors(t *testing.T) {
	store := newMockStore()
	_, err := ViewSquads(context.Background(), store, nil, zap.NewNop(), "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	store.squads = []db.Squad{{ID: "sq-orphan", TournamentID: testTournament, TimeSlotID: "ts-gone", Name: "Orphan", Capacity: 5}}
	_, err = ViewSquads(context.Background(), store, nil, zap.NewNop(), testTournament)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown time slot ts-gone")

	store.squads = nil
	store.slots[0].StartTime = "8am"
	_, err = ViewSquads(context.Background(), store, nil, zap.NewNop(), testTournament)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse start of time slot ts-trap-1")
}
