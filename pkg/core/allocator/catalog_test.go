package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeForDiscipline(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]StructuralMode
		expected  StructuralMode
	}{
		{name: "Trap", expected: ModeSingleSquadPerField},
		{name: "SKEET", expected: ModeSingleSquadPerSlot},
		{name: "Five Stand", expected: ModeSingleSquadPerSlot},
		{name: "five-stand", expected: ModeSingleSquadPerSlot},
		{name: "5 Stand", expected: ModeSingleSquadPerSlot},
		{name: "Sporting Clays", expected: ModeMultiSquad},
		{name: "Trap", overrides: map[string]StructuralMode{"trap": ModeMultiSquad}, expected: ModeMultiSquad},
		{name: "Super Sporting", overrides: map[string]StructuralMode{"super-sporting": ModeSingleSquadPerSlot}, expected: ModeSingleSquadPerSlot},
		{
			name:      "Five Stand",
			overrides: map[string]StructuralMode{"five-stand": ModeSingleSquadPerField, "Five Stand": ModeMultiSquad},
			expected:  ModeMultiSquad,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ModeForDiscipline(tt.name, tt.overrides))
		})
	}
}

func TestParseStructuralMode(t *testing.T) {
	for _, mode := range []StructuralMode{ModeMultiSquad, ModeSingleSquadPerSlot, ModeSingleSquadPerField} {
		parsed, err := ParseStructuralMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}

	_, err := ParseStructuralMode("two-squads")
	assert.Error(t, err)
}

func TestParseClockTime(t *testing.T) {
	c, err := ParseClockTime("08:05")
	require.NoError(t, err)
	assert.Equal(t, ClockTime(485), c)
	assert.Equal(t, "08:05", c.String())

	_, err = ParseClockTime("25:00")
	assert.Error(t, err)
}

func TestNewCatalog_Validation(t *testing.T) {
	tests := []struct {
		name        string
		disciplines []Discipline
		slots       []*TimeSlot
		errContains string
	}{
		{
			name:        "duplicate discipline",
			disciplines: []Discipline{trap, trap},
			errContains: "duplicate discipline",
		},
		{
			name:        "unknown discipline",
			disciplines: []Discipline{trap},
			slots:       []*TimeSlot{newSlot("s1", skeet, "08:00", "09:00", "", 5)},
			errContains: "unknown discipline",
		},
		{
			name:        "duplicate slot",
			disciplines: []Discipline{trap},
			slots:       []*TimeSlot{newSlot("s1", trap, "08:00", "09:00", "", 5), newSlot("s1", trap, "09:00", "10:00", "", 5)},
			errContains: "duplicate time slot",
		},
		{
			name:        "ends before start",
			disciplines: []Discipline{trap},
			slots:       []*TimeSlot{newSlot("s1", trap, "09:00", "09:00", "", 5)},
			errContains: "before it starts",
		},
		{
			name:        "zero capacity",
			disciplines: []Discipline{trap},
			slots:       []*TimeSlot{newSlot("s1", trap, "08:00", "09:00", "", 0)},
			errContains: "non-positive capacity",
		},
		{
			name:        "duplicate squad",
			disciplines: []Discipline{trap},
			slots: []*TimeSlot{
				newSlot("s1", trap, "08:00", "09:00", "", 5, existingSquad("sq", "", false)),
				newSlot("s2", trap, "09:00", "10:00", "", 5, existingSquad("sq", "", false)),
			},
			errContains: "duplicate squad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.disciplines, tt.slots)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestNewCatalog_Lookups(t *testing.T) {
	a1, a2 := newAthlete("a1", "", ""), newAthlete("a2", "", "")
	squad := existingSquad("sq-1", "", false, a1, a2)
	squad.Members[0].Position, squad.Members[1].Position = 2, 1

	s1 := newSlot("s1", trap, "10:00", "11:00", "Field 1", 4, squad)
	s2 := newSlot("s2", trap, "08:00", "09:00", "Field 1", 4)
	s3 := newSlot("s3", skeet, "08:00", "09:00", "", 3)
	catalog := mustCatalog(t, []Discipline{trap, skeet}, s1, s2, s3)

	assert.Equal(t, 3, catalog.SlotCount())
	assert.Equal(t, []*TimeSlot{s1, s2}, catalog.SlotsFor(trap.ID))
	assert.Equal(t, []*TimeSlot{s2, s1}, chronological(catalog.SlotsFor(trap.ID)))

	found, slot, ok := catalog.Squad("sq-1")
	require.True(t, ok)
	assert.Equal(t, "s1", slot.ID)
	assert.Equal(t, "s1", found.TimeSlotID)
	assert.Equal(t, 4, found.Capacity, "capacity defaults to the slot's")
	assert.Equal(t, "a2", found.Members[0].AthleteID, "members are ordered by position")

	_, _, ok = catalog.MembershipIn("a1", skeet.ID)
	assert.False(t, ok)
	_, slot, ok = catalog.MembershipIn("a1", trap.ID)
	require.True(t, ok)
	assert.Equal(t, "s1", slot.ID)

	d, ok := catalog.Discipline(skeet.ID)
	require.True(t, ok)
	assert.Equal(t, "Skeet", d.Name)
}

func TestRosterIndex(t *testing.T) {
	inactive := newAthlete("a3", "", "")
	inactive.Active = false
	athletes := []Athlete{newAthlete("a1", "", ""), newAthlete("a2", "", ""), inactive, newAthlete("a1", "dup", "")}
	roster := NewRosterIndex(athletes, []Registration{
		{AthleteID: "a2", DisciplineIDs: []string{trap.ID, skeet.ID}},
		{AthleteID: "a1", DisciplineIDs: []string{trap.ID}},
		{AthleteID: "a3", DisciplineIDs: []string{trap.ID}},
		{AthleteID: "ghost", DisciplineIDs: []string{trap.ID}},
	})

	assert.Equal(t, 3, roster.Len())
	a1, ok := roster.Athlete("a1")
	require.True(t, ok)
	assert.Empty(t, a1.TeamID, "first occurrence wins")

	registered := roster.RegisteredFor(trap.ID)
	require.Len(t, registered, 2)
	assert.Equal(t, "a1", registered[0].ID)
	assert.Equal(t, "a2", registered[1].ID)
	assert.True(t, roster.IsRegistered("a2", skeet.ID))
	assert.False(t, roster.IsRegistered("a1", skeet.ID))
	assert.False(t, roster.IsRegistered("ghost", trap.ID))

	catalog := mustCatalog(t, []Discipline{trap},
		newSlot("s1", trap, "08:00", "09:00", "", 4, existingSquad("sq-1", "", false, newAthlete("a2", "", ""))))
	unassigned := roster.Unassigned(trap.ID, catalog)
	require.Len(t, unassigned, 1)
	assert.Equal(t, "a1", unassigned[0].ID)
}
