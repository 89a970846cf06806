package allocator

import (
	"cmp"
	"fmt"
	"slices"
)

// Catalog holds every discipline and time slot of a tournament, along with the
// squads at each slot. Slots keep the order they were supplied in.
type Catalog struct {
	disciplines  []Discipline
	disciplineBy map[string]int
	slots        map[string]*TimeSlot
	slotOrder    []*TimeSlot
	byDiscipline map[string][]*TimeSlot
	squads       map[string]*Squad
	squadSlot    map[string]*TimeSlot
}

// NewCatalog builds a catalog and checks that slots and squads are well formed.
// Squads with no capacity inherit the capacity of their slot.
func NewCatalog(disciplines []Discipline, slots []*TimeSlot) (*Catalog, error) {
	c := &Catalog{
		disciplines:  make([]Discipline, 0, len(disciplines)),
		disciplineBy: make(map[string]int, len(disciplines)),
		slots:        make(map[string]*TimeSlot, len(slots)),
		slotOrder:    make([]*TimeSlot, 0, len(slots)),
		byDiscipline: make(map[string][]*TimeSlot),
		squads:       make(map[string]*Squad),
		squadSlot:    make(map[string]*TimeSlot),
	}

	for _, discipline := range disciplines {
		if _, exists := c.disciplineBy[discipline.ID]; exists {
			return nil, fmt.Errorf("duplicate discipline %s", discipline.ID)
		}
		c.disciplineBy[discipline.ID] = len(c.disciplines)
		c.disciplines = append(c.disciplines, discipline)
	}

	for _, slot := range slots {
		if _, exists := c.disciplineBy[slot.DisciplineID]; !exists {
			return nil, fmt.Errorf("time slot %s references unknown discipline %s", slot.ID, slot.DisciplineID)
		}
		if _, exists := c.slots[slot.ID]; exists {
			return nil, fmt.Errorf("duplicate time slot %s", slot.ID)
		}
		if slot.End <= slot.Start {
			return nil, fmt.Errorf("time slot %s ends (%s) before it starts (%s)", slot.ID, slot.End, slot.Start)
		}
		if slot.Capacity <= 0 {
			return nil, fmt.Errorf("time slot %s has non-positive capacity %d", slot.ID, slot.Capacity)
		}

		for _, squad := range slot.Squads {
			if _, exists := c.squads[squad.ID]; exists {
				return nil, fmt.Errorf("duplicate squad %s", squad.ID)
			}
			squad.TimeSlotID = slot.ID
			if squad.Capacity <= 0 {
				squad.Capacity = slot.Capacity
			}
			slices.SortStableFunc(squad.Members, func(a, b *Member) int {
				return cmp.Compare(a.Position, b.Position)
			})
			c.squads[squad.ID] = squad
			c.squadSlot[squad.ID] = slot
		}

		c.slots[slot.ID] = slot
		c.slotOrder = append(c.slotOrder, slot)
		c.byDiscipline[slot.DisciplineID] = append(c.byDiscipline[slot.DisciplineID], slot)
	}

	return c, nil
}

// Disciplines returns the disciplines in the order they were supplied
func (c *Catalog) Disciplines() []Discipline {
	return slices.Clone(c.disciplines)
}

// Discipline returns the discipline with the given ID
func (c *Catalog) Discipline(id string) (Discipline, bool) {
	idx, ok := c.disciplineBy[id]
	if !ok {
		return Discipline{}, false
	}
	return c.disciplines[idx], true
}

// Slot returns the time slot with the given ID
func (c *Catalog) Slot(id string) (*TimeSlot, bool) {
	slot, ok := c.slots[id]
	return slot, ok
}

// SlotsFor returns the time slots of a discipline in catalog order
func (c *Catalog) SlotsFor(disciplineID string) []*TimeSlot {
	return slices.Clone(c.byDiscipline[disciplineID])
}

// AllSlots returns every time slot in catalog order
func (c *Catalog) AllSlots() []*TimeSlot {
	return slices.Clone(c.slotOrder)
}

// SlotCount returns the total number of time slots
func (c *Catalog) SlotCount() int {
	return len(c.slotOrder)
}

// Squad returns a squad and the slot it belongs to
func (c *Catalog) Squad(id string) (*Squad, *TimeSlot, bool) {
	squad, ok := c.squads[id]
	if !ok {
		return nil, nil, false
	}
	return squad, c.squadSlot[id], true
}

// MembershipIn finds the squad an athlete holds in a discipline, if any
func (c *Catalog) MembershipIn(athleteID, disciplineID string) (*Squad, *TimeSlot, bool) {
	for _, slot := range c.byDiscipline[disciplineID] {
		for _, squad := range slot.Squads {
			if squad.HasMember(athleteID) {
				return squad, slot, true
			}
		}
	}
	return nil, nil, false
}

// addSquad attaches a new squad to a slot
func (c *Catalog) addSquad(slot *TimeSlot, squad *Squad) {
	squad.TimeSlotID = slot.ID
	slot.Squads = append(slot.Squads, squad)
	c.squads[squad.ID] = squad
	c.squadSlot[squad.ID] = slot
}

// chronological returns a copy of the slots sorted by date, start, end and field
func chronological(slots []*TimeSlot) []*TimeSlot {
	sorted := slices.Clone(slots)
	slices.SortStableFunc(sorted, func(a, b *TimeSlot) int {
		return cmp.Or(
			cmp.Compare(a.Date, b.Date),
			cmp.Compare(a.Start, b.Start),
			cmp.Compare(a.End, b.End),
			cmp.Compare(a.Field, b.Field),
		)
	})
	return sorted
}
