package allocator

// occupancy is one persisted seat of an athlete
type occupancy struct {
	squadID string
	slot    *TimeSlot
}

// Detector decides whether an athlete can take a candidate time slot without
// overlapping any slot they already occupy. It is shared by the bulk allocator
// and the manual placement path so both apply identical rules.
//
// Persisted seats are captured when the detector is built. Seats handed out later
// in the same run are passed in explicitly as alreadyPlaced.
type Detector struct {
	catalog     *Catalog
	occupied    map[string][]occupancy
	ignoreSquad string
}

// NewDetector snapshots every athlete's current seats from the catalog
func NewDetector(catalog *Catalog) *Detector {
	occupied := make(map[string][]occupancy)
	for _, slot := range catalog.AllSlots() {
		for _, squad := range slot.Squads {
			for _, member := range squad.Members {
				occupied[member.AthleteID] = append(occupied[member.AthleteID], occupancy{
					squadID: squad.ID,
					slot:    slot,
				})
			}
		}
	}
	return &Detector{
		catalog:  catalog,
		occupied: occupied,
	}
}

// Ignoring returns a detector that disregards seats in the given squad.
// Used when an athlete is being moved out of that squad.
func (d *Detector) Ignoring(squadID string) *Detector {
	return &Detector{
		catalog:     d.catalog,
		occupied:    d.occupied,
		ignoreSquad: squadID,
	}
}

// HasConflict returns true if the candidate slot overlaps any slot the athlete
// occupies, either persisted or placed earlier in the current run
func (d *Detector) HasConflict(athleteID string, candidate *TimeSlot, alreadyPlaced []Placement) bool {
	_, found := d.FindConflict(athleteID, candidate, alreadyPlaced)
	return found
}

// FindConflict returns the first occupied slot that overlaps the candidate
func (d *Detector) FindConflict(athleteID string, candidate *TimeSlot, alreadyPlaced []Placement) (*TimeSlot, bool) {
	for _, seat := range d.occupied[athleteID] {
		if seat.squadID == d.ignoreSquad && d.ignoreSquad != "" {
			continue
		}
		if seat.slot.Overlaps(candidate) {
			return seat.slot, true
		}
	}

	for _, placement := range alreadyPlaced {
		if placement.AthleteID != athleteID {
			continue
		}
		if placement.SquadID == d.ignoreSquad && d.ignoreSquad != "" {
			continue
		}
		slot, ok := d.catalog.Slot(placement.TimeSlotID)
		if !ok {
			continue
		}
		if slot.Overlaps(candidate) {
			return slot, true
		}
	}

	return nil, false
}
