package services

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/georgewallace/claytargettracker-sub000/pkg/db"
)

const testTournament = "tour-1"

// mockStore is an in-memory db.Database for one tournament. Transactions are
// emulated by snapshotting the records and restoring them when fn fails.
type mockStore struct {
	tournament    *db.Tournament
	disciplines   []db.Discipline
	athletes      []db.Athlete
	registrations []db.Registration
	slots         []db.TimeSlot
	squads        []db.Squad
	members       []db.SquadMember

	transactions int

	// insertMemberErr makes every InsertSquadMember call fail
	insertMemberErr error
}

type mockSnapshot struct {
	slots   []db.TimeSlot
	squads  []db.Squad
	members []db.SquadMember
}

var _ db.Database = (*mockStore)(nil)

func (m *mockStore) WithTournamentTx(ctx context.Context, tournamentID string, fn func(tx db.Tx) error) error {
	m.transactions++
	snapshot := mockSnapshot{
		slots:   slices.Clone(m.slots),
		squads:  slices.Clone(m.squads),
		members: slices.Clone(m.members),
	}
	if err := fn(m); err != nil {
		m.slots, m.squads, m.members = snapshot.slots, snapshot.squads, snapshot.members
		return err
	}
	return nil
}

func (m *mockStore) Close() error { return nil }

func (m *mockStore) GetTournament(ctx context.Context, tournamentID string) (*db.Tournament, error) {
	if m.tournament == nil || m.tournament.ID != tournamentID {
		return nil, db.ErrNotFound
	}
	return m.tournament, nil
}

func (m *mockStore) GetDisciplines(ctx context.Context, tournamentID string) ([]db.Discipline, error) {
	return slices.Clone(m.disciplines), nil
}

func (m *mockStore) GetRegisteredAthletes(ctx context.Context, tournamentID string) ([]db.Athlete, error) {
	return slices.Clone(m.athletes), nil
}

func (m *mockStore) GetRegistrations(ctx context.Context, tournamentID string) ([]db.Registration, error) {
	return slices.Clone(m.registrations), nil
}

func (m *mockStore) GetTimeSlots(ctx context.Context, tournamentID string) ([]db.TimeSlot, error) {
	return slices.Clone(m.slots), nil
}

func (m *mockStore) GetSquads(ctx context.Context, tournamentID string) ([]db.Squad, error) {
	squads := slices.Clone(m.squads)
	slices.SortStableFunc(squads, func(a, b db.Squad) int { return cmp.Compare(a.TimeSlotID, b.TimeSlotID) })
	return squads, nil
}

func (m *mockStore) GetSquadMembers(ctx context.Context, tournamentID string) ([]db.SquadMember, error) {
	members := slices.Clone(m.members)
	slices.SortStableFunc(members, func(a, b db.SquadMember) int {
		return cmp.Or(cmp.Compare(a.SquadID, b.SquadID), cmp.Compare(a.Position, b.Position))
	})
	return members, nil
}

func (m *mockStore) InsertSquad(ctx context.Context, squad *db.Squad) error {
	m.squads = append(m.squads, *squad)
	return nil
}

func (m *mockStore) InsertSquadMember(ctx context.Context, member *db.SquadMember) error {
	if m.insertMemberErr != nil {
		return m.insertMemberErr
	}
	m.members = append(m.members, *member)
	return nil
}

func (m *mockStore) UpdateSquadMemberPosition(ctx context.Context, memberID string, position int) error {
	for i := range m.members {
		if m.members[i].ID == memberID {
			m.members[i].Position = position
			return nil
		}
	}
	return db.ErrNotFound
}

func (m *mockStore) DeleteSquadMember(ctx context.Context, memberID string) error {
	for i := range m.members {
		if m.members[i].ID == memberID {
			m.members = slices.Delete(m.members, i, i+1)
			return nil
		}
	}
	return db.ErrNotFound
}

func (m *mockStore) DeleteSquad(ctx context.Context, squadID string) error {
	for i := range m.squads {
		if m.squads[i].ID == squadID {
			m.squads = slices.Delete(m.squads, i, i+1)
			m.members = slices.DeleteFunc(m.members, func(member db.SquadMember) bool { return member.SquadID == squadID })
			return nil
		}
	}
	return db.ErrNotFound
}

func (m *mockStore) DeleteSquadsByTournament(ctx context.Context, tournamentID string) (int, error) {
	removed := len(m.squads)
	m.squads, m.members = nil, nil
	return removed, nil
}

func (m *mockStore) InsertTimeSlots(ctx context.Context, slots []db.TimeSlot) error {
	m.slots = append(m.slots, slots...)
	return nil
}

// membersOf returns the athlete IDs of a squad in position order
func (m *mockStore) membersOf(squadID string) []string {
	members, _ := m.GetSquadMembers(context.Background(), testTournament)
	ids := make([]string, 0)
	for _, member := range members {
		if member.SquadID == squadID {
			ids = append(ids, member.AthleteID)
		}
	}
	return ids
}

// squadOfAthlete returns the stored squad holding an athlete at the given slot
func (m *mockStore) squadOfAthlete(athleteID, slotID string) (db.Squad, bool) {
	for _, squad := range m.squads {
		if squad.TimeSlotID != slotID {
			continue
		}
		for _, member := range m.members {
			if member.SquadID == squad.ID && member.AthleteID == athleteID {
				return squad, true
			}
		}
	}
	return db.Squad{}, false
}

// newMockStore builds a tournament with trap (two fields), skeet and sporting clays.
// Skeet at 09:00 overlaps the second trap slot.
func newMockStore() *mockStore {
	store := &mockStore{
		tournament: &db.Tournament{ID: testTournament, Name: "Spring Open"},
		disciplines: []db.Discipline{
			{ID: "d-skeet", TournamentID: testTournament, Name: "Skeet"},
			{ID: "d-sporting", TournamentID: testTournament, Name: "Sporting Clays"},
			{ID: "d-trap", TournamentID: testTournament, Name: "Trap"},
		},
		athletes: []db.Athlete{
			{ID: "a1", FirstName: "Ann", LastName: "Adams", TeamID: "t-eagles", TeamName: "Eagles", Division: "Varsity", Active: true},
			{ID: "a2", FirstName: "Bea", LastName: "Brown", TeamID: "t-eagles", TeamName: "Eagles", Division: "Varsity", Active: true},
			{ID: "a3", FirstName: "Cal", LastName: "Cole", TeamID: "t-hawks", TeamName: "Hawks", Division: "Varsity", Active: true},
			{ID: "a4", FirstName: "Dee", LastName: "Dunn", Active: true},
		},
		slots: []db.TimeSlot{
			{ID: "ts-trap-1", TournamentID: testTournament, DisciplineID: "d-trap", Date: "2024-06-01", StartTime: "08:00", EndTime: "09:00", Field: "Field 1", Capacity: 5},
			{ID: "ts-trap-2", TournamentID: testTournament, DisciplineID: "d-trap", Date: "2024-06-01", StartTime: "09:00", EndTime: "10:00", Field: "Field 1", Capacity: 5},
			{ID: "ts-skeet-1", TournamentID: testTournament, DisciplineID: "d-skeet", Date: "2024-06-01", StartTime: "09:30", EndTime: "10:30", Capacity: 5},
			{ID: "ts-sporting-1", TournamentID: testTournament, DisciplineID: "d-sporting", Date: "2024-06-01", StartTime: "13:00", EndTime: "15:00", Capacity: 3},
		},
	}
	for _, athlete := range store.athletes {
		store.registrations = append(store.registrations, db.Registration{
			TournamentID: testTournament,
			AthleteID:    athlete.ID,
			DisciplineID: "d-trap",
		})
	}
	return store
}

// recordingCollector keeps every metric it receives
type recordingCollector struct {
	mu               sync.Mutex
	runs             []string
	assignments      map[string]int
	unassigned       map[string]int
	squadsCreated    int
	manualPlacements []string
}

func newRecordingCollector() *recordingCollector {
	return &recordingCollector{
		assignments: make(map[string]int),
		unassigned:  make(map[string]int),
	}
}

func (r *recordingCollector) RecordAllocationRun(result string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, result)
}

func (r *recordingCollector) RecordAssignments(discipline string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments[discipline] += count
}

func (r *recordingCollector) RecordUnassigned(discipline, reason string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unassigned[discipline+"/"+reason] += count
}

func (r *recordingCollector) RecordSquadsCreated(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.squadsCreated += count
}

func (r *recordingCollector) RecordManualPlacement(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manualPlacements = append(r.manualPlacements, result)
}
