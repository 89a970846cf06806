package boltstore

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/georgewallace/claytargettracker-sub000/pkg/db"
)

const (
	bucketTournaments   = "tournaments"
	bucketAthletes      = "athletes"
	bucketDisciplines   = "disciplines"
	bucketRegistrations = "registrations"
	bucketTimeSlots     = "time_slots"
	bucketSquads        = "squads"
	bucketSquadMembers  = "squad_members"
)

var allBuckets = []string{
	bucketTournaments,
	bucketAthletes,
	bucketDisciplines,
	bucketRegistrations,
	bucketTimeSlots,
	bucketSquads,
	bucketSquadMembers,
}

// squadRecord stores a squad with its creation sequence so reads keep creation order
type squadRecord struct {
	db.Squad
	Seq uint64 `json:"seq"`
}

// store implements db.Tx against either the whole database or a single bolt transaction
type store struct {
	view   func(fn func(*bolt.Tx) error) error
	update func(fn func(*bolt.Tx) error) error
}

// DB provides database operations on an embedded bbolt file.
// bbolt allows one writer at a time, so WithTournamentTx serializes every run.
type DB struct {
	*store
	bolt *bolt.DB
}

var (
	_ db.Database = (*DB)(nil)
	_ db.Seeder   = (*DB)(nil)
)

// Open opens (or creates) the database file and ensures every bucket exists
func Open(path string) (*DB, error) {
	boltDB, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = boltDB.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		boltDB.Close()
		return nil, err
	}

	return &DB{
		store: &store{view: boltDB.View, update: boltDB.Update},
		bolt:  boltDB,
	}, nil
}

// Close closes the database file
func (d *DB) Close() error {
	return d.bolt.Close()
}

// WithTournamentTx runs fn inside a single read-write bolt transaction
func (d *DB) WithTournamentTx(ctx context.Context, tournamentID string, fn func(tx db.Tx) error) error {
	return d.bolt.Update(func(tx *bolt.Tx) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		inTx := func(f func(*bolt.Tx) error) error { return f(tx) }
		return fn(&store{view: inTx, update: inTx})
	})
}

func put(b *bolt.Bucket, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return b.Put([]byte(key), data)
}

// each decodes every value of a bucket into T and passes it to fn
func each[T any](tx *bolt.Tx, bucket string, fn func(key []byte, value T) error) error {
	return tx.Bucket([]byte(bucket)).ForEach(func(k, v []byte) error {
		var value T
		if err := json.Unmarshal(v, &value); err != nil {
			return fmt.Errorf("failed to decode %s/%s: %w", bucket, k, err)
		}
		return fn(k, value)
	})
}

// GetTournament retrieves a tournament by ID
func (s *store) GetTournament(ctx context.Context, tournamentID string) (*db.Tournament, error) {
	var tournament *db.Tournament
	err := s.view(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketTournaments)).Get([]byte(tournamentID))
		if data == nil {
			return nil
		}
		tournament = &db.Tournament{}
		return json.Unmarshal(data, tournament)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	if tournament == nil {
		return nil, db.ErrNotFound
	}
	return tournament, nil
}

// GetDisciplines retrieves the disciplines of a tournament
func (s *store) GetDisciplines(ctx context.Context, tournamentID string) ([]db.Discipline, error) {
	var disciplines []db.Discipline
	err := s.view(func(tx *bolt.Tx) error {
		return each(tx, bucketDisciplines, func(_ []byte, d db.Discipline) error {
			if d.TournamentID == tournamentID {
				disciplines = append(disciplines, d)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get disciplines: %w", err)
	}

	slices.SortFunc(disciplines, func(a, b db.Discipline) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return disciplines, nil
}

// GetRegisteredAthletes retrieves every athlete registered for at least one discipline of a tournament
func (s *store) GetRegisteredAthletes(ctx context.Context, tournamentID string) ([]db.Athlete, error) {
	var athletes []db.Athlete
	err := s.view(func(tx *bolt.Tx) error {
		registered := make(map[string]bool)
		err := each(tx, bucketRegistrations, func(_ []byte, r db.Registration) error {
			if r.TournamentID == tournamentID {
				registered[r.AthleteID] = true
			}
			return nil
		})
		if err != nil {
			return err
		}

		return each(tx, bucketAthletes, func(_ []byte, a db.Athlete) error {
			if registered[a.ID] {
				athletes = append(athletes, a)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get athletes: %w", err)
	}

	slices.SortFunc(athletes, func(a, b db.Athlete) int {
		return cmp.Or(
			cmp.Compare(a.LastName, b.LastName),
			cmp.Compare(a.FirstName, b.FirstName),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return athletes, nil
}

// GetRegistrations retrieves every (athlete, discipline) registration of a tournament
func (s *store) GetRegistrations(ctx context.Context, tournamentID string) ([]db.Registration, error) {
	var registrations []db.Registration
	err := s.view(func(tx *bolt.Tx) error {
		return each(tx, bucketRegistrations, func(_ []byte, r db.Registration) error {
			if r.TournamentID == tournamentID {
				registrations = append(registrations, r)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get registrations: %w", err)
	}
	return registrations, nil
}

// GetTimeSlots retrieves the time slots of a tournament
func (s *store) GetTimeSlots(ctx context.Context, tournamentID string) ([]db.TimeSlot, error) {
	var slots []db.TimeSlot
	err := s.view(func(tx *bolt.Tx) error {
		return each(tx, bucketTimeSlots, func(_ []byte, ts db.TimeSlot) error {
			if ts.TournamentID == tournamentID {
				slots = append(slots, ts)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get time slots: %w", err)
	}

	slices.SortFunc(slots, func(a, b db.TimeSlot) int {
		return cmp.Or(
			cmp.Compare(a.Date, b.Date),
			cmp.Compare(a.StartTime, b.StartTime),
			cmp.Compare(a.Field, b.Field),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return slots, nil
}

// GetSquads retrieves every squad of a tournament
func (s *store) GetSquads(ctx context.Context, tournamentID string) ([]db.Squad, error) {
	var records []squadRecord
	err := s.view(func(tx *bolt.Tx) error {
		return each(tx, bucketSquads, func(_ []byte, r squadRecord) error {
			if r.TournamentID == tournamentID {
				records = append(records, r)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get squads: %w", err)
	}

	slices.SortFunc(records, func(a, b squadRecord) int {
		return cmp.Or(cmp.Compare(a.TimeSlotID, b.TimeSlotID), cmp.Compare(a.Seq, b.Seq))
	})

	squads := make([]db.Squad, len(records))
	for i, r := range records {
		squads[i] = r.Squad
	}
	return squads, nil
}

// GetSquadMembers retrieves the members of every squad of a tournament
func (s *store) GetSquadMembers(ctx context.Context, tournamentID string) ([]db.SquadMember, error) {
	var members []db.SquadMember
	err := s.view(func(tx *bolt.Tx) error {
		squads, err := squadIDsFor(tx, tournamentID)
		if err != nil {
			return err
		}
		return each(tx, bucketSquadMembers, func(_ []byte, m db.SquadMember) error {
			if squads[m.SquadID] {
				members = append(members, m)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get squad members: %w", err)
	}

	slices.SortFunc(members, func(a, b db.SquadMember) int {
		return cmp.Or(
			cmp.Compare(a.SquadID, b.SquadID),
			cmp.Compare(a.Position, b.Position),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return members, nil
}

func squadIDsFor(tx *bolt.Tx, tournamentID string) (map[string]bool, error) {
	ids := make(map[string]bool)
	err := each(tx, bucketSquads, func(_ []byte, r squadRecord) error {
		if r.TournamentID == tournamentID {
			ids[r.ID] = true
		}
		return nil
	})
	return ids, err
}
