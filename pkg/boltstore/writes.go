package boltstore

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/georgewallace/claytargettracker-sub000/pkg/db"
)

// InsertSquad inserts a new squad record
func (s *store) InsertSquad(ctx context.Context, squad *db.Squad) error {
	return s.update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSquads))
		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate squad sequence: %w", err)
		}
		return put(b, squad.ID, squadRecord{Squad: *squad, Seq: seq})
	})
}

// InsertSquadMember inserts a new squad member record
func (s *store) InsertSquadMember(ctx context.Context, member *db.SquadMember) error {
	return s.update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(bucketSquads)).Get([]byte(member.SquadID)) == nil {
			return fmt.Errorf("failed to insert squad member: squad %s: %w", member.SquadID, db.ErrNotFound)
		}
		return put(tx.Bucket([]byte(bucketSquadMembers)), member.ID, member)
	})
}

// UpdateSquadMemberPosition moves a member to a new position
func (s *store) UpdateSquadMemberPosition(ctx context.Context, memberID string, position int) error {
	return s.update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSquadMembers))
		data := b.Get([]byte(memberID))
		if data == nil {
			return db.ErrNotFound
		}
		var member db.SquadMember
		if err := json.Unmarshal(data, &member); err != nil {
			return fmt.Errorf("failed to decode squad member %s: %w", memberID, err)
		}
		member.Position = position
		return put(b, memberID, member)
	})
}

// DeleteSquadMember removes a member from its squad
func (s *store) DeleteSquadMember(ctx context.Context, memberID string) error {
	return s.update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSquadMembers))
		if b.Get([]byte(memberID)) == nil {
			return db.ErrNotFound
		}
		return b.Delete([]byte(memberID))
	})
}

// DeleteSquad removes a squad and its members
func (s *store) DeleteSquad(ctx context.Context, squadID string) error {
	return s.update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSquads))
		if b.Get([]byte(squadID)) == nil {
			return db.ErrNotFound
		}
		if err := deleteMembersOf(tx, map[string]bool{squadID: true}); err != nil {
			return err
		}
		return b.Delete([]byte(squadID))
	})
}

// DeleteSquadsByTournament removes every squad of a tournament and their members
func (s *store) DeleteSquadsByTournament(ctx context.Context, tournamentID string) (int, error) {
	var removed int
	err := s.update(func(tx *bolt.Tx) error {
		squads, err := squadIDsFor(tx, tournamentID)
		if err != nil {
			return err
		}
		if err := deleteMembersOf(tx, squads); err != nil {
			return err
		}
		b := tx.Bucket([]byte(bucketSquads))
		for id := range squads {
			if err := b.Delete([]byte(id)); err != nil {
				return fmt.Errorf("failed to delete squad %s: %w", id, err)
			}
		}
		removed = len(squads)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete squads: %w", err)
	}
	return removed, nil
}

// deleteMembersOf removes every member of the given squads.
// Keys are collected first since bolt forbids deleting while iterating.
func deleteMembersOf(tx *bolt.Tx, squads map[string]bool) error {
	var keys [][]byte
	err := each(tx, bucketSquadMembers, func(k []byte, m db.SquadMember) error {
		if squads[m.SquadID] {
			keys = append(keys, append([]byte(nil), k...))
		}
		return nil
	})
	if err != nil {
		return err
	}

	b := tx.Bucket([]byte(bucketSquadMembers))
	for _, k := range keys {
		if err := b.Delete(k); err != nil {
			return fmt.Errorf("failed to delete squad member %s: %w", k, err)
		}
	}
	return nil
}

// InsertTimeSlots inserts time slot records
func (s *store) InsertTimeSlots(ctx context.Context, slots []db.TimeSlot) error {
	return s.update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketTimeSlots))
		for _, ts := range slots {
			if err := put(b, ts.ID, ts); err != nil {
				return err
			}
		}
		return nil
	})
}

// InsertTournament inserts a new tournament record
func (s *store) InsertTournament(ctx context.Context, tournament *db.Tournament) error {
	return s.update(func(tx *bolt.Tx) error {
		return put(tx.Bucket([]byte(bucketTournaments)), tournament.ID, tournament)
	})
}

// InsertAthlete inserts an athlete record
func (s *store) InsertAthlete(ctx context.Context, athlete *db.Athlete) error {
	return s.update(func(tx *bolt.Tx) error {
		return put(tx.Bucket([]byte(bucketAthletes)), athlete.ID, athlete)
	})
}

// InsertDiscipline inserts a new discipline record
func (s *store) InsertDiscipline(ctx context.Context, discipline *db.Discipline) error {
	return s.update(func(tx *bolt.Tx) error {
		return put(tx.Bucket([]byte(bucketDisciplines)), discipline.ID, discipline)
	})
}

// InsertRegistration registers an athlete for a discipline
func (s *store) InsertRegistration(ctx context.Context, registration *db.Registration) error {
	key := registration.TournamentID + "/" + registration.AthleteID + "/" + registration.DisciplineID
	return s.update(func(tx *bolt.Tx) error {
		return put(tx.Bucket([]byte(bucketRegistrations)), key, registration)
	})
}
