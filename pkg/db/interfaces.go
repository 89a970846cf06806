package db

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// TournamentReader reads the state of one tournament.
// Results are ordered deterministically:
//   - athletes by last name, first name, ID
//   - disciplines by name, ID
//   - time slots by date, start time, field, ID
//   - squads by time slot, creation order
//   - squad members by squad, position
type TournamentReader interface {
	GetTournament(ctx context.Context, tournamentID string) (*Tournament, error)
	GetDisciplines(ctx context.Context, tournamentID string) ([]Discipline, error)
	GetRegisteredAthletes(ctx context.Context, tournamentID string) ([]Athlete, error)
	GetRegistrations(ctx context.Context, tournamentID string) ([]Registration, error)
	GetTimeSlots(ctx context.Context, tournamentID string) ([]TimeSlot, error)
	GetSquads(ctx context.Context, tournamentID string) ([]Squad, error)
	GetSquadMembers(ctx context.Context, tournamentID string) ([]SquadMember, error)
}

// SquadWriter creates and modifies squads and their members
type SquadWriter interface {
	InsertSquad(ctx context.Context, squad *Squad) error
	InsertSquadMember(ctx context.Context, member *SquadMember) error
	UpdateSquadMemberPosition(ctx context.Context, memberID string, position int) error
	DeleteSquadMember(ctx context.Context, memberID string) error
	DeleteSquad(ctx context.Context, squadID string) error

	// DeleteSquadsByTournament removes every squad (and its members) of a tournament
	// and returns the number of squads removed
	DeleteSquadsByTournament(ctx context.Context, tournamentID string) (int, error)
}

// TimeSlotWriter creates time slots
type TimeSlotWriter interface {
	InsertTimeSlots(ctx context.Context, slots []TimeSlot) error
}

// Tx is the set of operations available inside a tournament transaction.
// Reads made through a Tx observe writes made earlier through the same Tx.
type Tx interface {
	TournamentReader
	SquadWriter
	TimeSlotWriter
}

// Database defines the interface for all database operations.
// Both postgres.DB and boltstore.DB implement this interface.
type Database interface {
	Tx

	// WithTournamentTx runs fn inside a transaction that holds an exclusive lock on
	// the tournament. The transaction commits if fn returns nil and rolls back otherwise.
	WithTournamentTx(ctx context.Context, tournamentID string, fn func(tx Tx) error) error

	Close() error
}

// Seeder loads tournament setup data
type Seeder interface {
	InsertTournament(ctx context.Context, tournament *Tournament) error
	InsertAthlete(ctx context.Context, athlete *Athlete) error
	InsertDiscipline(ctx context.Context, discipline *Discipline) error
	InsertRegistration(ctx context.Context, registration *Registration) error
}
