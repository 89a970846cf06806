package services

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

// TournamentLocks serializes squad changes per tournament within this process.
// The storage transaction still guards against other processes.
type TournamentLocks struct {
	mutexes *xsync.Map[string, *sync.Mutex]
}

// NewTournamentLocks creates an empty lock table
func NewTournamentLocks() *TournamentLocks {
	return &TournamentLocks{mutexes: xsync.NewMap[string, *sync.Mutex]()}
}

// Lock blocks until the tournament is free and returns the matching unlock func
func (l *TournamentLocks) Lock(tournamentID string) (unlock func()) {
	mu, _ := l.mutexes.LoadOrStore(tournamentID, &sync.Mutex{})
	mu.Lock()
	return mu.Unlock
}

