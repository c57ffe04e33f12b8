// Package store defines the narrow state-store and event-log contracts
// the core consumes, plus a concrete SQLite-backed adapter.
package store

import (
	"context"
	"errors"

	"github.com/abhisek/adaptprep/internal/bkt"
	"github.com/abhisek/adaptprep/internal/diagnostic"
	"github.com/abhisek/adaptprep/internal/practice"
	"github.com/abhisek/adaptprep/internal/session"
	"github.com/abhisek/adaptprep/internal/spacedrep"
)

// ErrWriteFailed wraps every error from SQLiteStore, read paths included.
// The controllers never call a StateStore; the caller persists their
// output and receives this error directly. No controller state is rolled
// back when a write fails.
var ErrWriteFailed = errors.New("store: write failed")

// StateStore is the mastery-state and attempt persistence contract.
// Implementations must make writes durable before the call returns, since
// the next controller step assumes the prior write already landed.
type StateStore interface {
	GetMastery(ctx context.Context, learnerID, subskillID string) (bkt.MasteryState, bool, error)
	UpsertMastery(ctx context.Context, learnerID string, state bkt.MasteryState) error

	AppendAttempt(ctx context.Context, learnerID string, a session.Attempt) error
	AppendErrorLog(ctx context.Context, learnerID string, e practice.ErrorLog) error

	InsertDiagnosticResult(ctx context.Context, learnerID string, r diagnostic.Result) error
	LatestDiagnosticResult(ctx context.Context, learnerID string) (diagnostic.Result, bool, error)

	GetFlashcard(ctx context.Context, learnerID, word string) (spacedrep.Flashcard, bool, error)
	UpsertFlashcard(ctx context.Context, learnerID string, card spacedrep.Flashcard) error
	DueFlashcards(ctx context.Context, learnerID string) ([]spacedrep.Flashcard, error)
}
