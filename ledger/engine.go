// Package ledger implements a share ledger with proportional dividend
// distribution. Shares are issued and transferred per account; privileged
// callers declare dividend rounds, each fixing a pool of value and a
// snapshot of total shares; holders then claim their floor-proportional
// cut of the pool exactly once per round, debiting a global reserve of
// owed value.
//
// The engine only tracks obligations. It never moves an external asset:
// a successful claim decrements the internal reserve counter and the
// actual payment is settled outside this package.
package ledger

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/divledgerorg/libdivledger-go/store"
)

// MaxBatchAccounts caps the account list of one push-path batch, bounding
// the work done in a single atomic operation.
const MaxBatchAccounts = 20

// Engine composes the share ledger, round registry and claim tracker into
// the public operation surface. It is the concurrency boundary: every
// mutating operation runs under one exclusive lock from first read to last
// write, so operations are whole-operation atomic and globally serialized.
// Read-only queries share a read lock and never observe a partial write.
//
// Privilege is an explicit boolean capability passed into each privileged
// operation; the engine never inspects ambient caller identity.
type Engine struct {
	mu       sync.RWMutex
	st       store.StateStore
	shares   *ShareLedger
	rounds   *RoundRegistry
	claims   *ClaimTracker
	log      *slog.Logger
	maxBatch int
}

// NewEngine creates an engine over the given state store. A nil logger
// falls back to slog.Default().
func NewEngine(st store.StateStore, logger *slog.Logger) *Engine {
	shares := NewShareLedger(st)
	return &Engine{
		st:       st,
		shares:   shares,
		rounds:   NewRoundRegistry(st, shares),
		claims:   NewClaimTracker(st),
		log:      resolveLogger(logger),
		maxBatch: MaxBatchAccounts,
	}
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// Close releases the underlying state store.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.Close()
}

// Issue mints new shares to recipient. Privileged. Returns the recipient's
// new balance.
func (e *Engine) Issue(privileged bool, recipient string, amount uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	balance, err := e.shares.Issue(privileged, recipient, amount)
	if err != nil {
		return 0, err
	}
	e.log.Info("shares issued", "recipient", recipient, "amount", amount, "balance", balance)
	return balance, nil
}

// Transfer moves shares from sender to recipient. Any caller.
func (e *Engine) Transfer(sender, recipient string, amount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.shares.Transfer(sender, recipient, amount); err != nil {
		return err
	}
	e.log.Info("shares transferred", "sender", sender, "recipient", recipient, "amount", amount)
	return nil
}

// CreateRound declares a new dividend round with the given pool.
// Privileged. Returns the new round number.
func (e *Engine) CreateRound(privileged bool, pool uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	round, err := e.rounds.Create(privileged, pool)
	if err != nil {
		return 0, err
	}
	snapshot, err := e.st.SharesSnapshot(round)
	if err != nil {
		return 0, fmt.Errorf("create round: %w", err)
	}
	e.log.Info("dividend round created", "round", round, "pool", pool, "snapshot", snapshot)
	return round, nil
}

// BalanceOf returns an account's share balance, 0 if never issued shares.
func (e *Engine) BalanceOf(account string) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.shares.BalanceOf(account)
}

// TotalShares returns the global total of issued shares.
func (e *Engine) TotalShares() (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.shares.TotalShares()
}

// HasClaimed reports whether an account has claimed a round.
func (e *Engine) HasClaimed(account string, round uint64) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.claims.HasClaimed(account, round)
}

// CurrentRound returns the highest round number created, 0 if none.
func (e *Engine) CurrentRound() (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rounds.Current()
}

// DividendPool returns a round's pool amount, 0 for a round never created.
func (e *Engine) DividendPool(round uint64) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rounds.Pool(round)
}

// RoundInfo returns a round's pool, snapshot and active flag, zero values
// for a round never created.
func (e *Engine) RoundInfo(round uint64) (RoundInfo, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rounds.Info(round)
}

// Reserve returns the aggregate value owed and not yet paid out across all
// rounds.
func (e *Engine) Reserve() (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.claims.Reserve()
}

// DividendsPaid returns the total amount paid out for a round so far.
func (e *Engine) DividendsPaid(round uint64) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.claims.DividendsPaid(round)
}
