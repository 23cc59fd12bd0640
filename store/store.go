// Package store provides persistence for the dividend ledger engine.
//
// All engine state (share balances, round records, claim flags and the
// global counters) is read and written through the StateStore interface.
// Absent keys read as zero values: an account never issued shares has
// balance 0, a round never created reads as (0, 0, inactive), and a claim
// never recorded reads as false.
package store

import "sync"

// StateStore is the persisted-state surface of the ledger engine.
type StateStore interface {
	// Balance returns the share balance for an account, 0 if absent.
	Balance(account string) (uint64, error)

	// SetBalance stores the share balance for an account.
	SetBalance(account string, shares uint64) error

	// TotalShares returns the global total of issued shares.
	TotalShares() (uint64, error)

	// SetTotalShares stores the global total of issued shares.
	SetTotalShares(total uint64) error

	// CurrentRound returns the highest round number created, 0 if none.
	CurrentRound() (uint64, error)

	// SetCurrentRound stores the current-round pointer.
	SetCurrentRound(round uint64) error

	// PoolAmount returns the pool allocated to a round, 0 if absent.
	PoolAmount(round uint64) (uint64, error)

	// SharesSnapshot returns the total shares captured at round
	// creation, 0 if absent.
	SharesSnapshot(round uint64) (uint64, error)

	// RoundActive reports whether a round exists and is active.
	RoundActive(round uint64) (bool, error)

	// PutRound stores a round's pool, snapshot and active flag.
	PutRound(round, pool, snapshot uint64, active bool) error

	// Claimed reports whether an account has claimed a round.
	Claimed(account string, round uint64) (bool, error)

	// SetClaimed marks an account's claim for a round. Claim flags are
	// write-once: they are never reset.
	SetClaimed(account string, round uint64) error

	// Reserve returns the total value owed and not yet paid out,
	// summed across all rounds.
	Reserve() (uint64, error)

	// SetReserve stores the reserve counter.
	SetReserve(amount uint64) error

	// DividendsPaid returns the total amount paid out for a round.
	DividendsPaid(round uint64) (uint64, error)

	// AddDividendsPaid adds a successful claim's amount to a round's
	// paid counter.
	AddDividendsPaid(round, amount uint64) error

	// Close releases any resources held by the store.
	Close() error
}

// claimKey identifies one (account, round) claim flag in memory.
type claimKey struct {
	account string
	round   uint64
}

// MemStore is an in-memory implementation of StateStore. It is used in
// tests and for ephemeral ledgers that do not need durability.
type MemStore struct {
	mu           sync.RWMutex
	balances     map[string]uint64
	pools        map[uint64]uint64
	snapshots    map[uint64]uint64
	active       map[uint64]bool
	claims       map[claimKey]bool
	paid         map[uint64]uint64
	totalShares  uint64
	currentRound uint64
	reserve      uint64
}

// Compile-time interface check.
var _ StateStore = (*MemStore)(nil)

// NewMemStore creates an empty in-memory state store.
func NewMemStore() *MemStore {
	return &MemStore{
		balances:  make(map[string]uint64),
		pools:     make(map[uint64]uint64),
		snapshots: make(map[uint64]uint64),
		active:    make(map[uint64]bool),
		claims:    make(map[claimKey]bool),
		paid:      make(map[uint64]uint64),
	}
}

// Balance returns the share balance for an account, 0 if absent.
func (s *MemStore) Balance(account string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[account], nil
}

// SetBalance stores the share balance for an account.
func (s *MemStore) SetBalance(account string, shares uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[account] = shares
	return nil
}

// TotalShares returns the global total of issued shares.
func (s *MemStore) TotalShares() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalShares, nil
}

// SetTotalShares stores the global total of issued shares.
func (s *MemStore) SetTotalShares(total uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalShares = total
	return nil
}

// CurrentRound returns the highest round number created, 0 if none.
func (s *MemStore) CurrentRound() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRound, nil
}

// SetCurrentRound stores the current-round pointer.
func (s *MemStore) SetCurrentRound(round uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentRound = round
	return nil
}

// PoolAmount returns the pool allocated to a round, 0 if absent.
func (s *MemStore) PoolAmount(round uint64) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pools[round], nil
}

// SharesSnapshot returns the snapshot captured at round creation.
func (s *MemStore) SharesSnapshot(round uint64) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshots[round], nil
}

// RoundActive reports whether a round exists and is active.
func (s *MemStore) RoundActive(round uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active[round], nil
}

// PutRound stores a round's pool, snapshot and active flag.
func (s *MemStore) PutRound(round, pool, snapshot uint64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[round] = pool
	s.snapshots[round] = snapshot
	s.active[round] = active
	return nil
}

// Claimed reports whether an account has claimed a round.
func (s *MemStore) Claimed(account string, round uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.claims[claimKey{account, round}], nil
}

// SetClaimed marks an account's claim for a round.
func (s *MemStore) SetClaimed(account string, round uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims[claimKey{account, round}] = true
	return nil
}

// Reserve returns the aggregate owed-and-unpaid counter.
func (s *MemStore) Reserve() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reserve, nil
}

// SetReserve stores the reserve counter.
func (s *MemStore) SetReserve(amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reserve = amount
	return nil
}

// DividendsPaid returns the total amount paid out for a round.
func (s *MemStore) DividendsPaid(round uint64) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paid[round], nil
}

// AddDividendsPaid adds an amount to a round's paid counter.
func (s *MemStore) AddDividendsPaid(round, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paid[round] += amount
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error { return nil }
