package ledger

import (
	"fmt"
	"math"

	"github.com/divledgerorg/libdivledger-go/store"
)

// RoundInfo describes one dividend round. Pool and Snapshot are fixed at
// creation and immutable afterward.
type RoundInfo struct {
	Pool     uint64 // total value allocated to the round
	Snapshot uint64 // total shares issued when the round was created
	Active   bool   // rounds are created active; nothing closes them yet
}

// RoundRegistry owns the sequential numbering of dividend rounds and each
// round's immutable pool, snapshot and active flag. Creating a round
// credits the global reserve with the round's pool.
//
// RoundRegistry performs no locking of its own; the composing Engine
// serializes access.
type RoundRegistry struct {
	st     store.StateStore
	shares *ShareLedger
}

// NewRoundRegistry creates a round registry over the given state store,
// reading share totals from shares.
func NewRoundRegistry(st store.StateStore, shares *ShareLedger) *RoundRegistry {
	return &RoundRegistry{st: st, shares: shares}
}

// Create declares a new dividend round with the given pool. Only a
// privileged caller may create rounds. The snapshot of total shares is
// captured at this instant and never changes afterward; later issuance and
// transfers do not affect it. A round cannot be created while total shares
// is zero, since its dividends could never be claimed. Returns the new
// round number; numbering starts at 1.
func (r *RoundRegistry) Create(privileged bool, pool uint64) (uint64, error) {
	if !privileged {
		return 0, ErrNotAuthorized
	}
	if pool == 0 {
		return 0, ErrInvalidAmount
	}

	snapshot, err := r.shares.TotalShares()
	if err != nil {
		return 0, fmt.Errorf("create round: %w", err)
	}
	if snapshot == 0 {
		return 0, ErrInvalidShares
	}
	reserve, err := r.st.Reserve()
	if err != nil {
		return 0, fmt.Errorf("create round: %w", err)
	}
	if pool > math.MaxUint64-reserve {
		return 0, ErrInvalidAmount
	}
	current, err := r.st.CurrentRound()
	if err != nil {
		return 0, fmt.Errorf("create round: %w", err)
	}

	round := current + 1
	if err := r.st.PutRound(round, pool, snapshot, true); err != nil {
		return 0, fmt.Errorf("create round: %w", err)
	}
	if err := r.st.SetReserve(reserve + pool); err != nil {
		return 0, fmt.Errorf("create round: %w", err)
	}
	if err := r.st.SetCurrentRound(round); err != nil {
		return 0, fmt.Errorf("create round: %w", err)
	}
	return round, nil
}

// Info returns a round's pool, snapshot and active flag. A round never
// created reads as the zero RoundInfo; this is not an error.
func (r *RoundRegistry) Info(round uint64) (RoundInfo, error) {
	pool, err := r.st.PoolAmount(round)
	if err != nil {
		return RoundInfo{}, fmt.Errorf("round info: %w", err)
	}
	snapshot, err := r.st.SharesSnapshot(round)
	if err != nil {
		return RoundInfo{}, fmt.Errorf("round info: %w", err)
	}
	active, err := r.st.RoundActive(round)
	if err != nil {
		return RoundInfo{}, fmt.Errorf("round info: %w", err)
	}
	return RoundInfo{Pool: pool, Snapshot: snapshot, Active: active}, nil
}

// Current returns the highest round number created, 0 if none.
func (r *RoundRegistry) Current() (uint64, error) {
	return r.st.CurrentRound()
}

// Pool returns a round's pool amount, 0 for a round never created.
func (r *RoundRegistry) Pool(round uint64) (uint64, error) {
	return r.st.PoolAmount(round)
}
