package ledger

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/divledgerorg/libdivledger-go/store"
)

// ClaimTracker owns the per-(account, round) claimed flags and the global
// reserve of owed-and-unpaid value. It reads balances and round snapshots
// but never writes them.
//
// ClaimTracker performs no locking of its own; the composing Engine
// serializes access.
type ClaimTracker struct {
	st store.StateStore
}

// NewClaimTracker creates a claim tracker over the given state store.
func NewClaimTracker(st store.StateStore) *ClaimTracker {
	return &ClaimTracker{st: st}
}

// HasClaimed reports whether an account has claimed a round. Default false.
func (c *ClaimTracker) HasClaimed(account string, round uint64) (bool, error) {
	return c.st.Claimed(account, round)
}

// ComputeDividend returns floor(holderShares * pool / snapshot), the
// holder's proportional cut of the round's pool. A zero snapshot yields 0
// rather than an error. The product is taken at 128-bit width because a
// holder's balance can exceed the snapshot once shares are issued after
// round creation; a quotient past the uint64 range saturates to MaxUint64,
// which no reserve can cover.
//
// Flooring leaves dust: the residue between each holder's exact cut and
// the floored amount is never redistributed and stays in the reserve.
func ComputeDividend(holderShares, snapshot, pool uint64) uint64 {
	if snapshot == 0 {
		return 0
	}
	hi, lo := bits.Mul64(holderShares, pool)
	if hi >= snapshot {
		return math.MaxUint64
	}
	quo, _ := bits.Div64(hi, lo, snapshot)
	return quo
}

// recordClaim marks an account's claim for a round. Write-once: the Engine
// gates this behind HasClaimed, so the tracker does not re-check.
func (c *ClaimTracker) recordClaim(account string, round uint64) error {
	if err := c.st.SetClaimed(account, round); err != nil {
		return fmt.Errorf("record claim: %w", err)
	}
	return nil
}

// debitReserve subtracts a successful claim's amount from the reserve.
// The reserve never goes negative: an amount above it fails with
// ErrInsufficientBalance and no state change.
func (c *ClaimTracker) debitReserve(amount uint64) error {
	reserve, err := c.st.Reserve()
	if err != nil {
		return fmt.Errorf("debit reserve: %w", err)
	}
	if amount > reserve {
		return ErrInsufficientBalance
	}
	if err := c.st.SetReserve(reserve - amount); err != nil {
		return fmt.Errorf("debit reserve: %w", err)
	}
	return nil
}

// Reserve returns the aggregate value owed and not yet paid out.
func (c *ClaimTracker) Reserve() (uint64, error) {
	return c.st.Reserve()
}

// DividendsPaid returns the total amount paid out for a round so far.
func (c *ClaimTracker) DividendsPaid(round uint64) (uint64, error) {
	return c.st.DividendsPaid(round)
}
