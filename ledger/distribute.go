package ledger

import "fmt"

// BatchResult reports the outcome of one push-path batch.
type BatchResult struct {
	Round     uint64 // round the batch ran against
	Processed int    // accounts attempted (the input list length)
	Marked    int    // accounts newly marked as claimed
	Pool      uint64 // the round's pool amount
	Snapshot  uint64 // the round's shares snapshot
}

// Claim is the self-service pull path: the caller claims its proportional
// cut of a round's pool exactly once. On success the claim is recorded,
// the reserve is debited and the amount is returned.
//
// Preconditions are checked in a fixed order, and the first violated one
// determines the returned error: round active (ErrRoundNotActive), not yet
// claimed (ErrAlreadyClaimed), caller holds shares (ErrNotShareholder),
// round has a pool (ErrNoDividends), computed amount nonzero
// (ErrInvalidAmount — a negligible holding that floors to zero is rejected,
// not silently paid nothing), reserve covers the amount
// (ErrInsufficientBalance). A failed claim changes no state.
func (e *Engine) Claim(caller string, round uint64) (uint64, error) {
	if caller == "" {
		return 0, ErrInvalidAccount
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	active, err := e.st.RoundActive(round)
	if err != nil {
		return 0, fmt.Errorf("claim: %w", err)
	}
	if !active {
		return 0, ErrRoundNotActive
	}

	claimed, err := e.claims.HasClaimed(caller, round)
	if err != nil {
		return 0, fmt.Errorf("claim: %w", err)
	}
	if claimed {
		return 0, ErrAlreadyClaimed
	}

	holderShares, err := e.shares.BalanceOf(caller)
	if err != nil {
		return 0, fmt.Errorf("claim: %w", err)
	}
	if holderShares == 0 {
		return 0, ErrNotShareholder
	}

	pool, err := e.st.PoolAmount(round)
	if err != nil {
		return 0, fmt.Errorf("claim: %w", err)
	}
	if pool == 0 {
		return 0, ErrNoDividends
	}

	snapshot, err := e.st.SharesSnapshot(round)
	if err != nil {
		return 0, fmt.Errorf("claim: %w", err)
	}
	amount := ComputeDividend(holderShares, snapshot, pool)
	if amount == 0 {
		return 0, ErrInvalidAmount
	}

	reserve, err := e.claims.Reserve()
	if err != nil {
		return 0, fmt.Errorf("claim: %w", err)
	}
	if amount > reserve {
		return 0, ErrInsufficientBalance
	}

	// All checks passed; writes start here.
	if err := e.claims.recordClaim(caller, round); err != nil {
		return 0, fmt.Errorf("claim: %w", err)
	}
	if err := e.claims.debitReserve(amount); err != nil {
		return 0, fmt.Errorf("claim: %w", err)
	}
	if err := e.st.AddDividendsPaid(round, amount); err != nil {
		return 0, fmt.Errorf("claim: %w", err)
	}

	e.log.Info("dividend claimed", "account", caller, "round", round, "amount", amount)
	return amount, nil
}

// BatchDistribute is the administrator push path: it marks claims for a
// bounded list of accounts against the given round. Accounts are processed
// in input order, duplicates per occurrence; an account with no shares or
// an existing claim is skipped without error.
//
// The batch is mark-only. It computes no amounts and never touches the
// reserve: the actual value movement is an external settlement step this
// engine does not perform. Lists longer than the batch cap are rejected
// with ErrBatchTooLarge before any state is read.
//
// Processed in the result is the attempted list length, not the number of
// accounts newly marked; Marked carries that count.
func (e *Engine) BatchDistribute(privileged bool, round uint64, accounts []string) (BatchResult, error) {
	if !privileged {
		return BatchResult{}, ErrNotAuthorized
	}
	if len(accounts) > e.maxBatch {
		return BatchResult{}, ErrBatchTooLarge
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	active, err := e.st.RoundActive(round)
	if err != nil {
		return BatchResult{}, fmt.Errorf("batch distribute: %w", err)
	}
	if !active {
		return BatchResult{}, ErrRoundNotActive
	}

	pool, err := e.st.PoolAmount(round)
	if err != nil {
		return BatchResult{}, fmt.Errorf("batch distribute: %w", err)
	}
	if pool == 0 {
		return BatchResult{}, ErrNoDividends
	}

	snapshot, err := e.st.SharesSnapshot(round)
	if err != nil {
		return BatchResult{}, fmt.Errorf("batch distribute: %w", err)
	}
	if snapshot == 0 {
		return BatchResult{}, ErrInvalidShares
	}

	marked := 0
	for _, account := range accounts {
		holderShares, err := e.shares.BalanceOf(account)
		if err != nil {
			return BatchResult{}, fmt.Errorf("batch distribute: %w", err)
		}
		if holderShares == 0 {
			continue
		}
		claimed, err := e.claims.HasClaimed(account, round)
		if err != nil {
			return BatchResult{}, fmt.Errorf("batch distribute: %w", err)
		}
		if claimed {
			continue
		}
		if err := e.claims.recordClaim(account, round); err != nil {
			return BatchResult{}, fmt.Errorf("batch distribute: %w", err)
		}
		marked++
	}

	e.log.Info("batch distribution marked", "round", round,
		"processed", len(accounts), "marked", marked)

	return BatchResult{
		Round:     round,
		Processed: len(accounts),
		Marked:    marked,
		Pool:      pool,
		Snapshot:  snapshot,
	}, nil
}
