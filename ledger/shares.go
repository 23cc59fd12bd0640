package ledger

import (
	"fmt"
	"math"

	"github.com/divledgerorg/libdivledger-go/store"
)

// ShareLedger owns the account-to-balance mapping and the running total of
// shares issued. Shares are conserved: transfers move exactly the requested
// amount or nothing, and the sum of all balances always equals the total.
//
// ShareLedger performs no locking of its own; the composing Engine
// serializes access.
type ShareLedger struct {
	st store.StateStore
}

// NewShareLedger creates a share ledger over the given state store.
func NewShareLedger(st store.StateStore) *ShareLedger {
	return &ShareLedger{st: st}
}

// Issue mints new shares to recipient and grows the global total. Only a
// privileged caller may issue. The total never wraps: an amount that would
// overflow it fails with ErrInvalidAmount. Returns the recipient's new
// balance.
func (l *ShareLedger) Issue(privileged bool, recipient string, amount uint64) (uint64, error) {
	if !privileged {
		return 0, ErrNotAuthorized
	}
	if recipient == "" {
		return 0, ErrInvalidAccount
	}
	if amount == 0 {
		return 0, ErrInvalidAmount
	}

	total, err := l.st.TotalShares()
	if err != nil {
		return 0, fmt.Errorf("issue: %w", err)
	}
	if amount > math.MaxUint64-total {
		return 0, ErrInvalidAmount
	}
	balance, err := l.st.Balance(recipient)
	if err != nil {
		return 0, fmt.Errorf("issue: %w", err)
	}

	newBalance := balance + amount
	if err := l.st.SetBalance(recipient, newBalance); err != nil {
		return 0, fmt.Errorf("issue: %w", err)
	}
	if err := l.st.SetTotalShares(total + amount); err != nil {
		return 0, fmt.Errorf("issue: %w", err)
	}
	return newBalance, nil
}

// Transfer moves shares between accounts. The total is unchanged. A
// self-transfer is a legal no-op: sender and recipient alias, so the
// balance is read once and written back unchanged rather than debited and
// credited through two independent reads.
func (l *ShareLedger) Transfer(sender, recipient string, amount uint64) error {
	if sender == "" || recipient == "" {
		return ErrInvalidAccount
	}
	if amount == 0 {
		return ErrInvalidAmount
	}

	fromBalance, err := l.st.Balance(sender)
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	if fromBalance < amount {
		return ErrInsufficientBalance
	}
	if sender == recipient {
		return nil
	}

	toBalance, err := l.st.Balance(recipient)
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	if err := l.st.SetBalance(sender, fromBalance-amount); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	if err := l.st.SetBalance(recipient, toBalance+amount); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	return nil
}

// BalanceOf returns an account's share balance, 0 for an account never
// issued shares.
func (l *ShareLedger) BalanceOf(account string) (uint64, error) {
	return l.st.Balance(account)
}

// TotalShares returns the global total of issued shares.
func (l *ShareLedger) TotalShares() (uint64, error) {
	return l.st.TotalShares()
}
