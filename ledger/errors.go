package ledger

import "errors"

var (
	// ErrNotAuthorized indicates the caller lacks the privileged
	// capability required by the operation.
	ErrNotAuthorized = errors.New("ledger: caller not authorized")

	// ErrInsufficientBalance indicates a sender lacks the shares to
	// transfer, or the reserve cannot cover a claim.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")

	// ErrInvalidAmount indicates a zero amount, an amount that would
	// overflow a counter, or a computed dividend of zero.
	ErrInvalidAmount = errors.New("ledger: invalid amount")

	// ErrAlreadyClaimed indicates the account already claimed the round.
	ErrAlreadyClaimed = errors.New("ledger: dividend already claimed")

	// ErrNoDividends indicates the round has no pool to distribute.
	ErrNoDividends = errors.New("ledger: no dividends for round")

	// ErrNotShareholder indicates the claiming account holds no shares.
	ErrNotShareholder = errors.New("ledger: account holds no shares")

	// ErrRoundNotActive indicates the round does not exist or is closed.
	ErrRoundNotActive = errors.New("ledger: round is not active")

	// ErrInvalidShares indicates total shares is zero where a nonzero
	// denominator is required.
	ErrInvalidShares = errors.New("ledger: invalid total shares")

	// ErrBatchTooLarge indicates a push-path account list exceeds the
	// batch cap. Oversized batches are rejected, never truncated.
	ErrBatchTooLarge = errors.New("ledger: batch exceeds maximum accounts")

	// ErrInvalidAccount indicates an empty account identifier.
	ErrInvalidAccount = errors.New("ledger: invalid account identifier")
)
