package ledgerservice

import (
	"errors"
	"fmt"
)

// ErrLedgerViolation is wrapped by every rejected transfer. These indicate a
// programming or data error, never normal operation.
var ErrLedgerViolation = errors.New("ledger violation")

var (
	ErrNegativeAmount    = fmt.Errorf("%w: negative amount", ErrLedgerViolation)
	ErrInsufficientFunds = fmt.Errorf("%w: insufficient funds", ErrLedgerViolation)
	ErrAccountNotFound   = errors.New("ledger account not found")
)
