package loan

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("loan not found")
	ErrInvalidParameters = errors.New("invalid loan parameters")
	ErrInvalidStatus     = errors.New("loan is not in the required status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidAmount     = errors.New("amount must be positive")

	ErrNotBorrower        = errors.New("caller is not the borrower")
	ErrNotOwner           = errors.New("caller is not the owner")
	ErrBorrowerCannotFund = errors.New("borrower cannot fund own loan")

	ErrFullyFunded          = errors.New("loan fully funded")
	ErrOverpayment          = errors.New("overpayment rejected")
	ErrDefaultNotYetAllowed = errors.New("default not yet allowed")

	// Transfer failures; the operation that raised them was rolled back.
	ErrRefundFailed       = errors.New("refund failed")
	ErrDisbursementFailed = errors.New("disbursement failed")
	ErrFeeTransferFailed  = errors.New("fee transfer failed")
	ErrWithdrawalFailed   = errors.New("withdrawal transfer failed")
)

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameters, reason)
}
