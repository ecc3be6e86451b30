package domain

import (
	"errors"
	"fmt"
)

var ErrRecordNotFound = errors.New("record not found")
var ErrValidation = errors.New("request failed validation")
var ErrInvalidAmount = errors.New("amount must be positive")
var ErrAccountNumberTaken = errors.New("account number already taken")
var ErrAccountNotFound = errors.New("account not found")
var ErrAccountNotActive = errors.New("account is not active")
var ErrInsufficientFunds = errors.New("insufficient balance")
var ErrRecipientNotFound = errors.New("recipient account not found")
var ErrSelfTransferRejected = errors.New("cannot transfer to self")
var ErrSelfRequestRejected = errors.New("cannot request money from self")
var ErrCredentialRejected = errors.New("invalid transaction pin")
var ErrTransferFailed = errors.New("transfer failed")
var ErrStoreUnavailable = errors.New("store unavailable")
var ErrEmailTaken = errors.New("email already in use")

// TransferFailure reports a transfer whose credit leg failed after the debit
// had already applied. ManualInterventionRequired is set when the compensating
// re-credit of the sender also failed, i.e. the debit is still visible and an
// operator has to reconcile the account by hand.
type TransferFailure struct {
	Reason                     error
	ManualInterventionRequired bool
}

func (e *TransferFailure) Error() string {
	if e.ManualInterventionRequired {
		return fmt.Sprintf("transfer failed, compensation failed, manual intervention required: %v", e.Reason)
	}
	return fmt.Sprintf("transfer failed and was rolled back: %v", e.Reason)
}

func (e *TransferFailure) Unwrap() error {
	return ErrTransferFailed
}
