package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type DepositRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	TransactionPin string          `json:"transactionPin"`
}

func (r DepositRequest) Validate() error {
	return validateAmountAndPin(r.Amount, r.TransactionPin)
}

type WithdrawRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	TransactionPin string          `json:"transactionPin"`
}

func (r WithdrawRequest) Validate() error {
	return validateAmountAndPin(r.Amount, r.TransactionPin)
}

type TransferRequest struct {
	ToEmail        string          `json:"toEmail"`
	Amount         decimal.Decimal `json:"amount"`
	TransactionPin string          `json:"transactionPin"`
}

func (r TransferRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.ToEmail) == "" {
		errs = append(errs, "toEmail is required")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}
	if strings.TrimSpace(r.TransactionPin) == "" {
		errs = append(errs, "transactionPin is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type RequestMoneyRequest struct {
	FromEmail string          `json:"fromEmail"`
	Amount    decimal.Decimal `json:"amount"`
}

func (r RequestMoneyRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.FromEmail) == "" {
		errs = append(errs, "fromEmail is required")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type LedgerEntryView struct {
	ID            string          `json:"id"`
	FromAccountID *string         `json:"fromAccountId,omitempty"`
	ToAccountID   *string         `json:"toAccountId,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          string          `json:"kind"`
	Status        string          `json:"status"`
	Timestamp     string          `json:"timestamp"`
}

type MutationResponse struct {
	Transaction LedgerEntryView `json:"transaction"`
	NewBalance  decimal.Decimal `json:"newBalance"`
}

type RequestMoneyResponse struct {
	Transaction LedgerEntryView `json:"transaction"`
}

// HistoryQuery carries the already-parsed filter parameters; parsing raw query
// values stays in the controller.
type HistoryQuery struct {
	Kind      string
	StartDate string
	EndDate   string
	Search    string
}

type HistoryResponse struct {
	Results      int               `json:"results"`
	Transactions []LedgerEntryView `json:"transactions"`
}

type MonthlyTotalView struct {
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Direction string          `json:"direction"`
	Total     decimal.Decimal `json:"total"`
}

type AnalyticsResponse struct {
	Stats []MonthlyTotalView `json:"stats"`
}

func validateAmountAndPin(amount decimal.Decimal, pin string) error {
	var errs []string

	if amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}
	if strings.TrimSpace(pin) == "" {
		errs = append(errs, "transactionPin is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
