package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nimblebank/core-banking/internal/adapter/http/models"
	"github.com/nimblebank/core-banking/internal/adapter/repository/repo_interfaces"
	"github.com/nimblebank/core-banking/internal/commons"
	"github.com/nimblebank/core-banking/internal/domain"
	"github.com/nimblebank/core-banking/internal/logger"
	"github.com/nimblebank/core-banking/internal/usecase/service_interfaces"
)

const analyticsMonths = 6

var _ service_interfaces.TransactionService = (*TransactionService)(nil)

// TransactionService owns every balance mutation. All writes go through the
// stores' conditional-update primitives; when the ledger store offers a
// multi-record transaction (AtomicTransferProcessor) transfers use it, and
// otherwise they fall back to the compensation protocol.
type TransactionService struct {
	accountRepo repo_interfaces.AccountRepository
	ledgerRepo  repo_interfaces.LedgerRepository
	userRepo    repo_interfaces.UserRepository
	verifier    service_interfaces.CredentialVerifier
}

func NewTransactionService(
	accountRepo repo_interfaces.AccountRepository,
	ledgerRepo repo_interfaces.LedgerRepository,
	userRepo repo_interfaces.UserRepository,
	verifier service_interfaces.CredentialVerifier,
) *TransactionService {
	return &TransactionService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		userRepo:    userRepo,
		verifier:    verifier,
	}
}

func (s *TransactionService) Deposit(ctx context.Context, userID string, req models.DepositRequest) (commons.Response[models.MutationResponse], error) {
	logger.Info("transaction service deposit request", logger.Fields{
		"userId":  userID,
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponseFrom[models.MutationResponse]("validation failed", err), mutationValidationError(req.Amount, req.TransactionPin)
	}
	amount := req.Amount.Round(2)

	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.MutationResponse]("Account not found"), domain.ErrAccountNotFound
		}
		return commons.ErrorResponse[models.MutationResponse]("failed to deposit", "Unable to deposit right now"), err
	}
	if account.Status != domain.AccountStatusActive {
		return commons.ErrorResponse[models.MutationResponse]("account is not active"), domain.ErrAccountNotActive
	}

	if err := s.verifier.Verify(ctx, userID, req.TransactionPin); err != nil {
		return commons.ErrorResponse[models.MutationResponse]("invalid transaction pin"), domain.ErrCredentialRejected
	}

	// Past this point the operation runs to completion even if the caller
	// goes away; a half-applied deposit must never be left behind.
	ctx = context.WithoutCancel(ctx)

	if err := s.accountRepo.Credit(ctx, account.ID, amount); err != nil {
		return s.mutationFailure(err, "failed to deposit")
	}

	entry, err := s.ledgerRepo.Create(ctx, domain.LedgerEntry{
		ToAccountID: &account.ID,
		Amount:      amount,
		Kind:        domain.LedgerKindDeposit,
		Status:      domain.LedgerStatusCompleted,
	})
	if err != nil {
		// The balance moved but the ledger append failed. Undo the credit so
		// account state and ledger stay reconciled.
		if compErr := s.accountRepo.DebitIfSufficient(ctx, account.ID, amount); compErr != nil {
			logger.Critical("deposit ledger append failed and credit could not be reversed", compErr, logger.Fields{
				"accountId": account.ID,
				"amount":    amount,
			})
		}
		return commons.ErrorResponse[models.MutationResponse]("failed to deposit", "Unable to record deposit"), err
	}

	response, err := s.mutationResponse(ctx, account.ID, entry)
	if err != nil {
		return commons.ErrorResponse[models.MutationResponse]("failed to deposit", "Unable to fetch account right now"), err
	}

	logger.Info("transaction service deposit success", logger.Fields{
		"accountId": account.ID,
		"entryId":   entry.ID,
	})

	return commons.SuccessResponse("deposit successful", response), nil
}

func (s *TransactionService) Withdraw(ctx context.Context, userID string, req models.WithdrawRequest) (commons.Response[models.MutationResponse], error) {
	logger.Info("transaction service withdraw request", logger.Fields{
		"userId":  userID,
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponseFrom[models.MutationResponse]("validation failed", err), mutationValidationError(req.Amount, req.TransactionPin)
	}
	amount := req.Amount.Round(2)

	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.MutationResponse]("Account not found"), domain.ErrAccountNotFound
		}
		return commons.ErrorResponse[models.MutationResponse]("failed to withdraw", "Unable to withdraw right now"), err
	}
	if account.Status != domain.AccountStatusActive {
		return commons.ErrorResponse[models.MutationResponse]("account is not active"), domain.ErrAccountNotActive
	}

	if err := s.verifier.Verify(ctx, userID, req.TransactionPin); err != nil {
		return commons.ErrorResponse[models.MutationResponse]("invalid transaction pin"), domain.ErrCredentialRejected
	}

	ctx = context.WithoutCancel(ctx)

	// Conditional debit: sufficiency is checked by the store at write time,
	// not by comparing against the balance read above.
	if err := s.accountRepo.DebitIfSufficient(ctx, account.ID, amount); err != nil {
		return s.mutationFailure(err, "failed to withdraw")
	}

	entry, err := s.ledgerRepo.Create(ctx, domain.LedgerEntry{
		FromAccountID: &account.ID,
		Amount:        amount,
		Kind:          domain.LedgerKindWithdrawal,
		Status:        domain.LedgerStatusCompleted,
	})
	if err != nil {
		if compErr := s.accountRepo.Credit(ctx, account.ID, amount); compErr != nil {
			logger.Critical("withdrawal ledger append failed and debit could not be reversed", compErr, logger.Fields{
				"accountId": account.ID,
				"amount":    amount,
			})
		}
		return commons.ErrorResponse[models.MutationResponse]("failed to withdraw", "Unable to record withdrawal"), err
	}

	response, err := s.mutationResponse(ctx, account.ID, entry)
	if err != nil {
		return commons.ErrorResponse[models.MutationResponse]("failed to withdraw", "Unable to fetch account right now"), err
	}

	logger.Info("transaction service withdraw success", logger.Fields{
		"accountId": account.ID,
		"entryId":   entry.ID,
	})

	return commons.SuccessResponse("withdrawal successful", response), nil
}

func (s *TransactionService) Transfer(ctx context.Context, userID string, req models.TransferRequest) (commons.Response[models.MutationResponse], error) {
	logger.Info("transaction service transfer request", logger.Fields{
		"userId":  userID,
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponseFrom[models.MutationResponse]("validation failed", err), mutationValidationError(req.Amount, req.TransactionPin)
	}
	amount := req.Amount.Round(2)

	sender, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.MutationResponse]("Account not found"), domain.ErrAccountNotFound
		}
		return commons.ErrorResponse[models.MutationResponse]("failed to transfer", "Unable to transfer right now"), err
	}
	if sender.Status != domain.AccountStatusActive {
		return commons.ErrorResponse[models.MutationResponse]("account is not active"), domain.ErrAccountNotActive
	}

	recipient, err := s.resolveAccountByEmail(ctx, req.ToEmail)
	if err != nil {
		if errors.Is(err, domain.ErrRecipientNotFound) {
			return commons.ErrorResponse[models.MutationResponse]("Recipient not found"), domain.ErrRecipientNotFound
		}
		return commons.ErrorResponse[models.MutationResponse]("failed to transfer", "Unable to transfer right now"), err
	}

	// Self transfers are compared on account identity: a recipient reached
	// via a different email that maps to the same account is still rejected.
	if sender.ID == recipient.ID {
		return commons.ErrorResponse[models.MutationResponse]("cannot transfer to self"), domain.ErrSelfTransferRejected
	}
	if recipient.Status != domain.AccountStatusActive {
		return commons.ErrorResponse[models.MutationResponse]("recipient account is not active"), domain.ErrAccountNotActive
	}

	if err := s.verifier.Verify(ctx, userID, req.TransactionPin); err != nil {
		return commons.ErrorResponse[models.MutationResponse]("invalid transaction pin"), domain.ErrCredentialRejected
	}

	// Once the debit lands the transfer is no longer cancellable: the
	// remaining writes (credit, ledger append, any compensation) run on a
	// context detached from the caller's.
	ctx = context.WithoutCancel(ctx)

	var entry domain.LedgerEntry
	if atomic, ok := s.ledgerRepo.(repo_interfaces.AtomicTransferProcessor); ok {
		entry, err = atomic.ProcessTransfer(ctx, sender.ID, recipient.ID, amount)
		if err != nil {
			return s.mutationFailure(err, "failed to transfer")
		}
	} else {
		entry, err = s.transferWithCompensation(ctx, sender.ID, recipient.ID, amount)
		if err != nil {
			return s.mutationFailure(err, "failed to transfer")
		}
	}

	response, err := s.mutationResponse(ctx, sender.ID, entry)
	if err != nil {
		return commons.ErrorResponse[models.MutationResponse]("failed to transfer", "Unable to fetch account right now"), err
	}

	logger.Info("transaction service transfer success", logger.Fields{
		"fromAccountId": sender.ID,
		"toAccountId":   recipient.ID,
		"entryId":       entry.ID,
	})

	return commons.SuccessResponse("transfer successful", response), nil
}

// transferWithCompensation is the fallback for stores without multi-record
// transactions: conditional debit, credit, completed append. If a later step
// fails, corrective writes restore the sender so the net visible effect is as
// if the transfer never happened.
func (s *TransactionService) transferWithCompensation(ctx context.Context, senderID, recipientID string, amount decimal.Decimal) (domain.LedgerEntry, error) {
	if err := s.accountRepo.DebitIfSufficient(ctx, senderID, amount); err != nil {
		// Nothing applied; the conditional write simply did not match.
		return domain.LedgerEntry{}, err
	}

	if err := s.accountRepo.Credit(ctx, recipientID, amount); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) || errors.Is(err, domain.ErrAccountNotActive) {
			err = domain.ErrRecipientNotFound
		}
		return domain.LedgerEntry{}, s.compensateDebit(ctx, senderID, recipientID, amount, err)
	}

	entry, err := s.ledgerRepo.Create(ctx, domain.LedgerEntry{
		FromAccountID: &senderID,
		ToAccountID:   &recipientID,
		Amount:        amount,
		Kind:          domain.LedgerKindTransfer,
		Status:        domain.LedgerStatusCompleted,
	})
	if err != nil {
		// Both balances moved but no ledger record exists. Reverse both legs.
		reverseErr := s.accountRepo.DebitIfSufficient(ctx, recipientID, amount)
		if reverseErr == nil {
			reverseErr = s.accountRepo.Credit(ctx, senderID, amount)
		}
		if reverseErr != nil {
			logger.Critical("transfer ledger append failed and balances could not be reversed", reverseErr, logger.Fields{
				"fromAccountId": senderID,
				"toAccountId":   recipientID,
				"amount":        amount,
			})
			return domain.LedgerEntry{}, &domain.TransferFailure{Reason: err, ManualInterventionRequired: true}
		}
		return domain.LedgerEntry{}, &domain.TransferFailure{Reason: err}
	}

	return entry, nil
}

// compensateDebit re-credits the sender after a failed credit leg and records
// the failed attempt in the ledger.
func (s *TransactionService) compensateDebit(ctx context.Context, senderID, recipientID string, amount decimal.Decimal, cause error) error {
	if compErr := s.accountRepo.Credit(ctx, senderID, amount); compErr != nil {
		logger.Critical("transfer compensation failed, sender debit still applied", compErr, logger.Fields{
			"fromAccountId": senderID,
			"toAccountId":   recipientID,
			"amount":        amount,
			"cause":         cause.Error(),
		})
		return &domain.TransferFailure{Reason: cause, ManualInterventionRequired: true}
	}

	if _, logErr := s.ledgerRepo.Create(ctx, domain.LedgerEntry{
		FromAccountID: &senderID,
		ToAccountID:   &recipientID,
		Amount:        amount,
		Kind:          domain.LedgerKindTransfer,
		Status:        domain.LedgerStatusFailed,
	}); logErr != nil {
		logger.Error("transfer failure entry could not be recorded", logErr, logger.Fields{
			"fromAccountId": senderID,
			"toAccountId":   recipientID,
		})
	}

	logger.Error("transfer credit leg failed, sender compensated", cause, logger.Fields{
		"fromAccountId": senderID,
		"toAccountId":   recipientID,
		"amount":        amount,
	})

	return &domain.TransferFailure{Reason: cause}
}

func (s *TransactionService) RequestMoney(ctx context.Context, userID string, req models.RequestMoneyRequest) (commons.Response[models.RequestMoneyResponse], error) {
	logger.Info("transaction service request money", logger.Fields{
		"userId":  userID,
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return commons.ErrorResponseFrom[models.RequestMoneyResponse]("validation failed", err), domain.ErrInvalidAmount
		}
		return commons.ErrorResponseFrom[models.RequestMoneyResponse]("validation failed", err), domain.ErrValidation
	}
	amount := req.Amount.Round(2)

	requester, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.RequestMoneyResponse]("Account not found"), domain.ErrAccountNotFound
		}
		return commons.ErrorResponse[models.RequestMoneyResponse]("failed to request money", "Unable to request money right now"), err
	}

	payer, err := s.resolveAccountByEmail(ctx, req.FromEmail)
	if err != nil {
		if errors.Is(err, domain.ErrRecipientNotFound) {
			return commons.ErrorResponse[models.RequestMoneyResponse]("Payer not found"), domain.ErrRecipientNotFound
		}
		return commons.ErrorResponse[models.RequestMoneyResponse]("failed to request money", "Unable to request money right now"), err
	}

	if requester.ID == payer.ID {
		return commons.ErrorResponse[models.RequestMoneyResponse]("cannot request money from self"), domain.ErrSelfRequestRejected
	}

	// A request only records intent; no balance changes and no pin check.
	// Nothing in the system settles it later, so the entry stays pending.
	entry, err := s.ledgerRepo.Create(ctx, domain.LedgerEntry{
		FromAccountID: &payer.ID,
		ToAccountID:   &requester.ID,
		Amount:        amount,
		Kind:          domain.LedgerKindRequest,
		Status:        domain.LedgerStatusPending,
	})
	if err != nil {
		return commons.ErrorResponse[models.RequestMoneyResponse]("failed to request money", "Unable to record request"), err
	}

	logger.Info("transaction service request money success", logger.Fields{
		"requesterAccountId": requester.ID,
		"payerAccountId":     payer.ID,
		"entryId":            entry.ID,
	})

	return commons.SuccessResponse("request sent", models.RequestMoneyResponse{
		Transaction: toLedgerEntryView(entry),
	}), nil
}

func (s *TransactionService) GetHistory(ctx context.Context, userID string, query models.HistoryQuery) (commons.Response[models.HistoryResponse], error) {
	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.HistoryResponse]("Account not found"), domain.ErrAccountNotFound
		}
		return commons.ErrorResponse[models.HistoryResponse]("failed to fetch history", "Unable to fetch history right now"), err
	}

	filter, err := buildLedgerFilter(query)
	if err != nil {
		return commons.ErrorResponseFrom[models.HistoryResponse]("validation failed", err), err
	}

	entries, err := s.ledgerRepo.ListByAccount(ctx, account.ID, filter)
	if err != nil {
		return commons.ErrorResponse[models.HistoryResponse]("failed to fetch history", "Unable to fetch history right now"), err
	}

	views := make([]models.LedgerEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, toLedgerEntryView(entry))
	}

	return commons.SuccessResponse("history fetched successfully", models.HistoryResponse{
		Results:      len(views),
		Transactions: views,
	}), nil
}

func (s *TransactionService) GetAnalytics(ctx context.Context, userID string) (commons.Response[models.AnalyticsResponse], error) {
	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AnalyticsResponse]("Account not found"), domain.ErrAccountNotFound
		}
		return commons.ErrorResponse[models.AnalyticsResponse]("failed to fetch analytics", "Unable to fetch analytics right now"), err
	}

	totals, err := s.ledgerRepo.MonthlySummary(ctx, account.ID, analyticsMonths)
	if err != nil {
		return commons.ErrorResponse[models.AnalyticsResponse]("failed to fetch analytics", "Unable to fetch analytics right now"), err
	}

	stats := make([]models.MonthlyTotalView, 0, len(totals))
	for _, total := range totals {
		stats = append(stats, models.MonthlyTotalView{
			Year:      total.Year,
			Month:     int(total.Month),
			Direction: total.Direction,
			Total:     total.Total,
		})
	}

	return commons.SuccessResponse("analytics fetched successfully", models.AnalyticsResponse{Stats: stats}), nil
}

func (s *TransactionService) resolveAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.Account{}, domain.ErrRecipientNotFound
		}
		return domain.Account{}, err
	}

	account, err := s.accountRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.Account{}, domain.ErrRecipientNotFound
		}
		return domain.Account{}, err
	}

	return account, nil
}

func (s *TransactionService) mutationResponse(ctx context.Context, accountID string, entry domain.LedgerEntry) (models.MutationResponse, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return models.MutationResponse{}, err
	}

	return models.MutationResponse{
		Transaction: toLedgerEntryView(entry),
		NewBalance:  account.Balance,
	}, nil
}

func (s *TransactionService) mutationFailure(err error, message string) (commons.Response[models.MutationResponse], error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return commons.ErrorResponse[models.MutationResponse]("Insufficient balance"), err
	case errors.Is(err, domain.ErrAccountNotActive):
		return commons.ErrorResponse[models.MutationResponse]("account is not active"), err
	case errors.Is(err, domain.ErrAccountNotFound):
		return commons.ErrorResponse[models.MutationResponse]("Account not found"), err
	case errors.Is(err, domain.ErrRecipientNotFound):
		return commons.ErrorResponse[models.MutationResponse]("Recipient not found"), err
	case errors.Is(err, domain.ErrTransferFailed):
		return commons.ErrorResponse[models.MutationResponse]("transfer failed", "Transfer could not be completed"), err
	default:
		return commons.ErrorResponse[models.MutationResponse](message, "Unable to process right now"), err
	}
}

// mutationValidationError maps a rejected mutation request onto the error
// taxonomy: a non-positive amount is an amount problem, a blank pin is a
// credential problem, anything else is a plain validation failure.
func mutationValidationError(amount decimal.Decimal, pin string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	if strings.TrimSpace(pin) == "" {
		return domain.ErrCredentialRejected
	}
	return domain.ErrValidation
}

func buildLedgerFilter(query models.HistoryQuery) (domain.LedgerFilter, error) {
	var filter domain.LedgerFilter

	kind := strings.TrimSpace(query.Kind)
	if kind != "" && kind != "all" {
		candidate := domain.LedgerKind(kind)
		if !candidate.IsValid() {
			return domain.LedgerFilter{}, errors.New("type must be one of deposit, withdrawal, transfer, request")
		}
		filter.Kind = candidate
	}

	if raw := strings.TrimSpace(query.StartDate); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return domain.LedgerFilter{}, errors.New("startDate must be in YYYY-MM-DD format")
		}
		filter.StartDate = &parsed
	}
	if raw := strings.TrimSpace(query.EndDate); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return domain.LedgerFilter{}, errors.New("endDate must be in YYYY-MM-DD format")
		}
		end := parsed.Add(24*time.Hour - time.Nanosecond)
		filter.EndDate = &end
	}

	// Search matches on exact amount when it parses as a number; anything
	// else is ignored, matching the history endpoint's historical behavior.
	if raw := strings.TrimSpace(query.Search); raw != "" {
		if amount, err := decimal.NewFromString(raw); err == nil {
			filter.Amount = &amount
		}
	}

	return filter, nil
}

func toLedgerEntryView(entry domain.LedgerEntry) models.LedgerEntryView {
	return models.LedgerEntryView{
		ID:            entry.ID,
		FromAccountID: entry.FromAccountID,
		ToAccountID:   entry.ToAccountID,
		Amount:        entry.Amount,
		Kind:          string(entry.Kind),
		Status:        string(entry.Status),
		Timestamp:     entry.CreatedAt.Format(time.RFC3339),
	}
}
