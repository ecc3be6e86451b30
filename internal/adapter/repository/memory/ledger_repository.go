package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nimblebank/core-banking/internal/domain"
)

// LedgerRepository is an in-memory transaction log. It deliberately does not
// implement AtomicTransferProcessor: a plain keyed store has no multi-record
// transactions, which routes transfers through the compensation protocol.
type LedgerRepository struct {
	mu      sync.Mutex
	entries []domain.LedgerEntry
}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{}
}

func (r *LedgerRepository) Create(_ context.Context, entry domain.LedgerEntry) (domain.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, entry)

	return entry, nil
}

func (r *LedgerRepository) UpdateStatus(_ context.Context, entryID string, status domain.LedgerStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		if r.entries[i].ID == entryID {
			if r.entries[i].Status != domain.LedgerStatusPending {
				return domain.ErrRecordNotFound
			}
			r.entries[i].Status = status
			return nil
		}
	}

	return domain.ErrRecordNotFound
}

func (r *LedgerRepository) ListByAccount(_ context.Context, accountID string, filter domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []domain.LedgerEntry
	for _, entry := range r.entries {
		if !references(entry, accountID) {
			continue
		}
		if filter.Kind != "" && entry.Kind != filter.Kind {
			continue
		}
		if filter.StartDate != nil && entry.CreatedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && entry.CreatedAt.After(*filter.EndDate) {
			continue
		}
		if filter.Amount != nil && !entry.Amount.Equal(*filter.Amount) {
			continue
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	return entries, nil
}

func (r *LedgerRepository) MonthlySummary(_ context.Context, accountID string, months int) ([]domain.MonthlyTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Now().AddDate(0, -months, 0)
	type bucket struct {
		year      int
		month     time.Month
		direction string
	}

	totals := make(map[bucket]domain.MonthlyTotal)
	var order []bucket

	for _, entry := range r.entries {
		if !references(entry, accountID) || entry.Status != domain.LedgerStatusCompleted || entry.CreatedAt.Before(since) {
			continue
		}

		direction := "debit"
		if entry.ToAccountID != nil && *entry.ToAccountID == accountID {
			direction = "credit"
		}

		key := bucket{year: entry.CreatedAt.Year(), month: entry.CreatedAt.Month(), direction: direction}
		total, seen := totals[key]
		if !seen {
			total = domain.MonthlyTotal{Year: key.year, Month: key.month, Direction: direction}
			order = append(order, key)
		}
		total.Total = total.Total.Add(entry.Amount)
		totals[key] = total
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].year != order[j].year {
			return order[i].year < order[j].year
		}
		return order[i].month < order[j].month
	})

	result := make([]domain.MonthlyTotal, 0, len(order))
	for _, key := range order {
		result = append(result, totals[key])
	}

	return result, nil
}

func references(entry domain.LedgerEntry, accountID string) bool {
	if entry.FromAccountID != nil && *entry.FromAccountID == accountID {
		return true
	}
	if entry.ToAccountID != nil && *entry.ToAccountID == accountID {
		return true
	}
	return false
}
