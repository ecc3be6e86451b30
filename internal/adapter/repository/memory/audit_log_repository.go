package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nimblebank/core-banking/internal/domain"
)

type AuditLogRepository struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func NewAuditLogRepository() *AuditLogRepository {
	return &AuditLogRepository{}
}

func (r *AuditLogRepository) Create(_ context.Context, entry domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, entry)
	return nil
}

// Entries returns a snapshot of everything recorded so far.
func (r *AuditLogRepository) Entries() []domain.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.AuditLog, len(r.entries))
	copy(out, r.entries)
	return out
}
