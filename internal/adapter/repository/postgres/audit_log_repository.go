package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nimblebank/core-banking/internal/domain"
)

type AuditLogRepository struct {
	db *sql.DB
}

func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(ctx context.Context, entry domain.AuditLog) error {
	const query = `
INSERT INTO audit_logs (
	user_id,
	action,
	details,
	ip_address
) VALUES ($1, $2, $3, $4)`

	if _, err := r.db.ExecContext(ctx, query, entry.UserID, entry.Action, entry.Details, entry.IPAddress); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}

	return nil
}
