package repo_interfaces

import (
	"context"

	"github.com/nimblebank/core-banking/internal/domain"
)

type AuditLogRepository interface {
	Create(ctx context.Context, entry domain.AuditLog) error
}
