package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// AuditLog records user-visible actions. Writes are fire-and-forget:
// a failed audit insert never fails the request that caused it.
type AuditLog struct {
	db     *pgxpool.Pool
	logger *zap.SugaredLogger
}

func NewAuditLog(db *pgxpool.Pool, logger *zap.SugaredLogger) *AuditLog {
	return &AuditLog{db: db, logger: logger}
}

func (a *AuditLog) Record(ctx context.Context, actorID *int64, action, details string) {
	_, err := a.db.Exec(ctx,
		"INSERT INTO audit_logs(actor_id, action, details) VALUES ($1,$2,$3)",
		actorID, action, details,
	)
	if err != nil {
		a.logger.Warnw("audit log insert failed", "action", action, "error", err)
	}
}
