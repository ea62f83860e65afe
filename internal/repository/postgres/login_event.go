package postgres

import (
	"context"
	"fmt"

	"github.com/dtroode/taskboard-server/internal/model"
)

var _ model.LoginEventStore = (*LoginEventRepository)(nil)

type LoginEventRepository struct {
	db Querier
}

func NewLoginEventRepository(db Querier) *LoginEventRepository {
	return &LoginEventRepository{db: db}
}

func (r *LoginEventRepository) Create(ctx context.Context, event model.LoginEvent) error {
	const query = `
        INSERT INTO login_events (email, status, created_at)
        VALUES ($1, $2, $3)
    `

	if _, err := r.db.ExecContext(ctx, query, event.Email, event.Status, event.CreatedAt); err != nil {
		return fmt.Errorf("failed to create login event: %w", err)
	}
	return nil
}
