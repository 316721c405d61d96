package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/srsports/backend/internal/model"
)

const sessionColumns = `id, user_id, package_cost, time_spent, sales_price, buyer, payment_method, created_at`

type pgBreakingSessionRepository struct {
	pool *pgxpool.Pool
}

// NewPgBreakingSessionRepository returns a PostgreSQL-backed BreakingSessionRepository.
func NewPgBreakingSessionRepository(pool *pgxpool.Pool) BreakingSessionRepository {
	return &pgBreakingSessionRepository{pool: pool}
}

func scanSession(row pgx.Row) (*model.BreakingSession, error) {
	var s model.BreakingSession
	err := row.Scan(&s.ID, &s.UserID, &s.PackageCost, &s.TimeSpent, &s.SalesPrice,
		&s.Buyer, &s.PaymentMethod, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *pgBreakingSessionRepository) Create(ctx context.Context, s *model.BreakingSession) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO breaking_sessions (user_id, package_cost, time_spent, sales_price, buyer, payment_method)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		s.UserID, s.PackageCost, s.TimeSpent, s.SalesPrice, s.Buyer, s.PaymentMethod,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create breaking session: %w", err)
	}
	return nil
}

func (r *pgBreakingSessionRepository) ListByUserID(ctx context.Context, userID string) ([]*model.BreakingSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM breaking_sessions
		 WHERE user_id = $1
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch breaking sessions: %w", err)
	}
	defer rows.Close()

	var out []*model.BreakingSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch breaking sessions: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *pgBreakingSessionRepository) GetByID(ctx context.Context, id string) (*model.BreakingSession, error) {
	s, err := scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM breaking_sessions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch breaking session: %w", err)
	}
	return s, nil
}

func (r *pgBreakingSessionRepository) Update(ctx context.Context, s *model.BreakingSession) error {
	updated, err := scanSession(r.pool.QueryRow(ctx,
		`UPDATE breaking_sessions
		 SET package_cost = $2, time_spent = $3, sales_price = $4, buyer = $5, payment_method = $6
		 WHERE id = $1
		 RETURNING `+sessionColumns,
		s.ID, s.PackageCost, s.TimeSpent, s.SalesPrice, s.Buyer, s.PaymentMethod))
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update breaking session: %w", err)
	}
	*s = *updated
	return nil
}

func (r *pgBreakingSessionRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM breaking_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete breaking session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
