package repository

import (
	"context"
	"fmt"

	"github.com/srsports/backend/internal/model"
	"github.com/srsports/backend/pkg/auth"
	"github.com/srsports/backend/pkg/supabase"
)

type restBreakingSessionRepository struct {
	client RowClient
}

// NewRestBreakingSessionRepository returns a BreakingSessionRepository backed by
// the Supabase REST API. The caller's access token is forwarded so that the
// table's row-level security policies apply.
func NewRestBreakingSessionRepository(client RowClient) BreakingSessionRepository {
	return &restBreakingSessionRepository{client: client}
}

type sessionFields struct {
	PackageCost   float64 `json:"package_cost"`
	TimeSpent     float64 `json:"time_spent"`
	SalesPrice    float64 `json:"sales_price"`
	Buyer         string  `json:"buyer"`
	PaymentMethod string  `json:"payment_method"`
}

type sessionInsert struct {
	UserID string `json:"user_id"`
	sessionFields
}

func fieldsOf(s *model.BreakingSession) sessionFields {
	return sessionFields{
		PackageCost:   s.PackageCost,
		TimeSpent:     s.TimeSpent,
		SalesPrice:    s.SalesPrice,
		Buyer:         s.Buyer,
		PaymentMethod: s.PaymentMethod,
	}
}

func (r *restBreakingSessionRepository) Create(ctx context.Context, s *model.BreakingSession) error {
	var stored model.BreakingSession
	row := sessionInsert{UserID: s.UserID, sessionFields: fieldsOf(s)}
	if err := r.client.Insert(ctx, auth.AccessTokenFromContext(ctx), sessionTable, row, &stored); err != nil {
		return fmt.Errorf("failed to create breaking session: %w", err)
	}
	*s = stored
	return nil
}

func (r *restBreakingSessionRepository) ListByUserID(ctx context.Context, userID string) ([]*model.BreakingSession, error) {
	q := supabase.NewQuery().Select("*").Eq("user_id", userID).Order("created_at", false)
	var out []*model.BreakingSession
	if err := r.client.Select(ctx, auth.AccessTokenFromContext(ctx), sessionTable, q, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch breaking sessions: %w", err)
	}
	return out, nil
}

func (r *restBreakingSessionRepository) GetByID(ctx context.Context, id string) (*model.BreakingSession, error) {
	q := supabase.NewQuery().Select("*").Eq("id", id)
	var s model.BreakingSession
	if err := r.client.SelectSingle(ctx, auth.AccessTokenFromContext(ctx), sessionTable, q, &s); err != nil {
		if supabase.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch breaking session: %w", err)
	}
	return &s, nil
}

func (r *restBreakingSessionRepository) Update(ctx context.Context, s *model.BreakingSession) error {
	q := supabase.NewQuery().Eq("id", s.ID)
	var updated model.BreakingSession
	if err := r.client.Update(ctx, auth.AccessTokenFromContext(ctx), sessionTable, q, fieldsOf(s), &updated); err != nil {
		if supabase.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update breaking session: %w", err)
	}
	*s = updated
	return nil
}

func (r *restBreakingSessionRepository) Delete(ctx context.Context, id string) error {
	q := supabase.NewQuery().Eq("id", id)
	if err := r.client.Delete(ctx, auth.AccessTokenFromContext(ctx), sessionTable, q); err != nil {
		return fmt.Errorf("failed to delete breaking session: %w", err)
	}
	return nil
}
