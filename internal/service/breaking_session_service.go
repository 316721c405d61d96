package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/srsports/backend/internal/logging"
	"github.com/srsports/backend/internal/model"
	"github.com/srsports/backend/internal/repository"
)

// BreakingSessionService は breaking session の CRUD と所有者チェックを担う
type BreakingSessionService interface {
	Create(ctx context.Context, userID string, in SessionInput) (*model.BreakingSession, error)
	List(ctx context.Context, userID string) ([]*model.BreakingSession, error)
	Get(ctx context.Context, id, userID string) (*model.BreakingSession, error)
	Update(ctx context.Context, id, userID string, patch model.BreakingSessionPatch) (*model.BreakingSession, error)
	Delete(ctx context.Context, id, userID string) error
}

// SessionInput is the session-logging form.
type SessionInput struct {
	PackageCost   float64 `json:"package_cost" validate:"gte=0,lte=100000"`
	TimeSpent     float64 `json:"time_spent" validate:"gte=0,lte=24"`
	SalesPrice    float64 `json:"sales_price" validate:"gte=0,lte=1000000"`
	Buyer         string  `json:"buyer" validate:"min=2,max=100"`
	PaymentMethod string  `json:"payment_method" validate:"min=1,max=50"`
}

func sessionInputOf(s *model.BreakingSession) SessionInput {
	return SessionInput{
		PackageCost:   s.PackageCost,
		TimeSpent:     s.TimeSpent,
		SalesPrice:    s.SalesPrice,
		Buyer:         s.Buyer,
		PaymentMethod: s.PaymentMethod,
	}
}

func (in *SessionInput) normalize() {
	in.Buyer = strings.TrimSpace(in.Buyer)
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	in.PackageCost = model.RoundCents(in.PackageCost)
	in.SalesPrice = model.RoundCents(in.SalesPrice)
}

// SummaryCache is the dashboard cache the session service invalidates on writes.
type SummaryCache interface {
	Get(ctx context.Context, userID string) (*model.DashboardSummary, error)
	// Generation は Invalidate のたびに進むカウンタを返す
	Generation(ctx context.Context, userID string) (int64, error)
	// Set はカウンタが gen のままのときだけ保存し、そうでなければ cache.ErrStale を返す
	Set(ctx context.Context, userID string, gen int64, s *model.DashboardSummary) error
	Invalidate(ctx context.Context, userID string) error
}

// BreakingSessionServiceImpl は BreakingSessionService の実装
type BreakingSessionServiceImpl struct {
	repo  repository.BreakingSessionRepository
	cache SummaryCache
}

// NewBreakingSessionService は BreakingSessionServiceImpl を生成する。cache は nil 可。
func NewBreakingSessionService(repo repository.BreakingSessionRepository, cache SummaryCache) BreakingSessionService {
	return &BreakingSessionServiceImpl{repo: repo, cache: cache}
}

// Create はログインユーザーのセッションを記録する
func (s *BreakingSessionServiceImpl) Create(ctx context.Context, userID string, in SessionInput) (*model.BreakingSession, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w to create a session", ErrUnauthenticated)
	}
	in.normalize()
	if err := validateStruct(&in); err != nil {
		return nil, err
	}
	bs := &model.BreakingSession{
		UserID:        userID,
		PackageCost:   in.PackageCost,
		TimeSpent:     in.TimeSpent,
		SalesPrice:    in.SalesPrice,
		Buyer:         in.Buyer,
		PaymentMethod: in.PaymentMethod,
	}
	if err := s.repo.Create(ctx, bs); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return bs, nil
}

// List はユーザーのセッションを新しい順で返す
func (s *BreakingSessionServiceImpl) List(ctx context.Context, userID string) ([]*model.BreakingSession, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w to view sessions", ErrUnauthenticated)
	}
	return s.repo.ListByUserID(ctx, userID)
}

// Get は所有者のみ取得できる
func (s *BreakingSessionServiceImpl) Get(ctx context.Context, id, userID string) (*model.BreakingSession, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w to view sessions", ErrUnauthenticated)
	}
	return s.owned(ctx, id, userID)
}

// Update は patch をマージした結果を再バリデーションしてから保存する（所有者のみ）
func (s *BreakingSessionServiceImpl) Update(ctx context.Context, id, userID string, patch model.BreakingSessionPatch) (*model.BreakingSession, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w to update a session", ErrUnauthenticated)
	}
	if patch.IsEmpty() {
		return nil, newValidationError("session", "No changes to save")
	}
	bs, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	patch.Apply(bs)

	in := sessionInputOf(bs)
	in.normalize()
	if err := validateStruct(&in); err != nil {
		return nil, err
	}
	bs.PackageCost, bs.SalesPrice = in.PackageCost, in.SalesPrice
	bs.Buyer, bs.PaymentMethod = in.Buyer, in.PaymentMethod

	if err := s.repo.Update(ctx, bs); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return bs, nil
}

// Delete はセッションを削除する（所有者のみ）
func (s *BreakingSessionServiceImpl) Delete(ctx context.Context, id, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w to delete a session", ErrUnauthenticated)
	}
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *BreakingSessionServiceImpl) owned(ctx context.Context, id, userID string) (*model.BreakingSession, error) {
	bs, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bs.UserID != userID {
		return nil, ErrForbidden
	}
	return bs, nil
}

// invalidate drops the cached dashboard. Errors are logged, not returned.
func (s *BreakingSessionServiceImpl) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		logging.Warn("dashboard cache invalidate failed", "user_id", userID, "error", err)
	}
}
