package service

import (
	"context"
	"sync"

	"github.com/srsports/backend/internal/cache"
	"github.com/srsports/backend/internal/model"
	"github.com/srsports/backend/pkg/supabase"
)

// ---------------------------------------------------------------------------
// mockContactRepository
// ---------------------------------------------------------------------------

type mockContactRepository struct {
	saveFunc func(ctx context.Context, c *model.ContactSubmission) error
	listFunc func(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactSubmission, error)
}

func (m *mockContactRepository) Save(ctx context.Context, c *model.ContactSubmission) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, c)
	}
	return nil
}

func (m *mockContactRepository) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactSubmission, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, opts)
	}
	return nil, nil
}

// ---------------------------------------------------------------------------
// mockSessionRepository
// ---------------------------------------------------------------------------

type mockSessionRepository struct {
	createFunc       func(ctx context.Context, s *model.BreakingSession) error
	listByUserIDFunc func(ctx context.Context, userID string) ([]*model.BreakingSession, error)
	getByIDFunc      func(ctx context.Context, id string) (*model.BreakingSession, error)
	updateFunc       func(ctx context.Context, s *model.BreakingSession) error
	deleteFunc       func(ctx context.Context, id string) error
}

func (m *mockSessionRepository) Create(ctx context.Context, s *model.BreakingSession) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, s)
	}
	return nil
}

func (m *mockSessionRepository) ListByUserID(ctx context.Context, userID string) ([]*model.BreakingSession, error) {
	if m.listByUserIDFunc != nil {
		return m.listByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockSessionRepository) GetByID(ctx context.Context, id string) (*model.BreakingSession, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockSessionRepository) Update(ctx context.Context, s *model.BreakingSession) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, s)
	}
	return nil
}

func (m *mockSessionRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// mockSummaryCache
// ---------------------------------------------------------------------------

type mockSummaryCache struct {
	getFunc     func(ctx context.Context, userID string) (*model.DashboardSummary, error)
	setFunc     func(ctx context.Context, userID string, gen int64, s *model.DashboardSummary) error
	invalidated []string
}

func (m *mockSummaryCache) Get(ctx context.Context, userID string) (*model.DashboardSummary, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockSummaryCache) Generation(_ context.Context, _ string) (int64, error) {
	return int64(len(m.invalidated)), nil
}

func (m *mockSummaryCache) Set(ctx context.Context, userID string, gen int64, s *model.DashboardSummary) error {
	if m.setFunc != nil {
		return m.setFunc(ctx, userID, gen, s)
	}
	return nil
}

func (m *mockSummaryCache) Invalidate(_ context.Context, userID string) error {
	m.invalidated = append(m.invalidated, userID)
	return nil
}

// memSummaryCache は Redis 版と同じ世代の規則を持つメモリ上のキャッシュ
type memSummaryCache struct {
	mu      sync.Mutex
	entries map[string]*model.DashboardSummary
	gens    map[string]int64
	sets    int
}

func newMemSummaryCache() *memSummaryCache {
	return &memSummaryCache{entries: map[string]*model.DashboardSummary{}, gens: map[string]int64{}}
}

func (m *memSummaryCache) Get(_ context.Context, userID string) (*model.DashboardSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.entries[userID]
	if !ok {
		return nil, cache.ErrMiss
	}
	return s, nil
}

func (m *memSummaryCache) Generation(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gens[userID], nil
}

func (m *memSummaryCache) Set(_ context.Context, userID string, gen int64, s *model.DashboardSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gens[userID] != gen {
		return cache.ErrStale
	}
	m.entries[userID] = s
	m.sets++
	return nil
}

func (m *memSummaryCache) Invalidate(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gens[userID]++
	delete(m.entries, userID)
	return nil
}

// ---------------------------------------------------------------------------
// mockAuthClient
// ---------------------------------------------------------------------------

type mockAuthClient struct {
	signInFunc  func(ctx context.Context, email, password string) (*supabase.Session, error)
	signUpFunc  func(ctx context.Context, email, password string) (*supabase.Session, error)
	refreshFunc func(ctx context.Context, refreshToken string) (*supabase.Session, error)
	getUserFunc func(ctx context.Context, accessToken string) (*supabase.User, error)
	signOutFunc func(ctx context.Context, accessToken string) error
}

func (m *mockAuthClient) SignInWithPassword(ctx context.Context, email, password string) (*supabase.Session, error) {
	if m.signInFunc != nil {
		return m.signInFunc(ctx, email, password)
	}
	return &supabase.Session{}, nil
}

func (m *mockAuthClient) SignUp(ctx context.Context, email, password string) (*supabase.Session, error) {
	if m.signUpFunc != nil {
		return m.signUpFunc(ctx, email, password)
	}
	return &supabase.Session{}, nil
}

func (m *mockAuthClient) RefreshSession(ctx context.Context, refreshToken string) (*supabase.Session, error) {
	if m.refreshFunc != nil {
		return m.refreshFunc(ctx, refreshToken)
	}
	return &supabase.Session{}, nil
}

func (m *mockAuthClient) GetUser(ctx context.Context, accessToken string) (*supabase.User, error) {
	if m.getUserFunc != nil {
		return m.getUserFunc(ctx, accessToken)
	}
	return &supabase.User{}, nil
}

func (m *mockAuthClient) SignOut(ctx context.Context, accessToken string) error {
	if m.signOutFunc != nil {
		return m.signOutFunc(ctx, accessToken)
	}
	return nil
}
