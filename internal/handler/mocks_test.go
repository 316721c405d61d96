package handler

import (
	"context"

	"github.com/srsports/backend/internal/model"
	"github.com/srsports/backend/internal/service"
	"github.com/srsports/backend/pkg/auth"
)

// userAuthContext は認証済みユーザーのコンテキストを付与する
func userAuthContext(ctx context.Context, userID, email string, isAdmin bool) context.Context {
	ctx = auth.WithUserID(ctx, userID)
	ctx = auth.WithEmail(ctx, email)
	return auth.WithIsAdmin(ctx, isAdmin)
}

type mockContactService struct {
	submitFunc func(ctx context.Context, in service.ContactInput) (*model.ContactSubmission, error)
	listFunc   func(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactSubmission, error)
}

func (m *mockContactService) Submit(ctx context.Context, in service.ContactInput) (*model.ContactSubmission, error) {
	if m.submitFunc != nil {
		return m.submitFunc(ctx, in)
	}
	return &model.ContactSubmission{ID: "c1", Name: in.Name, Email: in.Email, Message: in.Message}, nil
}

func (m *mockContactService) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactSubmission, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, opts)
	}
	return nil, nil
}

type mockSessionService struct {
	createFunc func(ctx context.Context, userID string, in service.SessionInput) (*model.BreakingSession, error)
	listFunc   func(ctx context.Context, userID string) ([]*model.BreakingSession, error)
	getFunc    func(ctx context.Context, id, userID string) (*model.BreakingSession, error)
	updateFunc func(ctx context.Context, id, userID string, patch model.BreakingSessionPatch) (*model.BreakingSession, error)
	deleteFunc func(ctx context.Context, id, userID string) error
}

func (m *mockSessionService) Create(ctx context.Context, userID string, in service.SessionInput) (*model.BreakingSession, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, in)
	}
	return &model.BreakingSession{
		ID: "s1", UserID: userID, PackageCost: in.PackageCost, TimeSpent: in.TimeSpent,
		SalesPrice: in.SalesPrice, Buyer: in.Buyer, PaymentMethod: in.PaymentMethod,
	}, nil
}

func (m *mockSessionService) List(ctx context.Context, userID string) ([]*model.BreakingSession, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockSessionService) Get(ctx context.Context, id, userID string) (*model.BreakingSession, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id, userID)
	}
	return &model.BreakingSession{ID: id, UserID: userID}, nil
}

func (m *mockSessionService) Update(ctx context.Context, id, userID string, patch model.BreakingSessionPatch) (*model.BreakingSession, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, userID, patch)
	}
	s := &model.BreakingSession{ID: id, UserID: userID}
	patch.Apply(s)
	return s, nil
}

func (m *mockSessionService) Delete(ctx context.Context, id, userID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id, userID)
	}
	return nil
}

type mockDashboardService struct {
	summaryFunc func(ctx context.Context, userID string) (*model.DashboardSummary, error)
}

func (m *mockDashboardService) Summary(ctx context.Context, userID string) (*model.DashboardSummary, error) {
	if m.summaryFunc != nil {
		return m.summaryFunc(ctx, userID)
	}
	return &model.DashboardSummary{}, nil
}

type mockAuthService struct {
	signInFunc  func(ctx context.Context, c service.Credentials) (*model.AuthSession, error)
	signUpFunc  func(ctx context.Context, c service.Credentials) (*model.AuthSession, error)
	refreshFunc func(ctx context.Context, refreshToken string) (*model.AuthSession, error)
	signOutFunc func(ctx context.Context, accessToken string) error
	userFunc    func(ctx context.Context, accessToken string) (*model.User, error)
}

func (m *mockAuthService) SignIn(ctx context.Context, c service.Credentials) (*model.AuthSession, error) {
	if m.signInFunc != nil {
		return m.signInFunc(ctx, c)
	}
	return nil, nil
}

func (m *mockAuthService) SignUp(ctx context.Context, c service.Credentials) (*model.AuthSession, error) {
	if m.signUpFunc != nil {
		return m.signUpFunc(ctx, c)
	}
	return nil, nil
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (*model.AuthSession, error) {
	if m.refreshFunc != nil {
		return m.refreshFunc(ctx, refreshToken)
	}
	return nil, service.ErrUnauthenticated
}

func (m *mockAuthService) SignOut(ctx context.Context, accessToken string) error {
	if m.signOutFunc != nil {
		return m.signOutFunc(ctx, accessToken)
	}
	return nil
}

func (m *mockAuthService) User(ctx context.Context, accessToken string) (*model.User, error) {
	if m.userFunc != nil {
		return m.userFunc(ctx, accessToken)
	}
	return nil, service.ErrUnauthenticated
}
