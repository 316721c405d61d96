package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/srsports/backend/internal/model"
	"github.com/srsports/backend/internal/repository"
)

func validSession() SessionInput {
	return SessionInput{
		PackageCost:   120,
		TimeSpent:     1.5,
		SalesPrice:    185.5,
		Buyer:         "Jordan",
		PaymentMethod: "PayPal",
	}
}

func ownedSession() *model.BreakingSession {
	return &model.BreakingSession{
		ID:            "s1",
		UserID:        "u1",
		PackageCost:   100,
		TimeSpent:     1,
		SalesPrice:    150,
		Buyer:         "Jordan",
		PaymentMethod: "PayPal",
	}
}

func ptr[T any](v T) *T { return &v }

func TestBreakingSessionService_Create(t *testing.T) {
	var created *model.BreakingSession
	repo := &mockSessionRepository{
		createFunc: func(ctx context.Context, s *model.BreakingSession) error {
			s.ID = "new-id"
			created = s
			return nil
		},
	}
	cache := &mockSummaryCache{}
	svc := NewBreakingSessionService(repo, cache)

	got, err := svc.Create(context.Background(), "u1", validSession())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil || created.UserID != "u1" {
		t.Fatalf("expected session created for u1, got %+v", created)
	}
	if got.ID != "new-id" {
		t.Errorf("expected ID new-id, got %q", got.ID)
	}
	if got.Profit() != 65.5 {
		t.Errorf("expected profit 65.5, got %v", got.Profit())
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "u1" {
		t.Errorf("expected cache invalidated for u1, got %v", cache.invalidated)
	}
}

func TestBreakingSessionService_Create_Unauthenticated(t *testing.T) {
	svc := NewBreakingSessionService(&mockSessionRepository{}, nil)

	_, err := svc.Create(context.Background(), "", validSession())
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if err.Error() != "user must be authenticated to create a session" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestBreakingSessionService_Create_Validation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(in *SessionInput)
		field string
		want  string
	}{
		{"negative cost", func(in *SessionInput) { in.PackageCost = -1 }, "package_cost", "Cost cannot be negative"},
		{"cost too high", func(in *SessionInput) { in.PackageCost = 100000.01 }, "package_cost", "Cost cannot exceed $100,000"},
		{"negative time", func(in *SessionInput) { in.TimeSpent = -0.5 }, "time_spent", "Time cannot be negative"},
		{"time over a day", func(in *SessionInput) { in.TimeSpent = 24.5 }, "time_spent", "Time cannot exceed 24 hours"},
		{"negative sales", func(in *SessionInput) { in.SalesPrice = -10 }, "sales_price", "Sales price cannot be negative"},
		{"sales too high", func(in *SessionInput) { in.SalesPrice = 1000001 }, "sales_price", "Sales price cannot exceed $1,000,000"},
		{"short buyer", func(in *SessionInput) { in.Buyer = "J" }, "buyer", "Buyer name must be at least 2 characters"},
		{"long buyer", func(in *SessionInput) { in.Buyer = strings.Repeat("b", 101) }, "buyer", "Buyer name cannot exceed 100 characters"},
		{"missing payment", func(in *SessionInput) { in.PaymentMethod = " " }, "payment_method", "Payment method is required"},
		{"long payment", func(in *SessionInput) { in.PaymentMethod = strings.Repeat("p", 51) }, "payment_method", "Payment method cannot exceed 50 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewBreakingSessionService(&mockSessionRepository{
				createFunc: func(ctx context.Context, s *model.BreakingSession) error {
					t.Error("Create must not be called for invalid input")
					return nil
				},
			}, nil)

			in := validSession()
			tt.edit(&in)
			_, err := svc.Create(context.Background(), "u1", in)

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if got := verr.Field(tt.field); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBreakingSessionService_Create_Boundaries(t *testing.T) {
	svc := NewBreakingSessionService(&mockSessionRepository{}, nil)
	in := SessionInput{PackageCost: 0, TimeSpent: 24, SalesPrice: 1000000, Buyer: "Al", PaymentMethod: "C"}
	if _, err := svc.Create(context.Background(), "u1", in); err != nil {
		t.Errorf("boundary values should be accepted, got %v", err)
	}
}

func TestBreakingSessionService_List(t *testing.T) {
	repo := &mockSessionRepository{
		listByUserIDFunc: func(ctx context.Context, userID string) ([]*model.BreakingSession, error) {
			if userID != "u1" {
				t.Errorf("expected u1, got %s", userID)
			}
			return []*model.BreakingSession{ownedSession()}, nil
		},
	}
	svc := NewBreakingSessionService(repo, nil)

	list, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 session, got %d", len(list))
	}

	if _, err := svc.List(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestBreakingSessionService_Get_NotOwner(t *testing.T) {
	repo := &mockSessionRepository{
		getByIDFunc: func(ctx context.Context, id string) (*model.BreakingSession, error) {
			return ownedSession(), nil
		},
	}
	svc := NewBreakingSessionService(repo, nil)

	if _, err := svc.Get(context.Background(), "s1", "someone-else"); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestBreakingSessionService_Update_MergesPatch(t *testing.T) {
	var updated *model.BreakingSession
	repo := &mockSessionRepository{
		getByIDFunc: func(ctx context.Context, id string) (*model.BreakingSession, error) {
			return ownedSession(), nil
		},
		updateFunc: func(ctx context.Context, s *model.BreakingSession) error {
			updated = s
			return nil
		},
	}
	cache := &mockSummaryCache{}
	svc := NewBreakingSessionService(repo, cache)

	got, err := svc.Update(context.Background(), "s1", "u1", model.BreakingSessionPatch{
		SalesPrice: ptr(210.0),
		Buyer:      ptr("  Casey "),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated == nil {
		t.Fatal("expected Update to be called")
	}
	if got.SalesPrice != 210 || got.Buyer != "Casey" {
		t.Errorf("patch not applied: %+v", got)
	}
	if got.PackageCost != 100 || got.PaymentMethod != "PayPal" {
		t.Errorf("untouched fields changed: %+v", got)
	}
	if len(cache.invalidated) != 1 {
		t.Errorf("expected cache invalidation, got %v", cache.invalidated)
	}
}

func TestBreakingSessionService_Update_RevalidatesMerged(t *testing.T) {
	repo := &mockSessionRepository{
		getByIDFunc: func(ctx context.Context, id string) (*model.BreakingSession, error) {
			return ownedSession(), nil
		},
		updateFunc: func(ctx context.Context, s *model.BreakingSession) error {
			t.Error("Update must not be called for an invalid patch")
			return nil
		},
	}
	svc := NewBreakingSessionService(repo, nil)

	_, err := svc.Update(context.Background(), "s1", "u1", model.BreakingSessionPatch{TimeSpent: ptr(30.0)})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Field("time_spent") != "Time cannot exceed 24 hours" {
		t.Errorf("unexpected message %q", verr.Field("time_spent"))
	}
}

func TestBreakingSessionService_Update_EmptyPatch(t *testing.T) {
	svc := NewBreakingSessionService(&mockSessionRepository{}, nil)
	_, err := svc.Update(context.Background(), "s1", "u1", model.BreakingSessionPatch{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected *ValidationError for empty patch, got %v", err)
	}
}

func TestBreakingSessionService_Update_NotOwner(t *testing.T) {
	repo := &mockSessionRepository{
		getByIDFunc: func(ctx context.Context, id string) (*model.BreakingSession, error) {
			return ownedSession(), nil
		},
	}
	svc := NewBreakingSessionService(repo, nil)

	_, err := svc.Update(context.Background(), "s1", "intruder", model.BreakingSessionPatch{Buyer: ptr("Mallory")})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestBreakingSessionService_Update_NotFound(t *testing.T) {
	repo := &mockSessionRepository{
		getByIDFunc: func(ctx context.Context, id string) (*model.BreakingSession, error) {
			return nil, repository.ErrNotFound
		},
	}
	svc := NewBreakingSessionService(repo, nil)

	_, err := svc.Update(context.Background(), "missing", "u1", model.BreakingSessionPatch{Buyer: ptr("Casey")})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBreakingSessionService_Delete(t *testing.T) {
	deleted := ""
	repo := &mockSessionRepository{
		getByIDFunc: func(ctx context.Context, id string) (*model.BreakingSession, error) {
			return ownedSession(), nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	cache := &mockSummaryCache{}
	svc := NewBreakingSessionService(repo, cache)

	if err := svc.Delete(context.Background(), "s1", "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "s1" {
		t.Errorf("expected s1 deleted, got %q", deleted)
	}
	if len(cache.invalidated) != 1 {
		t.Errorf("expected cache invalidation, got %v", cache.invalidated)
	}
}

func TestBreakingSessionService_Delete_NotOwner(t *testing.T) {
	repo := &mockSessionRepository{
		getByIDFunc: func(ctx context.Context, id string) (*model.BreakingSession, error) {
			return ownedSession(), nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			t.Error("Delete must not be called for a non-owner")
			return nil
		},
	}
	svc := NewBreakingSessionService(repo, nil)

	if err := svc.Delete(context.Background(), "s1", "intruder"); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}
