package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/srsports/backend/internal/model"
	"github.com/srsports/backend/pkg/auth"
	"github.com/srsports/backend/pkg/supabase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRestClient(t *testing.T, h http.HandlerFunc) *supabase.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	log := logrus.New()
	log.SetOutput(io.Discard)
	return supabase.NewClient(srv.URL, "anon", "").WithLogger(log)
}

func TestRestContactRepository_Save(t *testing.T) {
	client := newRestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/contact_submissions", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Alice", body["name"])
		_, _ = w.Write([]byte(`{"id":"c1","name":"Alice","email":"a@example.com","message":"Hello there, world","created_at":"2024-03-15T10:00:00.123456+00:00"}`))
	})
	repo := NewRestContactRepository(client)

	c := &model.ContactSubmission{Name: "Alice", Email: "a@example.com", Message: "Hello there, world"}
	require.NoError(t, repo.Save(context.Background(), c))
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, 2024, c.CreatedAt.Year())
}

func TestRestContactRepository_SaveErrorMessage(t *testing.T) {
	client := newRestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"42501","message":"new row violates row-level security policy"}`))
	})
	repo := NewRestContactRepository(client)

	err := repo.Save(context.Background(), &model.ContactSubmission{Name: "Al", Email: "a@example.com", Message: "0123456789"})
	require.Error(t, err)
	assert.Equal(t, "failed to submit contact form: new row violates row-level security policy", err.Error())
}

func TestRestContactRepository_ListUsesServiceKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"id":"c2","name":"Alice"}`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":"c1"}]`))
	}))
	defer srv.Close()
	log := logrus.New()
	log.SetOutput(io.Discard)
	repo := NewRestContactRepository(supabase.NewClient(srv.URL, "anon", "service-key").WithLogger(log))

	// 管理者のトークンが載っていても RLS に SELECT ポリシーが無いので使わない
	ctx := auth.WithAccessToken(context.Background(), "admin-token")
	list, err := repo.List(ctx, model.ContactListOptions{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	c := &model.ContactSubmission{Name: "Alice", Email: "a@example.com", Message: "Hello there, world"}
	require.NoError(t, repo.Save(ctx, c))
	assert.Equal(t, "c2", c.ID)
}

func TestRestContactRepository_List(t *testing.T) {
	client := newRestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "created_at.desc", r.URL.Query().Get("order"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[{"id":"c2"},{"id":"c1"}]`))
	})
	repo := NewRestContactRepository(client)

	list, err := repo.List(context.Background(), model.ContactListOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c2", list[0].ID)
}

func TestRestBreakingSessionRepository_CreateForwardsToken(t *testing.T) {
	client := newRestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u1", body["user_id"])
		assert.Equal(t, 12.5, body["package_cost"])
		_, _ = w.Write([]byte(`{"id":"s1","user_id":"u1","package_cost":12.5,"time_spent":1,"sales_price":20,"buyer":"Bob","payment_method":"Venmo","created_at":"2024-03-15T10:00:00Z"}`))
	})
	repo := NewRestBreakingSessionRepository(client)

	ctx := auth.WithAccessToken(context.Background(), "user-token")
	s := &model.BreakingSession{UserID: "u1", PackageCost: 12.5, TimeSpent: 1, SalesPrice: 20, Buyer: "Bob", PaymentMethod: "Venmo"}
	require.NoError(t, repo.Create(ctx, s))
	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, 7.5, s.Profit())
}

func TestRestBreakingSessionRepository_ListByUserID(t *testing.T) {
	client := newRestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.u1", r.URL.Query().Get("user_id"))
		_, _ = w.Write([]byte(`[{"id":"s2","user_id":"u1"},{"id":"s1","user_id":"u1"}]`))
	})
	repo := NewRestBreakingSessionRepository(client)

	list, err := repo.ListByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestRestBreakingSessionRepository_GetByIDNotFound(t *testing.T) {
	client := newRestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
		_, _ = w.Write([]byte(`{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`))
	})
	repo := NewRestBreakingSessionRepository(client)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRestBreakingSessionRepository_Update(t *testing.T) {
	client := newRestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.s1", r.URL.Query().Get("id"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "user_id")
		assert.Equal(t, "Carol", body["buyer"])
		_, _ = w.Write([]byte(`{"id":"s1","user_id":"u1","buyer":"Carol","payment_method":"Cash App"}`))
	})
	repo := NewRestBreakingSessionRepository(client)

	s := &model.BreakingSession{ID: "s1", UserID: "u1", Buyer: "Carol", PaymentMethod: "Cash App"}
	require.NoError(t, repo.Update(context.Background(), s))
	assert.Equal(t, "Carol", s.Buyer)
}

func TestRestBreakingSessionRepository_Delete(t *testing.T) {
	client := newRestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	repo := NewRestBreakingSessionRepository(client)

	assert.NoError(t, repo.Delete(context.Background(), "s1"))
}
