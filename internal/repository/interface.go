package repository

import (
	"context"

	"github.com/srsports/backend/internal/model"
	"github.com/srsports/backend/pkg/supabase"
)

// DB は DB 接続の生存確認を行うインターフェース
type DB interface {
	Ping(ctx context.Context) error
}

// ContactRepository defines the persistence interface for contact submissions.
// It is defined here (in repository) to avoid an import cycle with service.
type ContactRepository interface {
	Save(ctx context.Context, c *model.ContactSubmission) error
	List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactSubmission, error)
}

// BreakingSessionRepository handles persistence for breaking sessions.
type BreakingSessionRepository interface {
	Create(ctx context.Context, s *model.BreakingSession) error
	ListByUserID(ctx context.Context, userID string) ([]*model.BreakingSession, error)
	GetByID(ctx context.Context, id string) (*model.BreakingSession, error)
	Update(ctx context.Context, s *model.BreakingSession) error
	Delete(ctx context.Context, id string) error
}

// RowClient is the subset of the Supabase REST client the Rest repositories use.
type RowClient interface {
	Insert(ctx context.Context, accessToken, table string, row, out any) error
	Select(ctx context.Context, accessToken, table string, q *supabase.Query, out any) error
	SelectSingle(ctx context.Context, accessToken, table string, q *supabase.Query, out any) error
	Update(ctx context.Context, accessToken, table string, q *supabase.Query, patch, out any) error
	Delete(ctx context.Context, accessToken, table string, q *supabase.Query) error
}

// Table names shared by both backends.
const (
	contactTable = "contact_submissions"
	sessionTable = "breaking_sessions"
)
