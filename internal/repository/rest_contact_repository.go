package repository

import (
	"context"
	"fmt"

	"github.com/srsports/backend/internal/model"
	"github.com/srsports/backend/pkg/supabase"
)

// RestContactRepository stores contact submissions through the Supabase REST API.
// お問い合わせはユーザーに紐づかないので、常にサービスキーで送る
type RestContactRepository struct {
	client RowClient
}

// NewRestContactRepository creates a RestContactRepository using client.
func NewRestContactRepository(client RowClient) *RestContactRepository {
	return &RestContactRepository{client: client}
}

var _ ContactRepository = (*RestContactRepository)(nil)

// serviceRole を渡すとクライアントはサービスキー（未設定なら anon キー）を使う
const serviceRole = ""

type contactRow struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Save inserts c and fills in the id and created_at returned by the backend.
func (r *RestContactRepository) Save(ctx context.Context, c *model.ContactSubmission) error {
	var stored model.ContactSubmission
	row := contactRow{Name: c.Name, Email: c.Email, Message: c.Message}
	if err := r.client.Insert(ctx, serviceRole, contactTable, row, &stored); err != nil {
		return fmt.Errorf("failed to submit contact form: %w", err)
	}
	*c = stored
	return nil
}

// List returns contact submissions newest first.
func (r *RestContactRepository) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactSubmission, error) {
	q := supabase.NewQuery().Select("*").Order("created_at", false).Limit(opts.Limit).Offset(opts.Offset)
	var out []*model.ContactSubmission
	if err := r.client.Select(ctx, serviceRole, contactTable, q, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch contact submissions: %w", err)
	}
	return out, nil
}
