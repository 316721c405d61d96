package supabase

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Query builds PostgREST filter, order and paging parameters.
type Query struct {
	values url.Values
}

// NewQuery returns an empty Query selecting all columns.
func NewQuery() *Query {
	return &Query{values: url.Values{}}
}

// Select limits the returned columns.
func (q *Query) Select(columns string) *Query {
	q.values.Set("select", columns)
	return q
}

// Eq adds a column = value filter.
func (q *Query) Eq(column, value string) *Query {
	q.values.Add(column, "eq."+value)
	return q
}

// Order sorts by column.
func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.values.Set("order", column+"."+dir)
	return q
}

// Limit caps the number of returned rows. Zero means no limit.
func (q *Query) Limit(n int) *Query {
	if n > 0 {
		q.values.Set("limit", strconv.Itoa(n))
	}
	return q
}

// Offset skips n rows.
func (q *Query) Offset(n int) *Query {
	if n > 0 {
		q.values.Set("offset", strconv.Itoa(n))
	}
	return q
}

// Encode returns the URL query string.
func (q *Query) Encode() string {
	if q == nil {
		return ""
	}
	return q.values.Encode()
}

func tablePath(table string) string {
	return "/rest/v1/" + url.PathEscape(table)
}

// singleObject asks PostgREST to return one object instead of an array.
var singleObject = map[string]string{
	"Accept": "application/vnd.pgrst.object+json",
	"Prefer": "return=representation",
}

// Insert adds row to table and decodes the stored row into out.
func (c *Client) Insert(ctx context.Context, accessToken, table string, row, out any) error {
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        tablePath(table),
		query:       NewQuery().Encode(),
		accessToken: accessToken,
		body:        row,
		headers:     singleObject,
	}, out)
}

// Select decodes the rows matching q into out (a pointer to a slice).
func (c *Client) Select(ctx context.Context, accessToken, table string, q *Query, out any) error {
	return c.do(ctx, request{
		method:      http.MethodGet,
		path:        tablePath(table),
		query:       q.Encode(),
		accessToken: accessToken,
	}, out)
}

// SelectSingle decodes exactly one row matching q into out. Zero rows yield an
// error for which IsNotFound is true.
func (c *Client) SelectSingle(ctx context.Context, accessToken, table string, q *Query, out any) error {
	return c.do(ctx, request{
		method:      http.MethodGet,
		path:        tablePath(table),
		query:       q.Encode(),
		accessToken: accessToken,
		headers:     map[string]string{"Accept": singleObject["Accept"]},
	}, out)
}

// Update applies patch to the single row matching q and decodes the updated row into out.
func (c *Client) Update(ctx context.Context, accessToken, table string, q *Query, patch, out any) error {
	return c.do(ctx, request{
		method:      http.MethodPatch,
		path:        tablePath(table),
		query:       q.Encode(),
		accessToken: accessToken,
		body:        patch,
		headers:     singleObject,
	}, out)
}

// Delete removes the rows matching q.
func (c *Client) Delete(ctx context.Context, accessToken, table string, q *Query) error {
	return c.do(ctx, request{
		method:      http.MethodDelete,
		path:        tablePath(table),
		query:       q.Encode(),
		accessToken: accessToken,
	}, nil)
}
