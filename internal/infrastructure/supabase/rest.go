package supabase

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

const (
	probeTable      = "user_profiles"
	probeColumn     = "user_id"
	acceptObject    = "application/vnd.pgrst.object+json"
	preferReturnRow = "return=representation"
)

// Ping runs the cheapest query that proves both the service and the schema
// are usable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Select(ctx, probeTable, ports.Query{Columns: probeColumn, Limit: 1})
	return err
}

func (c *Client) Select(ctx context.Context, table string, q ports.Query) ([]byte, error) {
	params := url.Values{}
	cols := q.Columns
	if cols == "" {
		cols = "*"
	}
	params.Set("select", cols)
	addFilters(params, q.Filters)
	if q.Order != nil {
		dir := "desc"
		if q.Order.Ascending {
			dir = "asc"
		}
		params.Set("order", q.Order.Column+"."+dir)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	r := request{method: http.MethodGet, path: "/rest/v1/" + table, query: params.Encode()}
	if q.Single {
		r.headers = map[string]string{"Accept": acceptObject}
	}
	return c.rest(ctx, r)
}

func (c *Client) Insert(ctx context.Context, table string, row any, columns string) ([]byte, error) {
	params := url.Values{}
	if columns != "" {
		params.Set("select", columns)
	}
	return c.rest(ctx, request{
		method: http.MethodPost,
		path:   "/rest/v1/" + table,
		query:  params.Encode(),
		body:   row,
		headers: map[string]string{
			"Accept": acceptObject,
			"Prefer": preferReturnRow,
		},
	})
}

// Update patches the rows matching filters and returns the single affected
// row. No match is reported as a not-found error.
func (c *Client) Update(ctx context.Context, table string, filters []ports.Filter, patch any, columns string) ([]byte, error) {
	params := url.Values{}
	if columns != "" {
		params.Set("select", columns)
	}
	addFilters(params, filters)
	return c.rest(ctx, request{
		method: http.MethodPatch,
		path:   "/rest/v1/" + table,
		query:  params.Encode(),
		body:   patch,
		headers: map[string]string{
			"Accept": acceptObject,
			"Prefer": preferReturnRow,
		},
	})
}

// rest sends r with the session's access token when one is held, so
// row-level security sees the signed-in user.
func (c *Client) rest(ctx context.Context, r request) ([]byte, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	r.token = token
	return c.do(ctx, r)
}

func addFilters(params url.Values, filters []ports.Filter) {
	for _, f := range filters {
		params.Add(f.Column, "eq."+f.Value)
	}
}
