// Package workspace talks to the mirror workspace's REST API: schema
// fetch, item enumeration and the item mutations a reconciliation pass
// requests.
package workspace

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agentstation/mirrorsync/internal/config"
	"github.com/agentstation/mirrorsync/internal/transport"
	"github.com/agentstation/mirrorsync/pkg/logging"
	"github.com/agentstation/mirrorsync/pkg/reconcile"
	"github.com/agentstation/mirrorsync/pkg/workspace"
)

// markdownMediaType switches the item endpoints into markdown mode, so
// descriptions are sent and patched as markdown strings.
const markdownMediaType = "application/vnd.workspace.markdown+json"

// defaultPageLimit is the item search page size.
const defaultPageLimit = 1000

// Client is the workspace API client. It satisfies the reconcile writer
// contract.
type Client struct {
	transport *transport.Client
	cfg       config.Workspace
	pageLimit int
}

var _ reconcile.Writer = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithPageLimit overrides the item search page size.
func WithPageLimit(n int) Option {
	return func(c *Client) { c.pageLimit = n }
}

// WithTransport replaces the transport client, for tests.
func WithTransport(t *transport.Client) Option {
	return func(c *Client) { c.transport = t }
}

// NewClient creates a workspace client authenticated with an API key.
func NewClient(cfg config.Workspace, apiKey string, opts ...Option) *Client {
	c := &Client{
		transport: transport.New("workspace", &transport.BearerAuth{Token: apiKey}),
		cfg:       cfg,
		pageLimit: defaultPageLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pageLimit < 1 {
		c.pageLimit = defaultPageLimit
	}
	return c
}

func (c *Client) workspaceURL() string {
	return fmt.Sprintf("%s/workspaces/%s", strings.TrimSuffix(c.cfg.BaseURL, "/"), c.cfg.ID)
}

// workspaceResponse is the workspace detail response. Field and status
// definitions arrive keyed by id under _embedded.
type workspaceResponse struct {
	Embedded struct {
		Fields   map[string]workspace.Field  `json:"fields"`
		Statuses map[string]workspace.Status `json:"statuses"`
	} `json:"_embedded"`
}

// FetchSchema retrieves the workspace's field and status definitions.
// Definitions are sorted by name so schema listings are stable across
// runs.
func (c *Client) FetchSchema(ctx context.Context) (*workspace.Schema, error) {
	var resp workspaceResponse
	if err := c.transport.GetJSON(ctx, c.workspaceURL(), &resp); err != nil {
		return nil, err
	}

	fields := make([]workspace.Field, 0, len(resp.Embedded.Fields))
	for _, f := range resp.Embedded.Fields {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })

	statuses := make([]workspace.Status, 0, len(resp.Embedded.Statuses))
	for _, s := range resp.Embedded.Statuses {
		statuses = append(statuses, s)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })

	logging.Info().
		Int("fields", len(fields)).
		Int("statuses", len(statuses)).
		Str("workspace", c.cfg.ID).
		Msg("Fetched workspace schema")

	return workspace.NewSchema(fields, statuses), nil
}

type searchRequest struct {
	Filters    map[string]any `json:"filters"`
	Pagination pagination     `json:"pagination"`
}

type pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type searchResponse struct {
	Items      []workspace.Item `json:"items"`
	TotalItems int              `json:"totalItems"`
}

// SearchItems enumerates every item in the workspace, paginating through
// the search endpoint. Any failure aborts the enumeration; a partial
// item list would make missing items look unmatched and duplicate them.
func (c *Client) SearchItems(ctx context.Context) ([]workspace.Item, error) {
	url := c.workspaceURL() + "/items/search"

	var items []workspace.Item
	offset := 0
	for {
		req := searchRequest{
			Filters:    map[string]any{},
			Pagination: pagination{Limit: c.pageLimit, Offset: offset},
		}

		var resp searchResponse
		if err := c.transport.PostJSON(ctx, url, req, &resp); err != nil {
			return nil, err
		}
		items = append(items, resp.Items...)

		if len(resp.Items) < c.pageLimit {
			break
		}
		offset += c.pageLimit
	}

	logging.Info().Int("count", len(items)).Str("workspace", c.cfg.ID).Msg("Fetched workspace items")
	return items, nil
}

// CreateItem creates one item from a reconciliation payload.
func (c *Client) CreateItem(ctx context.Context, payload workspace.CreatePayload) (*workspace.Item, error) {
	url := c.workspaceURL() + "/items"

	var item workspace.Item
	if err := c.transport.PostMedia(ctx, url, markdownMediaType, payload, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// PatchItem applies JSON-Patch operations to one item.
func (c *Client) PatchItem(ctx context.Context, itemID string, ops []workspace.PatchOp) error {
	url := c.workspaceURL() + "/items/" + itemID
	return c.transport.PatchMedia(ctx, url, markdownMediaType, ops, nil)
}
