// Package tracker fetches issues from the source-of-truth tracker's
// REST API and converts them into domain issues.
package tracker

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/agentstation/mirrorsync/internal/config"
	"github.com/agentstation/mirrorsync/internal/transport"
	"github.com/agentstation/mirrorsync/pkg/logging"
	"github.com/agentstation/mirrorsync/pkg/tracker"
)

// defaultBatchSize is how many issues one search request asks for.
const defaultBatchSize = 100

// issueFields are the only fields the search requests. The key arrives
// outside the fields object.
var issueFields = []string{"key", "summary", "description", "status", "assignee", "attachment", "updated"}

// updatedSuffix strips milliseconds and timezone from tracker timestamps,
// turning "2025-05-09T12:05:52.000+0200" into "2025-05-09T12:05:52".
var updatedSuffix = regexp.MustCompile(`\.000\+\d{4}$`)

// Client is the tracker API client.
type Client struct {
	transport *transport.Client
	cfg       config.Tracker
	batchSize int
}

// Option configures a Client.
type Option func(*Client)

// WithBatchSize overrides the search page size.
func WithBatchSize(n int) Option {
	return func(c *Client) { c.batchSize = n }
}

// WithTransport replaces the transport client, for tests.
func WithTransport(t *transport.Client) Option {
	return func(c *Client) { c.transport = t }
}

// NewClient creates a tracker client authenticated with a personal
// access token.
func NewClient(cfg config.Tracker, token string, opts ...Option) *Client {
	c := &Client{
		transport: transport.New("tracker", &transport.BearerAuth{Token: token}),
		cfg:       cfg,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.batchSize < 1 {
		c.batchSize = defaultBatchSize
	}
	return c
}

type searchRequest struct {
	JQL        string   `json:"jql"`
	Fields     []string `json:"fields"`
	Expand     []string `json:"expand"`
	StartAt    int      `json:"startAt"`
	MaxResults int      `json:"maxResults"`
}

type searchResponse struct {
	StartAt    int         `json:"startAt"`
	MaxResults int         `json:"maxResults"`
	Total      int         `json:"total"`
	Issues     []issueJSON `json:"issues"`
}

type issueJSON struct {
	Key    string     `json:"key"`
	Fields fieldsJSON `json:"fields"`
}

type fieldsJSON struct {
	Summary     string           `json:"summary"`
	Description string           `json:"description"`
	Status      *statusJSON      `json:"status"`
	Assignee    *assigneeJSON    `json:"assignee"`
	Attachments []attachmentJSON `json:"attachment"`
	Updated     string           `json:"updated"`
}

type statusJSON struct {
	Name     string        `json:"name"`
	ID       string        `json:"id"`
	Category *categoryJSON `json:"statusCategory"`
}

type categoryJSON struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type assigneeJSON struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
	AccountID    string `json:"accountId"`
}

type attachmentJSON struct {
	Filename  string `json:"filename"`
	Content   string `json:"content"`
	Thumbnail string `json:"thumbnail"`
}

// FetchIssues retrieves every matching issue for the configured project,
// paginating through the search endpoint until the reported total is
// reached. Any request or decode failure aborts the fetch; a partial
// issue list must never look like a complete one downstream.
func (c *Client) FetchIssues(ctx context.Context) ([]tracker.Issue, error) {
	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/search"
	jql := c.buildJQL()

	var issues []tracker.Issue
	startAt := 0
	total := -1

	for {
		req := searchRequest{
			JQL:        jql,
			Fields:     issueFields,
			Expand:     []string{"names"},
			StartAt:    startAt,
			MaxResults: c.batchSize,
		}

		logging.Debug().
			Str("jql", jql).
			Int("startAt", startAt).
			Int("maxResults", c.batchSize).
			Msg("Requesting tracker issues")

		var resp searchResponse
		if err := c.transport.PostJSON(ctx, url, req, &resp); err != nil {
			return nil, err
		}

		for i := range resp.Issues {
			issues = append(issues, c.convert(&resp.Issues[i]))
		}

		if total < 0 {
			total = resp.Total
			logging.Info().
				Int("total", total).
				Str("project", c.cfg.Project).
				Msg("Tracker reported total issues")
		}

		if len(resp.Issues) < c.batchSize || len(issues) >= total {
			break
		}
		startAt += c.batchSize
	}

	logging.Info().Int("count", len(issues)).Str("project", c.cfg.Project).Msg("Fetched tracker issues")
	return issues, nil
}

// buildJQL scopes the search to the configured project, optionally
// narrowed to one issue type.
func (c *Client) buildJQL() string {
	jql := fmt.Sprintf("project = %s", c.cfg.Project)
	if c.cfg.IssueType != "" {
		jql += fmt.Sprintf(" AND issuetype = %s", c.cfg.IssueType)
	}
	return jql
}

// convert maps one API issue onto the domain issue.
func (c *Client) convert(in *issueJSON) tracker.Issue {
	issue := tracker.Issue{
		Key:         in.Key,
		URL:         c.issueURL(in.Key),
		Summary:     in.Fields.Summary,
		Description: in.Fields.Description,
		Updated:     cleanUpdated(in.Fields.Updated),
		Project:     c.cfg.Project,
	}

	if s := in.Fields.Status; s != nil {
		issue.Status = &tracker.Status{Name: s.Name, ID: s.ID}
		if s.Category != nil {
			issue.Status.CategoryKey = s.Category.Key
			issue.Status.CategoryName = s.Category.Name
		}
	}

	if a := in.Fields.Assignee; a != nil {
		issue.Assignee = &tracker.Assignee{
			DisplayName:  a.DisplayName,
			EmailAddress: a.EmailAddress,
			AccountID:    a.AccountID,
		}
	}

	for _, att := range in.Fields.Attachments {
		issue.Attachments = append(issue.Attachments, tracker.Attachment{
			Filename:  att.Filename,
			URL:       att.Content,
			Thumbnail: att.Thumbnail,
		})
	}

	return issue
}

// issueURL builds the browsable issue link from the REST base URL.
func (c *Client) issueURL(key string) string {
	webBase := strings.TrimSuffix(c.cfg.BaseURL, "/")
	webBase = strings.TrimSuffix(webBase, "/rest/api/latest")
	return fmt.Sprintf("%s/projects/%s/issues/%s", webBase, c.cfg.Project, key)
}

func cleanUpdated(raw string) string {
	if raw == "" {
		return ""
	}
	return updatedSuffix.ReplaceAllString(raw, "")
}
