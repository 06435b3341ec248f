/* Copyright (c) 2025 the sprint-sense authors
 * SPDX-License-Identifier: BSD-3-Clause */

// Package jira implements the engine's tracker gateway against the Jira
// REST API (api/2|3 for issues, agile/1.0 for boards and sprints).
package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/sprint-sense/internal/config"
	"github.com/example/sprint-sense/internal/domain"
	"github.com/example/sprint-sense/internal/engine"
	"github.com/rs/zerolog"
)

const pageSize = 50

type Client struct {
	baseURL     string
	token       string
	basic       string
	user        string
	pass        string
	http        *http.Client
	log         zerolog.Logger
	apiVer      string
	pointsField string
	project     string
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
	return &Client{
		baseURL:     cfg.JiraBaseURL,
		token:       cfg.JiraPAT,
		basic:       getenvBasic(),
		user:        cfg.JiraUsername,
		pass:        cfg.JiraPassword,
		http:        &http.Client{Timeout: cfg.HTTPTimeout},
		log:         log,
		apiVer:      cfg.JiraAPIVersion,
		pointsField: cfg.JiraPointsField,
		project:     cfg.JiraProject,
	}
}

// getenvBasic reads JIRA_BASIC_AUTH from environment if present (format: user:pass base64), optional
func getenvBasic() string {
	v := ""
	if s := strings.TrimSpace(os.Getenv("JIRA_BASIC_AUTH")); s != "" { v = s }
	return v
}

// apiError is a non-retryable tracker response, kept as a type so callers
// can map 404s onto the engine's not-found taxonomy.
type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("jira api status=%d body=%s", e.status, e.body)
}

func notFound(err error) bool {
	var ae *apiError
	return errors.As(err, &ae) && ae.status == http.StatusNotFound
}

// mapErr translates a raw request failure into the engine error taxonomy.
func mapErr(op, resource, id string, err error) error {
	if notFound(err) { return &engine.NotFoundError{Resource: resource, ID: id} }
	return &engine.UpstreamError{Op: op, Err: err}
}

func (c *Client) apiURL(path string, q url.Values) string {
	base := strings.TrimRight(c.baseURL, "/")
	if !strings.HasPrefix(path, "/") { path = "/" + path }
	u := base + path
	if len(q) > 0 { u = u + "?" + q.Encode() }
	return u
}

// doJSON issues a request with up to 3 attempts, backing off on 429/5xx.
// Non-retryable statuses come back as *apiError immediately.
func (c *Client) doJSON(ctx context.Context, method, u string, body any) (map[string]any, error) {
	if c.baseURL == "" { return nil, errors.New("jira: empty baseURL") }
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil { return nil, err }
		payload = b
	}
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		var r io.Reader
		if payload != nil { r = strings.NewReader(string(payload)) }
		req, err := http.NewRequestWithContext(ctx, method, u, r)
		if err != nil { return nil, err }
		if payload != nil { req.Header.Set("Content-Type", "application/json") }
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		} else if c.user != "" && c.pass != "" {
			req.SetBasicAuth(c.user, c.pass)
		} else if c.basic != "" {
			req.Header.Set("Authorization", "Basic "+c.basic)
		}
		resp, err := c.http.Do(req)
		if err != nil { lastErr = err } else {
			b, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = readErr
			} else if resp.StatusCode >= 300 {
				// retry on 429/5xx only
				if resp.StatusCode == 429 || resp.StatusCode >= 500 {
					lastErr = fmt.Errorf("jira api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
				} else {
					return nil, &apiError{status: resp.StatusCode, body: strings.TrimSpace(string(b))}
				}
			} else {
				var out map[string]any
				if len(b) == 0 { return map[string]any{}, nil }
				if err := json.Unmarshal(b, &out); err != nil { return nil, err }
				return out, nil
			}
		}
		// backoff
		time.Sleep(time.Duration(300*(1<<attempt)) * time.Millisecond)
	}
	return nil, lastErr
}

func (c *Client) searchPath() string {
	if c.apiVer == "3" { return "/rest/api/3/search" }
	return "/rest/api/2/search"
}

func (c *Client) issuePath(key string) string {
	if c.apiVer == "3" { return "/rest/api/3/issue/" + url.PathEscape(key) }
	return "/rest/api/2/issue/" + url.PathEscape(key)
}

// Sprint fetches one sprint via the Agile API.
func (c *Client) Sprint(ctx context.Context, sprintID int64) (domain.Sprint, error) {
	u := c.apiURL("/rest/agile/1.0/sprint/"+strconv.FormatInt(sprintID, 10), nil)
	m, err := c.doJSON(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Sprint{}, mapErr("get sprint", "sprint", strconv.FormatInt(sprintID, 10), err)
	}
	return parseSprint(m), nil
}

// SprintIssues pages through every issue assigned to the sprint.
func (c *Client) SprintIssues(ctx context.Context, sprintID int64) ([]domain.Issue, error) {
	path := "/rest/agile/1.0/sprint/" + strconv.FormatInt(sprintID, 10) + "/issue"
	issues, err := c.pagedIssues(ctx, path, "issues")
	if err != nil {
		return nil, mapErr("list sprint issues", "sprint", strconv.FormatInt(sprintID, 10), err)
	}
	return issues, nil
}

// BacklogIssues pages through the board backlog.
func (c *Client) BacklogIssues(ctx context.Context, boardID int64) ([]domain.Issue, error) {
	path := "/rest/agile/1.0/board/" + strconv.FormatInt(boardID, 10) + "/backlog"
	issues, err := c.pagedIssues(ctx, path, "issues")
	if err != nil {
		return nil, mapErr("list backlog", "board", strconv.FormatInt(boardID, 10), err)
	}
	return issues, nil
}

func (c *Client) pagedIssues(ctx context.Context, path, field string) ([]domain.Issue, error) {
	out := []domain.Issue{}
	start := 0
	for {
		q := url.Values{}
		q.Set("startAt", strconv.Itoa(start))
		q.Set("maxResults", strconv.Itoa(pageSize))
		q.Set("fields", "*all")
		m, err := c.doJSON(ctx, http.MethodGet, c.apiURL(path, q), nil)
		if err != nil { return nil, err }
		vals, _ := m[field].([]any)
		for _, v := range vals {
			if im, ok := v.(map[string]any); ok { out = append(out, parseIssue(im, c.pointsField)) }
		}
		if len(vals) < pageSize { break }
		start += pageSize
	}
	return out, nil
}

// AssignedIssues returns the open issues currently assigned to a user,
// across sprints.
func (c *Client) AssignedIssues(ctx context.Context, username string) ([]domain.Issue, error) {
	jql := fmt.Sprintf("assignee = %q AND statusCategory != Done", username)
	if c.project != "" {
		jql = fmt.Sprintf("project = %q AND %s", c.project, jql)
	}
	issues, err := c.search(ctx, jql, 0)
	if err != nil { return nil, mapErr("list assigned issues", "user", username, err) }
	return issues, nil
}

// SearchIssues runs a raw JQL query, capped at max results.
func (c *Client) SearchIssues(ctx context.Context, jql string, max int) ([]domain.Issue, error) {
	issues, err := c.search(ctx, jql, max)
	if err != nil { return nil, mapErr("search issues", "jql", jql, err) }
	return issues, nil
}

func (c *Client) search(ctx context.Context, jql string, max int) ([]domain.Issue, error) {
	if jql == "" { return nil, errors.New("jira: empty jql") }
	out := []domain.Issue{}
	start := 0
	for {
		page := pageSize
		if max > 0 && max-len(out) < page { page = max - len(out) }
		if page <= 0 { break }
		q := url.Values{}
		q.Set("jql", jql)
		q.Set("startAt", strconv.Itoa(start))
		q.Set("maxResults", strconv.Itoa(page))
		q.Set("fields", "*all")
		m, err := c.doJSON(ctx, http.MethodGet, c.apiURL(c.searchPath(), q), nil)
		if err != nil { return nil, err }
		vals, _ := m["issues"].([]any)
		for _, v := range vals {
			if im, ok := v.(map[string]any); ok { out = append(out, parseIssue(im, c.pointsField)) }
		}
		if len(vals) < page || (max > 0 && len(out) >= max) { break }
		start += len(vals)
	}
	return out, nil
}

// IssueHistory rebuilds the status periods of an issue from its changelog.
func (c *Client) IssueHistory(ctx context.Context, key string) ([]domain.StatusTransition, error) {
	if key == "" { return nil, &engine.InvalidInputError{Field: "key", Reason: "must not be empty"} }
	q := url.Values{}
	q.Set("fields", "*all")
	q.Set("expand", "changelog")
	m, err := c.doJSON(ctx, http.MethodGet, c.apiURL(c.issuePath(key), q), nil)
	if err != nil { return nil, mapErr("get issue changelog", "issue", key, err) }
	return parseStatusHistory(m, time.Now()), nil
}

// ActiveSprint returns the board's active sprint, reporting absence
// without an error.
func (c *Client) ActiveSprint(ctx context.Context, boardID int64) (domain.Sprint, bool, error) {
	sprints, err := c.boardSprints(ctx, boardID, "active")
	if err != nil {
		return domain.Sprint{}, false, mapErr("get active sprint", "board", strconv.FormatInt(boardID, 10), err)
	}
	if len(sprints) == 0 { return domain.Sprint{}, false, nil }
	return sprints[len(sprints)-1], true, nil
}

// ClosedSprints returns the most recently closed sprints, newest first.
func (c *Client) ClosedSprints(ctx context.Context, boardID int64, limit int) ([]domain.Sprint, error) {
	sprints, err := c.boardSprints(ctx, boardID, "closed")
	if err != nil {
		return nil, mapErr("list closed sprints", "board", strconv.FormatInt(boardID, 10), err)
	}
	// Jira returns oldest first.
	for l, r := 0, len(sprints)-1; l < r; l, r = l+1, r-1 {
		sprints[l], sprints[r] = sprints[r], sprints[l]
	}
	if limit > 0 && len(sprints) > limit { sprints = sprints[:limit] }
	return sprints, nil
}

func (c *Client) boardSprints(ctx context.Context, boardID int64, state string) ([]domain.Sprint, error) {
	path := "/rest/agile/1.0/board/" + strconv.FormatInt(boardID, 10) + "/sprint"
	out := []domain.Sprint{}
	start := 0
	for {
		q := url.Values{}
		q.Set("state", state)
		q.Set("startAt", strconv.Itoa(start))
		q.Set("maxResults", strconv.Itoa(pageSize))
		m, err := c.doJSON(ctx, http.MethodGet, c.apiURL(path, q), nil)
		if err != nil { return nil, err }
		vals, _ := m["values"].([]any)
		for _, v := range vals {
			if sm, ok := v.(map[string]any); ok {
				s := parseSprint(sm)
				if s.BoardID == 0 { s.BoardID = boardID }
				out = append(out, s)
			}
		}
		if len(vals) < pageSize { break }
		start += pageSize
	}
	return out, nil
}

// ScopeChanges derives scope churn from the GreenHopper sprint report.
func (c *Client) ScopeChanges(ctx context.Context, boardID, sprintID int64) (domain.ScopeChanges, error) {
	q := url.Values{}
	q.Set("rapidViewId", strconv.FormatInt(boardID, 10))
	q.Set("sprintId", strconv.FormatInt(sprintID, 10))
	u := c.apiURL("/rest/greenhopper/latest/rapid/charts/sprintreport", q)
	m, err := c.doJSON(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.ScopeChanges{}, mapErr("get sprint report", "sprint", strconv.FormatInt(sprintID, 10), err)
	}
	return parseScopeChanges(m), nil
}

// CreateIssue creates a new issue and returns its key.
func (c *Client) CreateIssue(ctx context.Context, req domain.IssueCreate) (string, error) {
	fields := map[string]any{
		"summary": req.Summary,
	}
	if c.project != "" { fields["project"] = map[string]any{"key": c.project} }
	if req.Description != "" { fields["description"] = req.Description }
	typ := req.Type
	if typ == "" { typ = domain.TypeTask }
	fields["issuetype"] = map[string]any{"name": string(typ)}
	if req.Priority != "" { fields["priority"] = map[string]any{"name": string(req.Priority)} }
	if req.Assignee != "" { fields["assignee"] = map[string]any{"name": req.Assignee} }
	if req.StoryPoints != nil { fields[c.pointsField] = *req.StoryPoints }
	if len(req.Labels) > 0 { fields["labels"] = req.Labels }

	path := "/rest/api/2/issue"
	if c.apiVer == "3" { path = "/rest/api/3/issue" }
	m, err := c.doJSON(ctx, http.MethodPost, c.apiURL(path, nil), map[string]any{"fields": fields})
	if err != nil { return "", &engine.UpstreamError{Op: "create issue", Err: err} }
	key := toStr(m["key"])
	if key == "" { return "", &engine.UpstreamError{Op: "create issue", Err: errors.New("jira: response missing key")} }
	if req.SprintID != nil {
		if err := c.moveToSprint(ctx, *req.SprintID, key); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("issue created but sprint move failed")
		}
	}
	return key, nil
}

func (c *Client) moveToSprint(ctx context.Context, sprintID int64, key string) error {
	u := c.apiURL("/rest/agile/1.0/sprint/"+strconv.FormatInt(sprintID, 10)+"/issue", nil)
	_, err := c.doJSON(ctx, http.MethodPost, u, map[string]any{"issues": []string{key}})
	return err
}
