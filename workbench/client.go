package workbench

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"gramsetu-be/models"
)

// ErrSessionExpired marks an authorization failure; the session's expiry
// callback has already fired and the caller must re-authenticate, never retry.
var ErrSessionExpired = errors.New("session expired")

// APIError is a non-auth failure response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request failed (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("request failed (%d)", e.Status)
}

// Session carries the authenticated credential explicitly through the
// workbench instead of reading ambient storage. The expiry callback fires at
// most once no matter how many requests hit the dead credential.
type Session struct {
	Token string
	Role  models.UserRole

	once      sync.Once
	onExpired func()
}

func NewSession(token string, role models.UserRole, onExpired func()) *Session {
	return &Session{Token: token, Role: role, onExpired: onExpired}
}

// Expire fires the expiry callback exactly once.
func (s *Session) Expire() {
	s.once.Do(func() {
		if s.onExpired != nil {
			s.onExpired()
		}
	})
}

// Client is the HTTP wrapper over the officer portal endpoints.
type Client struct {
	baseURL string
	session *Session
	httpc   *http.Client
}

// NewClient builds a client for the given portal base URL. The timeout is
// generous because first-run model predictions can be slow.
func NewClient(baseURL string, session *Session) *Client {
	return &Client{
		baseURL: baseURL,
		session: session,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.session != nil && c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed, check your connection and try again: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.session != nil {
			c.session.Expire()
		}
		return ErrSessionExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		msg := payload.Error
		if msg == "" {
			msg = payload.Detail
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// SectorProblems fetches the sector listing with the given query parameters.
func (c *Client) SectorProblems(ctx context.Context, sector models.Sector, params url.Values) ([]models.Problem, error) {
	var problems []models.Problem
	err := c.do(ctx, http.MethodGet, "/api/officer/sector/"+string(sector), params, nil, &problems)
	if err != nil {
		return nil, err
	}
	return problems, nil
}

// StatusUpdate is the mutation body for a status change.
type StatusUpdate struct {
	Status         models.ProblemStatus `json:"status"`
	OfficerRemarks *string              `json:"officer_remarks,omitempty"`
	AssignToSelf   bool                 `json:"assign_to_self,omitempty"`
}

// UpdateStatus issues the status mutation for one problem.
func (c *Client) UpdateStatus(ctx context.Context, problemID string, update StatusUpdate) error {
	return c.do(ctx, http.MethodPatch, "/api/officer/problems/"+problemID+"/status", nil, update, nil)
}

// Escalate flags one problem for admin attention, with optional remarks.
func (c *Client) Escalate(ctx context.Context, problemID string, remarks *string) error {
	body := map[string]interface{}{}
	if remarks != nil {
		body["remarks"] = *remarks
	}
	return c.do(ctx, http.MethodPost, "/api/officer/problems/"+problemID+"/escalate", nil, body, nil)
}

// ProblemHistory fetches the audit trail for one problem in server order.
func (c *Client) ProblemHistory(ctx context.Context, problemID string) ([]models.ProblemHistory, error) {
	var entries []models.ProblemHistory
	err := c.do(ctx, http.MethodGet, "/api/officer/problems/"+problemID+"/history", nil, nil, &entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
