// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jeranaias/shiftlog-tui/internal/catalog"
	"github.com/jeranaias/shiftlog-tui/internal/model"
)

// Credentials is the login and registration payload.
type Credentials struct {
	Username string     `json:"username"`
	Password string     `json:"password"`
	Role     model.Role `json:"role,omitempty"`
}

// LoginResult is the response of a successful login.
type LoginResult struct {
	Token string     `json:"token"`
	Role  model.Role `json:"role"`
}

// =============================================================================
// AUTH
// =============================================================================

// Login exchanges credentials for a token. The client's token is not changed.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var res LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/login", Credentials{Username: username, Password: password}, &res)
	if err != nil {
		return LoginResult{}, err
	}
	if res.Token == "" {
		return LoginResult{}, &APIError{Status: http.StatusOK, Message: "login response has no token"}
	}
	if !res.Role.Valid() {
		res.Role = model.RoleUser
	}
	return res, nil
}

// Register creates a user account. Admin only.
func (c *Client) Register(ctx context.Context, username, password string, role model.Role) error {
	return c.do(ctx, http.MethodPost, "/auth/register", Credentials{
		Username: username,
		Password: password,
		Role:     role,
	}, nil)
}

// =============================================================================
// REPORTS
// =============================================================================

// MyReports lists the reports submitted by the signed-in user.
func (c *Client) MyReports(ctx context.Context) ([]model.Report, error) {
	var reports []model.Report
	if err := c.do(ctx, http.MethodGet, "/myreports", nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// AllReports lists every report. Admin only.
func (c *Client) AllReports(ctx context.Context) ([]model.Report, error) {
	var reports []model.Report
	if err := c.do(ctx, http.MethodGet, "/reports", nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// CreateReport submits a report and returns the stored copy. When the server
// replies with an empty body, the submitted report is returned.
func (c *Client) CreateReport(ctx context.Context, report model.Report) (model.Report, error) {
	stored := report
	if err := c.do(ctx, http.MethodPost, "/reports", report, &stored); err != nil {
		return model.Report{}, err
	}
	return stored, nil
}

// DeleteReport removes a report by ID.
func (c *Client) DeleteReport(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete report: empty id")
	}
	return c.do(ctx, http.MethodDelete, "/reports/"+url.PathEscape(id), nil, nil)
}

// =============================================================================
// CATALOGS
// =============================================================================

// Catalog lists the entries of one catalog.
func (c *Client) Catalog(ctx context.Context, kind catalog.Kind) ([]catalog.Entry, error) {
	var entries []catalog.Entry
	if err := c.do(ctx, http.MethodGet, "/catalog/"+string(kind), nil, &entries); err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	return entries, nil
}

// CreateCatalogEntry adds an entry and returns it with its server ID.
func (c *Client) CreateCatalogEntry(ctx context.Context, kind catalog.Kind, entry catalog.Entry) (catalog.Entry, error) {
	if err := entry.Validate(kind); err != nil {
		return catalog.Entry{}, err
	}
	entry.ID = ""
	var created catalog.Entry
	if err := c.do(ctx, http.MethodPost, "/catalog/"+string(kind), entry, &created); err != nil {
		return catalog.Entry{}, err
	}
	return created, nil
}

// DeleteCatalogEntry removes an entry by ID.
func (c *Client) DeleteCatalogEntry(ctx context.Context, kind catalog.Kind, id string) error {
	if id == "" {
		return fmt.Errorf("delete %s: empty id", kind)
	}
	return c.do(ctx, http.MethodDelete, "/catalog/"+string(kind)+"/"+url.PathEscape(id), nil, nil)
}

// LoadCatalog fetches all four catalogs.
func (c *Client) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	cat := &catalog.Catalog{}
	for _, kind := range catalog.Kinds {
		entries, err := c.Catalog(ctx, kind)
		if err != nil {
			return nil, err
		}
		cat.Set(kind, entries)
	}
	return cat, nil
}
