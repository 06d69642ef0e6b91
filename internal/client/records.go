// ABOUTME: Project, audit log, and user management endpoints
// ABOUTME: Paginated listing and filtering, role promotion, admin registration, reports

package client

import (
	"context"
	"net/http"
	"net/url"
)

// listPage decodes a paginated list endpoint
func listPage[T any](ctx context.Context, c *Client, path string, query url.Values) (*Page[T], error) {
	var page Page[T]
	if err := c.getJSON(ctx, path, query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListProjects calls GET /projects
func (c *Client) ListProjects(ctx context.Context, query url.Values) (*Page[Project], error) {
	return listPage[Project](ctx, c, "/projects", query)
}

// FilterProjects calls GET /projects/filter
func (c *Client) FilterProjects(ctx context.Context, query url.Values) (*Page[Project], error) {
	return listPage[Project](ctx, c, "/projects/filter", query)
}

// ProjectsReport calls GET /projects/report
func (c *Client) ProjectsReport(ctx context.Context, query url.Values) ([]byte, error) {
	return c.download(ctx, "/projects/report", query)
}

// ListAuditLogs calls GET /auditlogs
func (c *Client) ListAuditLogs(ctx context.Context, query url.Values) (*Page[AuditLog], error) {
	return listPage[AuditLog](ctx, c, "/auditlogs", query)
}

// FilterAuditLogs calls GET /auditlogs/filter
func (c *Client) FilterAuditLogs(ctx context.Context, query url.Values) (*Page[AuditLog], error) {
	return listPage[AuditLog](ctx, c, "/auditlogs/filter", query)
}

// AuditLogsReport calls GET /auditlogs/report
func (c *Client) AuditLogsReport(ctx context.Context, query url.Values) ([]byte, error) {
	return c.download(ctx, "/auditlogs/report", query)
}

// ListUsers calls GET /users
func (c *Client) ListUsers(ctx context.Context, query url.Values) (*Page[User], error) {
	return listPage[User](ctx, c, "/users", query)
}

// FilterUsers calls GET /users/filter
func (c *Client) FilterUsers(ctx context.Context, query url.Values) (*Page[User], error) {
	return listPage[User](ctx, c, "/users/filter", query)
}

// UsersReport calls GET /users/report
func (c *Client) UsersReport(ctx context.Context, query url.Values) ([]byte, error) {
	return c.download(ctx, "/users/report", query)
}

// PromoteUser calls POST /users/:id/promote
func (c *Client) PromoteUser(ctx context.Context, id int) error {
	return c.sendJSON(ctx, http.MethodPost, "/users/"+itoa(id)+"/promote", nil, nil)
}

// DemoteUser calls POST /users/:id/demote
func (c *Client) DemoteUser(ctx context.Context, id int) error {
	return c.sendJSON(ctx, http.MethodPost, "/users/"+itoa(id)+"/demote", nil, nil)
}

// NewUser is the body of an admin-created account
type NewUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Password string `json:"password"`
}

// RegisterUser calls POST /users/register
func (c *Client) RegisterUser(ctx context.Context, u NewUser) (*User, error) {
	var out struct {
		User *User `json:"user"`
		Data *User `json:"data"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/users/register", u, &out); err != nil {
		return nil, err
	}
	if out.User != nil {
		return out.User, nil
	}
	return out.Data, nil
}
