// ABOUTME: Authentication and public endpoints of the InternTrack API
// ABOUTME: Login, logout, current user, registration, forced password change, branding

package client

import (
	"context"
	"fmt"
	"net/http"
)

// Login calls POST /login and returns the user and bearer token
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/login", creds, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("invalid response from backend: missing token")
	}
	return &out, nil
}

// Logout calls POST /logout, revoking the current token server-side
func (c *Client) Logout(ctx context.Context) error {
	return c.sendJSON(ctx, http.MethodPost, "/logout", nil, nil)
}

// Me calls GET /me and returns the authenticated user
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register calls POST /register and returns the new user and bearer token
func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/register", reg, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("invalid response from backend: missing token")
	}
	return &out, nil
}

// ForceUpdatePassword calls POST /password/force-update
func (c *Client) ForceUpdatePassword(ctx context.Context, update PasswordUpdate) (*PasswordUpdateResult, error) {
	update.CurrentPassword = ""
	var out PasswordUpdateResult
	if err := c.sendJSON(ctx, http.MethodPost, "/password/force-update", update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Company calls the public GET /company branding endpoint
func (c *Client) Company(ctx context.Context) (*Company, error) {
	var out envelope[*Company]
	if err := c.getJSON(ctx, "/company", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Dashboard calls GET /dashboard
func (c *Client) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var out envelope[DashboardStats]
	if err := c.getJSON(ctx, "/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}
