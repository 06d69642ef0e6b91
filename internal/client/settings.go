// ABOUTME: Settings, profile, and account endpoints of the InternTrack API
// ABOUTME: Company profile updates, own profile and password changes, two-step account deletion

package client

import (
	"context"
	"net/http"
	"net/url"
)

// Settings calls GET /settings
func (c *Client) Settings(ctx context.Context) (*Settings, error) {
	var out envelope[Settings]
	if err := c.getJSON(ctx, "/settings", nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdateCompany calls PUT /settings/company as a multipart form with an
// optional logo. When the response carries no company the caller keeps its
// submitted values.
func (c *Client) UpdateCompany(ctx context.Context, fields url.Values, logo *Upload) (*Company, error) {
	var files []Upload
	if logo != nil {
		files = append(files, *logo)
	}
	var out struct {
		Data *struct {
			Company *Company `json:"company"`
		} `json:"data"`
		Company *Company `json:"company"`
	}
	if err := c.sendMultipart(ctx, http.MethodPut, "/settings/company", fields, files, &out); err != nil {
		return nil, err
	}
	if out.Data != nil && out.Data.Company != nil {
		return out.Data.Company, nil
	}
	return out.Company, nil
}

// ProfileUpdate is the body of PATCH /user/profile
type ProfileUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateProfile calls PATCH /user/profile and returns the updated user when the
// backend echoes it
func (c *Client) UpdateProfile(ctx context.Context, p ProfileUpdate) (*User, error) {
	var out struct {
		User *User `json:"user"`
		Data *User `json:"data"`
	}
	if err := c.sendJSON(ctx, http.MethodPatch, "/user/profile", p, &out); err != nil {
		return nil, err
	}
	if out.User != nil {
		return out.User, nil
	}
	return out.Data, nil
}

// UpdatePassword calls PUT /user/password
func (c *Client) UpdatePassword(ctx context.Context, update PasswordUpdate) error {
	return c.sendJSON(ctx, http.MethodPut, "/user/password", update, nil)
}

// VerifyPassword calls POST /profile/verify-password, the first step of account deletion
func (c *Client) VerifyPassword(ctx context.Context, password string) error {
	body := map[string]string{"password": password}
	return c.sendJSON(ctx, http.MethodPost, "/profile/verify-password", body, nil)
}

// DeleteAccount calls DELETE /profile, the second step of account deletion
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.sendJSON(ctx, http.MethodDelete, "/profile", nil, nil)
}
