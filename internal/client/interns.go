// ABOUTME: Intern endpoints of the InternTrack API
// ABOUTME: Listing, filtering, detail, partial updates, creation, and PDF reports

package client

import (
	"context"
	"net/http"
	"net/url"
)

// ListInterns calls GET /interns
func (c *Client) ListInterns(ctx context.Context, query url.Values) (*Page[Intern], error) {
	var page Page[Intern]
	if err := c.getJSON(ctx, "/interns", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FilterInterns calls GET /interns/filter
func (c *Client) FilterInterns(ctx context.Context, query url.Values) (*Page[Intern], error) {
	var page Page[Intern]
	if err := c.getJSON(ctx, "/interns/filter", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetIntern calls GET /interns/:id
func (c *Client) GetIntern(ctx context.Context, id int) (*Intern, error) {
	var out envelope[*Intern]
	if err := c.getJSON(ctx, "/interns/"+itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// UpdateIntern calls POST /interns/:id with a partial JSON body.
// Only the keys present in fields are changed server-side.
func (c *Client) UpdateIntern(ctx context.Context, id int, fields map[string]any) error {
	return c.sendJSON(ctx, http.MethodPost, "/interns/"+itoa(id), fields, nil)
}

// UpdateInternProfile calls POST /interns/:id as a multipart form so a CV or
// photo can be replaced along with the profile fields
func (c *Client) UpdateInternProfile(ctx context.Context, id int, fields url.Values, files ...Upload) error {
	return c.sendMultipart(ctx, http.MethodPost, "/interns/"+itoa(id), fields, files, nil)
}

// CreateIntern calls POST /interns as a multipart form
func (c *Client) CreateIntern(ctx context.Context, fields url.Values, files ...Upload) error {
	return c.sendMultipart(ctx, http.MethodPost, "/interns", fields, files, nil)
}

// InternReport calls GET /interns/:id/report and returns the PDF bytes
func (c *Client) InternReport(ctx context.Context, id int) ([]byte, error) {
	return c.download(ctx, "/interns/"+itoa(id)+"/report", nil)
}

// InternsReport calls GET /interns/report with the list filter parameters
func (c *Client) InternsReport(ctx context.Context, query url.Values) ([]byte, error) {
	return c.download(ctx, "/interns/report", query)
}
