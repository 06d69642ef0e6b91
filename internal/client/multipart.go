// ABOUTME: Multipart form submission for endpoints that accept file uploads
// ABOUTME: Used by intern creation, intern profile updates, and company logo changes

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"sort"
)

// Upload is a file attached to a multipart request
type Upload struct {
	Field    string
	Filename string
	Content  io.Reader
}

// sendMultipart encodes fields and files as multipart/form-data.
// Fields with several values (e.g. "skills[]") are written once per value.
func (c *Client) sendMultipart(ctx context.Context, method, path string, fields url.Values, files []Upload, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range fields[k] {
			if err := mw.WriteField(k, v); err != nil {
				return fmt.Errorf("failed to encode field %s: %w", k, err)
			}
		}
	}

	for _, f := range files {
		if f.Content == nil {
			continue
		}
		part, err := mw.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return fmt.Errorf("failed to attach %s: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return fmt.Errorf("failed to attach %s: %w", f.Field, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to encode form: %w", err)
	}

	resp, err := c.do(ctx, request{
		method:      method,
		path:        path,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeBody(resp, out)
}
