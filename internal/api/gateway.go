package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// GenericErrorDetail is shown when the server's error body carries no
// usable detail message
const GenericErrorDetail = "Une erreur est survenue. Veuillez réessayer."

// APIError is the normalized shape of any failed request: the HTTP status
// plus a display-ready message taken from the response body's "detail"
// field.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Detail)
}

// Client is the single choke point for every network call. It owns no
// session state: authenticated operations take the token explicitly.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New creates an API client for the given base URL
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// BaseURL returns the configured server base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do issues a JSON request and decodes the 2xx response body into out.
// A nil body sends no payload; a nil out discards the response body.
// token, when non-empty, is sent as a bearer Authorization header.
// Any non-2xx response becomes an *APIError; data is never returned on
// failure.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// upload issues a POST with a multipart body containing a single "file"
// field. The Content-Type comes from the multipart writer so the boundary
// matches; it is never set by hand. Error contract is identical to do.
func (c *Client) upload(ctx context.Context, path, token, filename string, file io.Reader, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorFromResponse normalizes a non-2xx response into an *APIError.
// Malformed or non-JSON error bodies fall back to the generic message;
// the status code is preserved either way.
func errorFromResponse(resp *http.Response) error {
	detail := GenericErrorDetail

	data, err := io.ReadAll(resp.Body)
	if err == nil && len(data) > 0 {
		var body struct {
			Detail string `json:"detail"`
		}
		if jsonErr := json.Unmarshal(data, &body); jsonErr == nil && body.Detail != "" {
			detail = body.Detail
		}
	}

	return &APIError{Status: resp.StatusCode, Detail: detail}
}
