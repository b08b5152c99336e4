// Package client talks to a running midias server over HTTP
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/shared"
)

// DefaultBaseURL is the address of a server started with the default configuration.
const DefaultBaseURL = "http://127.0.0.1:8000"

// APIKeyHeader carries the static key when the server runs in api_key mode.
const APIKeyHeader = "X-API-Key"

// Client makes requests to the midias API.
//
// The session cookie set by [Client.Login] is kept in the HTTP client's cookie jar,
// so a client built by [New] with a nil http.Client stays logged in across calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
}

// New creates a client for baseURL. A nil httpClient gets one with a cookie jar and a timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		jar, _ := cookiejar.New(nil)
		httpClient = &http.Client{Jar: jar, Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// WithAPIKey sends key in the X-API-Key header of every request.
func (c *Client) WithAPIKey(key string) *Client {
	c.apiKey = key
	return c
}

// Response represents a raw API response with status and body.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Err returns nil for 2xx responses and an [*APIError] otherwise.
func (r *Response) Err() error {
	if r.StatusCode >= 200 && r.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: r.StatusCode}
	if err := json.Unmarshal(r.Body, &apiErr.Envelope); err != nil || apiErr.Code == "" {
		apiErr.Code = "http_error"
		apiErr.Message = strings.TrimSpace(string(r.Body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(r.StatusCode)
		}
	}
	return apiErr
}

// Envelope is the error body returned by the server.
type Envelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

// APIError is a non-2xx response. It matches the shared error kinds with [errors.Is].
type APIError struct {
	StatusCode int
	Envelope
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Code {
	case "validation_error":
		return shared.ErrValidation
	case "unauthorized":
		return shared.ErrUnauthorized
	case "forbidden":
		return shared.ErrForbidden
	case "not_found":
		return shared.ErrNotFound
	case "conflict":
		return shared.ErrConflict
	}
	return shared.ErrAPIRequest
}

// Do performs a request with an optional JSON body and returns the raw response.
// Only transport failures are errors; check [Response.Err] for API failures.
func (c *Client) Do(ctx context.Context, method, path string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// Get performs a GET request to the specified path and returns the raw response.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (c *Client) Post(ctx context.Context, path string, data []byte) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, data)
}

// Put performs a PUT request with the given JSON data and returns the raw response.
func (c *Client) Put(ctx context.Context, path string, data []byte) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, data)
}

// Patch performs a PATCH request with the given JSON data and returns the raw response.
func (c *Client) Patch(ctx context.Context, path string, data []byte) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, data)
}

// Delete performs a DELETE request and returns the raw response.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// Login opens a session. The cookie is stored in the client's jar.
func (c *Client) Login(ctx context.Context, username, token string) (*models.User, error) {
	body, err := json.Marshal(models.LoginInput{Username: username, Token: token})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login: %w", err)
	}

	var out struct {
		User models.User `json:"user"`
	}
	if err := c.call(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Logout closes the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me returns the user of the current session.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	if err := c.call(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ListMedia lists media matching filter.
func (c *Client) ListMedia(ctx context.Context, filter models.MediaFilter) ([]models.Media, error) {
	var items []models.Media
	if err := c.call(ctx, http.MethodGet, "/media"+FilterQuery(filter), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetMedia loads one media item with its people.
func (c *Client) GetMedia(ctx context.Context, id int64) (*models.Media, error) {
	var m models.Media
	if err := c.call(ctx, http.MethodGet, "/media/"+strconv.FormatInt(id, 10), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListPeople lists every person.
func (c *Client) ListPeople(ctx context.Context) ([]models.Person, error) {
	var people []models.Person
	if err := c.call(ctx, http.MethodGet, "/people", nil, &people); err != nil {
		return nil, err
	}
	return people, nil
}

// GetPerson loads one person.
func (c *Client) GetPerson(ctx context.Context, id int64) (*models.Person, error) {
	var p models.Person
	if err := c.call(ctx, http.MethodGet, "/people/"+strconv.FormatInt(id, 10), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ReportCSV downloads the per-person CSV report.
func (c *Client) ReportCSV(ctx context.Context, personID int64, filter models.MediaFilter) ([]byte, error) {
	filter.PersonID = &personID
	path := "/reports/by-person" + FilterQuery(filter) + "&csv_export=true"

	resp, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// call performs a request and decodes a 2xx JSON body into out when out is not nil.
func (c *Client) call(ctx context.Context, method, path string, body []byte, out any) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// FilterQuery encodes filter as a query string, including the leading "?" when non-empty.
func FilterQuery(f models.MediaFilter) string {
	q := url.Values{}
	if f.Platform != "" {
		q.Set("platform", string(f.Platform))
	}
	for name, id := range map[string]*int64{"person_id": f.PersonID, "line_id": f.LineID, "system_id": f.SystemID} {
		if id != nil {
			q.Set(name, strconv.FormatInt(*id, 10))
		}
	}
	if f.DateFrom != "" {
		q.Set("date_from", f.DateFrom)
	}
	if f.DateTo != "" {
		q.Set("date_to", f.DateTo)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
