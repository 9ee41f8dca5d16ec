// Package client is a Go client for the dashboard REST API, used by the
// command-line admin shell.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
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

	"github.com/atinyakov/AdminBoard/internal/common"
	"github.com/atinyakov/AdminBoard/internal/middleware"
	"github.com/atinyakov/AdminBoard/internal/models"
)

// codeOK is the application code of a successful response.
const codeOK = 20000

// APIError is a non-success response from the server.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d (code %d): %s", e.Status, e.Code, e.Message)
}

// Unwrap maps the HTTP status back to the shared error sentinels so callers
// can use errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return common.ErrValidation
	case http.StatusUnauthorized:
		return common.ErrAuth
	case http.StatusNotFound:
		return common.ErrNotFound
	case http.StatusConflict:
		return common.ErrConflict
	}
	return nil
}

// Client talks to one app prefix of the dashboard API.
type Client struct {
	// BaseURL is the server root, e.g. "http://localhost:8080".
	BaseURL string
	// App is the prefix the API is mounted under, e.g. "vue-admin-template".
	App string
	// Token is sent in the X-Token header when set. Login fills it in.
	Token string

	http *http.Client
}

// New returns a Client. A nil httpClient means a client with a 10 second timeout.
func New(baseURL, app string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		App:     strings.Trim(app, "/"),
		http:    httpClient,
	}
}

// NewTLSHTTPClient returns an HTTP client trusting the CA (or self-signed
// server certificate) in caFile.
func NewTLSHTTPClient(caFile string) (*http.Client, error) {
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert: %w", err)
	}
	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, errors.New("failed to parse CA cert")
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			RootCAs:    caPool,
			MinVersion: tls.VersionTLS12,
		},
	}
	return &http.Client{Transport: transport, Timeout: 10 * time.Second}, nil
}

type idPayload struct {
	ID int64 `json:"id"`
}

// Login exchanges credentials for a token and remembers it.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "user/login", nil, body, &out); err != nil {
		return "", err
	}
	c.Token = out.Token
	return out.Token, nil
}

// Info returns the profile of the current token.
func (c *Client) Info(ctx context.Context) (*models.UserInfo, error) {
	var info models.UserInfo
	q := url.Values{"token": {c.Token}}
	if err := c.do(ctx, http.MethodGet, "user/info", q, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Logout tells the server and forgets the token.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "user/logout", nil, nil, nil); err != nil {
		return err
	}
	c.Token = ""
	return nil
}

// List fetches one page of a resource ("article", "meetingroom"). params
// carries page, limit, sort and filters.
func (c *Client) List(ctx context.Context, resource string, params url.Values) (*models.ListResult, error) {
	var res models.ListResult
	if err := c.do(ctx, http.MethodGet, resource+"/list", params, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Detail fetches one record.
func (c *Client) Detail(ctx context.Context, resource string, id int64) (*models.Record, error) {
	var rec models.Record
	q := url.Values{"id": {strconv.FormatInt(id, 10)}}
	if err := c.do(ctx, http.MethodGet, resource+"/detail", q, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create stores rec and returns the new id.
func (c *Client) Create(ctx context.Context, resource string, rec models.Record) (int64, error) {
	var out idPayload
	if err := c.do(ctx, http.MethodPost, resource+"/create", nil, rec, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// Update replaces the record rec.ID.
func (c *Client) Update(ctx context.Context, resource string, rec models.Record) error {
	return c.do(ctx, http.MethodPost, resource+"/update", nil, rec, nil)
}

// Pageviews raises the counter of a record by delta.
func (c *Client) Pageviews(ctx context.Context, resource string, id, delta int64) error {
	q := url.Values{
		"id": {strconv.FormatInt(id, 10)},
		"pv": {strconv.FormatInt(delta, 10)},
	}
	return c.do(ctx, http.MethodGet, resource+"/pv", q, nil, nil)
}

// Delete removes a record.
func (c *Client) Delete(ctx context.Context, resource string, id int64) error {
	return c.do(ctx, http.MethodPost, resource+"/delete", nil, idPayload{ID: id}, nil)
}

// do sends one request and decodes the data field of the envelope into out.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any) error {
	u := c.BaseURL + "/" + c.App + "/" + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set(middleware.TokenHeader, c.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env struct {
		Code    int             `json:"code"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || env.Code != codeOK {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode data: %w", err)
		}
	}
	return nil
}
