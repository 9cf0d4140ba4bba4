package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hollowpoint-games/accountsync/internal/model"
)

// Client is an HTTP client for the account service. It covers record
// create/fetch/update by user id; both the direct backend and the loopback
// host route through it.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new account service client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithHTTP creates a client with a custom http.Client (for testing)
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Register creates a new account and returns its session and fresh profile.
func (c *Client) Register(ctx context.Context, email, password, username string) (*AuthResult, error) {
	var resp AuthResponse
	req := RegisterRequest{Email: email, Password: password, Username: username}
	if err := c.do(ctx, http.MethodPost, "/v1/register", "", req, &resp); err != nil {
		return nil, err
	}
	return resp.ToAuthResult(), nil
}

// Login authenticates with credentials and returns the session and the
// account's current profile.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var resp AuthResponse
	req := LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/v1/login", "", req, &resp); err != nil {
		return nil, err
	}
	return resp.ToAuthResult(), nil
}

// FetchSession resolves a still-valid session from an access token; used by
// session restore after a process restart.
func (c *Client) FetchSession(ctx context.Context, accessToken string) (*AuthResult, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodGet, "/v1/session", accessToken, nil, &resp); err != nil {
		return nil, err
	}
	return resp.ToAuthResult(), nil
}

// FetchProfile fetches the remote profile record for a user id.
func (c *Client) FetchProfile(ctx context.Context, accessToken string, id model.UserID) (*model.PlayerProfile, error) {
	var resp ProfileResponse
	path := "/v1/profile/" + string(id)
	if err := c.do(ctx, http.MethodGet, path, accessToken, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Profile.ToModel(), nil
}

// PushProfile writes the full profile to the remote service and returns the
// stored record with its bumped update timestamp.
func (c *Client) PushProfile(ctx context.Context, accessToken string, p *model.PlayerProfile) (*model.PlayerProfile, error) {
	var resp ProfileResponse
	path := "/v1/profile/" + string(p.UserID)
	if err := c.do(ctx, http.MethodPut, path, accessToken, ProfileFromModel(p), &resp); err != nil {
		return nil, err
	}
	return resp.Profile.ToModel(), nil
}

// SignOut invalidates the session server-side.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/v1/signout", accessToken, nil, nil)
}

// do performs an HTTP request and maps failures onto the error taxonomy
func (c *Client) do(ctx context.Context, method, path, accessToken string, body, result any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", model.ErrTransport, err)
	}

	if resp.StatusCode >= 400 {
		return c.errorFromResponse(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: failed to parse response: %v", model.ErrTransport, err)
		}
	}
	return nil
}

// errorFromResponse maps an error response onto the typed taxonomy. The body
// code wins when present; the status code is the fallback.
func (c *Client) errorFromResponse(status int, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Code != "" {
		return model.ErrorForCode(errResp.Error.Code, errResp.Error.Message)
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return model.ErrAuth
	case http.StatusNotFound:
		return model.ErrNotFound
	case http.StatusConflict:
		return model.ErrEmailExists
	case http.StatusBadRequest:
		return model.ErrValidation
	default:
		return fmt.Errorf("%w: unexpected status %d", model.ErrTransport, status)
	}
}
