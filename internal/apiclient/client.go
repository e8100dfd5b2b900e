package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tinytelemetry/prci/internal/model"
)

// API paths of the dashboard backend.
//
//   Endpoint                          Method   Body                                  Result
//   ───────────────────────────────   ──────   ───────────────────────────────────   ──────────────────────────────
//   /api/auth/status                  GET      (none)                                {authenticated, error?}
//   /api/default-query                GET      (none)                                {query}
//   /api/search                       POST     {query, page, per_page}               {prs, total} | {error}
//   /api/pr/{owner}/{repo}/{number}   GET      (none)                                {e2e, payload}
//   /api/retest                       POST     {owner, repo, pr, jobs, type}         {success} | {error}
const (
	PathAuthStatus   = "/api/auth/status"
	PathDefaultQuery = "/api/default-query"
	PathSearch       = "/api/search"
	PathPR           = "/api/pr/"
	PathRetest       = "/api/retest"
)

// Client implements model.Backend over HTTP. It does not retry; the only
// deadline is the one carried by the caller's context.
type Client struct {
	baseURL  string
	http     *http.Client
	validate *validator.Validate
}

// New creates a client for the backend at baseURL. A nil httpClient uses
// http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     httpClient,
		validate: validator.New(),
	}
}

var _ model.Backend = (*Client)(nil)

// errorBody is the {"error": ...} envelope shared by every endpoint.
type errorBody struct {
	Error string `json:"error"`
}

// do sends a request and decodes the JSON response body into dest.
// Non-2xx responses are turned into errors using the error envelope when present.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: marshal %s: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("apiclient: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("apiclient: read %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			return classify(eb.Error)
		}
		return fmt.Errorf("apiclient: %s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("apiclient: decode %s: %w", path, err)
	}
	return nil
}

// classify maps a backend error string onto the model error types.
func classify(msg string) error {
	if msg == model.ErrAuthFailed.Error() {
		return model.ErrAuthFailed
	}
	return &model.APIError{Message: msg}
}

func (c *Client) AuthStatus(ctx context.Context) (model.AuthStatus, error) {
	var result model.AuthStatus
	err := c.do(ctx, http.MethodGet, PathAuthStatus, nil, &result)
	return result, err
}

func (c *Client) DefaultQuery(ctx context.Context) (string, error) {
	var result struct {
		Query string `json:"query"`
	}
	err := c.do(ctx, http.MethodGet, PathDefaultQuery, nil, &result)
	return result.Query, err
}

func (c *Client) Search(ctx context.Context, query string, page, perPage int) (model.SearchResult, error) {
	reqBody := map[string]interface{}{
		"query":    query,
		"page":     page,
		"per_page": perPage,
	}
	var result struct {
		model.SearchResult
		errorBody
	}
	if err := c.do(ctx, http.MethodPost, PathSearch, reqBody, &result); err != nil {
		return model.SearchResult{}, err
	}
	if result.Error != "" {
		return model.SearchResult{}, classify(result.Error)
	}
	return result.SearchResult, nil
}

func (c *Client) PRJobs(ctx context.Context, owner, repo string, number int) (model.PRJobs, error) {
	path := PathPR + url.PathEscape(owner) + "/" + url.PathEscape(repo) + "/" + strconv.Itoa(number)
	var result struct {
		model.PRJobs
		errorBody
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return model.PRJobs{}, err
	}
	if result.Error != "" {
		return model.PRJobs{}, classify(result.Error)
	}
	return result.PRJobs, nil
}

// Retest submits a retest. It returns model.ErrAuthFailed when the backend
// lacks credentials and *model.APIError for any other reported failure.
func (c *Client) Retest(ctx context.Context, req model.RetestRequest) error {
	if err := c.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return fmt.Errorf("apiclient: invalid retest request: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("apiclient: invalid retest request: %w", err)
	}

	var result struct {
		Success bool `json:"success"`
		errorBody
	}
	if err := c.do(ctx, http.MethodPost, PathRetest, req, &result); err != nil {
		return err
	}
	if result.Error != "" {
		return classify(result.Error)
	}
	if !result.Success {
		return &model.APIError{Message: "retest was not accepted"}
	}
	return nil
}
