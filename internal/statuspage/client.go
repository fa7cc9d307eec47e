package statuspage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Endpoints under the status-page base URL.
const (
	EndpointSections  = "sections"
	EndpointResources = "resources"
	EndpointReports   = "status-reports"
)

// maxBodyBytes caps how much of an upstream body is read.
const maxBodyBytes = 4 << 20

// ErrNotConfigured is returned when no base URL was supplied.
var ErrNotConfigured = errors.New("statuspage: base URL is not configured")

// Client talks to the status-page API with a bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a status-page client whose calls are bounded by timeout.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Sections fetches every section.
func (c *Client) Sections(ctx context.Context) (Result[RawSection], error) {
	var docs []sectionDoc
	status, err := c.get(ctx, EndpointSections, &docs, true)
	if err != nil || !isSuccess(status) {
		return Result[RawSection]{StatusCode: status}, err
	}
	out := make([]RawSection, 0, len(docs))
	for _, d := range docs {
		s, err := d.toRaw()
		if err != nil {
			return Result[RawSection]{StatusCode: status}, fmt.Errorf("decode %s: %w", EndpointSections, err)
		}
		out = append(out, s)
	}
	return Result[RawSection]{StatusCode: status, Data: out}, nil
}

// Resources fetches every resource, preserving upstream order.
func (c *Client) Resources(ctx context.Context) (Result[RawResource], error) {
	var docs []resourceDoc
	status, err := c.get(ctx, EndpointResources, &docs, true)
	if err != nil || !isSuccess(status) {
		return Result[RawResource]{StatusCode: status}, err
	}
	out := make([]RawResource, 0, len(docs))
	for _, d := range docs {
		r, err := d.toRaw()
		if err != nil {
			return Result[RawResource]{StatusCode: status}, fmt.Errorf("decode %s: %w", EndpointResources, err)
		}
		out = append(out, r)
	}
	return Result[RawResource]{StatusCode: status, Data: out}, nil
}

// Reports fetches every status report. A response without a data array
// yields no reports rather than an error.
func (c *Client) Reports(ctx context.Context) (Result[RawReport], error) {
	var docs []reportDoc
	status, err := c.get(ctx, EndpointReports, &docs, false)
	if err != nil || !isSuccess(status) {
		return Result[RawReport]{StatusCode: status}, err
	}
	out := make([]RawReport, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toRaw())
	}
	return Result[RawReport]{StatusCode: status, Data: out}, nil
}

// get performs the request and parses the body as JSON whatever the status.
// The data array is only unpacked into out for 2xx responses.
func (c *Client) get(ctx context.Context, endpoint string, out any, requireData bool) (int, error) {
	if c.baseURL == "" {
		return 0, ErrNotConfigured
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request %s: %w", url, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read %s: %w", endpoint, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return resp.StatusCode, fmt.Errorf("unmarshal %s: %w", endpoint, err)
	}
	if !isSuccess(resp.StatusCode) {
		return resp.StatusCode, nil
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		if requireData {
			return resp.StatusCode, fmt.Errorf("%s: %w", endpoint, ErrMissingData)
		}
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("unmarshal %s data: %w", endpoint, err)
	}
	return resp.StatusCode, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
