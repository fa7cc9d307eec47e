package regions

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

// Reasons a platform lookup can fail, used as metric labels.
const (
	ReasonNotConfigured = "not_configured"
	ReasonTransport     = "transport"
	ReasonStatus        = "status"
	ReasonMalformed     = "malformed"
	ReasonUnknownCode   = "unknown_code"
)

// LookupError describes why the default region could not be read.
type LookupError struct {
	Reason string
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("platform lookup (%s): %v", e.Reason, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// PlatformClient reads project settings from the deployment platform.
type PlatformClient struct {
	url        string
	token      string
	httpClient *http.Client
}

// NewPlatformClient creates a client for the project endpoint at url.
func NewPlatformClient(url, token string, timeout time.Duration) *PlatformClient {
	return &PlatformClient{
		url:   url,
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// projectResponse is the subset of the project document we read.
type projectResponse struct {
	ResourceConfig *struct {
		FunctionDefaultRegions []string `json:"functionDefaultRegions"`
	} `json:"resourceConfig"`
}

// DefaultRegion returns resourceConfig.functionDefaultRegions[0].
func (c *PlatformClient) DefaultRegion(ctx context.Context) (string, error) {
	if c.url == "" {
		return "", &LookupError{Reason: ReasonNotConfigured, Err: errors.New("platform URL is not configured")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", &LookupError{Reason: ReasonNotConfigured, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &LookupError{Reason: ReasonTransport, Err: fmt.Errorf("GET %s: %w", c.url, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return "", &LookupError{Reason: ReasonStatus, Err: fmt.Errorf("platform returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}

	var project projectResponse
	if err := json.NewDecoder(resp.Body).Decode(&project); err != nil {
		return "", &LookupError{Reason: ReasonMalformed, Err: fmt.Errorf("decode response: %w", err)}
	}
	if project.ResourceConfig == nil || len(project.ResourceConfig.FunctionDefaultRegions) == 0 {
		return "", &LookupError{Reason: ReasonMalformed, Err: errors.New("response has no functionDefaultRegions")}
	}
	code := strings.TrimSpace(project.ResourceConfig.FunctionDefaultRegions[0])
	if code == "" {
		return "", &LookupError{Reason: ReasonMalformed, Err: errors.New("default region is blank")}
	}
	return code, nil
}
