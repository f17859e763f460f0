package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxRESTBody caps how much of a context response is read (1MB).
const maxRESTBody = 1 * 1024 * 1024

// Source describes a REST endpoint whose response becomes section content.
type Source struct {
	URL     string
	Method  string // empty means GET
	Headers map[string]string
	Params  map[string]string
}

// FetchREST performs the call described by src and renders the outcome as
// "Status: <code>\nResponse: <body>". Params become the query string for GET
// and a JSON body for everything else. Transport failures return an error so
// the caller can decide whether a missing section is fatal.
func FetchREST(ctx context.Context, client *http.Client, src Source) (string, error) {
	if src.URL == "" {
		return "", fmt.Errorf("source URL is required")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	method := strings.ToUpper(src.Method)
	if method == "" {
		method = http.MethodGet
	}

	endpoint := src.URL
	var body io.Reader

	if method == http.MethodGet {
		if len(src.Params) > 0 {
			u, err := url.Parse(src.URL)
			if err != nil {
				return "", fmt.Errorf("invalid source URL: %w", err)
			}
			q := u.Query()
			for k, v := range src.Params {
				q.Set(k, v)
			}
			u.RawQuery = q.Encode()
			endpoint = u.String()
		}
	} else if len(src.Params) > 0 {
		payload, err := json.Marshal(src.Params)
		if err != nil {
			return "", fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range src.Headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("rest call failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRESTBody))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	return fmt.Sprintf("Status: %d\nResponse: %s", resp.StatusCode, strings.TrimSpace(string(data))), nil
}
