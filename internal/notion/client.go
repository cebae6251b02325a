package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"notion-forms/internal/config"
	"notion-forms/internal/instrument"
)

const maxErrorBody = 64 << 10

// TokenSource supplies the integration token used for a request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", fmt.Errorf("no notion token configured")
	}
	return string(t), nil
}

// APIError is the error object returned by the Notion API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion %d %s: %s", e.Status, e.Code, e.Message)
}

// Client is a minimal Notion REST client covering search, database
// retrieval and page creation.
type Client struct {
	baseURL    string
	version    string
	httpClient *http.Client
	tokens     TokenSource
}

func NewClient(cfg config.NotionConfig, tokens TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		version:    cfg.Version,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		tokens:     tokens,
	}
}

// do sends one API call. body may be nil; out receives the decoded 2xx body.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (err error) {
	ctx, span := instrument.GetInstrumenter(ctx).StartSpan(ctx, "notion", "client", op)
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			span.SetStatus("error")
			span.SetMetadata("error", err.Error())
		} else {
			span.SetStatus("ok")
		}
		instrument.NotionRequestDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
		span.End()
	}()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Notion-Version", c.version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	span.SetMetadata("status_code", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}
