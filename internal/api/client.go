// Package api is the typed client for the project manager's GraphQL
// endpoint.
//
// Every read is a live round trip: the client keeps no response cache,
// so a list re-read after a mutation always reflects what the server
// acknowledged. Authenticated calls carry the session token as a bearer
// credential; the two login mutations omit it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Config holds configuration for creating a Client.
type Config struct {
	// ServerURL is the GraphQL endpoint, e.g.
	// "http://localhost:4000/graphql". Required.
	ServerURL string

	// HTTPClient is used for all requests. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// Logger is used for structured logging. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Client issues query and mutation operations against one remote
// endpoint.
type Client struct {
	serverURL  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client from the given configuration.
func NewClient(config Config) (*Client, error) {
	serverURL := strings.TrimSpace(config.ServerURL)
	if serverURL == "" {
		return nil, fmt.Errorf("api: ServerURL is required")
	}
	if !strings.HasPrefix(serverURL, "http://") && !strings.HasPrefix(serverURL, "https://") {
		return nil, fmt.Errorf("api: ServerURL must be an http(s) URL (got %q)", serverURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		serverURL:  serverURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// OperationError is a failure reported by the remote service for a
// named operation: a GraphQL error, or a non-success HTTP status.
type OperationError struct {
	Operation string
	Status    int    // HTTP status, 0 for GraphQL-level errors
	Message   string // first server-reported message
}

func (e *OperationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: server returned status %d: %s", e.Operation, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// do posts one operation and decodes the data payload into out. A token
// of "" sends no authorization header.
func (c *Client) do(ctx context.Context, operation, query string, variables map[string]any, token string, out any) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", operation, err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", operation, err)
	}
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Warn("operation failed", "operation", operation, "error", err)
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", operation, err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		opErr := &OperationError{
			Operation: operation,
			Status:    response.StatusCode,
			Message:   strings.TrimSpace(string(payload)),
		}
		c.logger.Warn("operation failed", "operation", operation, "status", response.StatusCode)
		return opErr
	}

	var decoded gqlResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	if len(decoded.Errors) > 0 {
		opErr := &OperationError{Operation: operation, Message: decoded.Errors[0].Message}
		c.logger.Warn("operation failed", "operation", operation, "error", opErr.Message)
		return opErr
	}

	c.logger.Debug("operation completed",
		"operation", operation,
		"duration", time.Since(start),
	)

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(decoded.Data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", operation, err)
	}
	return nil
}
