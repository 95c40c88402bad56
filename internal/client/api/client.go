// Package api is the HTTP client the field tool uses to talk to the hub.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	syncdomain "osca-hub-go/internal/domain/sync"
)

// Error is a decoded server rejection.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server rejected request: %s (%s)", e.Message, e.Code)
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) SetToken(token string) {
	c.token = token
}

type Account struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	FullName     string  `json:"full_name"`
	Role         string  `json:"role"`
	BarangayCode *string `json:"barangay_code,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string  `json:"token"`
	Account Account `json:"account"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*Account, error) {
	var response loginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, loginRequest{Email: email, Password: password}, &response)
	if err != nil {
		return nil, err
	}
	c.token = response.Token
	return &response.Account, nil
}

// Ping hits the health endpoint. Used as the connectivity probe.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil, nil)
}

type SeniorSummary struct {
	ID           string `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	BarangayCode string `json:"barangay_code"`
	BarangayName string `json:"barangay_name"`
}

type seniorListResponse struct {
	Items []SeniorSummary `json:"items"`
	Total int64           `json:"total"`
}

func (c *Client) ListSeniors(ctx context.Context) ([]SeniorSummary, error) {
	var response seniorListResponse
	if err := c.do(ctx, http.MethodGet, "/api/seniors", nil, nil, &response); err != nil {
		return nil, err
	}
	return response.Items, nil
}

// BatchOperation is one queued change as it travels on the wire.
type BatchOperation struct {
	OperationID string          `json:"operation_id"`
	Type        string          `json:"type"`
	LocalID     string          `json:"local_id,omitempty"`
	Payload     json.RawMessage `json:"payload"`
}

type batchRequest struct {
	Operations []BatchOperation `json:"operations"`
}

func (c *Client) SyncBatch(ctx context.Context, idempotencyKey string, operations []BatchOperation) (*syncdomain.BatchResponse, error) {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}

	var response syncdomain.BatchResponse
	if err := c.do(ctx, http.MethodPost, "/api/sync", headers, batchRequest{Operations: operations}, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Error.Code == "" {
		return &Error{Status: resp.StatusCode, Code: "unexpected_status", Message: resp.Status}
	}
	return &Error{Status: resp.StatusCode, Code: envelope.Error.Code, Message: envelope.Error.Message}
}
