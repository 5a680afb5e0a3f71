// Package orderapi is the HTTP client for a remote cafe-orders server. It
// satisfies the same store contract as the local adapters.
package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cafe-orders/internal/domain"
)

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// APIError is a non-2xx response. It unwraps to the matching domain error
// when the server sent a known code.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("orderapi: HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("orderapi: %s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return domain.ErrorForCode(e.Code)
}

type errorBody struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
	} `json:"error"`
}

type LoginResp struct {
	Token     string      `json:"token"`
	Role      domain.Role `json:"role"`
	ExpiresAt int64       `json:"expiresAt"`
}

func (c *Client) Login(ctx context.Context, role domain.Role, password string) (LoginResp, error) {
	var out LoginResp
	in := map[string]string{"role": string(role), "password": password}
	err := c.do(ctx, http.MethodPost, "/api/login", nil, in, &out)
	return out, err
}

func (c *Client) Create(ctx context.Context, d domain.Draft) (domain.Order, error) {
	var out domain.Order
	err := c.do(ctx, http.MethodPost, "/api/orders", nil, d, &out)
	return out, err
}

func (c *Client) List(ctx context.Context, f domain.Filter) ([]domain.Order, error) {
	q := url.Values{}
	for _, s := range f.Statuses {
		q.Add("status", string(s))
	}
	if f.Table != "" {
		q.Set("table", f.Table)
	}
	var out struct {
		Orders []domain.Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *Client) Get(ctx context.Context, id string) (domain.Order, error) {
	var out domain.Order
	err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	var out domain.Order
	in := map[string]string{"status": string(status)}
	err := c.do(ctx, http.MethodPatch, "/api/orders/"+url.PathEscape(id)+"/status", nil, in, &out)
	return out, err
}

func (c *Client) ResolveProduct(ctx context.Context, id string) (domain.Product, error) {
	var out domain.Product
	err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	q := url.Values{}
	if f.AvailableOnly {
		q.Set("available", "true")
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	var out struct {
		Products []domain.Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/products", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *Client) Tables(ctx context.Context) ([]string, error) {
	var out struct {
		Tables []string `json:"tables"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/tables", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Tables, nil
}

func (c *Client) Activity(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Entries []domain.ActivityEntry `json:"entries"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/activity", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		base = "http://127.0.0.1:5000"
	}
	u := strings.TrimRight(base, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	hc := c.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
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
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error.Code != "" {
			apiErr.Code = eb.Error.Code
			apiErr.Message = eb.Error.Message
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
