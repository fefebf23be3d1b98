// Package client talks to the canteen API the way the web front end does:
// short read calls driven by a polling loop.
package client

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

	"canteen_manager/model"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Kind    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("canteen api: %d %s: %s", e.Status, e.Kind, e.Message)
}

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	// Timeout bounds each request, on top of any context deadline.
	Timeout time.Duration
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{},
		Timeout: 5 * time.Second,
	}
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   interface{}     `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		return fmt.Errorf("canteen api: decode %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 300 {
		kind, _ := env.Error.(string)
		return &APIError{Status: resp.StatusCode, Kind: kind, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func (c *Client) Login(ctx context.Context, email, password string) (model.TokenData, error) {
	var out model.TokenData
	err := c.do(ctx, http.MethodPost, "/login", model.LoginInput{Email: email, Password: password}, &out)
	if err == nil {
		c.Token = out.Token
	}
	return out, err
}

func (c *Client) OwnerLogin(ctx context.Context, masterKey string) (model.TokenData, error) {
	var out model.TokenData
	err := c.do(ctx, http.MethodPost, "/owner-login", model.OwnerLoginInput{MasterKey: masterKey}, &out)
	if err == nil {
		c.Token = out.Token
	}
	return out, err
}

func (c *Client) Menu(ctx context.Context, category string) ([]model.MenuItemView, error) {
	path := "/menu"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	var out []model.MenuItemView
	return out, c.do(ctx, http.MethodGet, path, nil, &out)
}

// NowServing returns the token being served, or "--".
func (c *Client) NowServing(ctx context.Context) (string, error) {
	var out model.NowServing
	if err := c.do(ctx, http.MethodGet, "/public/now-serving", nil, &out); err != nil {
		return "", err
	}
	switch v := out.NowServing.(type) {
	case float64:
		return fmt.Sprintf("%d", int(v)), nil
	case string:
		return v, nil
	default:
		return fmt.Sprint(v), nil
	}
}

func (c *Client) MyOrders(ctx context.Context) ([]model.OrderView, error) {
	var out []model.OrderView
	return out, c.do(ctx, http.MethodGet, "/my-orders", nil, &out)
}

func (c *Client) AdminOrders(ctx context.Context, status string) ([]model.OrderView, error) {
	path := "/admin/orders"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var out []model.OrderView
	return out, c.do(ctx, http.MethodGet, path, nil, &out)
}

func (c *Client) Revenue(ctx context.Context) (model.RevenueSummary, error) {
	var out model.RevenueSummary
	return out, c.do(ctx, http.MethodGet, "/admin/revenue", nil, &out)
}

func (c *Client) SetStatus(ctx context.Context, orderId uint, status string) (model.Order, error) {
	var out model.Order
	path := fmt.Sprintf("/admin/orders/%d/status", orderId)
	return out, c.do(ctx, http.MethodPut, path, model.UpdateOrderStatusInput{Status: status}, &out)
}
