// ABOUTME: Endpoint methods for auth, news, categories, and motivations
// ABOUTME: Every call except login/register carries the bearer token

package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Login calls POST /auth/login
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.sendJSON(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"email": email, "password": password},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &APIError{Kind: KindDecode, Message: "invalid response from backend: missing token"}
	}
	return &resp, nil
}

// Register calls POST /auth/register
func (c *Client) Register(ctx context.Context, input RegisterInput) error {
	return c.sendJSON(ctx, request{
		method: http.MethodPost,
		path:   "/auth/register",
		body:   input,
	}, nil)
}

// ListNews calls GET /news
func (c *Client) ListNews(ctx context.Context) ([]NewsItem, error) {
	return sendList[NewsItem](ctx, c, request{method: http.MethodGet, path: "/news", auth: true})
}

// SearchNews calls GET /news?search=<query>
func (c *Client) SearchNews(ctx context.Context, query string) ([]NewsItem, error) {
	return sendList[NewsItem](ctx, c, request{
		method: http.MethodGet,
		path:   "/news",
		query:  url.Values{"search": {query}},
		auth:   true,
	})
}

// GetNews calls GET /news/{id}
func (c *Client) GetNews(ctx context.Context, id int) (*NewsItem, error) {
	var item NewsItem
	if err := c.sendJSON(ctx, request{method: http.MethodGet, path: newsPath(id), auth: true}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateNews calls POST /news
func (c *Client) CreateNews(ctx context.Context, input NewsInput) (*NewsItem, error) {
	var item NewsItem
	if err := c.sendJSON(ctx, request{method: http.MethodPost, path: "/news", body: input, auth: true}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateNews calls PATCH /news/{id}
func (c *Client) UpdateNews(ctx context.Context, id int, input NewsInput) (*NewsItem, error) {
	var item NewsItem
	if err := c.sendJSON(ctx, request{method: http.MethodPatch, path: newsPath(id), body: input, auth: true}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteNews calls DELETE /news/{id}
func (c *Client) DeleteNews(ctx context.Context, id int) error {
	return c.sendJSON(ctx, request{method: http.MethodDelete, path: newsPath(id), auth: true}, nil)
}

// ListCategories calls GET /news-category
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	return sendList[Category](ctx, c, request{method: http.MethodGet, path: "/news-category", auth: true})
}

// GetCategory calls GET /news-category/{id}, optionally embedding its news
func (c *Client) GetCategory(ctx context.Context, id int, withNews bool) (*CategoryWithNews, error) {
	r := request{method: http.MethodGet, path: "/news-category/" + strconv.Itoa(id), auth: true}
	if withNews {
		r.query = url.Values{"withNews": {"true"}}
	}
	var cat CategoryWithNews
	if err := c.sendJSON(ctx, r, &cat); err != nil {
		return nil, err
	}
	if cat.News == nil {
		cat.News = []NewsItem{}
	}
	return &cat, nil
}

// ListMotivations calls GET /motivations
func (c *Client) ListMotivations(ctx context.Context) ([]Motivation, error) {
	return sendList[Motivation](ctx, c, request{method: http.MethodGet, path: "/motivations", auth: true})
}

// GetMotivation calls GET /motivations/{id}
func (c *Client) GetMotivation(ctx context.Context, id int) (*Motivation, error) {
	var m Motivation
	if err := c.sendJSON(ctx, request{method: http.MethodGet, path: motivationPath(id), auth: true}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMotivation calls POST /motivations
func (c *Client) CreateMotivation(ctx context.Context, input MotivationInput) (*Motivation, error) {
	var m Motivation
	if err := c.sendJSON(ctx, request{method: http.MethodPost, path: "/motivations", body: input, auth: true}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMotivation calls PATCH /motivations/{id}
func (c *Client) UpdateMotivation(ctx context.Context, id int, input MotivationInput) (*Motivation, error) {
	var m Motivation
	if err := c.sendJSON(ctx, request{method: http.MethodPatch, path: motivationPath(id), body: input, auth: true}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMotivation calls DELETE /motivations/{id}
func (c *Client) DeleteMotivation(ctx context.Context, id int) error {
	return c.sendJSON(ctx, request{method: http.MethodDelete, path: motivationPath(id), auth: true}, nil)
}

func newsPath(id int) string {
	return "/news/" + strconv.Itoa(id)
}

func motivationPath(id int) string {
	return "/motivations/" + strconv.Itoa(id)
}
