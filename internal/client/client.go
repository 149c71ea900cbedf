// Package client talks to the BandoXanh HTTP API.
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

	"backend-bandoxanh/internal/feed"
	"backend-bandoxanh/internal/feedstore"
	"backend-bandoxanh/internal/mapview"
	"backend-bandoxanh/internal/poi"

	"github.com/google/go-querystring/query"
	"github.com/pkg/errors"
)

const DefaultBaseURL = "http://localhost:8080"

// APIError is any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type Client struct {
	BaseURL    *url.URL
	Token      string
	HTTPClient *http.Client
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.Token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("base url %q needs scheme and host", baseURL)
	}

	c := &Client{
		BaseURL: u,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ feedstore.API = (*Client)(nil)

// MapQuery mirrors the /api/map query string.
type MapQuery struct {
	Category string   `url:"category,omitempty"`
	Search   string   `url:"q,omitempty"`
	RadiusKm int      `url:"radius,omitempty"`
	Lat      *float64 `url:"lat,omitempty"`
	Lng      *float64 `url:"lng,omitempty"`
}

// Sources fetches the five point-of-interest lists.
func (c *Client) Sources(ctx context.Context) (poi.Lists, error) {
	var lists poi.Lists
	if err := c.do(ctx, http.MethodGet, "/api/stations", nil, nil, &lists.Stations); err != nil {
		return poi.Lists{}, err
	}
	if err := c.do(ctx, http.MethodGet, "/api/events", nil, nil, &lists.Events); err != nil {
		return poi.Lists{}, err
	}
	if err := c.do(ctx, http.MethodGet, "/api/bikes", nil, nil, &lists.Bikes); err != nil {
		return poi.Lists{}, err
	}
	if err := c.do(ctx, http.MethodGet, "/api/restaurants", nil, nil, &lists.Restaurants); err != nil {
		return poi.Lists{}, err
	}
	if err := c.do(ctx, http.MethodGet, "/api/donations", nil, nil, &lists.Donations); err != nil {
		return poi.Lists{}, err
	}
	return lists, nil
}

// Map runs the filter server-side.
func (c *Client) Map(ctx context.Context, q MapQuery) (mapview.Response, error) {
	params, err := query.Values(q)
	if err != nil {
		return mapview.Response{}, errors.Wrap(err, "encode map query")
	}
	var resp mapview.Response
	err = c.do(ctx, http.MethodGet, "/api/map", params, nil, &resp)
	return resp, err
}

// ListPosts loads a feed tab. An unauthorised following feed is empty.
func (c *Client) ListPosts(ctx context.Context, tab feedstore.Tab) ([]feed.Post, error) {
	switch tab {
	case feedstore.Explore:
		posts := []feed.Post{}
		if err := c.do(ctx, http.MethodGet, "/api/posts", nil, nil, &posts); err != nil {
			return nil, err
		}
		return posts, nil
	case feedstore.Following:
		var body struct {
			Posts []feed.Post `json:"posts"`
		}
		err := c.do(ctx, http.MethodGet, "/api/posts/following", nil, nil, &body)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return []feed.Post{}, nil
		}
		if err != nil {
			return nil, err
		}
		if body.Posts == nil {
			body.Posts = []feed.Post{}
		}
		return body.Posts, nil
	}
	return nil, feedstore.ErrUnknownTab
}

func (c *Client) CreatePost(ctx context.Context, input feed.PostInput) (feed.Post, error) {
	var post feed.Post
	err := c.do(ctx, http.MethodPost, "/api/posts", nil, input, &post)
	return post, err
}

func (c *Client) UpdatePost(ctx context.Context, id string, input feed.PostInput) (feed.Post, error) {
	var post feed.Post
	err := c.do(ctx, http.MethodPut, "/api/posts/"+url.PathEscape(id), nil, input, &post)
	return post, err
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) LikePost(ctx context.Context, id string) (feed.LikeResult, error) {
	var res feed.LikeResult
	err := c.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(id)+"/like", nil, nil, &res)
	return res, err
}

func (c *Client) CreateComment(ctx context.Context, postID string, input feed.CommentInput) (feed.Comment, error) {
	var comment feed.Comment
	err := c.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/comment", nil, input, &comment)
	return comment, err
}

func (c *Client) UpdateComment(ctx context.Context, postID, commentID string, input feed.CommentInput) (feed.Comment, error) {
	var comment feed.Comment
	err := c.do(ctx, http.MethodPut, commentPath(postID, commentID), nil, input, &comment)
	return comment, err
}

func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) error {
	return c.do(ctx, http.MethodDelete, commentPath(postID, commentID), nil, nil, nil)
}

func commentPath(postID, commentID string) string {
	return "/api/posts/" + url.PathEscape(postID) + "/comment/" + url.PathEscape(commentID)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	u := *c.BaseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if params != nil {
		u.RawQuery = params.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s %s", method, path)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil {
		switch {
		case body.Error != "":
			msg = body.Error
		case body.Message != "":
			msg = body.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
