package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"uptotimenews/internal/model"
)

const DefaultMediastackURL = "http://api.mediastack.com/v1/news"

type MediastackClient struct {
	endpoint   string
	httpClient *http.Client
}

type Option func(*MediastackClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *MediastackClient) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *MediastackClient) {
		c.httpClient.Timeout = d
	}
}

// NewMediastackClient returns a client for a fully built endpoint URL. The
// URL is used as given; credentials and filters are expected in its query.
func NewMediastackClient(endpoint string, opts ...Option) *MediastackClient {
	c := &MediastackClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildMediastackURL appends access_key and countries to base.
func BuildMediastackURL(base, accessKey, countries string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse mediastack base url: %w", err)
	}

	q := u.Query()
	if accessKey != "" {
		q.Set("access_key", accessKey)
	}
	if countries != "" {
		q.Set("countries", countries)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (c *MediastackClient) Name() string {
	return "Mediastack"
}

func (c *MediastackClient) Fetch(ctx context.Context) ([]model.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, &TransportError{Source: c.Name(), Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Source: c.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Source:     c.Name(),
			StatusCode: resp.StatusCode,
			Err:        errors.New(resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Source: c.Name(), Err: err}
	}

	return decodeMediastack(c.Name(), body)
}

// decodeMediastack converts a whole response body into articles. It either
// returns every element or fails; there is no partial result.
func decodeMediastack(source string, body []byte) ([]model.Article, error) {
	var raw mediastackResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &MalformedResponseError{Source: source, Index: -1, Reason: "invalid envelope", Err: err}
	}

	if raw.Data == nil {
		return nil, &MalformedResponseError{Source: source, Index: -1, Reason: `missing "data" array`}
	}

	articles := make([]model.Article, 0, len(*raw.Data))
	for i, elem := range *raw.Data {
		var item mediastackItem
		if err := json.Unmarshal(elem, &item); err != nil {
			return nil, &MalformedResponseError{Source: source, Index: i, Reason: "invalid element", Err: err}
		}

		if item.Title == nil {
			return nil, &MalformedResponseError{Source: source, Index: i, Reason: `missing "title"`}
		}
		if item.Description == nil {
			return nil, &MalformedResponseError{Source: source, Index: i, Reason: `missing "description"`}
		}

		articles = append(articles, model.Article{
			Title:   *item.Title,
			Summary: *item.Description,
		})
	}

	return articles, nil
}

type mediastackResponse struct {
	Data *[]json.RawMessage `json:"data"`
}

type mediastackItem struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}
