package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://openlibrary.org"

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
}

type Option func(*Client)

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func NewClient(userAgent string, rps int, maxRetries int, opts ...Option) *Client {
	if rps <= 0 {
		rps = 1
	}
	c := &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent:  userAgent,
		baseURL:    DefaultBaseURL,
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries: maxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Publisher struct {
	Name string `json:"name"`
}

type Author struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// BookDetails matches api/books?jscmd=data
type BookDetails struct {
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle"`
	Publishers  []Publisher `json:"publishers"`
	PublishDate string      `json:"publish_date"`
	Cover       struct {
		Large string `json:"large"`
	} `json:"cover"`
	Authors  []Author `json:"authors"`
	Subjects []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"subjects"`
	NumberOfPages int `json:"number_of_pages"`
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.code)
}

func (c *Client) GetBooksByISBN(ctx context.Context, isbns []string) (map[string]BookDetails, error) {
	if len(isbns) == 0 {
		return nil, nil
	}

	bibkeys := make([]string, len(isbns))
	for i, isbn := range isbns {
		bibkeys[i] = "ISBN:" + isbn
	}

	u := fmt.Sprintf("%s/api/books?bibkeys=%s&jscmd=data&format=json",
		c.baseURL, strings.Join(bibkeys, ","))

	var res map[string]BookDetails
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// LookupISBN returns the details for a single ISBN. found is false when
// Open Library has no record for it; that is not an error.
func (c *Client) LookupISBN(ctx context.Context, isbn string) (*BookDetails, bool, error) {
	res, err := c.GetBooksByISBN(ctx, []string{isbn})
	if err != nil {
		return nil, false, err
	}
	details, ok := res["ISBN:"+isbn]
	if !ok {
		return nil, false, nil
	}
	return &details, true, nil
}

func (c *Client) get(ctx context.Context, url string, target interface{}) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: 1s, 2s, 4s...
			backoff := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		err := c.do(ctx, url, target)
		if err == nil {
			return nil
		}
		var se *statusError
		if errors.As(err, &se) && se.code != http.StatusTooManyRequests && se.code < 500 {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) do(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode}
	}
	return json.NewDecoder(resp.Body).Decode(target)
}
