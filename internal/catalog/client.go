package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/gamingmarket/internal/domain"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	opAll        = "all"
	opFeatured   = "featured"
	opByID       = "by_id"
	opByCategory = "by_category"

	maxBodyBytes = 10 << 20
)

type Options struct {
	BaseURL string
	// Timeout bounds one backend round trip.
	Timeout time.Duration
	// BreakerFailures consecutive failures open the breaker for BreakerTimeout.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// Client reads products from the REST catalog. It does not retry or cache.
// Identical in-flight GETs share one round trip, and while the backend keeps
// failing the breaker rejects calls without touching the network.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	sfg     singleflight.Group
	log     *zap.Logger
}

func NewClient(opts Options, log *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	failures := opts.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "catalog",
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// a 4xx means the backend answered
			var fe *FetchError
			if errors.As(err, &fe) && fe.StatusCode >= 400 && fe.StatusCode < 500 {
				return true
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		timeout: opts.Timeout,
		http:    &http.Client{Transport: otelhttp.NewTransport(base)},
		breaker: breaker,
		log:     log,
	}
}

func (c *Client) All(ctx context.Context) ([]domain.Product, error) {
	return c.list(ctx, opAll, "/products")
}

func (c *Client) Featured(ctx context.Context) ([]domain.Product, error) {
	return c.list(ctx, opFeatured, "/products/featured")
}

// ByCategory lists a category; sub is sent only when it is not blank.
func (c *Client) ByCategory(ctx context.Context, category, sub string) ([]domain.Product, error) {
	path := "/products/category/" + url.PathEscape(category)
	if sub = strings.TrimSpace(sub); sub != "" {
		path += "?" + url.Values{"sub": {sub}}.Encode()
	}
	return c.list(ctx, opByCategory, path)
}

func (c *Client) ByID(ctx context.Context, id int64) (*domain.Product, error) {
	u := c.baseURL + "/products/" + strconv.FormatInt(id, 10)
	body, err := c.get(ctx, opByID, u)
	if err != nil {
		return nil, err
	}

	var p domain.Product
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &FetchError{Op: opByID, URL: u, Err: fmt.Errorf("decode product: %w", err)}
	}
	p.Normalize()
	return &p, nil
}

func (c *Client) list(ctx context.Context, op, path string) ([]domain.Product, error) {
	u := c.baseURL + path
	body, err := c.get(ctx, op, u)
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, &FetchError{Op: op, URL: u, Err: fmt.Errorf("decode products: %w", err)}
	}
	for i := range products {
		products[i].Normalize()
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// get shares one round trip between concurrent callers of the same URL. The
// shared fetch is detached from any single caller; each caller stops waiting
// when its own context ends.
func (c *Client) get(ctx context.Context, op, u string) ([]byte, error) {
	ch := c.sfg.DoChan(u, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		body, err := c.breaker.Execute(func() ([]byte, error) {
			return c.fetch(fctx, op, u)
		})
		if err != nil {
			var fe *FetchError
			if !errors.As(err, &fe) {
				// open or half-open breaker
				err = &FetchError{Op: op, URL: u, Err: err}
			}
			return nil, err
		}
		return body, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			c.log.Debug("catalog fetch failed", zap.String("op", op), zap.String("url", u), zap.Error(res.Err))
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (c *Client) fetch(ctx context.Context, op, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{Op: op, URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Op: op, URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &FetchError{Op: op, URL: u, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Op: op, URL: u, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}
