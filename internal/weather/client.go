package weather

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resty.dev/v3"
)

// Point is a geographic location in decimal degrees.
type Point struct {
	Lon float64
	Lat float64
}

func (p Point) String() string {
	return fmt.Sprintf("%.4f,%.4f", p.Lon, p.Lat)
}

// Provider fetches daily weather for a point over an inclusive date range.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, pt Point, start, end time.Time) (*Series, error)
}

type clientConfig struct {
	baseURL   string
	retries   int
	retryWait time.Duration
	maxWait   time.Duration
	timeout   time.Duration
	userAgent string
}

// Option configures a provider's HTTP client.
type Option func(*clientConfig)

// WithBaseURL points the provider at a different endpoint.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithRetry sets how many times a failed request is retried and the
// initial backoff between attempts.
func WithRetry(count int, wait time.Duration) Option {
	return func(c *clientConfig) {
		c.retries = count
		c.retryWait = wait
		if c.maxWait < wait {
			c.maxWait = wait
		}
	}
}

// WithTimeout bounds a single request attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.timeout = d }
}

func newClient(defaultURL string, opts []Option) (*resty.Client, string) {
	cfg := &clientConfig{
		baseURL:   defaultURL,
		retries:   3,
		retryWait: time.Second,
		maxWait:   10 * time.Second,
		timeout:   2 * time.Minute,
		userAgent: "apsimgo",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	client := resty.New().
		SetTimeout(cfg.timeout).
		SetRetryCount(cfg.retries).
		SetRetryWaitTime(cfg.retryWait).
		SetRetryMaxWaitTime(cfg.maxWait).
		SetHeader("User-Agent", cfg.userAgent)
	return client, cfg.baseURL
}

// NewProvider returns the provider registered under name.
func NewProvider(name string, opts ...Option) (Provider, error) {
	switch strings.ToLower(name) {
	case "", "power", "nasa", "nasa_power":
		return NewPower(opts...), nil
	case "daymet":
		return NewDaymet(opts...), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q (want power or daymet)", name)
	}
}

func checkRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("weather date range is incomplete")
	}
	if end.Before(start) {
		return fmt.Errorf("weather end date %s is before start date %s", end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	return nil
}
