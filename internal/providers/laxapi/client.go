package laxapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/XavierBriggs/laxstat/internal/middleware"
	"github.com/XavierBriggs/laxstat/internal/retry"
	"github.com/XavierBriggs/laxstat/pkg/models"
)

const (
	DefaultTimeout    = 15 * time.Second
	DefaultRateLimit  = rate.Limit(10)
	DefaultAttempts   = 3
	DefaultRetryDelay = 200 * time.Millisecond

	userAgent = "laxstat-dashboard/1.0"

	// Bytes of an error body kept on APIError
	maxErrorBody = 512
)

// ErrNotFound is returned when the backend answers 404, which it does for an
// unknown team or a season outside its range
var ErrNotFound = errors.New("laxapi: not found")

// APIError is a non-2xx answer from the backend, or a body that could not be decoded
type APIError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("laxapi: %s: %s", e.Path, e.Body)
	}
	return fmt.Sprintf("laxapi: %s: status=%d, body=%s", e.Path, e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth another attempt
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Options configures a Client
type Options struct {
	BaseURL string

	// Per-request timeout (default 15s)
	Timeout time.Duration

	// Outbound request rate (default 10/s, burst 1)
	RateLimit rate.Limit

	// Total attempts per request (default 3)
	Attempts int

	// Delay before the first retry (default 200ms), grows by 1.5x
	RetryDelay time.Duration

	// Season queried by Ping; zero probes without a year filter
	ProbeSeason int

	// HTTPClient overrides the default client (Timeout is then ignored)
	HTTPClient *http.Client
}

// Client talks to the lacrosse stats backend
type Client struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	retry       *retry.RetryPolicy
	probeSeason int
}

// New creates a backend client
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		baseURL:     opts.BaseURL,
		httpClient:  httpClient,
		limiter:     rate.NewLimiter(opts.RateLimit, 1),
		retry:       retry.NewRetryPolicy(opts.Attempts, opts.RetryDelay).WithMaxDelay(5 * time.Second),
		probeSeason: opts.ProbeSeason,
	}
}

// Games fetches per-game lines matching f
func (c *Client) Games(ctx context.Context, f Filter) ([]models.Game, error) {
	var wire []wireGame
	if err := c.getJSON(ctx, GamesEndpoint, f.Values(), &wire); err != nil {
		return nil, fmt.Errorf("fetching games: %w", err)
	}

	games := make([]models.Game, len(wire))
	for i, w := range wire {
		games[i] = w.toModel(ctx)
	}
	return games, nil
}

// Teams fetches team season rows matching f, in backend order
func (c *Client) Teams(ctx context.Context, f Filter) ([]models.TeamSeasonRow, error) {
	var wire []wireTeam
	if err := c.getJSON(ctx, TeamsEndpoint, f.Values(), &wire); err != nil {
		return nil, fmt.Errorf("fetching teams: %w", err)
	}

	rows := make([]models.TeamSeasonRow, len(wire))
	for i, w := range wire {
		rows[i] = w.toModel()
	}
	return rows, nil
}

// TeamNames lists the team names playing in the given seasons, first occurrence order
func (c *Client) TeamNames(ctx context.Context, years []int) ([]string, error) {
	var names []string
	if err := c.getJSON(ctx, TeamNamesEndpoint, Filter{Years: years}.Values(), &names); err != nil {
		return nil, fmt.Errorf("fetching team names: %w", err)
	}

	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}
	return unique, nil
}

// Schedule fetches the games still to be played
func (c *Client) Schedule(ctx context.Context) ([]models.ScheduledGame, error) {
	var wire []wireScheduledGame
	if err := c.getJSON(ctx, ScheduleEndpoint, nil, &wire); err != nil {
		return nil, fmt.Errorf("fetching schedule: %w", err)
	}

	games := make([]models.ScheduledGame, len(wire))
	for i, w := range wire {
		games[i] = w.toModel(ctx)
	}
	return games, nil
}

// Results fetches the current season's played games, one line per matchup
func (c *Client) Results(ctx context.Context) ([]models.Game, error) {
	var wire []wireGame
	if err := c.getJSON(ctx, ResultsEndpoint, nil, &wire); err != nil {
		return nil, fmt.Errorf("fetching results: %w", err)
	}

	games := make([]models.Game, len(wire))
	for i, w := range wire {
		games[i] = w.toModel(ctx)
	}
	return games, nil
}

// CSVStream is an open CSV export. The caller must Close it.
type CSVStream struct {
	Dataset       Dataset
	ContentType   string
	ContentLength int64 // -1 when unknown
	Body          io.ReadCloser
}

// Filename is the attachment name for the export
func (s *CSVStream) Filename() string {
	return s.Dataset.Filename()
}

func (s *CSVStream) Close() error {
	return s.Body.Close()
}

// OpenCSV starts a CSV export of dataset d filtered by f
func (c *Client) OpenCSV(ctx context.Context, d Dataset, f Filter) (*CSVStream, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("unknown dataset %q", d)
	}

	resp, err := c.get(ctx, d.path(), f.Values())
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", d, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/csv"
	}

	return &CSVStream{
		Dataset:       d,
		ContentType:   contentType,
		ContentLength: resp.ContentLength,
		Body:          resp.Body,
	}, nil
}

// Ping checks that the backend answers a cheap query
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{}
	if c.probeSeason > 0 {
		q.Set("year", strconv.Itoa(c.probeSeason))
	}

	resp, err := c.get(ctx, TeamNamesEndpoint, q)
	if err != nil {
		return fmt.Errorf("pinging backend: %w", err)
	}
	drain(resp.Body)
	return nil
}

// getJSON GETs path and decodes the JSON body into dst
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, dst interface{}) error {
	resp, err := c.get(ctx, path, q)
	if err != nil {
		return err
	}
	defer drain(resp.Body)

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &APIError{Path: path, StatusCode: resp.StatusCode, Body: "decoding response: " + err.Error()}
	}
	return nil
}

// get performs a rate-limited, retried GET and returns the 200 response.
// The caller owns the body.
func (c *Client) get(ctx context.Context, path string, q url.Values) (*http.Response, error) {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	requestID := middleware.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	var resp *http.Response
	attempt := 0
	err := c.retry.Execute(ctx, func(ctx context.Context) error {
		attempt++

		if err := c.limiter.Wait(ctx); err != nil {
			return retry.Permanent(fmt.Errorf("rate limiter: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set(middleware.RequestIDHeader, requestID)

		start := time.Now()
		r, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(fmt.Errorf("making request: %w", err))
			}
			log.Debug().Err(err).Str("request_id", requestID).Str("path", path).Int("attempt", attempt).Msg("backend request failed")
			return fmt.Errorf("making request: %w", err)
		}

		log.Debug().
			Str("request_id", requestID).
			Str("path", path).
			Int("status", r.StatusCode).
			Int("attempt", attempt).
			Dur("duration", time.Since(start)).
			Msg("backend request")

		switch {
		case r.StatusCode == http.StatusOK:
			resp = r
			return nil
		case r.StatusCode == http.StatusNotFound:
			drain(r.Body)
			return retry.Permanent(fmt.Errorf("%s: %w", path, ErrNotFound))
		}

		body, _ := io.ReadAll(io.LimitReader(r.Body, maxErrorBody))
		drain(r.Body)
		apiErr := &APIError{Path: path, StatusCode: r.StatusCode, Body: string(body)}
		if apiErr.Retryable() {
			return apiErr
		}
		return retry.Permanent(apiErr)
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// drain discards the rest of body so the connection can be reused
func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
