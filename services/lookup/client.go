// Package lookup talks to the OMDb-style metadata provider.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	"github.com/GojiraTai/koleksiyon-takip/models"
)

const (
	DefaultBaseURL = "https://www.omdbapi.com/"
	DefaultTimeout = 10 * time.Second
	DefaultRetries = 3

	maxBodyBytes = 4 << 20
)

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	APIKey            string
	BaseURL           string
	HTTPClient        *http.Client
	Timeout           time.Duration // per attempt
	MaxRetries        int
	RetryDelay        time.Duration
	RequestsPerSecond float64 // 0 disables throttling
}

// Client is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpc      *http.Client
	timeout    time.Duration
	attempts   uint
	retryDelay time.Duration
	limiter    *rate.Limiter
}

func NewClient(opts Options) *Client {
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{}
	}
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	attempts := opts.MaxRetries
	if attempts <= 0 {
		attempts = DefaultRetries
	}
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpc:      httpc,
		timeout:    timeout,
		attempts:   uint(attempts),
		retryDelay: delay,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// FindByTitle tries an exact title match first and falls back to the first
// fuzzy search result.
func (c *Client) FindByTitle(ctx context.Context, title string, kind models.ItemKind) (*models.Candidate, error) {
	const op = "find-by-title"
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, notFound(op, errors.New("empty title"))
	}

	var exact omdbTitle
	err := c.get(ctx, op, url.Values{"t": {title}, "type": {omdbType(kind)}}, &exact)
	if err == nil && exact.IMDbID != "" {
		return exact.candidate(kind), nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	var search omdbSearch
	if err := c.get(ctx, "search", url.Values{"s": {title}, "type": {omdbType(kind)}}, &search); err != nil {
		return nil, err
	}
	for _, hit := range search.Search {
		if id := strings.TrimSpace(hit.IMDbID); id != "" {
			log.Printf("[lookup] no exact match for %q, using search hit %s (%q)", title, id, hit.Title)
			return c.findByID(ctx, id, kind)
		}
	}
	return nil, notFound(op, fmt.Errorf("no results for %q", title))
}

// FindByID fetches a title by its provider id. The candidate kind is empty
// when the provider does not report a known type.
func (c *Client) FindByID(ctx context.Context, externalID string) (*models.Candidate, error) {
	return c.findByID(ctx, externalID, "")
}

func (c *Client) findByID(ctx context.Context, externalID string, hint models.ItemKind) (*models.Candidate, error) {
	const op = "find-by-id"
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, notFound(op, errors.New("empty id"))
	}
	var title omdbTitle
	if err := c.get(ctx, op, url.Values{"i": {externalID}}, &title); err != nil {
		return nil, err
	}
	if title.IMDbID == "" {
		title.IMDbID = externalID
	}
	return title.candidate(hint), nil
}

// FetchSeason returns the episode list for one season. A season the provider
// knows but lists no episodes for comes back with an empty slice.
func (c *Client) FetchSeason(ctx context.Context, externalID string, seasonNumber int) (*models.SeasonRecord, error) {
	const op = "fetch-season"
	externalID = strings.TrimSpace(externalID)
	if externalID == "" || seasonNumber <= 0 {
		return nil, notFound(op, fmt.Errorf("invalid season %q/%d", externalID, seasonNumber))
	}

	var season omdbSeason
	params := url.Values{"i": {externalID}, "Season": {strconv.Itoa(seasonNumber)}}
	if err := c.get(ctx, op, params, &season); err != nil {
		return nil, err
	}

	record := &models.SeasonRecord{
		ExternalID:   externalID,
		SeasonNumber: seasonNumber,
		Episodes:     make([]models.Episode, 0, len(season.Episodes)),
		FetchedAt:    time.Now().UTC(),
	}
	for i, ep := range season.Episodes {
		number := parseCount(ep.Episode)
		if number == 0 {
			number = i + 1
		}
		episode := models.Episode{
			ExternalEpisodeID: cleanValue(ep.IMDbID),
			Number:            number,
			Title:             strings.TrimSpace(ep.Title),
		}
		if released := cleanValue(ep.Released); released != "" {
			episode.AirDate = &released
		}
		record.Episodes = append(record.Episodes, episode)
	}
	return record, nil
}

// get issues one logical request: throttled, retried on transient failures,
// each attempt bounded by the client timeout.
func (c *Client) get(ctx context.Context, op string, params url.Values, out omdbEnvelope) error {
	params.Set("apikey", c.apiKey)
	endpoint := c.baseURL + "?" + params.Encode()

	err := retry.Do(
		func() error { return c.attempt(ctx, op, endpoint, out) },
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("[lookup] %s attempt %d/%d failed: %v", op, n+1, c.attempts, err)
		}),
	)
	if err == nil {
		return nil
	}
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr
	}
	return final(transient(op, err))
}

func (c *Client) attempt(ctx context.Context, op, endpoint string, out omdbEnvelope) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return final(transient(op, err))
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return final(transient(op, err))
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return final(transient(op, ctx.Err()))
		}
		return transient(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return transient(op, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return transient(op, fmt.Errorf("provider returned %s", resp.Status))
	}

	if err := json.Unmarshal(body, out); err != nil {
		if resp.StatusCode >= 400 {
			return final(transient(op, fmt.Errorf("provider returned %s", resp.Status)))
		}
		return transient(op, fmt.Errorf("decode response: %w", err))
	}

	status := out.status()
	if strings.EqualFold(status.Response, "False") {
		msg := strings.TrimSpace(status.Error)
		if isRefusal(msg) {
			return final(transient(op, errors.New(msg)))
		}
		return notFound(op, errors.New(msg))
	}
	if resp.StatusCode >= 400 {
		return final(transient(op, fmt.Errorf("provider returned %s", resp.Status)))
	}
	return nil
}
