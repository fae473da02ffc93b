package codeforces

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

	"github.com/avast/retry-go/v4"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	maxBodyBytes  = 32 << 20
	infoCacheSize = 1024
	maxRetries    = 10
)

// Options configures a Client. Zero values fall back to sensible defaults.
type Options struct {
	BaseURL      string // Codeforces API root, e.g. https://codeforces.com/api
	LadderURL    string // ladder API root, e.g. https://acodedaily.com/api/v2
	Timeout      time.Duration
	RateInterval time.Duration // minimum spacing between outbound calls
	Retries      uint
	RetryDelay   time.Duration
	CacheTTL     time.Duration
	HTTPClient   *http.Client
}

// Client is a read-only client for the Codeforces API and the problem ladder.
// Calls share one rate limiter and user.info results are cached.
type Client struct {
	httpClient *http.Client
	baseURL    string
	ladderURL  string
	limiter    *rate.Limiter
	attempts   uint
	retryDelay time.Duration
	infoCache  *expirable.LRU[string, UserInfo]
}

// NewClient creates a new provider client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RateInterval > 0 {
		limit = rate.Every(opts.RateInterval)
	}

	retryDelay := opts.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 500 * time.Millisecond
	}

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	// retry-go treats zero attempts as "retry until success".
	retries := opts.Retries
	if retries > maxRetries {
		retries = maxRetries
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		ladderURL:  strings.TrimRight(opts.LadderURL, "/"),
		limiter:    rate.NewLimiter(limit, 1),
		attempts:   retries + 1,
		retryDelay: retryDelay,
		infoCache:  expirable.NewLRU[string, UserInfo](infoCacheSize, nil, ttl),
	}
}

// GetUserInfo returns user.info entries for the given handles in request
// order. Cached entries are served without a network call.
func (c *Client) GetUserInfo(ctx context.Context, handles ...string) ([]UserInfo, error) {
	found := make(map[string]UserInfo, len(handles))
	var missing []string
	seen := make(map[string]struct{}, len(handles))
	for _, h := range handles {
		key := strings.ToLower(h)
		if _, dup := seen[key]; dup || h == "" {
			continue
		}
		seen[key] = struct{}{}
		if info, ok := c.infoCache.Get(key); ok {
			found[key] = info
			continue
		}
		missing = append(missing, h)
	}

	if len(missing) > 0 {
		var resp apiResponse[[]rawUser]
		endpoint := fmt.Sprintf("%s/user.info?handles=%s", c.baseURL, url.QueryEscape(strings.Join(missing, ";")))
		if err := c.getJSON(ctx, endpoint, &resp); err != nil {
			return nil, err
		}
		if err := checkStatus(resp.Status, resp.Comment); err != nil {
			return nil, err
		}
		for _, raw := range resp.Result {
			info := raw.toUserInfo()
			key := strings.ToLower(info.Handle)
			c.infoCache.Add(key, info)
			found[key] = info
		}
	}

	infos := make([]UserInfo, 0, len(found))
	for _, h := range handles {
		key := strings.ToLower(h)
		if info, ok := found[key]; ok {
			infos = append(infos, info)
			delete(found, key)
		}
	}
	return infos, nil
}

// GetSolvedProblems returns the ids of every problem the handle has an
// accepted submission for.
func (c *Client) GetSolvedProblems(ctx context.Context, handle string) ([]string, error) {
	var resp apiResponse[[]rawSubmission]
	endpoint := fmt.Sprintf("%s/user.status?handle=%s", c.baseURL, url.QueryEscape(handle))
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus(resp.Status, resp.Comment); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	solved := []string{}
	for _, sub := range resp.Result {
		if sub.Verdict == nil || *sub.Verdict != "OK" || sub.Problem == nil || sub.Problem.ContestID == nil {
			continue
		}
		id := strconv.Itoa(*sub.Problem.ContestID) + sub.Problem.Index
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		solved = append(solved, id)
	}
	return solved, nil
}

// GetLadder returns ladder problems rated within [start, end].
func (c *Client) GetLadder(ctx context.Context, start, end int) ([]LadderProblem, error) {
	var resp ladderResponse
	endpoint := fmt.Sprintf("%s/ladder?startRating=%d&endRating=%d", c.ladderURL, start, end)
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	problems := make([]LadderProblem, 0, len(resp.Data))
	for _, raw := range resp.Data {
		if p, ok := raw.toProblem(); ok {
			problems = append(problems, p)
		}
	}
	return problems, nil
}

func checkStatus(status, comment string) error {
	if status == "OK" {
		return nil
	}
	if strings.Contains(strings.ToLower(comment), "not found") {
		return fmt.Errorf("%w: %s", ErrHandleNotFound, comment)
	}
	return fmt.Errorf("%w: status %q: %s", ErrUnavailable, status, comment)
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

// getJSON fetches endpoint and decodes the body into out. Transport errors,
// 429 and 5xx responses are retried; everything else fails immediately.
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	err := retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return &statusError{code: resp.StatusCode}
			}

			body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			if err != nil {
				return err
			}

			// Codeforces answers unknown handles with 400 and a FAILED envelope,
			// so 4xx bodies are decoded too and judged by checkStatus.
			if err := json.Unmarshal(body, out); err != nil {
				if resp.StatusCode != http.StatusOK {
					return retry.Unrecoverable(&statusError{code: resp.StatusCode})
				}
				return retry.Unrecoverable(fmt.Errorf("failed to decode response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logrus.WithFields(logrus.Fields{
				"attempt":  n + 1,
				"endpoint": endpoint,
				"error":    err,
			}).Warn("Retrying rating provider call")
		}),
	)
	if err != nil {
		if errors.Is(err, ErrHandleNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
