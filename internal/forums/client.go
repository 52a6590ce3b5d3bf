// Package forums talks to the community forums API: the calendar event feed,
// per-event RSVP lookups and the voting thread listing. It is the concrete
// implementation behind the poller's source interfaces.
package forums

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/valyala/fastjson"

	"github.com/taskforce-ops/sentinel/internal/domain"
)

type Client struct {
	baseURL string
	token   string
	client  *http.Client
	pool    *fastjson.ParserPool
	statsd  statsd.ClientInterface
}

func NewClient(baseURL, token string, statsdClient statsd.ClientInterface) *Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 4
	t.IdleConnTimeout = 60 * time.Second
	t.ResponseHeaderTimeout = 10 * time.Second

	client := &http.Client{Transport: t}

	return newClient(baseURL, token, statsdClient, client)
}

// NewClientWithHTTPClient is used by tests to swap the transport out.
func NewClientWithHTTPClient(baseURL, token string, statsdClient statsd.ClientInterface, client *http.Client) *Client {
	return newClient(baseURL, token, statsdClient, client)
}

func newClient(baseURL, token string, statsdClient statsd.ClientInterface, client *http.Client) *Client {
	if statsdClient == nil {
		statsdClient = &statsd.NoOpClient{}
	}

	return &Client{
		strings.TrimSuffix(baseURL, "/"),
		token,
		client,
		&fastjson.ParserPool{},
		statsdClient,
	}
}

func (fc *Client) doRequest(ctx context.Context, r *Request) ([]byte, error) {
	req, err := r.HTTPRequest()
	if err != nil {
		return nil, err
	}

	req = req.WithContext(ctx)

	start := time.Now()

	resp, err := fc.client.Do(req)

	_ = fc.statsd.Incr("forums.api.calls", r.tags, 0.1)
	_ = fc.statsd.Histogram("forums.api.latency", float64(time.Since(start).Milliseconds()), r.tags, 0.1)

	if err != nil {
		_ = fc.statsd.Incr("forums.api.errors", r.tags, 0.1)
		if strings.Contains(err.Error(), "timeout awaiting response headers") {
			return nil, ErrTimeout
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		_ = fc.statsd.Incr("forums.api.errors", r.tags, 0.1)
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		_ = fc.statsd.Incr("forums.api.errors", r.tags, 0.1)
		return nil, ServerError{resp.StatusCode}
	}

	return body, nil
}

func (fc *Client) request(ctx context.Context, r *Request) (*fastjson.Value, *fastjson.Parser, error) {
	body, err := fc.doRequest(ctx, r)
	if err != nil {
		return nil, nil, err
	}

	parser := fc.pool.Get()

	val, err := parser.ParseBytes(body)
	if err != nil {
		fc.pool.Put(parser)
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return val, parser, nil
}

// CalendarEvents fetches the upcoming calendar listing, ordered by start time
// as the forums return it.
func (fc *Client) CalendarEvents(ctx context.Context) ([]domain.CalendarEntry, error) {
	req := NewRequest(
		WithTags([]string{"url:/calendar/events"}),
		WithURL(fc.baseURL+"/calendar/events"),
		WithToken(fc.token),
		WithQuery("sortBy", "start"),
		WithQuery("sortDir", "asc"),
	)

	val, parser, err := fc.request(ctx, req)
	if err != nil {
		return nil, err
	}
	defer fc.pool.Put(parser)

	return NewCalendarListing(val)
}

// EventRSVPs returns how many users are attending the given event.
func (fc *Client) EventRSVPs(ctx context.Context, id string) (int, error) {
	req := NewRequest(
		WithTags([]string{"url:/calendar/events/:id/rsvps"}),
		WithURL(fmt.Sprintf("%s/calendar/events/%s/rsvps", fc.baseURL, id)),
		WithToken(fc.token),
	)

	val, parser, err := fc.request(ctx, req)
	if err != nil {
		return 0, err
	}
	defer fc.pool.Put(parser)

	return len(val.GetArray("attending")), nil
}

// VotingThreads fetches the open voting thread listing.
func (fc *Client) VotingThreads(ctx context.Context) ([]domain.VotingThread, error) {
	req := NewRequest(
		WithTags([]string{"url:/forums/topics"}),
		WithURL(fc.baseURL+"/forums/topics"),
		WithToken(fc.token),
		WithQuery("hasPoll", "1"),
	)

	val, parser, err := fc.request(ctx, req)
	if err != nil {
		return nil, err
	}
	defer fc.pool.Put(parser)

	return NewVotingThreadListing(val)
}
