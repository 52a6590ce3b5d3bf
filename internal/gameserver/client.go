// Package gameserver reads the live player count from the community game
// server's status endpoint.
package gameserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/valyala/fastjson"
)

type Client struct {
	url    string
	client *http.Client
	pool   *fastjson.ParserPool
}

func NewClient(url string) *Client {
	return NewClientWithHTTPClient(url, &http.Client{Timeout: 10 * time.Second})
}

// NewClientWithHTTPClient is used by tests to swap the transport out.
func NewClientWithHTTPClient(url string, client *http.Client) *Client {
	return &Client{
		url:    url,
		client: client,
		pool:   &fastjson.ParserPool{},
	}
}

func (gc *Client) PlayerCount(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, gc.url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := gc.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("error from game server: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}

	parser := gc.pool.Get()
	defer gc.pool.Put(parser)

	val, err := parser.ParseBytes(body)
	if err != nil {
		return 0, err
	}

	return val.GetInt("players"), nil
}
