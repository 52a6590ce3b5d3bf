package forums

import (
	"fmt"
	"net/http"
	"net/url"
)

const userAgent = "server:sentinel:v1 (community watch bot)"

type Request struct {
	query  url.Values
	method string
	token  string
	url    string
	tags   []string
}

type RequestOption func(*Request)

func NewRequest(opts ...RequestOption) *Request {
	req := &Request{url.Values{}, "GET", "", "", nil}
	for _, opt := range opts {
		opt(req)
	}

	return req
}

func (r *Request) HTTPRequest() (*http.Request, error) {
	req, err := http.NewRequest(r.method, r.url, nil)
	if err != nil {
		return nil, err
	}

	req.URL.RawQuery = r.query.Encode()

	req.Header.Add("User-Agent", userAgent)

	if r.token != "" {
		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", r.token))
	}

	return req, nil
}

func WithTags(tags []string) RequestOption {
	return func(req *Request) {
		req.tags = tags
	}
}

func WithMethod(method string) RequestOption {
	return func(req *Request) {
		req.method = method
	}
}

func WithURL(url string) RequestOption {
	return func(req *Request) {
		req.url = url
	}
}

func WithToken(token string) RequestOption {
	return func(req *Request) {
		req.token = token
	}
}

func WithQuery(key, val string) RequestOption {
	return func(req *Request) {
		req.query.Set(key, val)
	}
}
