package network

import (
	"io"
	"net/http"
	"time"
)

type Response struct {
	StatusCode int
	Body       []byte
}

// go:generate mockgen -source network/http.go -destination=tests/mock/network/http.go -package=mock
type Http interface {
	Do(req *http.Request) (*Response, error)
}

type DefaultHttp struct {
	client *http.Client
}

func NewHttp(timeout time.Duration) Http {
	return &DefaultHttp{
		client: &http.Client{Timeout: timeout},
	}
}

func (d *DefaultHttp) Do(req *http.Request) (*Response, error) {
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{StatusCode: resp.StatusCode, Body: buf}, nil
}
