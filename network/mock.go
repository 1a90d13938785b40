package network

import "net/http"

type MockHttp struct {
	DoFunc func(req *http.Request) (*Response, error)
}

func (m *MockHttp) Do(req *http.Request) (*Response, error) {
	if m.DoFunc != nil {
		return m.DoFunc(req)
	}

	return &Response{StatusCode: http.StatusOK}, nil
}
