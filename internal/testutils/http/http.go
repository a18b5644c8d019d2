// Request helpers for tests of echo handlers.
//
// Get and Post build an echo.Context to call a handler directly.
// Serve sends a request through the router of an *echo.Echo.
package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"
)

type RequestOption func(req *http.Request) *http.Request

func WithContext(ctx context.Context) RequestOption {
	return func(req *http.Request) *http.Request {
		return req.WithContext(ctx)
	}
}

func newRequest(method string, target string, body io.Reader, reqopts ...RequestOption) *http.Request {
	req := httptest.NewRequest(method, target, body)
	for _, opt := range reqopts {
		req = opt(req)
	}
	return req
}

func Get(e *echo.Echo, target string, reqopts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	resp := httptest.NewRecorder()
	return e.NewContext(newRequest(http.MethodGet, target, nil, reqopts...), resp), resp
}

func Post(e *echo.Echo, target string, body io.Reader, reqopts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	resp := httptest.NewRecorder()
	return e.NewContext(newRequest(http.MethodPost, target, body, reqopts...), resp), resp
}

// Serve handles a request by e, with its routes and middlewares.
func Serve(e *echo.Echo, method string, target string, body io.Reader, reqopts ...RequestOption) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	e.ServeHTTP(resp, newRequest(method, target, body, reqopts...))
	return resp
}
