package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dashsync/dashsync/pkg/buildtime"
)

// Web is a webhook for before/after hooks.
type Web[T any] struct {
	// BeforeURL is a list of URLs to call before committing the value T.
	//
	// The value T is sent as a JSON payload for each URL, in order.
	//
	// If and only if all of the URLs return a 2xx status code, the hook proceeds.
	// Otherwise, the hook fails at the first failed URL.
	BeforeURL []*url.URL

	// AfterURL is a list of URLs to call after committing the value T.
	//
	// Same as BeforeURL.
	AfterURL []*url.URL

	// optional. http.DefaultClient is used if nil.
	//
	// Requests are bound to the context passed to Before or After.
	Client *http.Client
}

func (w Web[T]) client() *http.Client {
	if w.Client == nil {
		return http.DefaultClient
	}
	return w.Client
}

func (w Web[T]) sendRequest(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.Join(err, ErrHookFailed)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", buildtime.UserAgent())

	resp, err := w.client().Do(req)
	if err != nil {
		return errors.Join(err, ErrHookFailed)
	}
	defer resp.Body.Close()

	if 200 <= resp.StatusCode && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	ctype := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ctype, "text/") && !(strings.HasPrefix(ctype, "application/") && strings.Contains(ctype, "json")) {
		return fmt.Errorf(
			"%w (%s %d, Content-Type: %s)",
			ErrHookFailed, url, resp.StatusCode, ctype,
		)
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf(
		"%w (%s %d, Content-Type: %s): %s",
		ErrHookFailed, url, resp.StatusCode, ctype, string(body),
	)
}

func (w Web[T]) hook(ctx context.Context, value T, urls []*url.URL) error {
	if len(urls) == 0 {
		return nil
	}

	buf, err := json.Marshal(value)
	if err != nil {
		return err
	}

	for _, u := range urls {
		if err := w.sendRequest(ctx, u.String(), buf); err != nil {
			return err
		}
	}
	return nil
}

func (w Web[T]) Before(ctx context.Context, value T) error {
	return w.hook(ctx, value, w.BeforeURL)
}

func (w Web[T]) After(ctx context.Context, value T) error {
	return w.hook(ctx, value, w.AfterURL)
}
