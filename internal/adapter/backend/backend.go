// Package backend implements the per-provider search adapters. Each adapter
// turns one external data source into a domain.SearchBackend; provider quirks
// (redirect wrappers, loose JSON, ad links) stay behind that interface.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/qvkare/mirror-search/internal/domain"
)

const maxBodySize = 512 * 1024 // 512KB

const pingTimeout = 3 * time.Second

// newClient returns an http.Client with the per-backend request timeout.
func newClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// do executes req and returns the response body, mapping transport and
// status failures onto domain sentinels so the orchestrator can classify
// them without inspecting provider-specific errors.
func do(client *http.Client, req *http.Request, op string) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, domain.NewDomainError(op, domain.ErrTimeout, err.Error())
		}
		return nil, domain.NewDomainError(op, domain.ErrBackendUnavailable, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, domain.NewDomainError(op, domain.ErrBackendUnavailable, "read response: "+err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := fmt.Sprintf("HTTP %d", resp.StatusCode)
		return nil, domain.NewDomainError(op, domain.ErrBackendUnavailable, detail)
	}
	return body, nil
}

// isTimeout reports whether err is a deadline or network timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// ping issues a lightweight GET and treats any response below 500 as alive.
// Providers commonly answer probes with 4xx (no query, bot checks); only a
// transport failure or server error means the backend is down.
func ping(ctx context.Context, client *http.Client, rawURL, op string) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.WrapOp(op, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return domain.NewDomainError(op, domain.ErrTimeout, err.Error())
		}
		return domain.NewDomainError(op, domain.ErrBackendUnavailable, err.Error())
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 500 {
		return domain.NewDomainError(op, domain.ErrBackendUnavailable, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}
	return nil
}
