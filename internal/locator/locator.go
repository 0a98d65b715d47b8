// Package locator finds a reachable backend by probing candidate base URLs.
package locator

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const DefaultTimeout = time.Second

// Locator probes candidates in order and picks the first healthy one.
type Locator struct {
	candidates []string
	timeout    time.Duration
	client     *http.Client
	logger     *slog.Logger
	group      singleflight.Group
}

func New(candidates []string, timeout time.Duration, logger *slog.Logger) *Locator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Locator{
		candidates: append([]string(nil), candidates...),
		timeout:    timeout,
		client:     &http.Client{},
		logger:     logger,
	}
}

type result struct {
	base string
	ok   bool
}

// Resolve runs one probe pass. It returns the first candidate whose GET /health
// answers 2xx within the per-candidate timeout, or ("", false) when none does.
// Concurrent callers share a single pass.
func (l *Locator) Resolve(ctx context.Context) (string, bool) {
	v, _, _ := l.group.Do("resolve", func() (any, error) {
		for _, base := range l.candidates {
			if ctx.Err() != nil {
				break
			}
			if l.probe(ctx, base) {
				l.logger.Info("backend located", "base_url", base)
				return result{base: base, ok: true}, nil
			}
		}
		l.logger.Warn("backend not detected", "candidates", len(l.candidates))
		return result{}, nil
	})
	r := v.(result)
	return r.base, r.ok
}

func (l *Locator) probe(ctx context.Context, base string) bool {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	url := strings.TrimRight(base, "/") + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		l.logger.Debug("invalid candidate", "base_url", base, "error", err)
		return false
	}

	resp, err := l.client.Do(req)
	if err != nil {
		l.logger.Debug("probe failed", "base_url", base, "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
