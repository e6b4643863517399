package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/volt/packages/http"
)

// WaitConfig describes a readiness probe run before a suite.
type WaitConfig struct {
	URL      string
	Status   int
	Timeout  time.Duration
	Interval time.Duration
}

func (c WaitConfig) withDefaults() WaitConfig {
	if c.Status == 0 {
		c.Status = 200
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Interval <= 0 {
		c.Interval = 500 * time.Millisecond
	}
	return c
}

// WaitFor polls cfg.URL until it returns the expected status or the timeout
// elapses. Variables in the URL are resolved like request URLs.
func (r *Runner) WaitFor(ctx context.Context, cfg WaitConfig) error {
	cfg = cfg.withDefaults()
	url := r.resolve([]string{cfg.URL}, r.config.Variables)[0]

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	var lastErr error
	var lastStatus int
	for {
		resp, err := r.client.Do(ctx, http.NewRequest("GET", url).SetTimeout(5*time.Second))
		if err != nil {
			lastErr = err
		} else {
			lastStatus = resp.StatusCode
			if resp.StatusCode == cfg.Status {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			if lastErr != nil && lastStatus == 0 {
				return fmt.Errorf("service %s not ready after %v: %w", url, cfg.Timeout, lastErr)
			}
			return fmt.Errorf("service %s not ready after %v: got status %d, expected %d",
				url, cfg.Timeout, lastStatus, cfg.Status)
		case <-time.After(cfg.Interval):
		}
	}
}
