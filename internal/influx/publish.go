package influx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jpillora/backoff"

	"codeberg.org/nyblom/macstats/internal/logger"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultAttempts = 3
	backoffMin      = 500 * time.Millisecond
	backoffMax      = 5 * time.Second
)

// SinkConfig holds the metrics sink connection parameters. Credential
// fields select the protocol version: username/password means the v1
// write API with a database parameter, org/token/bucket means the v2 API
// with token authentication.
type SinkConfig struct {
	URL      string
	Database string
	Username string
	Password string
	Org      string
	Token    string
	Bucket   string
}

func (c SinkConfig) isV2() bool {
	return c.Token != ""
}

// Publisher writes encoded points to the metrics sink. Requests are
// stateless; no session is kept between writes.
type Publisher struct {
	cfg      SinkConfig
	client   *http.Client
	attempts int
}

// NewPublisher validates the sink configuration. Contradictory
// credentials (both v1 and v2 populated) are rejected here, before any
// network call is made.
func NewPublisher(cfg SinkConfig) (*Publisher, error) {
	hasV1 := cfg.Username != "" || cfg.Password != ""
	if hasV1 && cfg.isV2() {
		return nil, errFactory.New(ErrConflictingCredentials)
	}
	if cfg.isV2() && cfg.Org == "" {
		return nil, errFactory.WithMessage(ErrIncompleteCredentials, "token requires an org")
	}

	return &Publisher{
		cfg:      cfg,
		client:   &http.Client{Timeout: defaultTimeout},
		attempts: defaultAttempts,
	}, nil
}

// Publish serializes the points and writes them, retrying transient
// failures with bounded exponential backoff. Authentication failures are
// surfaced immediately and never retried.
func (p *Publisher) Publish(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	body := Lines(points)
	delay := &backoff.Backoff{
		Min:    backoffMin,
		Max:    backoffMax,
		Factor: 2,
		Jitter: true,
	}

	var lastErr error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		err := p.write(ctx, body)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		lastErr = err

		if attempt < p.attempts {
			wait := delay.Duration()
			logger.Debug().
				Int("attempt", attempt).
				Dur("backoff", wait).
				Err(err).
				Msg("Write failed, retrying")

			select {
			case <-ctx.Done():
				return errFactory.Wrap(ErrWriteFailed, ctx.Err())
			case <-time.After(wait):
			}
		}
	}

	return lastErr
}

func (p *Publisher) write(ctx context.Context, body string) error {
	var endpoint string
	if p.cfg.isV2() {
		bucket := p.cfg.Bucket
		if bucket == "" {
			bucket = p.cfg.Database
		}
		endpoint = fmt.Sprintf("%s/api/v2/write?org=%s&bucket=%s",
			p.cfg.URL, url.QueryEscape(p.cfg.Org), url.QueryEscape(bucket))
	} else {
		endpoint = fmt.Sprintf("%s/write?db=%s", p.cfg.URL, url.QueryEscape(p.cfg.Database))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}

	if p.cfg.isV2() {
		req.Header.Set("Authorization", "Token "+p.cfg.Token)
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	} else {
		if p.cfg.Username != "" {
			req.SetBasicAuth(p.cfg.Username, p.cfg.Password)
		}
		req.Header.Set("Content-Type", "application/octet-stream")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}
	defer resp.Body.Close()

	return classifyResponse(resp)
}

// TestConnection performs one lightweight request to verify reachability
// and credentials without writing any data
func (p *Publisher) TestConnection(ctx context.Context) error {
	var endpoint string
	if p.cfg.isV2() {
		endpoint = p.cfg.URL + "/health"
	} else {
		endpoint = p.cfg.URL + "/ping"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}

	if p.cfg.isV2() {
		req.Header.Set("Authorization", "Token "+p.cfg.Token)
	} else if p.cfg.Username != "" {
		req.SetBasicAuth(p.cfg.Username, p.cfg.Password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}
	defer resp.Body.Close()

	return classifyResponse(resp)
}

// classifyResponse maps HTTP status codes onto the error taxonomy:
// 2xx success, 401/403 auth, other 4xx server rejection, 5xx retryable
func classifyResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	message := readErrorBody(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errFactory.WithData(ErrAuthFailed, fmt.Sprintf("%d: %s", resp.StatusCode, message))
	case resp.StatusCode >= 500:
		return errFactory.WithData(ErrWriteFailed, fmt.Sprintf("%d: %s", resp.StatusCode, message))
	default:
		return errFactory.WithData(ErrServerError, fmt.Sprintf("%d: %s", resp.StatusCode, message))
	}
}

func readErrorBody(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil || len(body) == 0 {
		return resp.Status
	}

	return strings.TrimSpace(string(body))
}
