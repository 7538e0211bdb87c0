package catalogfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/niksmo/pc-catalog/internal/core/domain"
	"github.com/niksmo/pc-catalog/internal/core/port"
	"github.com/niksmo/pc-catalog/pkg/retry"
)

var _ port.CatalogSource = (*Source)(nil)

var (
	ErrUnsupportedSource = errors.New("unsupported catalog source")
	ErrUnexpectedStatus  = errors.New("unexpected response status")
)

const (
	defaultFetchTimeout = 30 * time.Second
	defaultMaxAttempts  = 3
)

type SourceOpt func(*sourceOpts) error

type sourceOpts struct {
	client   *http.Client
	retryCfg retry.RetryConfig
}

func HTTPClientOpt(cl *http.Client) SourceOpt {
	return func(o *sourceOpts) error {
		if cl == nil {
			return errors.New("http client is nil")
		}
		o.client = cl
		return nil
	}
}

func RetryOpt(cfg retry.RetryConfig) SourceOpt {
	return func(o *sourceOpts) error {
		o.retryCfg = cfg
		return nil
	}
}

// A Source loads the catalog from a local file or an http(s) URL.
type Source struct {
	location string
	client   *http.Client
	retryCfg retry.RetryConfig
}

func NewSource(location string, opts ...SourceOpt) (Source, error) {
	const op = "NewSource"

	if location == "" {
		return Source{}, fmt.Errorf("%s: %w: empty location", op, ErrUnsupportedSource)
	}

	options := sourceOpts{
		client: &http.Client{Timeout: defaultFetchTimeout},
		retryCfg: retry.RetryConfig{
			MaxAttempts: defaultMaxAttempts,
			ShouldRetry: isTemporary,
		},
	}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return Source{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	return Source{location, options.client, options.retryCfg}, nil
}

func (s Source) isRemote() bool {
	return strings.HasPrefix(s.location, "http://") ||
		strings.HasPrefix(s.location, "https://")
}

func (s Source) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	const op = "Source.LoadCatalog"
	log := slog.With("op", op, "location", s.location)

	if err := ctx.Err(); err != nil {
		return domain.Catalog{}, fmt.Errorf("%s: %w", op, err)
	}

	var (
		data []byte
		err  error
	)
	if s.isRemote() {
		data, err = retry.DoWithResult(ctx, s.retryCfg, func() ([]byte, error) {
			return s.fetch(ctx)
		})
	} else {
		data, err = os.ReadFile(s.location)
	}
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("%s: %w", op, err)
	}

	c, err := Decode(bytes.NewReader(data))
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("catalog is read", "nBytes", len(data), "nProducts", len(c.Products))
	return c, nil
}

func (s Source) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
	if err != nil {
		return nil, err
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, temporary{err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: %s", ErrUnexpectedStatus, res.Status)
		if res.StatusCode >= http.StatusInternalServerError {
			return nil, temporary{err}
		}
		return nil, err
	}

	return io.ReadAll(res.Body)
}

// temporary marks fetch errors worth retrying.
type temporary struct {
	error
}

func (t temporary) Unwrap() error {
	return t.error
}

func isTemporary(err error) bool {
	var t temporary
	return errors.As(err, &t)
}
