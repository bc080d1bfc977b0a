// Package loader fetches the raw capital dataset from a URL or a file.
package loader

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kass/capital-routes/pkg/models"
)

// Options configures a Loader
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// MaxBytes bounds the size of the payload read from any source
	MaxBytes int64
}

// Loader reads capital records. It issues a single request per Load and
// never retries.
type Loader struct {
	client *http.Client
	opts   Options
}

// New creates a Loader with the given options
func New(opts Options) *Loader {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "capital-routes/1.0"
	}
	if opts.MaxBytes == 0 {
		opts.MaxBytes = 16 << 20
	}
	return &Loader{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
	}
}

// IsRemote reports whether source is fetched over HTTP
func IsRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Load reads the raw records from source and converts them to capitals
func (l *Loader) Load(ctx context.Context, source string) ([]models.Capital, error) {
	raw, err := l.LoadRaw(ctx, source)
	if err != nil {
		return nil, err
	}
	return models.CapitalsFromRaw(raw), nil
}

// LoadRaw reads the records from source as they appear on the wire
func (l *Loader) LoadRaw(ctx context.Context, source string) ([]models.RawCapital, error) {
	start := time.Now()

	var (
		body io.ReadCloser
		err  error
	)
	if IsRemote(source) {
		body, err = l.fetch(ctx, source)
	} else {
		body, err = os.Open(source)
		if err != nil {
			err = eris.Wrapf(err, "loader: open %s", source)
		}
	}
	if err != nil {
		return nil, err
	}
	defer body.Close()

	raw, err := Decode(io.LimitReader(body, l.opts.MaxBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "loader: %s", source)
	}

	zap.L().Info("capital data loaded",
		zap.String("source", source),
		zap.Int("records", len(raw)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return raw, nil
}

func (l *Loader) fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "loader: create request")
	}
	req.Header.Set("User-Agent", l.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: capital data at %q is not available", rawURL)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, eris.Errorf("loader: capital data at %q is not available: http %d", rawURL, resp.StatusCode)
	}
	return resp.Body, nil
}

// Decode parses a JSON array of raw capital records
func Decode(r io.Reader) ([]models.RawCapital, error) {
	var raw []models.RawCapital
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, eris.Wrap(err, "decode capitals")
	}
	return raw, nil
}

// Load reads source with default options
func Load(ctx context.Context, source string) ([]models.Capital, error) {
	return New(Options{}).Load(ctx, source)
}
