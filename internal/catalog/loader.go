package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/tidwall/jsonc"

	"github.com/litescript/ls-starmap/internal/logging"
)

const (
	// DefaultSource is the catalog path used when none is configured.
	DefaultSource = "./bsc5-short.json"

	// BuiltinSource selects the embedded bright-star catalog.
	BuiltinSource = "builtin:"

	// DefaultTimeout bounds a whole fetch and decode.
	DefaultTimeout = 30 * time.Second
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// FetchError reports that the catalog source could not be retrieved.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch catalog %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports that the catalog document is not a JSON array of records.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse catalog %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Loader retrieves and decodes catalog documents.
type Loader struct {
	client  *http.Client
	timeout time.Duration
	logger  *logging.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient sets a custom HTTP client for URL sources.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		l.client = client
	}
}

// WithTimeout bounds each Load call. Zero or negative disables the bound.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.timeout = d
	}
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *logging.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a catalog loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		timeout: DefaultTimeout,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.client == nil {
		l.client = &http.Client{}
	}
	return l
}

// LoadResult contains the outcome of a Load call.
type LoadResult struct {
	Source   string
	Records  []Record
	Duration time.Duration
	Error    error
}

// Load fetches source and decodes it into raw records. The returned error,
// when non-nil, is a *FetchError or a *ParseError.
func (l *Loader) Load(ctx context.Context, source string) LoadResult {
	start := time.Now()
	result := LoadResult{Source: source}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	raw, err := l.fetch(ctx, source)
	if err != nil {
		result.Duration = time.Since(start)
		result.Error = &FetchError{Source: source, Err: err}
		l.logger.Warn("Catalog fetch failed: %v", result.Error)
		return result
	}

	records, err := Decode(raw)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = &ParseError{Source: source, Err: err}
		l.logger.Warn("Catalog parse failed: %v", result.Error)
		return result
	}

	l.logger.Debug("Catalog %s: %d records in %v", source, len(records), result.Duration)
	result.Records = records
	return result
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	var (
		raw []byte
		err error
	)
	switch {
	case source == BuiltinSource:
		raw = builtinCatalog
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		raw, err = l.fetchHTTP(ctx, source)
	default:
		raw, err = readFile(ctx, source)
	}
	if err != nil {
		return nil, err
	}
	return decompress(raw)
}

func (l *Loader) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

func readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// decompress unwraps gzip or zstd payloads, detected by magic bytes.
func decompress(raw []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(raw, gzipMagic):
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("open gzip: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("read gzip: %w", err)
		}
		return out, nil
	case bytes.HasPrefix(raw, zstdMagic):
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("open zstd: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("read zstd: %w", err)
		}
		return out, nil
	default:
		return raw, nil
	}
}

// Decode parses a catalog document: a JSON (or JSONC) array of record
// objects. Records with unusable values are kept; rejection happens in
// Normalize.
func Decode(data []byte) ([]Record, error) {
	stripped := bytes.TrimSpace(jsonc.ToJSON(data))
	if len(stripped) == 0 {
		return nil, errors.New("empty document")
	}
	if stripped[0] != '[' {
		return nil, errors.New("document is not an array")
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(stripped, &elems); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	// Non-object entries become empty records so they are dropped with the
	// other unusable rows instead of failing the whole document.
	records := make([]Record, len(elems))
	for i, elem := range elems {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || elem[0] != '{' {
			continue
		}
		if err := json.Unmarshal(elem, &records[i]); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", i, err)
		}
	}
	return records, nil
}
