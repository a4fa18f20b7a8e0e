package dataset

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/obsidianstack/launchdash/server/internal/config"
)

// Source column names. These are an external contract with the CSV producer.
const (
	ColumnSite    = "Launch Site"
	ColumnPayload = "Payload Mass (kg)"
	ColumnClass   = "class"
	ColumnBooster = "Booster Version Category"
)

var requiredColumns = [...]string{ColumnSite, ColumnPayload, ColumnClass, ColumnBooster}

// ErrNoRecords is returned when the source has a header but no data rows.
var ErrNoRecords = errors.New("no records")

// LoadError reports why a dataset source could not be turned into a Dataset.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load dataset %q: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader reads a dataset source once. Remote sources are fetched with an HTTP
// client built from the dataset config.
type Loader struct {
	client *http.Client
}

// NewLoader builds a Loader for the given dataset settings.
func NewLoader(cfg config.DatasetConfig) (*Loader, error) {
	client, err := buildHTTPClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("dataset loader: build http client: %w", err)
	}
	return &Loader{client: client}, nil
}

// Load reads source, which is either an http(s) URL or a local file path, and
// parses it into a Dataset. Every failure is returned as *LoadError.
func (l *Loader) Load(ctx context.Context, source string) (*Dataset, error) {
	start := time.Now()

	rc, err := l.open(ctx, source)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	defer rc.Close()

	ds, err := Parse(rc)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	slog.Info("dataset: loaded",
		"source", source,
		"records", ds.Len(),
		"sites", len(ds.sites),
		"min_payload", ds.MinPayload(),
		"max_payload", ds.MaxPayload(),
		"took", time.Since(start),
	)
	return ds, nil
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if source == "" {
		return nil, errors.New("empty source")
	}
	if !isRemote(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func isRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Parse decodes a CSV launch table from r. It fails on the first malformed
// row; there is no partial result.
func Parse(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("empty csv: missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []Record
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		rec, err := parseRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return New(records), nil
}

// columns maps each required column to its position in a row.
type columns struct {
	site, payload, class, booster int
}

func columnIndex(header []string) (columns, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := pos[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	return columns{
		site:    pos[ColumnSite],
		payload: pos[ColumnPayload],
		class:   pos[ColumnClass],
		booster: pos[ColumnBooster],
	}, nil
}

func parseRow(row []string, idx columns) (Record, error) {
	payloadCell := strings.TrimSpace(row[idx.payload])
	payload, err := strconv.ParseFloat(payloadCell, 64)
	if err != nil {
		return Record{}, fmt.Errorf("%s %q: not a number", ColumnPayload, payloadCell)
	}

	outcome, err := ParseOutcome(row[idx.class])
	if err != nil {
		return Record{}, err
	}

	return Record{
		Site:                   strings.TrimSpace(row[idx.site]),
		PayloadMassKg:          payload,
		Outcome:                outcome,
		BoosterVersionCategory: strings.TrimSpace(row[idx.booster]),
	}, nil
}

// buildHTTPClient constructs the client used for remote sources.
func buildHTTPClient(cfg config.DatasetConfig) (*http.Client, error) {
	tlsCfg := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // user-configured
	}

	if cfg.CAFile != "" {
		caPEM, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("no valid certs found in ca file %q", cfg.CAFile)
		}
		tlsCfg.RootCAs = pool
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultLoadTimeout
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: tlsCfg,
		},
		Timeout: timeout,
	}, nil
}
