package charts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
)

const (
	DefaultBaseURL   = "https://www.billboard.com/charts"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	DefaultTimeout   = 10 * time.Second

	maxPageBytes = 16 << 20
)

var chartSlug = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ChartURL builds the page URL for req under base.
//
// The latest chart lives at <base>/<chart>/ and dated charts at <base>/<chart>/<YYYY-MM-DD>/.
func ChartURL(base string, req models.ChartRequest) (string, error) {
	if !chartSlug.MatchString(req.Chart) {
		return "", fmt.Errorf("%w: chart name %q must be a lowercase slug such as hot-100", shared.ErrInvalidArgument, req.Chart)
	}
	if base == "" {
		base = DefaultBaseURL
	}

	url := strings.TrimRight(base, "/") + "/" + req.Chart + "/"
	if !req.IsLatest() {
		url += req.Date.Format(models.DateLayout) + "/"
	}
	return url, nil
}

// FetcherOpts configures a [Fetcher]. Zero values fall back to the package defaults.
type FetcherOpts struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Fetcher downloads chart pages.
type Fetcher struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	logger     *log.Logger
}

// NewFetcher creates a [Fetcher] from opts.
func NewFetcher(opts FetcherOpts) *Fetcher {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	return &Fetcher{
		baseURL:    opts.BaseURL,
		userAgent:  opts.UserAgent,
		timeout:    opts.Timeout,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
}

// Fetch retrieves the raw page for req with a single request.
func (f *Fetcher) Fetch(ctx context.Context, req models.ChartRequest) ([]byte, error) {
	url, err := ChartURL(f.baseURL, req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrFetch, err)
	}

	httpReq.Header.Set("User-Agent", f.userAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")

	f.logger.Info("fetching chart", "url", url)

	resp, err := f.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrFetch, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", shared.ErrFetch, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrFetch, err)
	}
	if len(body) > maxPageBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", shared.ErrFetch, url, maxPageBytes)
	}

	f.logger.Debug("chart page downloaded", "bytes", len(body))
	return body, nil
}
