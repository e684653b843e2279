// package tasks implements the chart pipeline and its output sinks.
package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chartx/internal/charts"
	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
)

// Fetcher retrieves the raw page for a chart.
type Fetcher interface {
	Fetch(ctx context.Context, req models.ChartRequest) ([]byte, error)
}

// ParseFunc turns a page into chart entries.
type ParseFunc func(content []byte) ([]models.ChartEntry, error)

// Sink consumes a parsed chart. There is one implementation per output mode.
type Sink interface {
	Write(ctx context.Context, chart models.Chart, progress chan<- ProgressUpdate) (*OutputResult, error)
	Mode() models.OutputMode
}

// OutputResult describes what a [Sink] produced.
type OutputResult struct {
	Mode     models.OutputMode
	Written  int              // entries written, printed or added
	Path     string           // CSV file path
	Playlist *models.Playlist // playlist that received the tracks
	Added    []models.Track
	Skipped  []models.ChartEntry // entries without a catalog match
}

// RunResult contains everything produced by one [ChartEngine.Run].
type RunResult struct {
	Chart  models.Chart // entries after the limit was applied
	Parsed int          // entries found on the page
	Output *OutputResult
}

// ChartEngine wires a [Fetcher] and a [ParseFunc] to a [Sink].
type ChartEngine struct {
	fetcher Fetcher
	parse   ParseFunc
	logger  *log.Logger
}

// NewChartEngine creates an engine that parses pages with [charts.ParseHTML].
func NewChartEngine(f Fetcher, logger *log.Logger) *ChartEngine {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &ChartEngine{fetcher: f, parse: charts.ParseHTML, logger: logger}
}

// WithParser replaces the page parser.
func (e *ChartEngine) WithParser(p ParseFunc) *ChartEngine {
	e.parse = p
	return e
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run fetches and parses the chart for req, keeps the first limit entries (all when limit is 0) and writes them to sink.
func (e *ChartEngine) Run(ctx context.Context, req models.ChartRequest, limit int, sink Sink, progress chan<- ProgressUpdate) (*RunResult, error) {
	if sink == nil {
		return nil, fmt.Errorf("%w: no output sink", shared.ErrMissingArgument)
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative, got %d", shared.ErrInvalidArgument, limit)
	}

	sendProgress(progress, fetchChartUpdate(req))
	e.logger.Debug("fetching chart", "chart", req.Chart, "date", req.DateString())

	page, err := e.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	entries, err := e.parse(page)
	if err != nil {
		return nil, err
	}
	sendProgress(progress, parsedChartUpdate(len(entries)))
	e.logger.Info("parsed chart", "chart", req.Chart, "date", req.DateString(), "entries", len(entries))

	chart := models.Chart{Request: req, Entries: entries}.Limit(limit)
	if len(chart.Entries) < len(entries) {
		e.logger.Debug("limit applied", "kept", len(chart.Entries), "of", len(entries))
	}

	out, err := sink.Write(ctx, chart, progress)
	result := &RunResult{Chart: chart, Parsed: len(entries), Output: out}
	if err != nil {
		return result, err
	}
	return result, nil
}
