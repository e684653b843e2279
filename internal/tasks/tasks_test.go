package tasks

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/chartx/internal/charts"
	"github.com/desertthunder/chartx/internal/formatter"
	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
	tu "github.com/desertthunder/chartx/internal/testing"
	"github.com/desertthunder/chartx/internal/ui"
)

var chartDate = time.Date(2020, 1, 4, 0, 0, 0, 0, time.UTC)

func fixedNow() time.Time {
	return time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	return []byte(tu.MustReadFile(t, filepath.Join("..", "charts", "testdata", name)))
}

// chartSite serves fixture pages keyed by request path and records the paths requested.
func chartSite(t *testing.T, pages map[string][]byte) (*httptest.Server, *[]string) {
	t.Helper()
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write(page)
	}))
	t.Cleanup(server.Close)
	return server, &paths
}

type staticFetcher struct {
	page  []byte
	err   error
	calls int
}

func (f *staticFetcher) Fetch(ctx context.Context, req models.ChartRequest) ([]byte, error) {
	f.calls++
	return f.page, f.err
}

type recordingSink struct {
	got   *models.Chart
	err   error
	calls int
}

func (s *recordingSink) Mode() models.OutputMode { return models.OutputPrint }

func (s *recordingSink) Write(ctx context.Context, chart models.Chart, progress chan<- ProgressUpdate) (*OutputResult, error) {
	s.calls++
	s.got = &chart
	if s.err != nil {
		return nil, s.err
	}
	return &OutputResult{Mode: models.OutputPrint, Written: len(chart.Entries)}, nil
}

func TestChartEngine_Run(t *testing.T) {
	req := models.ChartRequest{Chart: "hot-100", Date: chartDate}

	t.Run("CSV End To End", func(t *testing.T) {
		server, paths := chartSite(t, map[string][]byte{"/hot-100/2020-01-04/": fixture(t, "hot-100.html")})
		engine := NewChartEngine(charts.NewFetcher(charts.FetcherOpts{BaseURL: server.URL}), nil)

		path := filepath.Join(t.TempDir(), "hot-100_2020-01-04.csv")
		result, err := engine.Run(context.Background(), req, 0, &CSVSink{Path: path}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(*paths) != 1 || (*paths)[0] != "/hot-100/2020-01-04/" {
			t.Errorf("expected a single request for the dated chart, got %v", *paths)
		}
		if result.Output.Path != path || result.Output.Written != 3 {
			t.Errorf("unexpected output %+v", result.Output)
		}

		content := tu.MustReadFile(t, path)
		lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
		if len(lines) != 4 {
			t.Fatalf("expected header plus 3 rows, got %d lines:\n%s", len(lines), content)
		}
		if lines[0] != "rank,title,artist" {
			t.Errorf("unexpected header %q", lines[0])
		}

		entries, err := formatter.ReadCSV(strings.NewReader(content))
		if err != nil {
			t.Fatalf("expected CSV to re-parse, got %v", err)
		}
		for i, e := range entries {
			if e.Rank != i+1 {
				t.Errorf("row %d: expected rank %d, got %d", i, i+1, e.Rank)
			}
		}
		if entries[0].Title != "Circles" || entries[0].Artist != "Post Malone" {
			t.Errorf("unexpected first entry %+v", entries[0])
		}
	})

	t.Run("Latest Chart", func(t *testing.T) {
		server, paths := chartSite(t, map[string][]byte{"/hot-100/": fixture(t, "hot-100.html")})
		engine := NewChartEngine(charts.NewFetcher(charts.FetcherOpts{BaseURL: server.URL}), nil)

		sink := &recordingSink{}
		if _, err := engine.Run(context.Background(), models.ChartRequest{Chart: "hot-100"}, 0, sink, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if (*paths)[0] != "/hot-100/" {
			t.Errorf("expected latest chart path, got %v", *paths)
		}
	})

	t.Run("Limit", func(t *testing.T) {
		engine := NewChartEngine(&staticFetcher{page: fixture(t, "hot-100.html")}, nil)

		var buf bytes.Buffer
		result, err := engine.Run(context.Background(), req, 2, &ConsoleSink{Out: &buf}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want := "1. Circles - Post Malone\n2. All I Want For Christmas Is You - Mariah Carey\n"
		if buf.String() != want {
			t.Errorf("expected %q, got %q", want, buf.String())
		}
		if result.Parsed != 3 || len(result.Chart.Entries) != 2 {
			t.Errorf("expected 3 parsed and 2 kept, got %d and %d", result.Parsed, len(result.Chart.Entries))
		}
	})

	t.Run("Limit Larger Than Chart", func(t *testing.T) {
		engine := NewChartEngine(&staticFetcher{page: fixture(t, "hot-100.html")}, nil)
		sink := &recordingSink{}

		if _, err := engine.Run(context.Background(), req, 50, sink, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(sink.got.Entries) != 3 {
			t.Errorf("expected all 3 entries, got %d", len(sink.got.Entries))
		}
	})

	t.Run("Fetch Error", func(t *testing.T) {
		server, _ := chartSite(t, map[string][]byte{})
		engine := NewChartEngine(charts.NewFetcher(charts.FetcherOpts{BaseURL: server.URL}), nil)
		sink := &recordingSink{}

		_, err := engine.Run(context.Background(), req, 0, sink, nil)
		if !errors.Is(err, shared.ErrFetch) {
			t.Errorf("expected ErrFetch, got %v", err)
		}
		if sink.calls != 0 {
			t.Error("sink must not run after a fetch failure")
		}
	})

	t.Run("Parse Error", func(t *testing.T) {
		engine := NewChartEngine(&staticFetcher{page: fixture(t, "missing-artist.html")}, nil)
		path := filepath.Join(t.TempDir(), "out.csv")

		_, err := engine.Run(context.Background(), req, 0, &CSVSink{Path: path}, nil)
		if !errors.Is(err, shared.ErrParse) {
			t.Errorf("expected ErrParse, got %v", err)
		}
		tu.AssertNoFile(t, path)
	})

	t.Run("Sink Error", func(t *testing.T) {
		engine := NewChartEngine(&staticFetcher{page: fixture(t, "hot-100.html")}, nil)

		result, err := engine.Run(context.Background(), req, 0, &recordingSink{err: shared.ErrIO}, nil)
		if !errors.Is(err, shared.ErrIO) {
			t.Errorf("expected ErrIO, got %v", err)
		}
		if result == nil || len(result.Chart.Entries) != 3 {
			t.Error("expected the parsed chart in the result")
		}
	})

	t.Run("Invalid Arguments", func(t *testing.T) {
		fetcher := &staticFetcher{page: fixture(t, "hot-100.html")}
		engine := NewChartEngine(fetcher, nil)

		if _, err := engine.Run(context.Background(), req, -1, &recordingSink{}, nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if _, err := engine.Run(context.Background(), req, 0, nil, nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if fetcher.calls != 0 {
			t.Error("nothing should be fetched for invalid arguments")
		}
	})

	t.Run("Custom Parser", func(t *testing.T) {
		engine := NewChartEngine(&staticFetcher{page: []byte("ignored")}, nil).WithParser(func([]byte) ([]models.ChartEntry, error) {
			return []models.ChartEntry{{Rank: 1, Title: "A", Artist: "B"}}, nil
		})
		sink := &recordingSink{}

		if _, err := engine.Run(context.Background(), req, 0, sink, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(sink.got.Entries) != 1 {
			t.Errorf("expected parser output to reach the sink, got %+v", sink.got)
		}
	})

	t.Run("Progress", func(t *testing.T) {
		engine := NewChartEngine(&staticFetcher{page: fixture(t, "hot-100.html")}, nil)

		progress := make(chan ProgressUpdate, 10)
		if _, err := engine.Run(context.Background(), req, 0, &recordingSink{}, progress); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		close(progress)

		var phases []Phase
		for u := range progress {
			phases = append(phases, u.Phase)
		}
		if len(phases) != 2 || phases[0] != FetchChart || phases[1] != ParseChart {
			t.Errorf("unexpected phases %v", phases)
		}
	})

	t.Run("Progress Never Blocks", func(t *testing.T) {
		engine := NewChartEngine(&staticFetcher{page: fixture(t, "hot-100.html")}, nil)

		done := make(chan error, 1)
		go func() {
			_, err := engine.Run(context.Background(), req, 0, &recordingSink{}, make(chan ProgressUpdate))
			done <- err
		}()

		select {
		case err := <-done:
			if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("run blocked on an unread progress channel")
		}
	})
}

func TestCSVSink(t *testing.T) {
	entries := []models.ChartEntry{
		{Rank: 1, Title: "Song A", Artist: "Artist A"},
		{Rank: 2, Title: "Song B, Part 2", Artist: "Artist \"B\""},
	}
	chart := models.Chart{Request: models.ChartRequest{Chart: "hot-100", Date: chartDate}, Entries: entries}

	t.Run("Round Trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chart.csv")
		if _, err := (&CSVSink{Path: path}).Write(context.Background(), chart, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()

		got, err := formatter.ReadCSV(f)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != len(entries) {
			t.Fatalf("expected %d entries, got %d", len(entries), len(got))
		}
		for i := range entries {
			if got[i] != entries[i] {
				t.Errorf("entry %d: expected %+v, got %+v", i, entries[i], got[i])
			}
		}
	})

	t.Run("Overwrites", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chart.csv")
		os.WriteFile(path, []byte("stale content that is longer than the new file\n\n\n\n\n\n"), 0644)

		if _, err := (&CSVSink{Path: path}).Write(context.Background(), chart, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.Contains(tu.MustReadFile(t, path), "stale") {
			t.Error("expected existing file to be replaced")
		}
	})

	t.Run("Default Filename", func(t *testing.T) {
		sink := &CSVSink{Now: fixedNow}
		if got := sink.Target(chart.Request); got != "hot-100_2020-01-04.csv" {
			t.Errorf("expected hot-100_2020-01-04.csv, got %s", got)
		}
		if got := sink.Target(models.ChartRequest{Chart: "billboard-200"}); got != "billboard-200_2024-03-09.csv" {
			t.Errorf("expected today's date for latest chart, got %s", got)
		}
	})

	t.Run("Unwritable Path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "chart.csv")
		if _, err := (&CSVSink{Path: path}).Write(context.Background(), chart, nil); !errors.Is(err, shared.ErrIO) {
			t.Errorf("expected ErrIO, got %v", err)
		}
	})
}

func TestConsoleSink(t *testing.T) {
	chart := models.Chart{
		Request: models.ChartRequest{Chart: "hot-100", Date: chartDate},
		Entries: []models.ChartEntry{{Rank: 1, Title: "Circles", Artist: "Post Malone"}},
	}

	t.Run("Plain", func(t *testing.T) {
		var buf bytes.Buffer
		result, err := (&ConsoleSink{Out: &buf}).Write(context.Background(), chart, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if buf.String() != "1. Circles - Post Malone\n" {
			t.Errorf("unexpected output %q", buf.String())
		}
		if result.Written != 1 {
			t.Errorf("expected 1 written, got %d", result.Written)
		}
	})

	t.Run("Styled", func(t *testing.T) {
		var buf bytes.Buffer
		sink := &ConsoleSink{Out: &buf, Palette: ui.DefaultPalette(), Now: fixedNow}
		if _, err := sink.Write(context.Background(), chart, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "Billboard Hot 100 - 2020-01-04") || !strings.Contains(out, "Circles") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("Failing Writer", func(t *testing.T) {
		if _, err := (&ConsoleSink{Out: &tu.FWriter{}}).Write(context.Background(), chart, nil); !errors.Is(err, shared.ErrIO) {
			t.Errorf("expected ErrIO, got %v", err)
		}
	})
}
