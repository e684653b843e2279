// package formatter renders chart entries as CSV or plain text and reads CSV listings back
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
)

// CSVHeader is the header row of every exported listing.
var CSVHeader = []string{"rank", "title", "artist"}

// WriteCSV writes the header and one record per entry to w.
func WriteCSV(w io.Writer, entries []models.ChartEntry) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range entries {
		record := []string{strconv.Itoa(entry.Rank), entry.Title, entry.Artist}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}

	return nil
}

// ExportToCSV converts entries to CSV with columns: rank, title, artist
func ExportToCSV(entries []models.ChartEntry) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadCSV parses a listing produced by [WriteCSV].
func ReadCSV(r io.Reader) ([]models.ChartEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(CSVHeader)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing CSV header", shared.ErrInvalidInput)
	}
	for i, col := range CSVHeader {
		if records[0][i] != col {
			return nil, fmt.Errorf("%w: unexpected header %v", shared.ErrInvalidInput, records[0])
		}
	}

	entries := make([]models.ChartEntry, 0, len(records)-1)
	for i, rec := range records[1:] {
		rank, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad rank %q", shared.ErrInvalidInput, i+2, rec[0])
		}
		entries = append(entries, models.ChartEntry{Rank: rank, Title: rec[1], Artist: rec[2]})
	}

	return entries, nil
}

// ExportToText renders the chart as a numbered plain text list
func ExportToText(chart models.Chart) []byte {
	var buf bytes.Buffer

	for _, entry := range chart.Entries {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", entry.Rank, entry.Title, entry.Artist))
	}

	return buf.Bytes()
}

// CSVFilename returns the default file name for a chart export, e.g. hot-100_2020-01-04.csv.
func CSVFilename(req models.ChartRequest, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", req.Chart, req.Label(now))
}

// PlaylistName is the name given to a new playlist for req.
func PlaylistName(req models.ChartRequest, now time.Time) string {
	return fmt.Sprintf("Billboard %s - %s", req.Chart, req.Label(now))
}

// PlaylistDescription is the description given to a new playlist for req.
func PlaylistDescription(req models.ChartRequest, now time.Time) string {
	return fmt.Sprintf("Billboard %s chart from %s. Created automatically.", req.Chart, req.Label(now))
}

// RefreshedName is the name an existing playlist gets when its tracks are replaced.
func RefreshedName(req models.ChartRequest, now time.Time) string {
	return fmt.Sprintf("Billboard %s - Week of %s", shared.TitleCase(req.Chart), req.Label(now))
}

// RefreshedDescription is the description an existing playlist gets when its tracks are replaced.
func RefreshedDescription(req models.ChartRequest, now time.Time) string {
	return fmt.Sprintf("Billboard %s chart for the week of %s. Automatically updated.", shared.TitleCase(req.Chart), req.Label(now))
}
