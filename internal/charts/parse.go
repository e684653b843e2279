package charts

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
)

const (
	rowSelector    = ".o-chart-results-list-row"
	titleSelector  = "h3.c-title, span.c-title"
	artistSelector = "span.c-label, span.a-font-primary-s"
	rankSelector   = "span.c-label"

	legacySelector = ".chart-list-item"
)

// ParseHTML is [Parse] over an in-memory page.
func ParseHTML(content []byte) ([]models.ChartEntry, error) {
	return Parse(bytes.NewReader(content))
}

// Parse extracts the chart entries from a chart page in document order.
//
// Either every row is recognized or an [shared.ErrParse] is returned with no entries.
func Parse(r io.Reader) ([]models.ChartEntry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrParse, err)
	}

	var entries []models.ChartEntry
	if rows := doc.Find(rowSelector); rows.Length() > 0 {
		entries, err = parseRows(rows)
	} else if items := doc.Find(legacySelector); items.Length() > 0 {
		entries, err = parseLegacy(items)
	} else {
		return nil, fmt.Errorf("%w: chart listing not found, the page layout may have changed", shared.ErrParse)
	}

	if err != nil {
		return nil, err
	}

	if err := checkRanks(entries); err != nil {
		return nil, err
	}

	return entries, nil
}

func parseRows(rows *goquery.Selection) ([]models.ChartEntry, error) {
	entries := make([]models.ChartEntry, 0, rows.Length())
	var rowErr error

	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		entry, err := parseRow(i, row)
		if err != nil {
			rowErr = err
			return false
		}
		entries = append(entries, entry)
		return true
	})

	if rowErr != nil {
		return nil, rowErr
	}
	return entries, nil
}

// parseRow reads one current-layout row. The artist sits next to the title; the rank is the
// first numeric label outside that block, or the row position when the row has none.
func parseRow(i int, row *goquery.Selection) (models.ChartEntry, error) {
	entry := models.ChartEntry{Rank: i + 1}

	title := row.Find(titleSelector).First()
	entry.Title = shared.CollapseSpace(title.Text())
	if entry.Title == "" {
		return entry, fmt.Errorf("%w: row %d has no title", shared.ErrParse, i+1)
	}

	block := title.Parent()
	entry.Artist = shared.CollapseSpace(block.Find(artistSelector).Not(titleSelector).First().Text())
	if entry.Artist == "" {
		return entry, fmt.Errorf("%w: row %d (%q) has no artist", shared.ErrParse, i+1, entry.Title)
	}

	labels := row.Find(rankSelector).NotSelection(block.Find(rankSelector))
	labels.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if n, err := strconv.Atoi(shared.CollapseSpace(s.Text())); err == nil && n > 0 {
			entry.Rank = n
			return false
		}
		return true
	})

	return entry, nil
}

func parseLegacy(items *goquery.Selection) ([]models.ChartEntry, error) {
	entries := make([]models.ChartEntry, 0, items.Length())
	var itemErr error

	items.EachWithBreak(func(i int, s *goquery.Selection) bool {
		title := shared.CollapseSpace(s.AttrOr("data-title", ""))
		artist := shared.CollapseSpace(s.AttrOr("data-artist", ""))
		rawRank := s.AttrOr("data-rank", "")

		rank, err := strconv.Atoi(rawRank)
		switch {
		case err != nil || rank <= 0:
			itemErr = fmt.Errorf("%w: item %d has invalid rank %q", shared.ErrParse, i+1, rawRank)
		case title == "":
			itemErr = fmt.Errorf("%w: item %d has no title", shared.ErrParse, i+1)
		case artist == "":
			itemErr = fmt.Errorf("%w: item %d (%q) has no artist", shared.ErrParse, i+1, title)
		}
		if itemErr != nil {
			return false
		}

		entries = append(entries, models.ChartEntry{Rank: rank, Title: title, Artist: artist})
		return true
	})

	if itemErr != nil {
		return nil, itemErr
	}
	return entries, nil
}

func checkRanks(entries []models.ChartEntry) error {
	for i := 1; i < len(entries); i++ {
		if entries[i].Rank <= entries[i-1].Rank {
			return fmt.Errorf("%w: rank %d follows rank %d", shared.ErrParse, entries[i].Rank, entries[i-1].Rank)
		}
	}
	return nil
}
