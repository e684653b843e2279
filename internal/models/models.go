package models

import (
	"fmt"
	"time"
)

// DateLayout is the chart date format used in URLs, file names and the --date flag.
const DateLayout = "2006-01-02"

// ChartEntry is a single ranked row of a chart.
type ChartEntry struct {
	Rank   int
	Title  string
	Artist string
}

func (e ChartEntry) String() string {
	return fmt.Sprintf("%d. %s - %s", e.Rank, e.Title, e.Artist)
}

// ChartRequest identifies one chart publication.
type ChartRequest struct {
	Chart string
	Date  time.Time // zero value selects the most recent chart
}

// IsLatest reports whether the request targets the most recent chart.
func (r ChartRequest) IsLatest() bool {
	return r.Date.IsZero()
}

// DateString returns the request date as YYYY-MM-DD, or "latest".
func (r ChartRequest) DateString() string {
	if r.IsLatest() {
		return "latest"
	}
	return r.Date.Format(DateLayout)
}

// Label returns the date used in names and descriptions; latest charts are labelled with now.
func (r ChartRequest) Label(now time.Time) string {
	if r.IsLatest() {
		return now.Format(DateLayout)
	}
	return r.Date.Format(DateLayout)
}

// Chart is a request together with the entries parsed for it.
type Chart struct {
	Request ChartRequest
	Entries []ChartEntry
}

// Limit returns a copy of c with at most n entries. n <= 0 keeps every entry.
func (c Chart) Limit(n int) Chart {
	if n <= 0 || n >= len(c.Entries) {
		return c
	}
	entries := make([]ChartEntry, n)
	copy(entries, c.Entries[:n])
	return Chart{Request: c.Request, Entries: entries}
}

// AuthMode selects how the playlist service obtains a token.
type AuthMode int

const (
	AuthInteractive AuthMode = iota // browser-based OAuth login
	AuthHeadless                    // pre-issued token from config or environment
)

func (m AuthMode) String() string {
	switch m {
	case AuthInteractive:
		return "interactive"
	case AuthHeadless:
		return "headless"
	default:
		return ""
	}
}

// PlaylistTarget describes the playlist a chart is pushed to.
type PlaylistTarget struct {
	PlaylistID  string // empty creates a new playlist
	AuthMode    AuthMode
	Name        string // name for a new playlist; derived from the chart when empty
	Description string
	Replace     bool // clear and rename an existing playlist before adding tracks
}

// OutputMode is the value of the --output flag.
type OutputMode string

const (
	OutputCSV     OutputMode = "csv"
	OutputPrint   OutputMode = "print"
	OutputSpotify OutputMode = "spotify"
)

// ParseOutputMode validates s as an [OutputMode].
func ParseOutputMode(s string) (OutputMode, error) {
	switch m := OutputMode(s); m {
	case OutputCSV, OutputPrint, OutputSpotify:
		return m, nil
	default:
		return "", fmt.Errorf("unknown output mode %q (want csv, print or spotify)", s)
	}
}

// Track is a catalog match on the remote music service.
type Track struct {
	ID     string
	Title  string
	Artist string
	URI    string
}

// Playlist is a playlist on the remote music service.
type Playlist struct {
	ID          string
	Name        string
	Description string
}
