package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/chartx/internal/models"
)

// ChartListing renders a heading and one "rank. title - artist" line per entry.
func ChartListing(p *Palette, heading string, entries []models.ChartEntry) string {
	var b strings.Builder
	b.WriteString(p.Title(heading))
	b.WriteString("\n")
	if len(entries) == 0 {
		b.WriteString(p.Help("(no entries)"))
		b.WriteString("\n")
		return b.String()
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "%s. %s - %s\n", p.Rank(strconv.Itoa(e.Rank)), e.Title, p.Help(e.Artist))
	}
	return b.String()
}

// PlaylistSummary reports a finished playlist run.
func PlaylistSummary(p *Palette, playlistName, playlistID string, added int, skipped []models.ChartEntry) string {
	var b strings.Builder
	if added == 0 {
		b.WriteString(p.Err(fmt.Sprintf("✗ no tracks added to %q", playlistName)))
	} else {
		b.WriteString(p.OK(fmt.Sprintf("✓ %d tracks added to %q", added, playlistName)))
	}
	b.WriteString("\n")
	if playlistID != "" {
		fmt.Fprintf(&b, "  %s\n", p.Help("https://open.spotify.com/playlist/"+playlistID))
	}
	if len(skipped) > 0 {
		b.WriteString(p.Warn(fmt.Sprintf("⚠ %d not found on Spotify:", len(skipped))))
		b.WriteString("\n")
		for _, e := range skipped {
			fmt.Fprintf(&b, "  %d. %s - %s\n", e.Rank, e.Title, e.Artist)
		}
	}
	return b.String()
}
