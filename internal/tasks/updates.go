package tasks

import (
	"fmt"

	"github.com/desertthunder/chartx/internal/models"
)

// ProgressUpdate represents a progress event during a run.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchChart Phase = iota
	ParseChart
	WriteOutput
	Authenticate
	CreatePlaylist
	ReplacePlaylist
	SearchTracks
	AddTracks
)

func (p Phase) String() string {
	switch p {
	case FetchChart:
		return "fetch_chart"
	case ParseChart:
		return "parse_chart"
	case WriteOutput:
		return "write_output"
	case Authenticate:
		return "authenticate"
	case CreatePlaylist:
		return "create_playlist"
	case ReplacePlaylist:
		return "replace_playlist"
	case SearchTracks:
		return "search_tracks"
	case AddTracks:
		return "add_tracks"
	default:
		return ""
	}
}

func fetchChartUpdate(req models.ChartRequest) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchChart,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching %s chart (%s)...", req.Chart, req.DateString()),
	}
}

func parsedChartUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ParseChart,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Parsed %d chart entries", count),
	}
}

func writeOutputUpdate(dest string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteOutput,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing %d entries to %s...", count, dest),
	}
}

func authenticateUpdate(service string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Authenticate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Authenticating with %s...", service),
	}
}

func createPlaylistUpdate(pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", pl.Name, pl.ID),
		Data:    pl,
	}
}

func replacePlaylistUpdate(id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReplacePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Clearing playlist %s...", id),
	}
}

func searchTrackUpdate(step, total int, entry models.ChartEntry) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, entry.Title, entry.Artist),
		Data:    entry,
	}
}

func addTrackUpdate(step, total int, track *models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s - %s", step, total, track.Title, track.Artist),
		Data:    track,
	}
}

func skippedTrackUpdate(step, total int, entry models.ChartEntry) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ not found: %s - %s", step, total, entry.Title, entry.Artist),
		Data:    entry,
	}
}
