package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chartx/internal/formatter"
	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/services"
	"github.com/desertthunder/chartx/internal/shared"
	"github.com/desertthunder/chartx/internal/ui"
)

// CSVSink writes the chart to a CSV file, replacing any existing file.
type CSVSink struct {
	Path string           // defaults to <chart>_<date>.csv in the working directory
	Now  func() time.Time // labels latest charts; defaults to time.Now
}

func (s *CSVSink) Mode() models.OutputMode { return models.OutputCSV }

// Target returns the file the chart is written to.
func (s *CSVSink) Target(req models.ChartRequest) string {
	if s.Path != "" {
		return s.Path
	}
	return formatter.CSVFilename(req, now(s.Now))
}

func (s *CSVSink) Write(ctx context.Context, chart models.Chart, progress chan<- ProgressUpdate) (*OutputResult, error) {
	path := s.Target(chart.Request)
	sendProgress(progress, writeOutputUpdate(path, len(chart.Entries)))

	data, err := formatter.ExportToCSV(chart.Entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrIO, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("%w: write %s: %v", shared.ErrIO, path, err)
	}

	return &OutputResult{Mode: models.OutputCSV, Written: len(chart.Entries), Path: path}, nil
}

// ConsoleSink prints the chart to Out. A nil Palette prints plain text.
type ConsoleSink struct {
	Out     io.Writer
	Palette *ui.Palette
	Now     func() time.Time
}

func (s *ConsoleSink) Mode() models.OutputMode { return models.OutputPrint }

func (s *ConsoleSink) Write(ctx context.Context, chart models.Chart, progress chan<- ProgressUpdate) (*OutputResult, error) {
	out := s.Out
	if out == nil {
		out = os.Stdout
	}
	sendProgress(progress, writeOutputUpdate("console", len(chart.Entries)))

	var text []byte
	if s.Palette != nil {
		heading := fmt.Sprintf("Billboard %s - %s", shared.TitleCase(chart.Request.Chart), chart.Request.Label(now(s.Now)))
		text = []byte(ui.ChartListing(s.Palette, heading, chart.Entries))
	} else {
		text = formatter.ExportToText(chart)
	}

	if _, err := out.Write(text); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrIO, err)
	}
	return &OutputResult{Mode: models.OutputPrint, Written: len(chart.Entries)}, nil
}

// PlaylistSink adds the chart's tracks to a playlist on a [services.PlaylistService].
type PlaylistSink struct {
	Service services.PlaylistService
	Target  models.PlaylistTarget
	Logger  *log.Logger
	Now     func() time.Time
}

func (s *PlaylistSink) Mode() models.OutputMode { return models.OutputSpotify }

// Write authenticates, prepares the playlist, then searches and appends each entry in rank order.
//
// Entries without a match are skipped. Any service error aborts with [shared.ErrPlaylist];
// tracks already added stay in the playlist.
func (s *PlaylistSink) Write(ctx context.Context, chart models.Chart, progress chan<- ProgressUpdate) (*OutputResult, error) {
	if s.Service == nil {
		return nil, fmt.Errorf("%w: %w: no playlist service", shared.ErrPlaylist, shared.ErrMissingArgument)
	}
	logger := s.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	sendProgress(progress, authenticateUpdate(s.Service.Name()))
	if _, err := s.Service.Authenticate(ctx); err != nil {
		return nil, shared.PlaylistError(err)
	}

	playlist, err := s.prepare(ctx, chart.Request, logger, progress)
	if err != nil {
		return nil, shared.PlaylistError(err)
	}

	result := &OutputResult{Mode: models.OutputSpotify, Playlist: playlist}
	total := len(chart.Entries)

	for i, entry := range chart.Entries {
		if err := ctx.Err(); err != nil {
			return result, shared.PlaylistError(err)
		}

		step := i + 1
		sendProgress(progress, searchTrackUpdate(step, total, entry))

		track, err := s.Service.SearchTrack(ctx, entry.Title, entry.Artist)
		if err != nil {
			return result, shared.PlaylistError(err)
		}
		if track == nil {
			logger.Warn("no match, skipping", "rank", entry.Rank, "title", entry.Title, "artist", entry.Artist)
			result.Skipped = append(result.Skipped, entry)
			sendProgress(progress, skippedTrackUpdate(step, total, entry))
			continue
		}

		if err := s.Service.AddTracks(ctx, playlist.ID, track.ID); err != nil {
			return result, shared.PlaylistError(err)
		}
		result.Added = append(result.Added, *track)
		result.Written++
		sendProgress(progress, addTrackUpdate(step, total, track))
	}

	logger.Info("playlist updated", "playlist", playlist.ID, "added", result.Written, "skipped", len(result.Skipped))
	return result, nil
}

// prepare resolves the playlist tracks are appended to: a new one, an existing one, or an existing one cleared and renamed.
func (s *PlaylistSink) prepare(ctx context.Context, req models.ChartRequest, logger *log.Logger, progress chan<- ProgressUpdate) (*models.Playlist, error) {
	t := now(s.Now)

	if s.Target.PlaylistID == "" {
		name := s.Target.Name
		if name == "" {
			name = formatter.PlaylistName(req, t)
		}
		desc := s.Target.Description
		if desc == "" {
			desc = formatter.PlaylistDescription(req, t)
		}

		pl, err := s.Service.CreatePlaylist(ctx, name, desc)
		if err != nil {
			return nil, err
		}
		sendProgress(progress, createPlaylistUpdate(pl))
		logger.Info("created playlist", "name", pl.Name, "id", pl.ID)
		return pl, nil
	}

	pl := &models.Playlist{ID: s.Target.PlaylistID, Name: s.Target.Name}
	if !s.Target.Replace {
		if pl.Name == "" {
			pl.Name = pl.ID
		}
		return pl, nil
	}

	sendProgress(progress, replacePlaylistUpdate(pl.ID))
	if err := s.Service.ReplaceTracks(ctx, pl.ID); err != nil {
		return nil, err
	}

	if pl.Name == "" {
		pl.Name = formatter.RefreshedName(req, t)
	}
	pl.Description = s.Target.Description
	if pl.Description == "" {
		pl.Description = formatter.RefreshedDescription(req, t)
	}
	if err := s.Service.UpdateDetails(ctx, pl.ID, pl.Name, pl.Description); err != nil {
		logger.Warn("could not rename playlist", "id", pl.ID, "error", err)
	}
	return pl, nil
}

func now(f func() time.Time) time.Time {
	if f == nil {
		return time.Now()
	}
	return f()
}
