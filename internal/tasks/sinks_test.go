package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
	tu "github.com/desertthunder/chartx/internal/testing"
)

func playlistChart() models.Chart {
	return models.Chart{
		Request: models.ChartRequest{Chart: "hot-100", Date: chartDate},
		Entries: []models.ChartEntry{
			{Rank: 1, Title: "Circles", Artist: "Post Malone"},
			{Rank: 2, Title: "Obscure B-Side", Artist: "Nobody"},
			{Rank: 3, Title: "Memories", Artist: "Maroon 5"},
		},
	}
}

func catalog() map[string]*models.Track {
	return map[string]*models.Track{
		tu.SearchKey("Circles", "Post Malone"): {ID: "t1", Title: "Circles", Artist: "Post Malone"},
		tu.SearchKey("Memories", "Maroon 5"):   {ID: "t3", Title: "Memories", Artist: "Maroon 5"},
	}
}

func TestPlaylistSink(t *testing.T) {
	t.Run("Creates Playlist And Skips Misses", func(t *testing.T) {
		svc := tu.NewMockPlaylistService(catalog())
		sink := &PlaylistSink{Service: svc, Now: fixedNow}

		result, err := sink.Write(context.Background(), playlistChart(), nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(svc.Created) != 1 {
			t.Fatalf("expected one playlist created, got %d", len(svc.Created))
		}
		created := svc.Created[0]
		if created.Name != "Billboard hot-100 - 2020-01-04" {
			t.Errorf("unexpected name %q", created.Name)
		}
		if created.Description != "Billboard hot-100 chart from 2020-01-04. Created automatically." {
			t.Errorf("unexpected description %q", created.Description)
		}

		if got := fmt.Sprint(svc.Added[created.ID]); got != "[t1 t3]" {
			t.Errorf("expected [t1 t3] in rank order, got %s", got)
		}
		if svc.AddCalls != 2 {
			t.Errorf("expected one append per match, got %d calls", svc.AddCalls)
		}
		if len(svc.Searches) != 3 {
			t.Errorf("expected every entry searched, got %v", svc.Searches)
		}

		if result.Written != 2 || len(result.Added) != 2 {
			t.Errorf("expected 2 added, got %+v", result)
		}
		if len(result.Skipped) != 1 || result.Skipped[0].Rank != 2 {
			t.Errorf("expected rank 2 skipped, got %+v", result.Skipped)
		}
		if result.Playlist.ID != created.ID {
			t.Errorf("expected result to carry playlist %s, got %+v", created.ID, result.Playlist)
		}
	})

	t.Run("Custom Name", func(t *testing.T) {
		svc := tu.NewMockPlaylistService(catalog())
		sink := &PlaylistSink{Service: svc, Target: models.PlaylistTarget{Name: "My Chart", Description: "mine"}}

		if _, err := sink.Write(context.Background(), playlistChart(), nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if svc.Created[0].Name != "My Chart" || svc.Created[0].Description != "mine" {
			t.Errorf("unexpected playlist %+v", svc.Created[0])
		}
	})

	t.Run("Existing Playlist", func(t *testing.T) {
		svc := tu.NewMockPlaylistService(catalog())
		sink := &PlaylistSink{Service: svc, Target: models.PlaylistTarget{PlaylistID: "existing"}}

		result, err := sink.Write(context.Background(), playlistChart(), nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(svc.Created) != 0 || len(svc.Replaced) != 0 {
			t.Error("existing playlist must not be created or cleared without replace")
		}
		if got := fmt.Sprint(svc.Added["existing"]); got != "[t1 t3]" {
			t.Errorf("expected tracks appended to existing, got %s", got)
		}
		if result.Playlist.ID != "existing" {
			t.Errorf("unexpected playlist %+v", result.Playlist)
		}
	})

	t.Run("Replace", func(t *testing.T) {
		svc := tu.NewMockPlaylistService(catalog())
		svc.Added["existing"] = []string{"old1", "old2"}
		sink := &PlaylistSink{Service: svc, Target: models.PlaylistTarget{PlaylistID: "existing", Replace: true}, Now: fixedNow}

		if _, err := sink.Write(context.Background(), playlistChart(), nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(svc.Replaced) != 1 || len(svc.Replaced[0].TrackIDs) != 0 {
			t.Errorf("expected playlist cleared once, got %+v", svc.Replaced)
		}
		if got := fmt.Sprint(svc.Added["existing"]); got != "[t1 t3]" {
			t.Errorf("expected only new tracks, got %s", got)
		}
		if len(svc.Updated) != 1 || svc.Updated[0].Name != "Billboard Hot 100 - Week of 2020-01-04" {
			t.Errorf("unexpected rename %+v", svc.Updated)
		}
	})

	t.Run("Rename Failure Is Ignored", func(t *testing.T) {
		svc := tu.NewMockPlaylistService(catalog())
		svc.UpdateErr = fmt.Errorf("%w: forbidden", shared.ErrAPI)
		sink := &PlaylistSink{Service: svc, Target: models.PlaylistTarget{PlaylistID: "existing", Replace: true}}

		result, err := sink.Write(context.Background(), playlistChart(), nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Written != 2 {
			t.Errorf("expected tracks still added, got %d", result.Written)
		}
	})

	t.Run("Replace Failure", func(t *testing.T) {
		svc := tu.NewMockPlaylistService(catalog())
		svc.ReplaceErr = fmt.Errorf("%w: not owner", shared.ErrAPI)
		sink := &PlaylistSink{Service: svc, Target: models.PlaylistTarget{PlaylistID: "existing", Replace: true}}

		_, err := sink.Write(context.Background(), playlistChart(), nil)
		if !errors.Is(err, shared.ErrPlaylist) || !errors.Is(err, shared.ErrAPI) {
			t.Errorf("expected ErrPlaylist and ErrAPI, got %v", err)
		}
		if svc.AddCalls != 0 {
			t.Error("no tracks should be added after a failed clear")
		}
	})

	t.Run("Auth Failure", func(t *testing.T) {
		svc := tu.NewMockPlaylistService(catalog())
		svc.AuthErr = fmt.Errorf("%w: token revoked", shared.ErrAuth)
		sink := &PlaylistSink{Service: svc}

		result, err := sink.Write(context.Background(), playlistChart(), nil)
		if !errors.Is(err, shared.ErrPlaylist) || !errors.Is(err, shared.ErrAuth) {
			t.Errorf("expected ErrPlaylist and ErrAuth, got %v", err)
		}
		if result != nil {
			t.Errorf("expected no result, got %+v", result)
		}
		if len(svc.Created) != 0 || len(svc.Searches) != 0 {
			t.Error("nothing should happen after a failed login")
		}
	})

	t.Run("Create Failure", func(t *testing.T) {
		svc := tu.NewMockPlaylistService(catalog())
		svc.CreateErr = fmt.Errorf("%w: quota", shared.ErrAPI)

		_, err := (&PlaylistSink{Service: svc}).Write(context.Background(), playlistChart(), nil)
		if !errors.Is(err, shared.ErrPlaylist) || !errors.Is(err, shared.ErrAPI) {
			t.Errorf("expected ErrPlaylist and ErrAPI, got %v", err)
		}
	})

	t.Run("Add Failure", func(t *testing.T) {
		svc := tu.NewMockPlaylistService(catalog())
		svc.AddErr = fmt.Errorf("%w: 500", shared.ErrAPI)

		result, err := (&PlaylistSink{Service: svc}).Write(context.Background(), playlistChart(), nil)
		if !errors.Is(err, shared.ErrPlaylist) || !errors.Is(err, shared.ErrAPI) {
			t.Errorf("expected ErrPlaylist and ErrAPI, got %v", err)
		}
		if svc.AddCalls != 1 {
			t.Errorf("expected the run to stop at the first failed append, got %d calls", svc.AddCalls)
		}
		if result == nil || result.Playlist == nil {
			t.Error("expected the created playlist to be reported")
		}
	})

	t.Run("Search Failure", func(t *testing.T) {
		svc := tu.NewMockPlaylistService(catalog())
		svc.SearchErrs = map[string]error{tu.SearchKey("Memories", "Maroon 5"): fmt.Errorf("%w: 503", shared.ErrAPI)}

		result, err := (&PlaylistSink{Service: svc}).Write(context.Background(), playlistChart(), nil)
		if !errors.Is(err, shared.ErrPlaylist) {
			t.Errorf("expected ErrPlaylist, got %v", err)
		}
		if result.Written != 1 {
			t.Errorf("expected tracks before the failure to stay added, got %d", result.Written)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		svc := tu.NewMockPlaylistService(catalog())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := (&PlaylistSink{Service: svc}).Write(ctx, playlistChart(), nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(svc.Searches) != 0 {
			t.Error("no searches expected after cancellation")
		}
	})

	t.Run("No Service", func(t *testing.T) {
		if _, err := (&PlaylistSink{}).Write(context.Background(), playlistChart(), nil); !errors.Is(err, shared.ErrPlaylist) {
			t.Errorf("expected ErrPlaylist, got %v", err)
		}
	})

	t.Run("Progress", func(t *testing.T) {
		svc := tu.NewMockPlaylistService(catalog())
		progress := make(chan ProgressUpdate, 20)

		if _, err := (&PlaylistSink{Service: svc}).Write(context.Background(), playlistChart(), progress); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		close(progress)

		counts := map[Phase]int{}
		for u := range progress {
			counts[u.Phase]++
		}
		if counts[Authenticate] != 1 || counts[CreatePlaylist] != 1 || counts[AddTracks] != 2 {
			t.Errorf("unexpected progress counts %v", counts)
		}
		// one search update per entry plus one skip notice
		if counts[SearchTracks] != 4 {
			t.Errorf("expected 4 search updates, got %d", counts[SearchTracks])
		}
	})
}
