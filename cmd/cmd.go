// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/chartx/internal/charts"
	"github.com/desertthunder/chartx/internal/models"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

func init() {
	// -v is taken by --verbose
	cli.VersionFlag = &cli.BoolFlag{Name: "version", Usage: "print the version"}
}

func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:      "chartx",
		Usage:     "Scrape a Billboard chart into a CSV file, the terminal, or a Spotify playlist",
		UsageText: "chartx [--chart hot-100] [--date YYYY-MM-DD | --random-90s | --random-historical] [--output csv|print|spotify]",
		Version:   version,
		Flags:     rootFlags(),
		Action:    r.Run,
		Commands:  []*cli.Command{authCommand(r), initCommand(r)},
	}
}

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
		&cli.StringFlag{
			Name:  "chart",
			Usage: "Chart name as it appears in the Billboard URL",
			Value: "hot-100",
		},
		&cli.StringFlag{
			Name:  "date",
			Usage: "Chart date (YYYY-MM-DD); takes precedence over the random selectors",
		},
		&cli.BoolFlag{
			Name:  "random-90s",
			Usage: "Use a random date between 1990-01-01 and 1999-12-31",
		},
		&cli.BoolFlag{
			Name:  "random-historical",
			Usage: "Use a random date between " + charts.HistoricalStart.Format(models.DateLayout) + " and five years ago",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output mode: csv, print or spotify",
			Value:   string(models.OutputSpotify),
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Keep only the first N chart entries (0 keeps all)",
		},
		&cli.StringFlag{
			Name:  "csv-path",
			Usage: "CSV file to write (default <chart>_<date>.csv)",
		},
		&cli.StringFlag{
			Name:  "playlist-id",
			Usage: "Add tracks to this existing Spotify playlist instead of creating one",
		},
		&cli.StringFlag{
			Name:  "playlist-name",
			Usage: "Name for the playlist (default derived from chart and date)",
		},
		&cli.BoolFlag{
			Name:  "replace",
			Usage: "Clear and rename the playlist given by --playlist-id before adding tracks",
		},
		&cli.BoolFlag{
			Name:  "headless",
			Usage: "Use the stored Spotify token instead of a browser login",
		},
		&cli.StringFlag{
			Name:  "client-id",
			Usage: "Spotify client ID (overrides config and SPOTIFY_CLIENT_ID)",
		},
		&cli.StringFlag{
			Name:  "client-secret",
			Usage: "Spotify client secret (overrides config and SPOTIFY_CLIENT_SECRET)",
		},
		&cli.StringFlag{
			Name:  "redirect-uri",
			Usage: "Spotify redirect URI (overrides config and SPOTIFY_REDIRECT_URI)",
		},
	}
}

// authCommand runs the browser login once and stores the token for headless runs
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Log in to Spotify and save the token to the config file",
		Action: r.Auth,
	}
}

// initCommand writes a config file from the embedded template
func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  "Create a config.toml with placeholder credentials",
		Action: r.Init,
	}
}
