package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chartx/internal/charts"
	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/services"
	"github.com/desertthunder/chartx/internal/shared"
	"github.com/desertthunder/chartx/internal/tasks"
	"github.com/desertthunder/chartx/internal/ui"
	"github.com/urfave/cli/v3"
)

// ServiceFactory builds the playlist service for a run.
type ServiceFactory func(ctx context.Context, creds shared.SpotifyConfig, mode models.AuthMode) (services.PlaylistService, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	palette     *ui.Palette
	getenv      func(string) string
	now         func() time.Time
	rng         *rand.Rand
	newService  ServiceFactory
	openBrowser func(string) error
	authTimeout time.Duration
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Config is loaded from the --config path on each command.
type RunnerOpts struct {
	Config      *shared.Config
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	Palette     *ui.Palette
	Getenv      func(string) string
	Now         func() time.Time
	Rand        *rand.Rand
	NewService  ServiceFactory
	OpenBrowser func(string) error
	AuthTimeout time.Duration
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = charts.NewRand()
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	if opts.AuthTimeout <= 0 {
		opts.AuthTimeout = 2 * time.Minute
	}

	r := &Runner{
		config:      opts.Config,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		palette:     opts.Palette,
		getenv:      opts.Getenv,
		now:         opts.Now,
		rng:         opts.Rand,
		newService:  opts.NewService,
		openBrowser: opts.OpenBrowser,
		authTimeout: opts.AuthTimeout,
	}
	if r.newService == nil {
		r.newService = r.spotifyService
	}
	return r
}

// setup applies --verbose and resolves the config: file (or defaults), then environment, then flags.
func (r *Runner) setup(cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	r.configPath = cmd.String("config")
	if r.config == nil {
		config, err := r.loadConfig(r.configPath)
		if err != nil {
			return err
		}
		r.config = config
	}

	r.config.ApplyEnv(r.getenv)

	creds := &r.config.Credentials.Spotify
	for flag, target := range map[string]*string{
		"client-id":     &creds.ClientID,
		"client-secret": &creds.ClientSecret,
		"redirect-uri":  &creds.RedirectURI,
	} {
		if v := cmd.String(flag); v != "" {
			*target = v
		}
	}
	return nil
}

func (r *Runner) loadConfig(path string) (*shared.Config, error) {
	if _, err := os.Stat(path); err != nil {
		r.logger.Debug("no config file, using defaults", "path", path)
		return shared.DefaultConfig(), nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("loaded config", "path", path)
	return config, nil
}

// Run scrapes one chart and writes it to the selected output.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	if err := r.setup(cmd); err != nil {
		return err
	}

	mode, err := models.ParseOutputMode(cmd.String("output"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	limit := int(cmd.Int("limit"))
	if limit < 0 {
		return fmt.Errorf("%w: --limit must be positive, got %d", shared.ErrInvalidArgument, limit)
	}

	req, err := r.chartRequest(cmd)
	if err != nil {
		return err
	}

	sink, err := r.sink(ctx, cmd, mode)
	if err != nil {
		return err
	}

	fetcher := charts.NewFetcher(charts.FetcherOpts{
		BaseURL:    r.config.Chart.BaseURL,
		UserAgent:  r.config.Chart.UserAgent,
		Timeout:    r.config.Chart.Timeout(),
		HTTPClient: r.httpClient,
		Logger:     r.logger,
	})
	engine := tasks.NewChartEngine(fetcher, r.logger)

	progress, done := r.progressPrinter()
	result, err := engine.Run(ctx, req, limit, sink, progress)
	close(progress)
	<-done

	if err != nil {
		return err
	}
	return r.report(result)
}

// chartRequest resolves the date selectors into a request.
func (r *Runner) chartRequest(cmd *cli.Command) (models.ChartRequest, error) {
	opts := charts.DateOptions{
		Date:             cmd.String("date"),
		Random90s:        cmd.Bool("random-90s"),
		RandomHistorical: cmd.Bool("random-historical"),
	}

	date, sel, err := charts.ResolveDate(opts, r.now(), r.rng)
	if err != nil {
		return models.ChartRequest{}, err
	}
	if opts.Conflicting() {
		r.logger.Warn("more than one date selector given", "using", sel.String())
	}

	req := models.ChartRequest{Chart: cmd.String("chart"), Date: date}
	r.logger.Debug("resolved chart", "chart", req.Chart, "date", req.DateString(), "selection", sel.String())
	return req, nil
}

func (r *Runner) sink(ctx context.Context, cmd *cli.Command, mode models.OutputMode) (tasks.Sink, error) {
	switch mode {
	case models.OutputCSV:
		return &tasks.CSVSink{Path: cmd.String("csv-path"), Now: r.now}, nil
	case models.OutputPrint:
		return &tasks.ConsoleSink{Out: r.output, Palette: r.palette, Now: r.now}, nil
	default:
		return r.playlistSink(ctx, cmd)
	}
}

func (r *Runner) playlistSink(ctx context.Context, cmd *cli.Command) (*tasks.PlaylistSink, error) {
	target := models.PlaylistTarget{
		PlaylistID: cmd.String("playlist-id"),
		Name:       cmd.String("playlist-name"),
		Replace:    cmd.Bool("replace"),
		AuthMode:   models.AuthInteractive,
	}
	if cmd.Bool("headless") {
		target.AuthMode = models.AuthHeadless
	}
	if target.Replace && target.PlaylistID == "" {
		return nil, fmt.Errorf("%w: --replace needs --playlist-id", shared.ErrMissingArgument)
	}

	svc, err := r.newService(ctx, r.config.Credentials.Spotify, target.AuthMode)
	if err != nil {
		return nil, shared.PlaylistError(err)
	}

	r.logger.Debug("playlist target", "id", target.PlaylistID, "auth", target.AuthMode.String(), "replace", target.Replace)
	return &tasks.PlaylistSink{Service: svc, Target: target, Logger: r.logger, Now: r.now}, nil
}

// progressPrinter logs updates at debug level until progress is closed; done closes after the last one.
func (r *Runner) progressPrinter() (chan tasks.ProgressUpdate, <-chan struct{}) {
	progress := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for u := range progress {
			r.logger.Debug(u.Message, "phase", u.Phase.String())
		}
	}()

	return progress, done
}

func (r *Runner) report(result *tasks.RunResult) error {
	out := result.Output
	if out == nil {
		return nil
	}

	switch out.Mode {
	case models.OutputCSV:
		return r.writePlain("✓ Wrote %d entries to %s\n", out.Written, out.Path)
	case models.OutputSpotify:
		name, id := "", ""
		if out.Playlist != nil {
			name, id = out.Playlist.Name, out.Playlist.ID
		}
		return r.writePlain("%s", ui.PlaylistSummary(r.styles(), name, id, out.Written, out.Skipped))
	default:
		return nil
	}
}

func (r *Runner) styles() *ui.Palette {
	if r.palette == nil {
		return ui.DefaultPalette()
	}
	return r.palette
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrIO, err)
	}
	return nil
}

// Init writes the embedded example config to the --config path.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	return r.writePlain("✓ Created %s\nAdd your Spotify client_id and client_secret, then run: chartx auth\n", path)
}
