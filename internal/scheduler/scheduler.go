package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"sync/atomic"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"gridsmith/internal/compose"
	"gridsmith/internal/config"
	"gridsmith/internal/ledger"
	"gridsmith/internal/logging"
	"gridsmith/internal/output"
	"gridsmith/internal/providers"
	"gridsmith/internal/titles"
)

// defaultMaxOptionsPerProvider caps how many images each provider
// contributes to an interactive selection.
const defaultMaxOptionsPerProvider = 5

// ArtSource is the provider chain the scheduler pulls artwork from.
// *providers.Orchestrator satisfies it.
type ArtSource interface {
	Providers() []providers.Provider
	FetchFirst(ctx context.Context, title titles.Title, platform string, prefs providers.StylePrefs) (*providers.Option, error)
	FetchAll(ctx context.Context, title titles.Title, platform string, prefs providers.StylePrefs, maxPerProvider int) []providers.Option
	FetchHeroes(ctx context.Context, title titles.Title, platform string, maxResults int) []providers.Option
	FetchLogo(ctx context.Context, title titles.Title, platform string, styles []string) *providers.Option
	FetchScreenshots(ctx context.Context, title titles.Title, platform string, maxResults int) []providers.Option
}

// BorderSource resolves configured border names to images.
type BorderSource interface {
	Border(name string) (image.Image, error)
}

// Scheduler drives a run.
type Scheduler struct {
	cfg     *config.Config
	source  ArtSource
	borders BorderSource
	store   *ledger.Store
	layout  output.Layout
	format  output.Format
	events  Events
	bridge  *Bridge
	logger  *slog.Logger
	runID   string

	cancelled atomic.Bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithEvents installs a progress sink.
func WithEvents(events Events) Option {
	return func(s *Scheduler) {
		if events != nil {
			s.events = events
		}
	}
}

// WithBridge enables interactive selection. Without a bridge every task
// takes the highest-priority artwork automatically.
func WithBridge(bridge *Bridge) Option {
	return func(s *Scheduler) {
		s.bridge = bridge
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(runID string) Option {
	return func(s *Scheduler) {
		if runID != "" {
			s.runID = runID
		}
	}
}

// New creates a scheduler. store may be nil to skip ledger recording.
func New(cfg *config.Config, source ArtSource, borders BorderSource, store *ledger.Store, logger *slog.Logger, opts ...Option) (*Scheduler, error) {
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	s := &Scheduler{
		cfg:     cfg,
		source:  source,
		borders: borders,
		store:   store,
		layout:  output.Layout{Root: cfg.Paths.OutputDir},
		format:  format,
		events:  NoopEvents{},
		logger:  logging.NewComponentLogger(logger, "scheduler"),
		runID:   uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RunID returns the identifier stamped on this run's ledger records.
func (s *Scheduler) RunID() string {
	return s.runID
}

// Run executes all tasks in the configured mode and returns the summary.
func (s *Scheduler) Run(ctx context.Context, tasks []*Task) Result {
	var result Result
	if s.cfg.Run.Mode == "sequential" {
		result = s.runSequential(ctx, tasks)
	} else {
		result = s.runParallel(ctx, tasks)
	}
	s.events.Log(result.Summary())
	s.logger.Info("run finished",
		logging.String(logging.FieldEventType, "run_finished"),
		logging.String(logging.FieldRunID, s.runID),
		logging.Int("completed", result.Completed),
		logging.Int("total", result.Total),
		logging.Int("errors", result.Errors),
		logging.Int("skipped", result.Skipped))
	return result
}

func summaryLine(completed, total, errs int) string {
	return fmt.Sprintf("Completed %d/%d (errors=%d)", completed, total, errs)
}

// stylePrefs derives the provider style preferences for icon artwork.
func (s *Scheduler) stylePrefs() providers.StylePrefs {
	sg := s.cfg.Providers.SteamGridDB
	return providers.StylePrefs{
		PreferredDimension: sg.PreferredDimension,
		Styles:             sg.SquareStyles,
		AllowAnimated:      sg.AllowAnimated,
		SquareOnly:         true,
	}
}

// fetchOptions gathers the interactive candidate set for one task.
func (s *Scheduler) fetchOptions(ctx context.Context, task *Task) []providers.Option {
	return s.source.FetchAll(ctx, task.Title, task.Platform.Key, s.stylePrefs(), defaultMaxOptionsPerProvider)
}

// availableProviderIDs lists the providers that would be asked for this
// platform, for the no-art diagnostic.
func (s *Scheduler) availableProviderIDs(platform string) []string {
	var ids []string
	for _, p := range s.source.Providers() {
		if p.Available(platform) {
			ids = append(ids, p.ID())
		}
	}
	return ids
}

// process runs one task to a terminal status. In interactive mode the
// candidate set may already have been prefetched; pass nil to fetch here.
func (s *Scheduler) process(ctx context.Context, task *Task, prefetched []providers.Option) {
	if s.cancelled.Load() || ctx.Err() != nil {
		s.finish(task, StatusSkipped, "", Wrap(ErrCancelled, task.Title.Cleaned, "process", "", nil))
		return
	}

	// Tag the context so every log line below this point carries the task.
	ctx = logging.WithTask(ctx, task.Platform.Key+"/"+task.Title.Cleaned)

	if s.cfg.Run.SkipExisting {
		iconPath := s.layout.IconPath(task.Platform.Folder, task.Slug, s.format)
		if _, err := os.Stat(iconPath); err == nil {
			logging.WithContext(ctx, s.logger).Debug("output exists, skipping")
			s.finish(task, StatusSkipped, "", nil)
			return
		}
	}

	task.Status = StatusFetching
	opt, err := s.selectArtwork(ctx, task, prefetched)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			s.finish(task, StatusSkipped, "", err)
			return
		}
		s.finish(task, StatusFailed, "", err)
		return
	}
	if opt == nil {
		// Human skipped the title.
		s.finish(task, StatusSkipped, "", nil)
		return
	}

	task.Status = StatusComposing
	if err := s.composeAndSave(ctx, task, opt); err != nil {
		s.finish(task, StatusFailed, opt.SourceTag, err)
		return
	}

	s.saveExtras(ctx, task, opt)
	s.finish(task, StatusDone, opt.SourceTag, nil)
}

// selectArtwork resolves the image bytes for a task: interactive selection
// when a bridge is installed, first-hit priority order otherwise, falling
// back to the configured static icon when nothing is found.
func (s *Scheduler) selectArtwork(ctx context.Context, task *Task, prefetched []providers.Option) (*providers.Option, error) {
	if s.bridge != nil {
		options := prefetched
		if options == nil {
			options = s.fetchOptions(ctx, task)
		}
		if len(options) == 0 {
			return s.fallbackOption(ctx, task)
		}

		task.Status = StatusAwaitingSelection
		decision, err := s.bridge.Prompt(ctx, task.Title.Cleaned, task.Platform.Key, options)
		if err != nil {
			return nil, Wrap(ErrCancelled, task.Title.Cleaned, "selection", "", err)
		}
		switch decision.Action {
		case ActionCancelAll:
			s.cancelled.Store(true)
			return nil, Wrap(ErrCancelled, task.Title.Cleaned, "selection", "cancelled by user", nil)
		case ActionSkip:
			return nil, nil
		default:
			if decision.Index < 0 || decision.Index >= len(options) {
				return nil, Wrap(ErrProvider, task.Title.Cleaned, "selection", fmt.Sprintf("index %d out of range", decision.Index), nil)
			}
			return &options[decision.Index], nil
		}
	}

	opt, err := s.source.FetchFirst(ctx, task.Title, task.Platform.Key, s.stylePrefs())
	if err != nil {
		if errors.Is(err, providers.ErrNoArtwork) {
			return s.fallbackOption(ctx, task)
		}
		if ctx.Err() != nil {
			return nil, Wrap(ErrCancelled, task.Title.Cleaned, "fetch", "", err)
		}
		return nil, Wrap(ErrProvider, task.Title.Cleaned, "fetch", "", err)
	}
	return opt, nil
}

// fallbackOption loads the static fallback icon, or reports ErrNotFound
// when the policy is disabled.
func (s *Scheduler) fallbackOption(ctx context.Context, task *Task) (*providers.Option, error) {
	if !s.cfg.Fallback.Enabled {
		return nil, Wrap(ErrNotFound, task.Title.Cleaned, "fetch", "no provider had artwork", nil)
	}
	data, err := os.ReadFile(s.cfg.Fallback.IconPath)
	if err != nil {
		return nil, Wrap(ErrNotFound, task.Title.Cleaned, "fallback", "fallback icon unreadable", err)
	}
	logging.WithContext(ctx, s.logger).Info("using fallback icon")
	return &providers.Option{Bytes: data, SourceTag: "fallback"}, nil
}

// composeAndSave runs the compositing pipeline and writes icon.<ext>.
func (s *Scheduler) composeAndSave(ctx context.Context, task *Task, opt *providers.Option) error {
	src, err := imaging.Decode(bytes.NewReader(opt.Bytes), imaging.AutoOrientation(true))
	if err != nil {
		return Wrap(ErrCompose, task.Title.Cleaned, "decode", "", err)
	}

	size := s.cfg.Output.Size
	centering := compose.Centered
	var centroid compose.Centroid
	if s.cfg.AutoCenter.Enabled {
		centerOpts := compose.DefaultCenterOptions()
		centerOpts.Steps = s.cfg.AutoCenter.Steps
		centerOpts.Span = s.cfg.AutoCenter.Span
		centerOpts.Tolerance = s.cfg.AutoCenter.Tolerance
		centering, centroid = compose.BestCentering(src, size, centerOpts)
	}

	var (
		icon    *image.NRGBA
		metrics compose.Metrics
	)
	if task.Platform.Border != "" {
		border, err := s.borders.Border(task.Platform.Border)
		if err != nil {
			return Wrap(ErrCompose, task.Title.Cleaned, "border", task.Platform.Border, err)
		}
		icon, metrics = compose.ComposeWithBorder(src, border, size, centering)
	} else {
		icon = compose.CenterCrop(src, size, centering)
		metrics = compose.Metrics{Centering: centering, Centroid: centroid}
		metrics.DeviationX = math.Abs(centroid.X - 0.5)
		metrics.DeviationY = math.Abs(centroid.Y - 0.5)
	}

	if s.cfg.AutoCenter.Enabled && metrics.OffCenter(s.cfg.AutoCenter.Tolerance) {
		rec := reviewRecord{
			Title:     task.Title.Cleaned,
			Platform:  task.Platform.Key,
			Kind:      reviewOffCenter,
			SourceTag: opt.SourceTag,
			Deviation: &reviewDeviation{X: metrics.DeviationX, Y: metrics.DeviationY},
			RunID:     s.runID,
		}
		if err := writeReview(s.cfg.Paths.ReviewDir, task.Slug, rec); err != nil {
			logging.WithContext(ctx, s.logger).Warn("review write failed", logging.Error(err))
		}
	}

	iconPath := s.layout.IconPath(task.Platform.Folder, task.Slug, s.format)
	if err := output.Save(icon, iconPath, s.format, s.cfg.Output.Quality); err != nil {
		return Wrap(ErrCompose, task.Title.Cleaned, "save", "", err)
	}
	s.events.Preview(iconPath)
	return nil
}

// saveExtras writes the optional title, hero, and slide siblings. Extras
// are best-effort: failures log and the task still completes.
func (s *Scheduler) saveExtras(ctx context.Context, task *Task, opt *providers.Option) {
	log := logging.WithContext(ctx, s.logger)

	if s.cfg.Output.SaveTitle {
		s.saveTitle(ctx, task, opt)
	}

	if s.cfg.Output.HeroCount > 0 {
		for i, hero := range s.source.FetchHeroes(ctx, task.Title, task.Platform.Key, s.cfg.Output.HeroCount) {
			path := s.layout.HeroPath(task.Platform.Folder, task.Slug, i+1, s.format)
			if err := s.saveBytes(hero.Bytes, path); err != nil {
				log.Warn("hero save failed", logging.Error(err))
			}
		}
	}

	if s.cfg.Output.SlideCount > 0 {
		for i, slide := range s.source.FetchScreenshots(ctx, task.Title, task.Platform.Key, s.cfg.Output.SlideCount) {
			path := s.layout.SlidePath(task.Platform.Folder, task.Slug, i+1, s.format)
			if err := s.saveBytes(slide.Bytes, path); err != nil {
				log.Warn("slide save failed", logging.Error(err))
			}
		}
	}
}

// saveTitle writes title.<ext>: a cropped logo when one exists, otherwise
// the boxart the icon was built from.
func (s *Scheduler) saveTitle(ctx context.Context, task *Task, opt *providers.Option) {
	log := logging.WithContext(ctx, s.logger)
	path := s.layout.TitlePath(task.Platform.Folder, task.Slug, s.format)

	if s.cfg.Logo.Enabled {
		if logo := s.source.FetchLogo(ctx, task.Title, task.Platform.Key, s.cfg.Logo.Styles); logo != nil {
			img, err := imaging.Decode(bytes.NewReader(logo.Bytes))
			if err == nil {
				logoOpts := compose.DefaultLogoOptions()
				logoOpts.MinContentRatio = s.cfg.Logo.MinContentRatio
				logoOpts.MaxCropRatio = s.cfg.Logo.MaxCropRatio
				cropped := compose.CropLogo(img, logoOpts)
				if err := output.Save(cropped, path, s.format, s.cfg.Output.Quality); err != nil {
					log.Warn("title save failed", logging.Error(err))
				}
				return
			}
			log.Debug("logo decode failed", logging.Error(err))
		}
	}

	if err := s.saveBytes(opt.Bytes, path); err != nil {
		log.Warn("title save failed", logging.Error(err))
	}
}

func (s *Scheduler) saveBytes(data []byte, path string) error {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	return output.Save(img, path, s.format, s.cfg.Output.Quality)
}

// finish records a task's terminal status in the ledger, writes any review
// sidecar, and reports progress.
func (s *Scheduler) finish(task *Task, status Status, sourceTag string, err error) {
	task.Status = status
	task.SourceTag = sourceTag
	task.Err = err

	if err != nil && status == StatusFailed {
		s.logger.Error("task failed",
			logging.String(logging.FieldEventType, "task_failed"),
			logging.String("title", task.Title.Cleaned),
			logging.String("platform", task.Platform.Key),
			logging.String(logging.FieldRunID, s.runID),
			logging.Error(err))
		if kind := reviewKind(err); kind != "" {
			rec := reviewRecord{
				Title:    task.Title.Cleaned,
				Platform: task.Platform.Key,
				Kind:     kind,
				Error:    err.Error(),
				RunID:    s.runID,
			}
			if kind == reviewNoArt {
				rec.Providers = s.availableProviderIDs(task.Platform.Key)
			}
			if werr := writeReview(s.cfg.Paths.ReviewDir, task.Slug, rec); werr != nil {
				s.logger.Warn("review write failed", logging.Error(werr))
			}
		}
	}

	if s.store != nil {
		rec := ledger.Record{
			RunID:     s.runID,
			Platform:  task.Platform.Key,
			Title:     task.Title.Cleaned,
			Slug:      task.Slug,
			Status:    ledgerStatus(status),
			SourceTag: sourceTag,
		}
		if err != nil {
			rec.ErrorMessage = err.Error()
		}
		if _, lerr := s.store.Append(context.Background(), rec); lerr != nil {
			s.logger.Warn("ledger append failed", logging.Error(lerr))
		}
	}
}

func ledgerStatus(status Status) ledger.Status {
	switch status {
	case StatusDone:
		return ledger.StatusDone
	case StatusSkipped:
		return ledger.StatusSkipped
	default:
		return ledger.StatusFailed
	}
}

// tally folds terminal task states into the run result.
func tally(tasks []*Task, cancelled bool) Result {
	result := Result{Total: len(tasks), Cancelled: cancelled}
	for _, task := range tasks {
		switch task.Status {
		case StatusDone:
			result.Completed++
		case StatusFailed:
			result.Errors++
		case StatusSkipped:
			result.Skipped++
		}
	}
	return result
}
