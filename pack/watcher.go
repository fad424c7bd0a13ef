package pack

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/scriptpack/errors"
	"github.com/teranos/scriptpack/logger"
)

// Watch defaults.
const (
	DefaultDebounce           = 300 * time.Millisecond
	DefaultMaxBuildsPerMinute = 30
)

// WatchConfig tunes a Watcher.
type WatchConfig struct {
	Debounce           time.Duration // quiet period after the last change
	MaxBuildsPerMinute int           // <= 0 disables the limit
}

// BuildFunc receives the outcome of every build a Watcher runs.
type BuildFunc func(*Report, error)

// Watcher rebuilds a request whenever its input file changes.
//
// The input's directory is watched rather than the file, so editors that
// save by renaming a new file into place are seen. Builds run one at a time
// on the Run goroutine.
type Watcher struct {
	packer  *Packer
	req     Request
	cfg     WatchConfig
	onBuild BuildFunc
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

// NewWatcher creates a watcher; nothing happens until Run.
func NewWatcher(p *Packer, req Request, cfg WatchConfig, onBuild BuildFunc) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	limit := rate.Inf
	if cfg.MaxBuildsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.MaxBuildsPerMinute) / 60.0)
	}
	return &Watcher{
		packer:  p,
		req:     req,
		cfg:     cfg,
		onBuild: onBuild,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.ComponentLogger("watch"),
	}
}

// Run builds once, then rebuilds on every debounced change to the input
// until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.req.Validate(); err != nil {
		return err
	}
	input, err := filepath.Abs(w.req.Input)
	if err != nil {
		return errors.Wrapf(err, "resolve input path %s", w.req.Input)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer fw.Close()

	dir := filepath.Dir(input)
	if err := fw.Add(dir); err != nil {
		return errors.Wrapf(err, "failed to watch %s", dir)
	}
	w.logger.Infow("Watching for changes", logger.FieldInput, input, logger.FieldPath, dir)

	w.limiter.Allow()
	w.build(ctx)

	debounce := time.NewTimer(w.cfg.Debounce)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != input {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debugw("Input changed", logger.FieldFile, event.Name, "op", event.Op.String())
			debounce.Reset(w.cfg.Debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("Watcher error", logger.FieldError, err)

		case <-debounce.C:
			if !w.limiter.Allow() {
				w.logger.Infow("Rebuild rate limited, deferring",
					"max_builds_per_minute", w.cfg.MaxBuildsPerMinute)
				debounce.Reset(w.cfg.Debounce)
				continue
			}
			w.build(ctx)
		}
	}
}

func (w *Watcher) build(ctx context.Context) {
	report, err := w.packer.Pack(ctx, w.req)
	if err != nil {
		w.logger.Debugw("Build failed", logger.FieldError, err, logger.FieldErrorType, errors.KindOf(err))
	}
	if w.onBuild != nil {
		w.onBuild(report, err)
	}
}
