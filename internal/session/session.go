// Package session owns the mutable half of the map: the time axis, the
// selection and the autoplay driver. Every user command and every autoplay
// tick is handled on the single goroutine running Run, so a tick never
// interleaves with a manual change and no state needs locking.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/modis-choropleth/internal/autoplay"
	"github.com/couchcryptid/modis-choropleth/internal/domain"
	"github.com/couchcryptid/modis-choropleth/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
)

var (
	// ErrNotReady is returned for commands issued before the initial view
	// exists or after the loop has stopped.
	ErrNotReady = errors.New("session is not ready")
	// ErrNoLocator is returned by ClickAt when no boundary geometry is loaded.
	ErrNoLocator = errors.New("no boundary geometry loaded")
)

// View is the complete visible state after a command.
type View struct {
	Selection   domain.Selection    `json:"selection"`
	Period      domain.Period       `json:"period,omitempty"`
	Periods     []domain.Period     `json:"periods"`
	Playing     bool                `json:"playing"`
	PlayLabel   string              `json:"play_label"`
	Variables   []domain.Descriptor `json:"variables"`
	Frame       domain.Frame        `json:"frame"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// ViewSink receives every new view. Sinks run on the session goroutine and
// must not block.
type ViewSink interface {
	Publish(ctx context.Context, view View) error
}

// RegionLocator maps a point to the region containing it.
type RegionLocator interface {
	RegionAt(p orb.Point) (string, bool)
}

// Options tune a Session. The zero value is usable.
type Options struct {
	DefaultVariable  string
	AutoplayInterval time.Duration
	Clock            clockwork.Clock
	Locator          RegionLocator
	Sinks            []ViewSink
}

type command struct {
	kind  string
	run   func(ctx context.Context) (View, error)
	reply chan result
}

type result struct {
	view View
	err  error
}

// Session serializes commands against the visual state.
type Session struct {
	engine   *domain.Engine
	renderer domain.Renderer
	locator  RegionLocator
	sinks    []ViewSink
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	variables []domain.Descriptor
	commands  chan command
	done      chan struct{}
	ready     atomic.Bool
	current   atomic.Pointer[View]

	// Owned by the Run goroutine.
	axis      *domain.TimeAxis
	selection domain.Selection
	driver    *autoplay.Driver
}

// New creates a Session over engine. Frames are produced by renderer, which
// may be a caching decorator around engine; nil means engine itself.
func New(engine *domain.Engine, renderer domain.Renderer, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Session {
	if renderer == nil {
		renderer = engine
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	s := &Session{
		engine:    engine,
		renderer:  renderer,
		locator:   opts.Locator,
		sinks:     opts.Sinks,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		variables: engine.Registry().Describe(),
		commands:  make(chan command),
		done:      make(chan struct{}),
		axis:      domain.NewTimeAxis(engine.Store().Periods()),
		driver:    autoplay.New(clock, opts.AutoplayInterval),
	}
	s.selection = domain.Selection{Variable: initialVariable(engine.Registry(), opts.DefaultVariable)}
	return s
}

func initialVariable(reg *domain.Registry, preferred string) string {
	if _, err := reg.Resolve(preferred); err == nil {
		return preferred
	}
	if ids := reg.IDs(); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

// CheckReadiness returns nil once the initial view has been computed and
// the loop is accepting commands.
func (s *Session) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return ErrNotReady
	}
	return nil
}

// Run computes the initial view and then processes commands and autoplay
// ticks until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	defer s.driver.Stop()

	if _, err := s.refresh(ctx, s.selection); err != nil {
		return fmt.Errorf("initial render: %w", err)
	}

	s.logger.Info("session started",
		"variable", s.selection.Variable,
		"periods", s.axis.Len(),
		"regions", len(s.engine.Regions()),
		"autoplay_interval", s.driver.Interval(),
	)
	s.metrics.SessionRunning.Set(1)
	defer s.metrics.SessionRunning.Set(0)
	s.ready.Store(true)
	defer s.ready.Store(false)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session stopping", "reason", ctx.Err())
			return nil
		case cmd := <-s.commands:
			view, err := cmd.run(ctx)
			if err != nil {
				s.metrics.CommandsRejected.WithLabelValues(cmd.kind).Inc()
				s.logger.Debug("command rejected", "kind", cmd.kind, "error", err)
			} else {
				s.metrics.Events.WithLabelValues(cmd.kind).Inc()
			}
			cmd.reply <- result{view: view, err: err}
		case <-s.driver.C():
			s.tick(ctx)
		}
	}
}

// Current returns the most recent view.
func (s *Session) Current() (View, error) {
	v := s.current.Load()
	if v == nil || !s.ready.Load() {
		return View{}, ErrNotReady
	}
	return *v, nil
}

// SelectVariable switches the displayed variable. An unknown id leaves the
// state untouched.
func (s *Session) SelectVariable(ctx context.Context, id string) (View, error) {
	return s.do(ctx, "variable", func(ctx context.Context) (View, error) {
		if _, err := s.engine.Registry().Resolve(id); err != nil {
			return View{}, err
		}
		return s.refresh(ctx, s.selection.WithVariable(id))
	})
}

// Scrub moves the time axis to index i.
func (s *Session) Scrub(ctx context.Context, i int) (View, error) {
	return s.do(ctx, "scrub", func(ctx context.Context) (View, error) {
		if _, err := s.axis.At(i); err != nil {
			if errors.Is(err, domain.ErrEmptyAxis) {
				return View{}, fmt.Errorf("%w: axis is empty", domain.ErrIndexOutOfRange)
			}
			return View{}, err
		}
		return s.refresh(ctx, s.selection.WithTimeIndex(i))
	})
}

// Step advances the time axis by one, wrapping past the last period.
func (s *Session) Step(ctx context.Context) (View, error) {
	return s.do(ctx, "step", s.advance)
}

// TogglePlay starts or stops autoplay.
func (s *Session) TogglePlay(ctx context.Context) (View, error) {
	return s.do(ctx, "play", func(ctx context.Context) (View, error) {
		label := s.driver.Toggle()
		view, err := s.refresh(ctx, s.selection)
		if err != nil {
			s.driver.Toggle()
			return View{}, err
		}
		s.metrics.AutoplayRunning.Set(boolGauge(s.driver.Running()))
		s.logger.Info("autoplay toggled", "state", s.driver.State().String(), "label", label)
		return view, nil
	})
}

// Click pins region, or un-pins it when it is already pinned.
func (s *Session) Click(ctx context.Context, region string) (View, error) {
	return s.do(ctx, "click", func(ctx context.Context) (View, error) {
		if !s.engine.HasRegion(region) {
			return View{}, fmt.Errorf("%w: %q", domain.ErrUnknownRegion, region)
		}
		return s.refresh(ctx, s.selection.TogglePin(region))
	})
}

// ClickAt resolves the region under (lon, lat) and toggles its pin.
func (s *Session) ClickAt(ctx context.Context, lon, lat float64) (View, error) {
	return s.do(ctx, "click", func(ctx context.Context) (View, error) {
		if s.locator == nil {
			return View{}, ErrNoLocator
		}
		region, ok := s.locator.RegionAt(orb.Point{lon, lat})
		if !ok || !s.engine.HasRegion(region) {
			return View{}, fmt.Errorf("%w: no region at (%g, %g)", domain.ErrUnknownRegion, lon, lat)
		}
		return s.refresh(ctx, s.selection.TogglePin(region))
	})
}

// Hover returns the info payload for region under the current selection.
// It does not change any state.
func (s *Session) Hover(ctx context.Context, region string) (domain.HoverInfo, error) {
	var info domain.HoverInfo
	_, err := s.do(ctx, "hover", func(context.Context) (View, error) {
		if !s.engine.HasRegion(region) {
			return View{}, fmt.Errorf("%w: %q", domain.ErrUnknownRegion, region)
		}
		period, _ := s.currentPeriod(s.selection.TimeIndex)
		var err error
		info, err = s.engine.Inspect(s.selection.Variable, period, region)
		return View{}, err
	})
	return info, err
}

func (s *Session) do(ctx context.Context, kind string, run func(context.Context) (View, error)) (View, error) {
	if !s.ready.Load() {
		s.metrics.CommandsRejected.WithLabelValues(kind).Inc()
		return View{}, ErrNotReady
	}
	cmd := command{kind: kind, run: run, reply: make(chan result, 1)}
	select {
	case s.commands <- cmd:
	case <-s.done:
		return View{}, ErrNotReady
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
	select {
	case r := <-cmd.reply:
		return r.view, r.err
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

func (s *Session) tick(ctx context.Context) {
	view, err := s.advance(ctx)
	if err != nil {
		s.logger.Warn("autoplay tick failed", "error", err)
		return
	}
	s.metrics.AutoplayTicks.Inc()
	s.logger.Debug("autoplay tick", "index", view.Selection.TimeIndex, "period", view.Period)
}

// advance moves the axis forward one step and re-renders, restoring the
// previous index when rendering fails.
func (s *Session) advance(ctx context.Context) (View, error) {
	prev := s.axis.Index()
	next := s.axis.Advance()
	view, err := s.refresh(ctx, s.selection.WithTimeIndex(next))
	if err != nil && s.axis.Len() > 0 {
		_ = s.axis.SetIndex(prev)
	}
	return view, err
}

// refresh renders sel from scratch and, on success, commits it as the
// current state and publishes the view.
func (s *Session) refresh(ctx context.Context, sel domain.Selection) (View, error) {
	period, ok := s.currentPeriod(sel.TimeIndex)
	if !ok {
		sel.TimeIndex = 0
	}

	start := s.clock.Now()
	frame, err := s.renderer.Render(sel.Variable, period, sel.Pinned)
	if err != nil {
		s.metrics.RenderErrors.Inc()
		return View{}, err
	}
	s.metrics.FramesRendered.Inc()
	s.metrics.RenderDuration.Observe(s.clock.Since(start).Seconds())

	if ok {
		if err := s.axis.SetIndex(sel.TimeIndex); err != nil {
			return View{}, err
		}
	}
	s.selection = sel

	view := View{
		Selection:   sel,
		Period:      period,
		Periods:     s.axis.AllPeriods(),
		Playing:     s.driver.Running(),
		PlayLabel:   s.driver.Label(),
		Variables:   s.variables,
		Frame:       frame,
		GeneratedAt: s.clock.Now().UTC(),
	}
	s.current.Store(&view)
	s.publish(ctx, view)
	return view, nil
}

func (s *Session) currentPeriod(i int) (domain.Period, bool) {
	p, err := s.axis.At(i)
	if err != nil {
		return "", false
	}
	return p, true
}

func (s *Session) publish(ctx context.Context, view View) {
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, view); err != nil {
			s.metrics.PublishErrors.Inc()
			s.logger.Warn("publish view failed", "error", err, "variable", view.Selection.Variable, "period", view.Period)
			continue
		}
		s.metrics.ViewsPublished.Inc()
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
