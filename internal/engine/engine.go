package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/excalidraw-animate/internal/config"
	"github.com/ivlev/excalidraw-animate/internal/director"
	"github.com/ivlev/excalidraw-animate/internal/effects"
	"github.com/ivlev/excalidraw-animate/internal/params"
	"github.com/ivlev/excalidraw-animate/internal/renderer"
	"github.com/ivlev/excalidraw-animate/internal/scene"
)

const (
	ExportPadding    = 30
	ExportBackground = "#ffffff"

	libraryWarning = "Unable to load library"
)

var ErrAlreadyStarted = errors.New("player already started")

type SceneLoader interface {
	LoadScene(ctx context.Context, id, key string) (scene.Payload, error)
}

type LibraryLoader interface {
	LoadLibrary(ctx context.Context, url string) ([]scene.Payload, error)
}

type Exporter interface {
	Export(ctx context.Context, elements []scene.Element, files scene.BinaryFiles, opts renderer.ExportOptions) (*renderer.Document, error)
}

// Notifier shows a blocking alert to the user.
type Notifier interface {
	Warn(msg string)
}

type State int

const (
	Idle State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// RenderResult is one animated diagram. FinishedMs is absolute.
type RenderResult struct {
	Doc        *renderer.Document
	StartMs    int64
	FinishedMs int64
}

// Span reports the result's timing for the timeline manifest.
func (r RenderResult) Span() director.Span {
	return director.Span{StartMs: r.StartMs, FinishedMs: r.FinishedMs, SeekMs: r.Doc.CurrentTime()}
}

// Deps are the collaborators a Player drives.
type Deps struct {
	Scenes   SceneLoader
	Library  LibraryLoader
	Exporter Exporter
	Effect   effects.Effect
	Notifier Notifier
}

type Player struct {
	Config  *config.Config
	Deps    Deps
	Pointer params.Pointer

	log zerolog.Logger

	mu      sync.RWMutex
	state   State
	results []RenderResult
}

func NewPlayer(cfg *config.Config, deps Deps, pointer params.Pointer, log zerolog.Logger) *Player {
	if deps.Exporter == nil {
		deps.Exporter = renderer.SVGExporter{}
	}
	if deps.Effect == nil {
		deps.Effect = &effects.DefaultEffect{}
	}
	return &Player{
		Config:  cfg,
		Deps:    deps,
		Pointer: pointer,
		log:     log.With().Str("component", "player").Logger(),
	}
}

func (p *Player) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Loading is true until a request has resolved successfully.
func (p *Player) Loading() bool {
	return p.State() != Ready
}

// Results returns the currently published result set in declared order.
func (p *Player) Results() []RenderResult {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]RenderResult, len(p.results))
	copy(out, p.results)
	return out
}

// Start loads req in the background. The returned channel receives the
// outcome once and is then closed.
func (p *Player) Start(ctx context.Context, req params.Request) <-chan error {
	done := make(chan error, 1)

	p.mu.Lock()
	if p.state != Idle {
		p.mu.Unlock()
		done <- ErrAlreadyStarted
		close(done)
		return done
	}
	p.state = Loading
	p.mu.Unlock()

	go func() {
		defer close(done)
		if err := p.LoadFromRequest(ctx, req); err != nil {
			done <- err
			return
		}
		p.mu.Lock()
		p.state = Ready
		p.mu.Unlock()
		done <- nil
	}()
	return done
}

// LoadFromRequest loads every target of req in order. Each target
// replaces the published set. Only scene failures are returned.
func (p *Player) LoadFromRequest(ctx context.Context, req params.Request) error {
	log := p.log.With().Str("cycle", uuid.NewString()).Logger()
	log.Info().Str("request", req.String()).Msg("loading")

	if _, ok := req.Scene(); ok {
		if _, ok := req.Library(); ok {
			log.Warn().Msg("link names both a scene and a library, the library replaces the scene")
		}
	}

	for _, t := range req.Targets {
		switch t := t.(type) {
		case params.SceneTarget:
			payload, err := p.Deps.Scenes.LoadScene(ctx, t.ID, t.Key)
			if err != nil {
				return fmt.Errorf("load scene %s: %w", t.ID, err)
			}
			if _, err := p.loadDataList(ctx, log, []scene.Payload{payload}, false, req.AutoplayDisabled); err != nil {
				return err
			}

		case params.LibraryTarget:
			payloads, err := p.Deps.Library.LoadLibrary(ctx, t.URL)
			if err != nil {
				log.Error().Err(err).Str("url", t.URL).Msg("library load failed")
				if p.Deps.Notifier != nil {
					p.Deps.Notifier.Warn(libraryWarning)
				}
				payloads = nil
			}
			if _, err := p.loadDataList(ctx, log, payloads, req.Sequential, req.AutoplayDisabled); err != nil {
				return err
			}

		default:
			return fmt.Errorf("unknown target %T", t)
		}
	}
	return nil
}

// LoadDataList exports and animates payloads, publishes the results and
// returns them in input order. When sequential, each diagram starts where
// the previous one finished.
func (p *Player) LoadDataList(ctx context.Context, payloads []scene.Payload, sequential bool) ([]RenderResult, error) {
	return p.loadDataList(ctx, p.log, payloads, sequential, false)
}

func (p *Player) loadDataList(ctx context.Context, log zerolog.Logger, payloads []scene.Payload, sequential, seek bool) ([]RenderResult, error) {
	start := time.Now()
	elements := make([][]scene.Element, len(payloads))
	docs := make([]*renderer.Document, len(payloads))

	workers := 1
	if p.Config != nil && p.Config.Workers > 1 {
		workers = p.Config.Workers
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	opts := renderer.ExportOptions{Background: true, BackgroundColor: ExportBackground, Padding: ExportPadding}

	for i, payload := range payloads {
		i, payload := i, payload
		elements[i] = scene.NonDeletedElements(payload.Elements)
		g.Go(func() error {
			doc, err := p.Deps.Exporter.Export(gctx, elements[i], payload.Files, opts)
			if err != nil {
				return fmt.Errorf("export diagram %d: %w", i, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]RenderResult, len(payloads))
	var offset int64
	for i, doc := range docs {
		res, err := p.Deps.Effect.Animate(doc, elements[i], effects.Options{
			StartMs:       offset,
			PointerImg:    p.Pointer.Img,
			PointerWidth:  p.Pointer.Width,
			PointerHeight: p.Pointer.Height,
		})
		if err != nil {
			return nil, fmt.Errorf("animate diagram %d: %w", i, err)
		}
		results[i] = RenderResult{Doc: doc, StartMs: offset, FinishedMs: res.FinishedMs}
		if seek {
			doc.SetCurrentTime(res.FinishedMs)
		}
		if sequential {
			offset = res.FinishedMs
		}
	}

	p.mu.Lock()
	p.results = results
	p.mu.Unlock()

	log.Debug().
		Int("diagrams", len(results)).
		Bool("sequential", sequential).
		Dur("took", time.Since(start)).
		Msg("published")
	return results, nil
}
