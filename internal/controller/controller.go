// Package controller holds the page-level generation state machine:
//
//	Idle --submit--> Generating --completion--> Idle (with result)
//
// One Controller belongs to one mounted page (a TUI run or a browser
// session). It is created on mount and must be closed on unmount; closing
// cancels pending generations so they never touch the state again.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/firecrawl/appgen/internal/catalog"
	"github.com/firecrawl/appgen/internal/config"
	"github.com/firecrawl/appgen/internal/generator"
	"github.com/firecrawl/appgen/internal/logging"
	"github.com/firecrawl/appgen/internal/viewer"
)

// ErrClosed is returned by operations on a closed controller.
var ErrClosed = errors.New("controller closed")

// State is a snapshot of the page state.
type State struct {
	Prompt             string
	SelectedTemplateID string // "" when no template is selected
	IsGenerating       bool
	GeneratedFiles     *generator.FileSet // nil until the first completion
	ViewMode           viewer.Mode
	LastError          error
	Pending            int    // generations still in flight
	Version            uint64 // bumped on every change
}

// CanSubmit reports whether Submit would be accepted on this snapshot,
// ignoring the overlap policy.
func (s State) CanSubmit() bool {
	return s.Prompt != "" && s.SelectedTemplateID != ""
}

// Options configure a Controller. Zero values take the reference
// behaviour: the mock generator with config defaults, values bound at
// completion, overlapping submits allowed.
type Options struct {
	Generator generator.Generator
	// BindPromptAt is config.BindAtCompletion or config.BindAtSubmit.
	BindPromptAt string
	// DisallowOverlap turns Submit into a no-op while a generation is pending.
	DisallowOverlap bool
	Logger          *logrus.Logger
}

// FromConfig maps the loaded configuration onto Options.
func FromConfig(cfg *config.Config, log *logrus.Logger) Options {
	return Options{
		Generator:       generator.NewMock(cfg.GenerationDelay),
		BindPromptAt:    cfg.BindPromptAt,
		DisallowOverlap: !cfg.AllowOverlap,
		Logger:          log,
	}
}

type Controller struct {
	id   string
	opts Options
	log  *logrus.Entry

	mu     sync.Mutex
	state  State
	closed bool
	seq    int

	notifyMu sync.Mutex
	subs     map[int]func(State)
	nextSub  int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New mounts a controller.
func New(opts Options) *Controller {
	if opts.Generator == nil {
		opts.Generator = generator.NewMock(config.Default().GenerationDelay)
	}
	if opts.BindPromptAt == "" {
		opts.BindPromptAt = config.BindAtCompletion
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	return &Controller{
		id:     id,
		opts:   opts,
		log:    opts.Logger.WithField("session", id),
		subs:   make(map[int]func(State)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID is the session id of this controller.
func (c *Controller) ID() string { return c.id }

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to receive a snapshot after every change, in
// change order. fn runs on the goroutine that made the change, with the
// notification lock held. It must not call the controller's mutators or
// Close; a subscriber that wants to close the controller does so from
// another goroutine. The returned func unsubscribes.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.notifyMu.Lock()
		defer c.notifyMu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Controller) changed() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	snap := c.Snapshot()
	for _, fn := range c.subs {
		fn(snap)
	}
}

// mutate applies fn under the state lock and notifies subscribers when fn
// reports a change.
func (c *Controller) mutate(fn func(s *State) bool) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	did := fn(&c.state)
	if did {
		c.state.Version++
	}
	c.mu.Unlock()

	if did {
		c.changed()
	}
	return nil
}

// SelectTemplate sets the selected template. Allowed at any time, including
// while a generation is pending.
func (c *Controller) SelectTemplate(id string) error {
	if !catalog.Has(id) {
		return fmt.Errorf("select template: %w: %q", catalog.ErrUnknownTemplate, id)
	}
	return c.mutate(func(s *State) bool {
		if s.SelectedTemplateID == id {
			return false
		}
		s.SelectedTemplateID = id
		return true
	})
}

// SetPrompt replaces the prompt text. Unguarded.
func (c *Controller) SetPrompt(text string) error {
	return c.mutate(func(s *State) bool {
		if s.Prompt == text {
			return false
		}
		s.Prompt = text
		return true
	})
}

// ToggleViewMode flips between code and preview. Generated files are
// untouched.
func (c *Controller) ToggleViewMode() error {
	return c.mutate(func(s *State) bool {
		s.ViewMode = s.ViewMode.Toggle()
		return true
	})
}

// Submit starts a generation and reports whether it did. It is a no-op when
// the prompt is empty, no template is selected, the controller is closed, or
// overlap is disallowed and a generation is pending.
//
// Every accepted submit completes exactly once unless the controller is
// closed first. Overlapping completions each overwrite the result; the
// last to finish wins.
func (c *Controller) Submit() bool {
	c.mu.Lock()
	if c.closed || !c.state.CanSubmit() {
		c.mu.Unlock()
		return false
	}
	if c.opts.DisallowOverlap && c.state.IsGenerating {
		c.mu.Unlock()
		return false
	}

	c.seq++
	seq := c.seq
	submitted := generator.Request{Prompt: c.state.Prompt, TemplateID: c.state.SelectedTemplateID}
	c.state.IsGenerating = true
	c.state.Pending++
	c.state.Version++
	// Add under the lock so Close never waits on a group it raced with.
	c.wg.Add(1)
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"seq":      seq,
		"template": submitted.TemplateID,
		"prompt":   len(submitted.Prompt),
	}).Info("Generation submitted")
	c.changed()

	src := generator.Fixed(submitted)
	if c.opts.BindPromptAt == config.BindAtCompletion {
		src = c.liveRequest
	}

	go c.run(seq, src)
	return true
}

func (c *Controller) liveRequest() generator.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return generator.Request{Prompt: c.state.Prompt, TemplateID: c.state.SelectedTemplateID}
}

func (c *Controller) run(seq int, src generator.RequestSource) {
	defer c.wg.Done()
	start := time.Now()

	files, err := c.opts.Generator.Generate(c.ctx, src)
	if c.ctx.Err() != nil {
		c.log.WithField("seq", seq).Debug("Generation cancelled")
		return
	}

	entry := c.log.WithFields(logrus.Fields{"seq": seq, "elapsed": time.Since(start).Round(time.Millisecond)})
	if err == nil && files.Len() == 0 {
		err = errors.New("empty file set")
	}
	if err != nil && !errors.Is(err, generator.ErrGeneration) {
		err = fmt.Errorf("%w: %v", generator.ErrGeneration, err)
	}

	merr := c.mutate(func(s *State) bool {
		s.IsGenerating = false
		s.Pending--
		if err != nil {
			s.LastError = err
			return true
		}
		s.GeneratedFiles = files
		s.LastError = nil
		return true
	})
	if merr != nil {
		// Close won the race after the context check.
		entry.WithError(merr).Debug("Generation result discarded")
		return
	}

	if err != nil {
		entry.WithError(err).Warn("Generation failed")
		return
	}
	entry.WithField("files", files.Names()).Info("Generation completed")
}

// Wait blocks until no generation is pending or ctx is done. When ctx
// ends first, the goroutine watching the pending generations lives on
// until they finish or the controller is closed.
func (c *Controller) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close unmounts the controller: pending generations are cancelled and
// discarded, subscribers are dropped, and later mutations return ErrClosed.
// Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()

	c.notifyMu.Lock()
	c.subs = map[int]func(State){}
	c.notifyMu.Unlock()
	c.log.Debug("Controller closed")
}
