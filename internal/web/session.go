package web

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"

	"github.com/firecrawl/appgen/internal/controller"
	"github.com/firecrawl/appgen/internal/generator"
	"github.com/firecrawl/appgen/internal/viewer"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum intent size accepted from the page. Prompts are free text.
	maxMessageSize = 64 << 10
)

// session is one mounted page: a controller owned by one socket.
type session struct {
	ctrl *controller.Controller
	conn *websocket.Conn
	log  *logrus.Entry
	// style returns the chroma style at render time so config reloads apply.
	style func() string

	mu     sync.Mutex
	view   viewer.Viewer
	bodies map[string]string // highlighted HTML for view.Files()

	dirty chan struct{}
	errs  chan string
}

func newSession(ctrl *controller.Controller, conn *websocket.Conn, log *logrus.Logger, style func() string) *session {
	return &session{
		ctrl:  ctrl,
		conn:  conn,
		log:   log.WithField("session", ctrl.ID()),
		style: style,
		dirty: make(chan struct{}, 1),
		errs:  make(chan string, 8),
	}
}

// markDirty schedules a state push. Pushes coalesce: the writer always
// sends the latest snapshot.
func (s *session) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

func (s *session) reportError(err error) {
	select {
	case s.errs <- err.Error():
	default:
		s.log.WithError(err).Warn("Dropped error message")
	}
}

// serve runs the session until the socket closes or ctx is done.
func (s *session) serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.conn.SetReadLimit(maxMessageSize)
	unsubscribe := s.ctrl.Subscribe(func(controller.State) { s.markDirty() })
	defer unsubscribe()

	writeErr := make(chan error, 1)
	go func() {
		writeErr <- s.writePump(ctx)
		cancel()
	}()

	s.markDirty()
	err := s.readPump(ctx)
	cancel()
	if werr := <-writeErr; err == nil {
		err = werr
	}
	return err
}

func (s *session) readPump(ctx context.Context) error {
	for {
		var in Intent
		if err := wsjson.Read(ctx, s.conn, &in); err != nil {
			return err
		}
		if err := s.dispatch(in); err != nil {
			s.log.WithError(err).WithField("intent", in.Type).Debug("Intent rejected")
			s.reportError(err)
		}
	}
}

func (s *session) writePump(ctx context.Context) error {
	for {
		var msg Message
		select {
		case <-ctx.Done():
			return nil
		case <-s.dirty:
			msg = Message{Type: MessageState, Session: s.ctrl.ID(), State: s.render()}
		case e := <-s.errs:
			msg = Message{Type: MessageError, Error: e}
		}

		writeCtx, cancel := context.WithTimeout(ctx, writeWait)
		err := wsjson.Write(writeCtx, s.conn, msg)
		cancel()
		if err != nil {
			return fmt.Errorf("write %s: %w", msg.Type, err)
		}
	}
}

var errUnknownIntent = errors.New("unknown intent")

func (s *session) dispatch(in Intent) error {
	switch in.Type {
	case IntentSelect:
		return s.ctrl.SelectTemplate(in.ID)
	case IntentPrompt:
		return s.ctrl.SetPrompt(in.Text)
	case IntentSubmit:
		if !s.ctrl.Submit() {
			s.log.Debug("Submit ignored")
		}
		return nil
	case IntentToggleView:
		return s.ctrl.ToggleViewMode()
	case IntentActivate:
		s.mu.Lock()
		err := s.view.Activate(in.File)
		s.mu.Unlock()
		if err == nil {
			s.markDirty()
		}
		return err
	default:
		return fmt.Errorf("%w: %q", errUnknownIntent, in.Type)
	}
}

// render projects the current controller state through the session viewer.
func (s *session) render() *StateView {
	state := s.ctrl.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view.Sync(state.GeneratedFiles) {
		s.bodies = s.highlight(state.GeneratedFiles)
	}
	s.view.SetMode(state.ViewMode)
	return newStateView(state, &s.view, s.bodies)
}

func (s *session) highlight(files *generator.FileSet) map[string]string {
	style := s.style()
	bodies := make(map[string]string, files.Len())
	for _, f := range files.Files() {
		body, err := viewer.HighlightHTML(f.Name, f.Content, style)
		if err != nil {
			s.log.WithError(err).Warn("Highlight failed")
			body = "<pre>" + escape(f.Content) + "</pre>"
		}
		bodies[f.Name] = body
	}
	return bodies
}
