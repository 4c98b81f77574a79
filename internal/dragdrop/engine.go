package dragdrop

import (
	"sync"

	"github.com/sirupsen/logrus"

	"reqtree/internal/tree"
)

// Engine is what a host UI talks to: pointer events in, drop feedback and commands
// out.
type Engine struct {
	state      *State
	session    *Session
	classifier Classifier
	dispatcher *Dispatcher
	log        logrus.FieldLogger
	metrics    *Metrics

	mu        sync.Mutex
	observers []func(Command)
}

func NewEngine(log logrus.FieldLogger, state *State, session *Session, classifier Classifier, d *Dispatcher) *Engine {
	if session == nil {
		session = NewSession()
	}
	e := &Engine{
		state:      state,
		session:    session,
		classifier: classifier,
		dispatcher: d,
		log:        d.log,
		metrics:    d.metrics,
	}
	if log != nil {
		e.log = log.WithField("component", "dragdrop")
	}
	return e
}

// OnCommand registers fn to receive each command a drag produces.
func (e *Engine) OnCommand(fn func(Command)) {
	e.mu.Lock()
	e.observers = append(e.observers, fn)
	e.mu.Unlock()
}

func (e *Engine) Tree() *tree.Tree { return e.state.Tree() }
func (e *Engine) Index() tree.Index { return e.state.Index() }
func (e *Engine) State() *State { return e.state }
func (e *Engine) Dispatcher() *Dispatcher { return e.dispatcher }
func (e *Engine) Dragging() bool { return e.session.Active() }

func (e *Engine) Subject() (string, bool) {
	snap, ok := e.session.Current()
	return snap.SubjectID, ok
}

func (e *Engine) DragStart(itemID string) {
	if _, ok := e.state.Index().Lookup(itemID); !ok {
		e.log.WithField("item", itemID).Debug("Ignoring drag of unknown item")
		return
	}
	if discarded := e.session.Start(itemID); discarded {
		e.log.WithField("item", itemID).Debug("Drag started while another was active; discarding the old one")
	}
}

// DragMove classifies the current pointer position and records it. It reads only
// the prebuilt Index.
func (e *Engine) DragMove(pointer Rect, hover Hover) DropDecision {
	snap, ok := e.session.Current()
	if !ok {
		return DropDecision{}
	}
	d := e.classifier.Classify(pointer, snap.SubjectID, hover, e.state.Index())
	e.session.Update(d)
	return d
}

// CurrentDecision is the decision to render as a drop indicator.
func (e *Engine) CurrentDecision() DropDecision {
	snap, ok := e.session.Current()
	if !ok {
		return DropDecision{}
	}
	return DropDecision{HoveredID: snap.HoveredID, Position: snap.Position}
}

// DragAbort cancels the drag; nothing is applied.
func (e *Engine) DragAbort() {
	e.session.Abort()
}

// DragEnd finishes the drag. When the drop resolves to a command it is applied
// locally and returned with its Pending remote call, which the host must Await.
func (e *Engine) DragEnd() (*Pending, Command, bool) {
	snap, ok := e.session.End()
	if !ok {
		if snap.SubjectID == "" {
			e.log.Debug("Drag ended without a matching start")
		}
		return nil, Command{}, false
	}

	t, idx := e.state.Snapshot()
	cmd, reason := resolve(snap, t, idx)
	if reason != "" {
		e.metrics.DropsNoOp.WithLabelValues(reason).Inc()
		e.log.WithFields(logrus.Fields{
			"subject": snap.SubjectID,
			"hovered": snap.HoveredID,
			"reason":  reason,
		}).Debug("Drop resolved to no-op")
		return nil, Command{}, false
	}

	p, err := e.dispatcher.Dispatch(cmd)
	if err != nil {
		e.log.WithError(err).WithField("command", cmd.String()).Warn("Resolved command did not apply locally")
		return nil, Command{}, false
	}

	e.mu.Lock()
	obs := append([]func(Command){}, e.observers...)
	e.mu.Unlock()
	for _, fn := range obs {
		fn(cmd)
	}
	return p, cmd, true
}
