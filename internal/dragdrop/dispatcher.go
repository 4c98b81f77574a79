package dragdrop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"reqtree/internal/tree"
)

const (
	DefaultRemoteTimeout = 10 * time.Second
	refetchTimeout       = 15 * time.Second
	refetchMaxRetries    = 3
)

type DispatcherOptions struct {
	// Timeout bounds each remote call. Zero means DefaultRemoteTimeout.
	Timeout time.Duration
	// NewBackOff builds the retry policy for re-fetching after a failure.
	NewBackOff func() backoff.BackOff
	Metrics    *Metrics
}

// Dispatcher applies commands optimistically and reconciles them with the Remote.
// It never retries a failed command and does not serialize overlapping ones.
type Dispatcher struct {
	state  *State
	remote Remote
	source Source
	log    logrus.FieldLogger

	timeout    time.Duration
	newBackOff func() backoff.BackOff
	metrics    *Metrics

	mu         sync.Mutex
	onCommit   []func(Command)
	onRollback []func(Command, error)
}

// NewDispatcher wires a Dispatcher. source may be nil, in which case a failure only
// restores the pre-mutation snapshot.
func NewDispatcher(log logrus.FieldLogger, state *State, remote Remote, source Source, opts DispatcherOptions) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultRemoteTimeout
	}
	if opts.NewBackOff == nil {
		opts.NewBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxElapsedTime = refetchTimeout
			return b
		}
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Dispatcher{
		state:      state,
		remote:     remote,
		source:     source,
		log:        log.WithField("component", "dragdrop"),
		timeout:    opts.Timeout,
		newBackOff: opts.NewBackOff,
		metrics:    opts.Metrics,
	}
}

// OnCommit registers fn to run after the remote accepts a command. Hosts use it to
// invalidate read caches.
func (d *Dispatcher) OnCommit(fn func(Command)) {
	d.mu.Lock()
	d.onCommit = append(d.onCommit, fn)
	d.mu.Unlock()
}

// OnRollback registers fn to run after a failed command has been reverted.
func (d *Dispatcher) OnRollback(fn func(Command, error)) {
	d.mu.Lock()
	d.onRollback = append(d.onRollback, fn)
	d.mu.Unlock()
}

// Pending is a command that has been applied locally and not yet confirmed.
type Pending struct {
	Command Command

	d      *Dispatcher
	before *tree.Tree
	after  *tree.Tree

	once sync.Once
	err  error
}

// Dispatch applies cmd to a clone of the current tree and publishes it. The remote
// is not contacted until Await.
func (d *Dispatcher) Dispatch(cmd Command) (*Pending, error) {
	var before, after *tree.Tree
	for {
		before = d.state.Tree()
		after = before.Clone()
		if err := cmd.ApplyTo(after); err != nil {
			return nil, fmt.Errorf("apply %s locally: %w", cmd.Kind, err)
		}
		// Another publish may have landed while we cloned; re-apply against it.
		if d.state.swap(before, after) {
			break
		}
	}
	d.metrics.CommandsDispatched.WithLabelValues(string(cmd.Kind)).Inc()
	d.log.WithFields(logrus.Fields{
		"command": cmd.ID,
		"kind":    cmd.Kind,
		"subject": cmd.SubjectID,
	}).Debug("Applied command optimistically")
	return &Pending{Command: cmd, d: d, before: before, after: after}, nil
}

// Apply dispatches cmd and waits for the remote.
func (d *Dispatcher) Apply(ctx context.Context, cmd Command) error {
	p, err := d.Dispatch(cmd)
	if err != nil {
		return err
	}
	return p.Await(ctx)
}

// Await sends the command to the remote and reconciles. It is safe to call more
// than once; later calls return the first result.
func (p *Pending) Await(ctx context.Context) error {
	p.once.Do(func() {
		p.err = p.d.settle(ctx, p)
	})
	return p.err
}

func (d *Dispatcher) settle(ctx context.Context, p *Pending) error {
	cmd := p.Command
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	err := call(callCtx, d.remote, cmd)
	cancel()
	if err == nil {
		d.log.WithField("command", cmd.ID).Debug("Remote accepted command")
		for _, fn := range d.hooks().commit {
			fn(cmd)
		}
		return nil
	}

	failure := &RemoteFailure{Command: cmd, Err: err}
	d.metrics.CommandsFailed.WithLabelValues(string(cmd.Kind)).Inc()
	d.metrics.Rollbacks.Inc()

	restored := d.state.swap(p.after, p.before)
	log := d.log.WithError(err).WithFields(logrus.Fields{
		"command":  cmd.ID,
		"kind":     cmd.Kind,
		"restored": restored,
	})
	log.Warn("Remote rejected command; reverting")

	var result error = failure
	if d.source != nil {
		if fetchErr := d.refetch(ctx, p.before.WorkspaceID); fetchErr != nil {
			log.WithField("refetch_error", fetchErr.Error()).Error("Failed to re-fetch authoritative tree")
			result = multierror.Append(failure, fetchErr).ErrorOrNil()
		}
	} else if !restored {
		log.Warn("Local tree changed while command was in flight; it may be stale until the next refresh")
	}

	for _, fn := range d.hooks().rollback {
		fn(cmd, result)
	}
	return result
}

// refetch loads the authoritative tree and publishes it. It runs detached from the
// caller's cancellation so a timed-out command still converges.
func (d *Dispatcher) refetch(ctx context.Context, workspaceID string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refetchTimeout)
	defer cancel()

	var fetched *tree.Tree
	op := func() error {
		t, err := d.source.FetchTree(ctx, workspaceID)
		if err != nil {
			return err
		}
		fetched = t
		return nil
	}
	b := backoff.WithContext(backoff.WithMaxRetries(d.newBackOff(), refetchMaxRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return fmt.Errorf("refetch tree: %w", err)
	}
	d.state.Publish(fetched)
	return nil
}

type hookSet struct {
	commit   []func(Command)
	rollback []func(Command, error)
}

func (d *Dispatcher) hooks() hookSet {
	d.mu.Lock()
	defer d.mu.Unlock()
	return hookSet{
		commit:   append([]func(Command){}, d.onCommit...),
		rollback: append([]func(Command, error){}, d.onRollback...),
	}
}
