package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"reqtree/internal/dragdrop"
	"reqtree/internal/model"
	"reqtree/internal/remote"
	"reqtree/internal/store"
)

// session is one resolved workspace with its engine wired to either the local
// store or a remote server.
type session struct {
	store    *store.Store
	ws       model.Workspace
	remote   dragdrop.Remote
	source   dragdrop.Source
	engine   *dragdrop.Engine
	location string
}

func (s *session) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

func openStore(ctx context.Context, app *App) (*store.Store, error) {
	dir := strings.TrimSpace(app.Dir)
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	st, err := store.Open(ctx, dir, app.log)
	if err != nil {
		return nil, err
	}
	app.Dir = st.Dir
	return st, nil
}

// resolveWorkspace picks the workspace by precedence: --workspace, then
// currentWorkspace from config, then the only workspace when there is exactly one.
func resolveWorkspace(ctx context.Context, app *App, st *store.Store) (model.Workspace, error) {
	if ref := workspaceRef(app); ref != "" {
		return st.Workspace(ctx, ref)
	}
	all, err := st.Workspaces(ctx)
	if err != nil {
		return model.Workspace{}, err
	}
	switch len(all) {
	case 0:
		return model.Workspace{}, errNoWorkspace
	case 1:
		return all[0], nil
	default:
		return model.Workspace{}, errAmbiguousWorkspace{count: len(all)}
	}
}

func workspaceRef(app *App) string {
	if ref := strings.TrimSpace(app.Workspace); ref != "" {
		return ref
	}
	if app.cfg != nil {
		return strings.TrimSpace(app.cfg.CurrentWorkspace)
	}
	return ""
}

// openSession resolves the workspace, loads its tree and builds the engine.
func openSession(ctx context.Context, app *App) (*session, error) {
	s := &session{}
	timeout := dragdrop.DefaultRemoteTimeout
	thresholds := dragdrop.DefaultThresholds()
	if app.cfg != nil {
		timeout = app.cfg.Timeout(timeout)
		thresholds = app.cfg.ClassifierThresholds()
	}

	if app.Remote != "" {
		ref := workspaceRef(app)
		if ref == "" {
			return nil, errRemoteNeedsWorkspace
		}
		c, err := remote.New(app.Remote, timeout, app.log)
		if err != nil {
			return nil, err
		}
		s.remote, s.source = c, c
		s.ws = model.Workspace{ID: ref, Name: ref}
		s.location = app.Remote
	} else {
		st, err := openStore(ctx, app)
		if err != nil {
			return nil, err
		}
		ws, err := resolveWorkspace(ctx, app, st)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		s.store = st
		s.remote, s.source = st, st
		s.ws = ws
		s.location = "local"
	}

	initial, err := s.source.FetchTree(ctx, s.ws.ID)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	state := dragdrop.NewState(initial)
	d := dragdrop.NewDispatcher(app.log, state, s.remote, s.source, dragdrop.DispatcherOptions{Timeout: timeout})
	d.OnCommit(func(cmd dragdrop.Command) {
		app.log.WithFields(logrus.Fields{"command": cmd.String(), "workspace": s.ws.ID}).Info("Saved")
	})
	d.OnRollback(func(cmd dragdrop.Command, err error) {
		app.log.WithError(err).WithField("command", cmd.String()).Warn("Reverted")
	})
	s.engine = dragdrop.NewEngine(app.log, state, nil, dragdrop.NewClassifier(thresholds), d)
	return s, nil
}

// localOnly rejects commands that need direct database access.
func localOnly(app *App, what string) error {
	if app.Remote != "" {
		return errors.New(what + " is not available with --remote")
	}
	return nil
}
