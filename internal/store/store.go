package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	dirName    = ".reqtree"
	dbFileName = "reqtree.sqlite"
)

var ErrClosed = errors.New("store is closed")

// Store persists workspaces, folders and leaves in a single SQLite file. It is the
// authoritative side of every drag: it implements both the mutation and the fetch
// boundary the engine talks to.
type Store struct {
	Dir string

	db  *sql.DB
	log logrus.FieldLogger
}

// DiscoverDir walks up from start looking for a .reqtree directory.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, dirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func DefaultDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("REQTREE_DIR")); v != "" {
		return v, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, dirName), nil
}

// Open creates dir if needed and opens (migrating) its database.
func Open(ctx context.Context, dir string, log logrus.FieldLogger) (*Store, error) {
	dir = filepath.Clean(strings.TrimSpace(dir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	db, err := openSQLite(ctx, filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, err
	}
	return &Store{
		Dir: dir,
		db:  db,
		log: log.WithField("component", "store"),
	}, nil
}

func (s *Store) Path() string { return filepath.Join(s.Dir, dbFileName) }

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) conn() (*sql.DB, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	return s.db, nil
}
