// Package session holds one loaded document and the result of the last
// query run against it.
//
// A failed Load leaves the previous document in place, and a failed Run
// leaves the previous result in place.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vegasq/jsonxml2sql/document"
	"github.com/vegasq/jsonxml2sql/query"
	"github.com/vegasq/jsonxml2sql/reader"
)

// ErrNoDocument is returned by Run before any document has been loaded
var ErrNoDocument = errors.New("no document loaded")

// LoadResult describes a successfully loaded document
type LoadResult struct {
	Format reader.Mode
	Tables []document.Table
}

// Session owns the current document tree and the last result set.
type Session struct {
	ID uuid.UUID

	log logrus.FieldLogger

	mu     sync.RWMutex
	tree   *document.Tree
	format reader.Mode
	last   []document.Row
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the logger used for load and query events
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// New creates an empty session
func New(opts ...Option) *Session {
	s := &Session{
		ID:  uuid.Must(uuid.NewV7()),
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("session", s.ID.String())
	return s
}

// Load parses data and, on success, replaces the current document.
// The previous result set is cleared.
func (s *Session) Load(data []byte, mode reader.Mode) (LoadResult, error) {
	start := time.Now()
	root, format, err := reader.Parse(data, mode)
	if err != nil {
		s.log.WithFields(logrus.Fields{"mode": mode, "bytes": len(data)}).WithError(err).Warn("load rejected")
		return LoadResult{}, err
	}
	return s.replace(root, format, start), nil
}

// LoadFile reads a file (or every file matching a glob pattern) and, on
// success, replaces the current document. Compressed input is unwrapped.
func (s *Session) LoadFile(path string, mode reader.Mode) (LoadResult, error) {
	start := time.Now()
	root, format, err := reader.ReadGlob(path, mode)
	if err != nil {
		s.log.WithFields(logrus.Fields{"mode": mode, "path": path}).WithError(err).Warn("load rejected")
		return LoadResult{}, err
	}
	return s.replace(root, format, start), nil
}

func (s *Session) replace(root document.Value, format reader.Mode, start time.Time) LoadResult {
	tree := document.NewTree(root)
	tables := tree.Catalog()

	s.mu.Lock()
	s.tree = tree
	s.format = format
	s.last = nil
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"format":  format,
		"tables":  len(tables),
		"elapsed": time.Since(start),
	}).Debug("document loaded")

	return LoadResult{Format: format, Tables: tables}
}

// Run parses and executes a query against the current document. On success
// the rows become the last result.
func (s *Session) Run(text string) ([]document.Row, error) {
	s.mu.RLock()
	tree := s.tree
	s.mu.RUnlock()

	if tree == nil {
		return nil, ErrNoDocument
	}

	start := time.Now()
	q, err := query.Parse(text)
	if err != nil {
		s.log.WithField("query", text).WithError(err).Warn("query rejected")
		return nil, err
	}

	rows, err := query.Execute(q, tree)
	if err != nil {
		s.log.WithField("query", query.Format(q)).WithError(err).Warn("query failed")
		return nil, err
	}

	s.mu.Lock()
	if s.tree == tree {
		s.last = rows
	}
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"query":   query.Format(q),
		"rows":    len(rows),
		"elapsed": time.Since(start),
	}).Debug("query executed")
	return rows, nil
}

// Tables returns the table catalog of the current document
func (s *Session) Tables() []document.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tree == nil {
		return nil
	}
	return s.tree.Catalog()
}

// LastResult returns the rows of the last successful query since the last load
func (s *Session) LastResult() []document.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Document returns the current document tree and the format it was read as
func (s *Session) Document() (document.Value, reader.Mode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tree == nil {
		return document.Value{}, "", false
	}
	return s.tree.Root(), s.format, true
}

// Describe returns the inferred columns of a table path
func (s *Session) Describe(path string) ([]document.ColumnInfo, error) {
	s.mu.RLock()
	tree := s.tree
	s.mu.RUnlock()

	if tree == nil {
		return nil, ErrNoDocument
	}
	rows, err := tree.Rows(path)
	if err != nil {
		return nil, fmt.Errorf("cannot describe %s: %w", path, err)
	}
	return document.Describe(rows), nil
}
