package memhost

import (
	"sync"

	"archagent/pkg/agenttypes"
)

// Session is the live application context handed to main-thread command
// delegates: the active document, the UI selection, and the host version.
type Session struct {
	doc     *Document
	sel     *Selection
	version string
}

// NewSession creates a session over doc reporting the given host version.
func NewSession(doc *Document, hostVersion string) *Session {
	return &Session{
		doc:     doc,
		sel:     &Selection{},
		version: hostVersion,
	}
}

// ActiveDocument returns the live document.
func (s *Session) ActiveDocument() agenttypes.Document { return s.doc }

// Selection returns the UI selection surface.
func (s *Session) Selection() agenttypes.Selection { return s.sel }

// HostVersion returns the host application version string.
func (s *Session) HostVersion() string { return s.version }

// Selection is the in-memory UI selection. Guarded by a mutex so tests may
// inspect it from outside the main thread.
type Selection struct {
	mu  sync.Mutex
	ids []agenttypes.ElementID
	// FailNext makes the next Set call fail, for exercising best-effort
	// selection feedback paths.
	FailNext error
}

// Set replaces the current selection.
func (s *Selection) Set(ids []agenttypes.ElementID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailNext != nil {
		err := s.FailNext
		s.FailNext = nil
		return err
	}
	s.ids = append([]agenttypes.ElementID(nil), ids...)
	return nil
}

// Get returns a copy of the current selection.
func (s *Selection) Get() []agenttypes.ElementID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]agenttypes.ElementID(nil), s.ids...)
}
