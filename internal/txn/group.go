package txn

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"archagent/internal/logger"
	"archagent/pkg/agenttypes"
)

var (
	// ErrGroupActive is returned by StartGroup while another group is open.
	ErrGroupActive = errors.New("a transaction group is already active")
	// ErrNoGroup is returned by CommitGroup and RollbackGroup when no group is open.
	ErrNoGroup = errors.New("no transaction group is active")
	// ErrDocumentMismatch is returned when a scope targets a different open
	// document than the active group.
	ErrDocumentMismatch = errors.New("transaction targets a different document than the active group")
)

// GroupManager coordinates at most one active transaction group that
// assimilates multiple transaction scopes into a single undo entry. One
// instance exists per plugin lifetime; it is owned by the host main thread
// and needs no locking because every caller reaches it through a main-thread
// command.
//
// Grouping only works within a single main-thread command invocation: the
// host silently auto-closes a group left open across asynchronous boundaries,
// so callers wanting several tool calls in one undo step must batch them into
// one dispatch rather than spreading them over multiple round trips.
type GroupManager struct {
	group    agenttypes.TransactionGroup
	doc      agenttypes.Document
	failures agenttypes.FailureHandler
	log      *log.Logger
}

// NewGroupManager creates a group manager in the idle state, using
// WarningSwallower as the failure preprocessor for every scope it starts.
func NewGroupManager() *GroupManager {
	return &GroupManager{
		failures: WarningSwallower{},
		log:      logger.NewStyledLogger("Txn"),
	}
}

// GroupActive reports whether a transaction group is currently open.
func (m *GroupManager) GroupActive() bool {
	return m.group != nil
}

// StartGroup opens a transaction group on doc. Fails without touching the
// existing group if one is already active.
func (m *GroupManager) StartGroup(doc agenttypes.Document, name string) error {
	if m.group != nil {
		return fmt.Errorf("start group %q: %w", name, ErrGroupActive)
	}
	if doc == nil {
		return fmt.Errorf("start group %q: document is nil", name)
	}
	group := doc.NewTransactionGroup(name)
	if status := group.Start(); status != agenttypes.TxnStarted {
		return fmt.Errorf("start group %q: host reported %s", name, status)
	}
	m.group = group
	m.doc = doc
	logger.TransactionEvent("group", name, agenttypes.TxnStarted.String())
	return nil
}

// CommitGroup assimilates every transaction committed inside the group into
// one undo entry. State is cleared whether or not the host reports success.
func (m *GroupManager) CommitGroup() error {
	if m.group != nil {
		group := m.group
		m.clear()
		if status := group.Assimilate(); status != agenttypes.TxnCommitted {
			return fmt.Errorf("commit group %q: host reported %s", group.Name(), status)
		}
		logger.TransactionEvent("group", group.Name(), agenttypes.TxnCommitted.String())
		return nil
	}
	return ErrNoGroup
}

// RollbackGroup discards every change made inside the group. State is cleared
// whether or not the host reports success.
func (m *GroupManager) RollbackGroup() error {
	if m.group != nil {
		group := m.group
		m.clear()
		if status := group.Rollback(); status != agenttypes.TxnRolledBack {
			return fmt.Errorf("rollback group %q: host reported %s", group.Name(), status)
		}
		logger.TransactionEvent("group", group.Name(), agenttypes.TxnRolledBack.String())
		return nil
	}
	return ErrNoGroup
}

// EnsureClosed is the last-resort safety net for cleanup and error paths.
// With no active group it is a no-op; with an active group it forces a
// rollback. It never returns an error and never panics: failures here are
// swallowed because this path exists to restore invariants, not to report.
func (m *GroupManager) EnsureClosed() {
	if m.group == nil {
		return
	}
	group := m.group
	m.clear()
	func() {
		defer func() {
			if r := recover(); r != nil {
				m.log.Error("panic while force-closing transaction group", "group", group.Name(), "panic", r)
			}
		}()
		if status := group.Rollback(); status != agenttypes.TxnRolledBack {
			m.log.Error("force-close rollback did not complete", "group", group.Name(), "status", status.String())
		}
	}()
}

// StartTransaction starts a scope on doc, independent when no group is
// active. While a group is active the scope must target the group's document:
// a mismatch means the caller asked to mutate a different open document than
// the active undo batch, which is a hard error.
func (m *GroupManager) StartTransaction(doc agenttypes.Document, name string) (*Scope, error) {
	if doc == nil {
		return nil, fmt.Errorf("start transaction %q: document is nil", name)
	}
	if m.group != nil && m.doc != doc {
		return nil, fmt.Errorf("start transaction %q: %w", name, ErrDocumentMismatch)
	}
	return newScope(doc, name, m.failures)
}

func (m *GroupManager) clear() {
	m.group = nil
	m.doc = nil
}
