package txn

import (
	"errors"
	"fmt"

	"archagent/internal/logger"
	"archagent/pkg/agenttypes"
)

var (
	// ErrScopeClosed is returned by Commit after the scope was disposed,
	// including disposal that forced a rollback.
	ErrScopeClosed = errors.New("transaction scope already closed")
)

// Scope wraps one atomic document mutation. It is constructed in the started
// state or not at all; exactly one of commit or rollback happens before the
// scope is closed. Closing without a prior Commit rolls the transaction back,
// which makes both "forgot to commit" and "panic mid-mutation" resolve to
// "nothing changed".
//
// Main thread only, like every other host-API-touching type.
type Scope struct {
	txn       agenttypes.Transaction
	committed bool
	closed    bool
}

// newScope starts a transaction on doc and wraps it. Fails loudly if the host
// does not report the started state.
func newScope(doc agenttypes.Document, name string, handler agenttypes.FailureHandler) (*Scope, error) {
	transaction := doc.NewTransaction(name)
	if handler != nil {
		transaction.SetFailureHandler(handler)
	}
	if status := transaction.Start(); status != agenttypes.TxnStarted {
		return nil, fmt.Errorf("failed to start transaction %q: host reported %s", name, status)
	}
	logger.TransactionEvent("transaction", name, agenttypes.TxnStarted.String())
	return &Scope{txn: transaction}, nil
}

// Name returns the transaction's undo-history display name.
func (s *Scope) Name() string {
	return s.txn.Name()
}

// Commit commits the wrapped transaction. Calling Commit a second time is a
// no-op; calling it after the scope was closed (and therefore rolled back) is
// a contract violation and returns an error.
func (s *Scope) Commit() error {
	if s.closed {
		return fmt.Errorf("commit transaction %q: %w", s.txn.Name(), ErrScopeClosed)
	}
	if s.committed {
		return nil
	}
	if status := s.txn.Commit(); status != agenttypes.TxnCommitted {
		return fmt.Errorf("commit transaction %q: host reported %s", s.txn.Name(), status)
	}
	s.committed = true
	logger.TransactionEvent("transaction", s.txn.Name(), agenttypes.TxnCommitted.String())
	return nil
}

// Close disposes the scope. If Commit was never called the transaction is
// rolled back. Close is idempotent and never returns an error: it runs on
// defer paths where a second failure would mask the original one.
func (s *Scope) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.committed {
		return
	}
	if status := s.txn.Rollback(); status != agenttypes.TxnRolledBack {
		logger.Error("Transaction rollback did not complete", "txn", s.txn.Name(), "status", status.String())
		return
	}
	logger.TransactionEvent("transaction", s.txn.Name(), agenttypes.TxnRolledBack.String())
}
