package memhost

import (
	"archagent/pkg/agenttypes"
)

// Transaction is the memhost implementation of the host transaction contract:
// started at most once, one open transaction per document, commit runs the
// registered failure preprocessor, and severity-error failures force an
// automatic rollback exactly like the real host.
type Transaction struct {
	doc     *Document
	name    string
	status  agenttypes.TxnStatus
	handler agenttypes.FailureHandler
	before  snapshot
}

// Name returns the transaction's undo-history display name.
func (t *Transaction) Name() string { return t.name }

// Status returns the transaction's current status.
func (t *Transaction) Status() agenttypes.TxnStatus { return t.status }

// SetFailureHandler registers the failure preprocessor run at commit time.
func (t *Transaction) SetFailureHandler(h agenttypes.FailureHandler) { t.handler = h }

// Start opens the transaction. Refused when the transaction was already used
// or another transaction is open on the document.
func (t *Transaction) Start() agenttypes.TxnStatus {
	if t.status != agenttypes.TxnUninitialized {
		return agenttypes.TxnError
	}
	if t.doc.activeTxn != nil {
		return agenttypes.TxnError
	}
	if t.doc.activeGroup != nil && t.doc.activeGroup.status != agenttypes.TxnStarted {
		return agenttypes.TxnError
	}
	t.before = t.doc.snapshot()
	t.doc.activeTxn = t
	t.doc.pendingFailures = nil
	t.status = agenttypes.TxnStarted
	return t.status
}

// Commit preprocesses pending failures, then either commits the transaction
// into the undo history or rolls it back when an error-severity failure
// remains or the preprocessor requested rollback. Warnings that survive
// preprocessing are recorded as shown dialogs and do not block the commit.
func (t *Transaction) Commit() agenttypes.TxnStatus {
	if t.status != agenttypes.TxnStarted {
		return agenttypes.TxnError
	}

	accessor := &failureAccessor{failures: t.doc.pendingFailures}
	resolution := agenttypes.ResolutionContinue
	if t.handler != nil {
		resolution = t.handler.PreprocessFailures(accessor)
	}
	t.doc.pendingFailures = nil

	rollback := resolution == agenttypes.ResolutionProceedWithRollback
	for _, f := range accessor.failures {
		if f.Severity == agenttypes.SeverityError {
			rollback = true
		}
	}
	if rollback {
		t.doc.restore(t.before)
		t.doc.activeTxn = nil
		t.status = agenttypes.TxnRolledBack
		return t.status
	}

	for _, f := range accessor.failures {
		if f.Severity == agenttypes.SeverityWarning {
			t.doc.ShownWarnings = append(t.doc.ShownWarnings, f)
		}
	}

	t.doc.undo = append(t.doc.undo, UndoEntry{Name: t.name, before: t.before})
	t.doc.activeTxn = nil
	t.status = agenttypes.TxnCommitted
	return t.status
}

// Rollback discards every change made since Start.
func (t *Transaction) Rollback() agenttypes.TxnStatus {
	if t.status != agenttypes.TxnStarted {
		return agenttypes.TxnError
	}
	t.doc.restore(t.before)
	t.doc.pendingFailures = nil
	t.doc.activeTxn = nil
	t.status = agenttypes.TxnRolledBack
	return t.status
}

// failureAccessor exposes pending failures to a preprocessor and supports
// deleting warnings so they never surface as dialogs.
type failureAccessor struct {
	failures []agenttypes.Failure
}

// Failures returns a copy of the currently pending failures.
func (a *failureAccessor) Failures() []agenttypes.Failure {
	out := make([]agenttypes.Failure, len(a.failures))
	copy(out, a.failures)
	return out
}

// DeleteWarning removes the first pending warning matching f. Errors cannot
// be deleted, matching the host API.
func (a *failureAccessor) DeleteWarning(f agenttypes.Failure) {
	if f.Severity != agenttypes.SeverityWarning {
		return
	}
	for i, pending := range a.failures {
		if pending == f {
			a.failures = append(a.failures[:i], a.failures[i+1:]...)
			return
		}
	}
}

// TransactionGroup is the memhost implementation of the host's undo-grouping
// mechanism. Assimilate collapses every transaction committed inside the
// group into one undo entry named after the group.
type TransactionGroup struct {
	doc          *Document
	name         string
	status       agenttypes.TxnStatus
	before       snapshot
	startUndoLen int
}

// Name returns the group's undo-history display name.
func (g *TransactionGroup) Name() string { return g.name }

// Status returns the group's current status.
func (g *TransactionGroup) Status() agenttypes.TxnStatus { return g.status }

// Start opens the group. Refused when the group was already used, another
// group is open, or a transaction is open on the document.
func (g *TransactionGroup) Start() agenttypes.TxnStatus {
	if g.status != agenttypes.TxnUninitialized {
		return agenttypes.TxnError
	}
	if g.doc.activeGroup != nil || g.doc.activeTxn != nil {
		return agenttypes.TxnError
	}
	g.before = g.doc.snapshot()
	g.startUndoLen = len(g.doc.undo)
	g.doc.activeGroup = g
	g.status = agenttypes.TxnStarted
	return g.status
}

// Assimilate commits the group, replacing the undo entries of its inner
// transactions with a single entry for the whole group.
func (g *TransactionGroup) Assimilate() agenttypes.TxnStatus {
	if g.status != agenttypes.TxnStarted {
		return agenttypes.TxnError
	}
	if g.doc.activeTxn != nil {
		return agenttypes.TxnError
	}
	if len(g.doc.undo) > g.startUndoLen {
		g.doc.undo = append(g.doc.undo[:g.startUndoLen], UndoEntry{Name: g.name, before: g.before})
	}
	g.doc.activeGroup = nil
	g.status = agenttypes.TxnCommitted
	return g.status
}

// Rollback discards every change made inside the group, including committed
// inner transactions, and drops their undo entries.
func (g *TransactionGroup) Rollback() agenttypes.TxnStatus {
	if g.status != agenttypes.TxnStarted {
		return agenttypes.TxnError
	}
	if g.doc.activeTxn != nil {
		return agenttypes.TxnError
	}
	g.doc.restore(g.before)
	g.doc.undo = g.doc.undo[:g.startUndoLen]
	g.doc.activeGroup = nil
	g.status = agenttypes.TxnRolledBack
	return g.status
}
