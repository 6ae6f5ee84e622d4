// Package agenttypes defines the core contracts shared between the archagent
// core and its collaborators (host bindings, tool packs, UI layers).
// This file contains the host abstraction: documents, transactions, failure
// handling, and the cross-thread signal primitive.
package agenttypes

// ElementID identifies one element in the host document.
type ElementID int64

// InvalidElementID is returned by creation paths that fail before an element exists.
const InvalidElementID ElementID = -1

// Element is a snapshot of one model element. Mutating a copy has no effect
// on the document; changes go through Document.UpdateElement inside a
// started transaction.
type Element struct {
	ID         ElementID
	Category   string
	Name       string
	Parameters map[string]string
}

// TxnStatus mirrors the host's native transaction status codes.
type TxnStatus int

const (
	// TxnUninitialized means the transaction object exists but Start was never called.
	TxnUninitialized TxnStatus = iota
	// TxnStarted means the transaction is open and accepting mutations.
	TxnStarted
	// TxnCommitted means the transaction was committed successfully.
	TxnCommitted
	// TxnRolledBack means the transaction was rolled back.
	TxnRolledBack
	// TxnError means the host refused the requested state change.
	TxnError
)

// String returns the host-facing name of the status.
func (s TxnStatus) String() string {
	switch s {
	case TxnUninitialized:
		return "uninitialized"
	case TxnStarted:
		return "started"
	case TxnCommitted:
		return "committed"
	case TxnRolledBack:
		return "rolled back"
	case TxnError:
		return "error"
	default:
		return "unknown"
	}
}

// FailureSeverity classifies failures the host raises while a transaction is open.
type FailureSeverity int

const (
	// SeverityWarning is a non-fatal condition the host would surface as a dialog.
	SeverityWarning FailureSeverity = iota
	// SeverityError is fatal to the transaction and triggers automatic rollback.
	SeverityError
)

// Failure is one host-raised failure message.
type Failure struct {
	Severity    FailureSeverity
	Description string
}

// FailureResolution tells the host how to proceed after preprocessing failures.
type FailureResolution int

const (
	// ResolutionContinue lets the transaction proceed.
	ResolutionContinue FailureResolution = iota
	// ResolutionProceedWithRollback accepts the host's automatic rollback.
	ResolutionProceedWithRollback
)

// FailureAccessor is the host's view into the failures pending on a transaction.
// Handlers may delete warnings so they never reach the user as blocking dialogs.
type FailureAccessor interface {
	Failures() []Failure
	DeleteWarning(f Failure)
}

// FailureHandler preprocesses failures raised during a transaction before the
// host shows any UI for them.
type FailureHandler interface {
	PreprocessFailures(accessor FailureAccessor) FailureResolution
}

// Transaction is one atomic, revertible document mutation unit native to the
// host API. Only valid on the main thread.
type Transaction interface {
	Name() string
	Status() TxnStatus
	Start() TxnStatus
	Commit() TxnStatus
	Rollback() TxnStatus
	SetFailureHandler(h FailureHandler)
}

// TransactionGroup is the host-native mechanism merging multiple transactions
// into one undo entry. Assimilate commits the group while collapsing all
// transactions committed inside it into a single undo step.
type TransactionGroup interface {
	Name() string
	Status() TxnStatus
	Start() TxnStatus
	Assimilate() TxnStatus
	Rollback() TxnStatus
}

// Document is the live model document owned by the host main thread.
// Mutation methods fail unless a transaction is open on the document.
type Document interface {
	Title() string
	Element(id ElementID) (Element, bool)
	ElementIDs() []ElementID
	CreateElement(e Element) (ElementID, error)
	UpdateElement(e Element) error
	DeleteElement(id ElementID) error
	NewTransaction(name string) Transaction
	NewTransactionGroup(name string) TransactionGroup
}

// Selection is the host UI's element selection surface.
type Selection interface {
	Set(ids []ElementID) error
	Get() []ElementID
}

// Session is the live application context handed to main-thread command
// delegates. It is only valid while the delegate runs.
type Session interface {
	ActiveDocument() Document
	Selection() Selection
	HostVersion() string
}

// RaiseResult is the host's answer to raising a cross-thread signal.
type RaiseResult int

const (
	// RaiseAccepted means the host queued the signal and will call the handler.
	RaiseAccepted RaiseResult = iota
	// RaiseDenied means the host refused the signal (busy or showing a modal dialog).
	RaiseDenied
	// RaiseTimedOut means the host did not accept the signal in time.
	RaiseTimedOut
)

// ExternalEvent is the host-provided signal primitive that wakes the main
// thread. Raise is safe to call from any goroutine; the registered handler
// always runs on the host main thread.
type ExternalEvent interface {
	Raise() RaiseResult
}
