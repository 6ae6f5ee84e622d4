// Package memhost is an in-memory implementation of the host abstraction in
// pkg/agenttypes. It reproduces the semantics the core depends on from a real
// CAD host: a single main thread owning the document, one open transaction at
// a time, group assimilation into a single undo entry, automatic rollback on
// severity-error failures, and a cross-thread signal primitive. Tests and the
// demo CLI run against it; a production host binding implements the same
// interfaces.
package memhost

import (
	"fmt"
	"sort"

	"archagent/pkg/agenttypes"
)

// snapshot is a deep copy of the element table, cheap at test-model scale.
type snapshot map[agenttypes.ElementID]agenttypes.Element

// UndoEntry is one entry in the document's undo history.
type UndoEntry struct {
	Name   string
	before snapshot
}

// Document is the in-memory model document. All methods are main-thread only,
// matching the host contract; nothing here locks.
type Document struct {
	title    string
	elements map[agenttypes.ElementID]agenttypes.Element
	nextID   agenttypes.ElementID

	undo        []UndoEntry
	activeTxn   *Transaction
	activeGroup *TransactionGroup

	pendingFailures []agenttypes.Failure
	// ShownWarnings records warnings that survived failure preprocessing and
	// would have surfaced as a blocking dialog on a real host.
	ShownWarnings []agenttypes.Failure
}

// NewDocument creates an empty document.
func NewDocument(title string) *Document {
	return &Document{
		title:    title,
		elements: make(map[agenttypes.ElementID]agenttypes.Element),
		nextID:   1,
	}
}

// Title returns the document's display title.
func (d *Document) Title() string {
	return d.title
}

// Element returns a snapshot of the element with the given id.
func (d *Document) Element(id agenttypes.ElementID) (agenttypes.Element, bool) {
	e, ok := d.elements[id]
	if !ok {
		return agenttypes.Element{}, false
	}
	return copyElement(e), true
}

// ElementIDs returns all element ids in ascending order.
func (d *Document) ElementIDs() []agenttypes.ElementID {
	ids := make([]agenttypes.ElementID, 0, len(d.elements))
	for id := range d.elements {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CreateElement adds an element and returns its assigned id. Legal only
// inside a started transaction.
func (d *Document) CreateElement(e agenttypes.Element) (agenttypes.ElementID, error) {
	if err := d.requireTransaction("create element"); err != nil {
		return agenttypes.InvalidElementID, err
	}
	e.ID = d.nextID
	d.nextID++
	d.elements[e.ID] = copyElement(e)
	return e.ID, nil
}

// UpdateElement replaces the stored element with the same id. Legal only
// inside a started transaction.
func (d *Document) UpdateElement(e agenttypes.Element) error {
	if err := d.requireTransaction("update element"); err != nil {
		return err
	}
	if _, ok := d.elements[e.ID]; !ok {
		return fmt.Errorf("update element: no element with id %d", e.ID)
	}
	d.elements[e.ID] = copyElement(e)
	return nil
}

// DeleteElement removes the element with the given id. Legal only inside a
// started transaction.
func (d *Document) DeleteElement(id agenttypes.ElementID) error {
	if err := d.requireTransaction("delete element"); err != nil {
		return err
	}
	if _, ok := d.elements[id]; !ok {
		return fmt.Errorf("delete element: no element with id %d", id)
	}
	delete(d.elements, id)
	return nil
}

// RaiseFailure queues a failure against the open transaction, the way a real
// host raises warnings and errors mid-mutation. The queued failures are
// preprocessed when the transaction commits.
func (d *Document) RaiseFailure(f agenttypes.Failure) error {
	if err := d.requireTransaction("raise failure"); err != nil {
		return err
	}
	d.pendingFailures = append(d.pendingFailures, f)
	return nil
}

// NewTransaction creates an unstarted transaction on this document.
func (d *Document) NewTransaction(name string) agenttypes.Transaction {
	return &Transaction{doc: d, name: name, status: agenttypes.TxnUninitialized}
}

// NewTransactionGroup creates an unstarted transaction group on this document.
func (d *Document) NewTransactionGroup(name string) agenttypes.TransactionGroup {
	return &TransactionGroup{doc: d, name: name, status: agenttypes.TxnUninitialized}
}

// UndoCount returns the number of entries in the undo history.
func (d *Document) UndoCount() int {
	return len(d.undo)
}

// UndoNames returns the undo history names, oldest first.
func (d *Document) UndoNames() []string {
	names := make([]string, len(d.undo))
	for i, entry := range d.undo {
		names[i] = entry.Name
	}
	return names
}

// Undo reverts the most recent undo entry.
func (d *Document) Undo() error {
	if d.activeTxn != nil || d.activeGroup != nil {
		return fmt.Errorf("undo: transaction or group still open")
	}
	if len(d.undo) == 0 {
		return fmt.Errorf("undo: history is empty")
	}
	entry := d.undo[len(d.undo)-1]
	d.undo = d.undo[:len(d.undo)-1]
	d.restore(entry.before)
	return nil
}

func (d *Document) requireTransaction(op string) error {
	if d.activeTxn == nil || d.activeTxn.status != agenttypes.TxnStarted {
		return fmt.Errorf("%s: no transaction is open on document %q", op, d.title)
	}
	return nil
}

func (d *Document) snapshot() snapshot {
	s := make(snapshot, len(d.elements))
	for id, e := range d.elements {
		s[id] = copyElement(e)
	}
	return s
}

func (d *Document) restore(s snapshot) {
	d.elements = make(map[agenttypes.ElementID]agenttypes.Element, len(s))
	for id, e := range s {
		d.elements[id] = copyElement(e)
	}
}

func copyElement(e agenttypes.Element) agenttypes.Element {
	params := make(map[string]string, len(e.Parameters))
	for k, v := range e.Parameters {
		params[k] = v
	}
	e.Parameters = params
	return e
}
