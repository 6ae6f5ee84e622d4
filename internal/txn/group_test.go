package txn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archagent/pkg/agenttypes"
)

// commitScopedElement creates one element inside its own committed scope.
func commitScopedElement(t *testing.T, m *GroupManager, doc agenttypes.Document, name string) agenttypes.ElementID {
	t.Helper()
	scope, err := m.StartTransaction(doc, "create "+name)
	require.NoError(t, err)
	defer scope.Close()
	id := createElement(t, doc, name)
	require.NoError(t, scope.Commit())
	return id
}

func TestGroupManager_StartWhileActiveFails(t *testing.T) {
	doc := seededDoc()
	m := NewGroupManager()

	require.NoError(t, m.StartGroup(doc, "first"))
	err := m.StartGroup(doc, "second")
	assert.ErrorIs(t, err, ErrGroupActive)

	// The original group must be untouched.
	assert.True(t, m.GroupActive())
	require.NoError(t, m.CommitGroup())
}

func TestGroupManager_CommitAssimilatesIntoOneUndoEntry(t *testing.T) {
	doc := seededDoc()
	m := NewGroupManager()

	require.NoError(t, m.StartGroup(doc, "Agent Actions"))
	first := commitScopedElement(t, m, doc, "W2")
	second := commitScopedElement(t, m, doc, "W3")
	require.NoError(t, m.CommitGroup())

	assert.Equal(t, []string{"Agent Actions"}, doc.UndoNames())
	_, ok := doc.Element(first)
	assert.True(t, ok)
	_, ok = doc.Element(second)
	assert.True(t, ok)

	// One undo reverts both scopes' effects.
	require.NoError(t, doc.Undo())
	_, ok = doc.Element(first)
	assert.False(t, ok)
	_, ok = doc.Element(second)
	assert.False(t, ok)
}

func TestGroupManager_RollbackDiscardsCommittedScopes(t *testing.T) {
	doc := seededDoc()
	m := NewGroupManager()
	before := doc.ElementIDs()

	require.NoError(t, m.StartGroup(doc, "Agent Actions"))
	commitScopedElement(t, m, doc, "W2")
	commitScopedElement(t, m, doc, "W3")
	require.NoError(t, m.RollbackGroup())

	assert.Equal(t, before, doc.ElementIDs())
	assert.Equal(t, 0, doc.UndoCount())
	assert.False(t, m.GroupActive())
}

func TestGroupManager_CommitWithoutGroupFails(t *testing.T) {
	m := NewGroupManager()
	assert.ErrorIs(t, m.CommitGroup(), ErrNoGroup)
	assert.ErrorIs(t, m.RollbackGroup(), ErrNoGroup)
}

func TestGroupManager_EnsureClosedIsNoOpWhenIdle(t *testing.T) {
	m := NewGroupManager()
	assert.NotPanics(t, m.EnsureClosed)
	assert.False(t, m.GroupActive())
}

func TestGroupManager_EnsureClosedRollsBackActiveGroup(t *testing.T) {
	doc := seededDoc()
	m := NewGroupManager()
	before := doc.ElementIDs()

	require.NoError(t, m.StartGroup(doc, "Agent Actions"))
	commitScopedElement(t, m, doc, "W2")

	assert.NotPanics(t, m.EnsureClosed)
	assert.False(t, m.GroupActive())
	assert.Equal(t, before, doc.ElementIDs())
}

func TestGroupManager_EnsureClosedSwallowsGroupFailures(t *testing.T) {
	m := NewGroupManager()
	m.group = panickyGroup{}
	m.doc = seededDoc()

	assert.NotPanics(t, m.EnsureClosed)
	assert.False(t, m.GroupActive())
}

func TestGroupManager_ScopeDocumentMustMatchGroupDocument(t *testing.T) {
	docA := seededDoc()
	docB := seededDoc()
	m := NewGroupManager()

	require.NoError(t, m.StartGroup(docA, "Agent Actions"))
	defer m.EnsureClosed()

	_, err := m.StartTransaction(docB, "stray")
	assert.ErrorIs(t, err, ErrDocumentMismatch)

	// docB must be untouched and docA's group still open.
	assert.True(t, m.GroupActive())
	assert.Equal(t, 0, docB.UndoCount())
}

func TestGroupManager_IndependentScopeWhenIdle(t *testing.T) {
	doc := seededDoc()
	m := NewGroupManager()

	id := commitScopedElement(t, m, doc, "W2")

	_, ok := doc.Element(id)
	assert.True(t, ok)
	assert.Equal(t, []string{"create W2"}, doc.UndoNames())
}

// panickyGroup simulates a host object that fails during forced cleanup.
type panickyGroup struct{}

func (panickyGroup) Name() string                   { return "panicky" }
func (panickyGroup) Status() agenttypes.TxnStatus   { return agenttypes.TxnStarted }
func (panickyGroup) Start() agenttypes.TxnStatus    { return agenttypes.TxnError }
func (panickyGroup) Assimilate() agenttypes.TxnStatus { panic("host failure") }
func (panickyGroup) Rollback() agenttypes.TxnStatus { panic("host failure") }
