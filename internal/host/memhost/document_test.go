package memhost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archagent/pkg/agenttypes"
)

func wall(name string) agenttypes.Element {
	return agenttypes.Element{Category: "Wall", Name: name, Parameters: map[string]string{}}
}

func TestDocument_MutationOutsideTransactionFails(t *testing.T) {
	doc := NewDocument("d")
	id := doc.Seed(wall("W1"))

	_, err := doc.CreateElement(wall("W2"))
	assert.Error(t, err)
	assert.Error(t, doc.UpdateElement(wall("W1")))
	assert.Error(t, doc.DeleteElement(id))
}

func TestDocument_TransactionLifecycle(t *testing.T) {
	doc := NewDocument("d")

	txn := doc.NewTransaction("create")
	require.Equal(t, agenttypes.TxnStarted, txn.Start())

	id, err := doc.CreateElement(wall("W1"))
	require.NoError(t, err)
	require.Equal(t, agenttypes.TxnCommitted, txn.Commit())

	element, ok := doc.Element(id)
	require.True(t, ok)
	assert.Equal(t, "W1", element.Name)
	assert.Equal(t, []string{"create"}, doc.UndoNames())
}

func TestDocument_TransactionRollbackRestoresState(t *testing.T) {
	doc := NewDocument("d")
	seeded := doc.Seed(wall("W1"))

	txn := doc.NewTransaction("discard")
	require.Equal(t, agenttypes.TxnStarted, txn.Start())
	_, err := doc.CreateElement(wall("W2"))
	require.NoError(t, err)
	require.NoError(t, doc.DeleteElement(seeded))
	require.Equal(t, agenttypes.TxnRolledBack, txn.Rollback())

	_, ok := doc.Element(seeded)
	assert.True(t, ok)
	assert.Equal(t, []agenttypes.ElementID{seeded}, doc.ElementIDs())
}

func TestDocument_SecondTransactionRefusedWhileOpen(t *testing.T) {
	doc := NewDocument("d")

	first := doc.NewTransaction("first")
	require.Equal(t, agenttypes.TxnStarted, first.Start())
	defer first.Rollback()

	second := doc.NewTransaction("second")
	assert.Equal(t, agenttypes.TxnError, second.Start())
}

func TestDocument_TransactionCannotRestart(t *testing.T) {
	doc := NewDocument("d")

	txn := doc.NewTransaction("once")
	require.Equal(t, agenttypes.TxnStarted, txn.Start())
	require.Equal(t, agenttypes.TxnRolledBack, txn.Rollback())
	assert.Equal(t, agenttypes.TxnError, txn.Start())
}

func TestDocument_ElementSnapshotsAreIsolated(t *testing.T) {
	doc := NewDocument("d")
	id := doc.Seed(agenttypes.Element{Category: "Wall", Name: "W1", Parameters: map[string]string{"h": "1"}})

	element, ok := doc.Element(id)
	require.True(t, ok)
	element.Parameters["h"] = "2"

	fresh, _ := doc.Element(id)
	assert.Equal(t, "1", fresh.Parameters["h"], "mutating a snapshot must not touch the document")
}

func TestGroup_AssimilateCollapsesUndoEntries(t *testing.T) {
	doc := NewDocument("d")

	group := doc.NewTransactionGroup("batch")
	require.Equal(t, agenttypes.TxnStarted, group.Start())

	for _, name := range []string{"a", "b"} {
		txn := doc.NewTransaction(name)
		require.Equal(t, agenttypes.TxnStarted, txn.Start())
		_, err := doc.CreateElement(wall(name))
		require.NoError(t, err)
		require.Equal(t, agenttypes.TxnCommitted, txn.Commit())
	}
	require.Equal(t, []string{"a", "b"}, doc.UndoNames())

	require.Equal(t, agenttypes.TxnCommitted, group.Assimilate())
	assert.Equal(t, []string{"batch"}, doc.UndoNames())
	assert.Len(t, doc.ElementIDs(), 2)
}

func TestGroup_RollbackDropsInnerCommits(t *testing.T) {
	doc := NewDocument("d")
	doc.Seed(wall("W1"))

	group := doc.NewTransactionGroup("batch")
	require.Equal(t, agenttypes.TxnStarted, group.Start())

	txn := doc.NewTransaction("a")
	require.Equal(t, agenttypes.TxnStarted, txn.Start())
	_, err := doc.CreateElement(wall("W2"))
	require.NoError(t, err)
	require.Equal(t, agenttypes.TxnCommitted, txn.Commit())

	require.Equal(t, agenttypes.TxnRolledBack, group.Rollback())
	assert.Len(t, doc.ElementIDs(), 1)
	assert.Equal(t, 0, doc.UndoCount())
}

func TestGroup_AssimilateRefusedWithOpenTransaction(t *testing.T) {
	doc := NewDocument("d")

	group := doc.NewTransactionGroup("batch")
	require.Equal(t, agenttypes.TxnStarted, group.Start())
	txn := doc.NewTransaction("open")
	require.Equal(t, agenttypes.TxnStarted, txn.Start())

	assert.Equal(t, agenttypes.TxnError, group.Assimilate())
	require.Equal(t, agenttypes.TxnRolledBack, txn.Rollback())
	require.Equal(t, agenttypes.TxnCommitted, group.Assimilate())
}

func TestDocument_UndoRevertsMostRecentEntry(t *testing.T) {
	doc := NewDocument("d")

	txn := doc.NewTransaction("create")
	require.Equal(t, agenttypes.TxnStarted, txn.Start())
	id, err := doc.CreateElement(wall("W1"))
	require.NoError(t, err)
	require.Equal(t, agenttypes.TxnCommitted, txn.Commit())

	require.NoError(t, doc.Undo())
	_, ok := doc.Element(id)
	assert.False(t, ok)
	assert.Error(t, doc.Undo(), "history is empty")
}
