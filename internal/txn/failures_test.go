package txn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archagent/pkg/agenttypes"
)

func TestWarningSwallower_DeletesWarningsSoCommitSucceeds(t *testing.T) {
	doc := seededDoc()
	m := NewGroupManager()

	scope, err := m.StartTransaction(doc, "warned")
	require.NoError(t, err)
	defer scope.Close()

	id := createElement(t, doc, "W2")
	require.NoError(t, doc.RaiseFailure(agenttypes.Failure{
		Severity:    agenttypes.SeverityWarning,
		Description: "elements slightly overlap",
	}))

	require.NoError(t, scope.Commit())
	_, ok := doc.Element(id)
	assert.True(t, ok)
	assert.Empty(t, doc.ShownWarnings, "swallowed warnings must never reach a dialog")
}

func TestWarningSwallower_LeavesErrorsToRollBack(t *testing.T) {
	doc := seededDoc()
	m := NewGroupManager()
	before := doc.ElementIDs()

	scope, err := m.StartTransaction(doc, "failed")
	require.NoError(t, err)
	defer scope.Close()

	createElement(t, doc, "W2")
	require.NoError(t, doc.RaiseFailure(agenttypes.Failure{
		Severity:    agenttypes.SeverityError,
		Description: "constraint violated",
	}))

	assert.Error(t, scope.Commit(), "error-severity failures trigger automatic rollback")
	assert.Equal(t, before, doc.ElementIDs())
	assert.Equal(t, 0, doc.UndoCount())
}

func TestWarningSwallower_MixedFailures(t *testing.T) {
	accessor := &recordingAccessor{failures: []agenttypes.Failure{
		{Severity: agenttypes.SeverityWarning, Description: "w1"},
		{Severity: agenttypes.SeverityError, Description: "e1"},
		{Severity: agenttypes.SeverityWarning, Description: "w2"},
	}}

	resolution := WarningSwallower{}.PreprocessFailures(accessor)

	assert.Equal(t, agenttypes.ResolutionProceedWithRollback, resolution)
	assert.Equal(t, []string{"w1", "w2"}, accessor.deleted)
}

type recordingAccessor struct {
	failures []agenttypes.Failure
	deleted  []string
}

func (a *recordingAccessor) Failures() []agenttypes.Failure {
	return a.failures
}

func (a *recordingAccessor) DeleteWarning(f agenttypes.Failure) {
	a.deleted = append(a.deleted, f.Description)
}
