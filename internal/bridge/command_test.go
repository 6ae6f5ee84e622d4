package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archagent/internal/testutils"
	"archagent/pkg/agenttypes"
)

func TestCommand_ExecuteResolvesResult(t *testing.T) {
	sess, _ := testutils.NewTestSession()
	cmd := NewCommand(context.Background(), func(_ agenttypes.Session) (any, error) {
		return 42, nil
	})

	cmd.Execute(sess)

	result, err := cmd.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, result)
}

func TestCommand_ExecuteResolvesError(t *testing.T) {
	sess, _ := testutils.NewTestSession()
	boom := errors.New("boom")
	cmd := NewCommand(context.Background(), func(_ agenttypes.Session) (any, error) {
		return nil, boom
	})

	cmd.Execute(sess)

	_, err := cmd.Await()
	assert.ErrorIs(t, err, boom)
}

func TestCommand_CanceledBeforeExecutionNeverRunsDelegate(t *testing.T) {
	sess, _ := testutils.NewTestSession()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	cmd := NewCommand(ctx, func(_ agenttypes.Session) (any, error) {
		ran = true
		return nil, nil
	})

	cmd.Execute(sess)

	_, err := cmd.Await()
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran, "delegate must not run for a pre-canceled command")
}

func TestCommand_PanicSurfacesAsFault(t *testing.T) {
	sess, _ := testutils.NewTestSession()
	cmd := NewCommand(context.Background(), func(_ agenttypes.Session) (any, error) {
		panic("tool exploded")
	})

	// Must not panic on the executing thread.
	require.NotPanics(t, func() { cmd.Execute(sess) })

	_, err := cmd.Await()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool exploded")
}

func TestCommand_CompletedExactlyOnce(t *testing.T) {
	sess, _ := testutils.NewTestSession()
	cmd := NewCommand(context.Background(), func(_ agenttypes.Session) (any, error) {
		return "first", nil
	})

	cmd.Execute(sess)
	cmd.Cancel(errors.New("late cancel"))
	cmd.Execute(sess)

	result, err := cmd.Await()
	require.NoError(t, err)
	assert.Equal(t, "first", result)
}

func TestCommand_ExecuteAfterCancelSkipsDelegate(t *testing.T) {
	sess, _ := testutils.NewTestSession()
	ran := false
	cmd := NewCommand(context.Background(), func(_ agenttypes.Session) (any, error) {
		ran = true
		return nil, nil
	})

	cmd.Cancel(errors.New("signal refused"))
	cmd.Execute(sess)

	assert.False(t, ran, "delegate must not run once the command is resolved")
	_, err := cmd.Await()
	assert.Error(t, err)
}

func TestCommand_CancelResolvesWithoutExecution(t *testing.T) {
	cmd := NewCommand(context.Background(), func(_ agenttypes.Session) (any, error) {
		return 1, nil
	})

	cmd.Cancel(context.Canceled)

	_, err := cmd.Await()
	assert.ErrorIs(t, err, context.Canceled)
}
