package memhost

import (
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archagent/pkg/agenttypes"
)

func newTestPump(t *testing.T) (*Pump, *Session) {
	t.Helper()
	sess := NewSession(NewDocument("pump"), "2.4.0")
	pump := NewPump(sess)
	pump.Start()
	t.Cleanup(pump.Stop)
	return pump, sess
}

func TestPump_HandlerRunsWithSession(t *testing.T) {
	pump, sess := newTestPump(t)

	got := make(chan agenttypes.Session, 1)
	event := pump.NewEvent(func(s agenttypes.Session) {
		got <- s
	})

	require.Equal(t, agenttypes.RaiseAccepted, event.Raise())
	select {
	case s := <-got:
		assert.Same(t, sess, s)
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}
}

func TestPump_RaiseRefusedWhenHostBusy(t *testing.T) {
	pump, _ := newTestPump(t)
	event := pump.NewEvent(func(agenttypes.Session) {
		t.Error("handler must not run for a refused raise")
	})

	pump.SetRaiseResult(agenttypes.RaiseDenied)
	assert.Equal(t, agenttypes.RaiseDenied, event.Raise())

	pump.SetRaiseResult(agenttypes.RaiseTimedOut)
	assert.Equal(t, agenttypes.RaiseTimedOut, event.Raise())
}

func TestPump_PendingRaisesCoalesce(t *testing.T) {
	sess := NewSession(NewDocument("pump"), "2.4.0")
	pump := NewPump(sess)
	// Not started yet, so raises stay pending.

	var runs atomic.Int32
	event := pump.NewEvent(func(agenttypes.Session) { runs.Add(1) })

	require.Equal(t, agenttypes.RaiseAccepted, event.Raise())
	require.Equal(t, agenttypes.RaiseAccepted, event.Raise())
	require.Equal(t, agenttypes.RaiseAccepted, event.Raise())

	pump.Start()
	defer pump.Stop()

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 10*time.Millisecond,
		"coalesced raises must produce one handler run")
}

func TestPump_HandlersRunSerially(t *testing.T) {
	pump, _ := newTestPump(t)

	var mu sync.Mutex
	inside := 0
	maxInside := 0
	var wg sync.WaitGroup
	wg.Add(4)
	for i := 0; i < 4; i++ {
		event := pump.NewEvent(func(agenttypes.Session) {
			defer wg.Done()
			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
		})
		require.Equal(t, agenttypes.RaiseAccepted, event.Raise())
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside, "handlers must never overlap")
}

func TestLoadModel(t *testing.T) {
	path := t.TempDir() + "/model.yaml"
	content := `title: Loaded House
elements:
  - category: Wall
    name: Exterior
    parameters:
      height_mm: "3500"
  - category: Door
    name: Front
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	doc, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, "Loaded House", doc.Title())
	require.Len(t, doc.ElementIDs(), 2)

	first, ok := doc.Element(doc.ElementIDs()[0])
	require.True(t, ok)
	assert.Equal(t, "Exterior", first.Name)
	assert.Equal(t, "3500", first.Parameters["height_mm"])
}

func TestLoadModel_MissingFile(t *testing.T) {
	_, err := LoadModel(t.TempDir() + "/absent.yaml")
	assert.Error(t, err)
}
