package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(path string, op Operation) FileEvent {
	return FileEvent{Path: path, Operation: op, Timestamp: time.Now()}
}

func awaitBatch(t *testing.T, d *Debouncer) []FileEvent {
	t.Helper()
	select {
	case batch := <-d.Output():
		return batch
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced batch")
		return nil
	}
}

func TestDebouncer_EmitsAfterWindow(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	d.Add(event("/p/a.go", OpModify))

	batch := awaitBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, "/p/a.go", batch[0].Path)
	assert.Equal(t, OpModify, batch[0].Operation)
}

func TestDebouncer_CoalescesSamePath(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	d.Add(event("/p/a.go", OpModify))
	d.Add(event("/p/a.go", OpModify))
	d.Add(event("/p/a.go", OpModify))

	batch := awaitBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, OpModify, batch[0].Operation)
}

func TestDebouncer_CreateThenModifyIsCreate(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	d.Add(event("/p/new.go", OpCreate))
	d.Add(event("/p/new.go", OpModify))

	batch := awaitBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, OpCreate, batch[0].Operation)
}

// A file created and deleted within the window produces no event at all.
func TestDebouncer_CreateThenDeleteCancels(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	d.Add(event("/p/tmp.go", OpCreate))
	d.Add(event("/p/tmp.go", OpDelete))
	d.Add(event("/p/kept.go", OpModify))

	batch := awaitBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, "/p/kept.go", batch[0].Path)
}

func TestDebouncer_ModifyThenDeleteIsDelete(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	d.Add(event("/p/a.go", OpModify))
	d.Add(event("/p/a.go", OpDelete))

	batch := awaitBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, OpDelete, batch[0].Operation)
}

// Delete followed by create within the window is a replacement, so the
// consumer sees a modify.
func TestDebouncer_DeleteThenCreateIsModify(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	d.Add(event("/p/a.go", OpDelete))
	d.Add(event("/p/a.go", OpCreate))

	batch := awaitBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, OpModify, batch[0].Operation)
}

func TestDebouncer_DistinctPathsBatchTogether(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	d.Add(event("/p/a.go", OpModify))
	d.Add(event("/p/b.go", OpCreate))

	batch := awaitBatch(t, d)
	assert.Len(t, batch, 2)
}

func TestDebouncer_AddAfterStopIsNoop(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	d.Stop()
	d.Stop() // idempotent

	d.Add(event("/p/a.go", OpModify))

	_, open := <-d.Output()
	assert.False(t, open)
}
