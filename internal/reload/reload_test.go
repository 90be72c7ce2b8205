package reload_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elonsoft/defparser"
	"github.com/Elonsoft/defparser/internal/logging"
	"github.com/Elonsoft/defparser/internal/reload"
)

// buildFrom defines one "pet" parser from the YAML file at path.
func buildFrom(path string) reload.BuildFunc {
	return func() (*defparser.Registry, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		reg := defparser.NewRegistry()
		lit, err := defparser.LoadSchemaYAML(data, reg)
		if err != nil {
			return nil, err
		}
		if _, err := reg.Define("pet", lit); err != nil {
			return nil, err
		}
		return reg, nil
	}
}

func rootOf(reg *defparser.Registry) string {
	p, _ := reg.Parser("pet")
	return p.Root().String()
}

func TestReload_KeepsPreviousOnFailure(t *testing.T) {
	calls := 0
	fail := true
	w, err := reload.New(nil, func() (*defparser.Registry, error) {
		calls++
		if fail {
			return nil, errors.New("boom")
		}
		return defparser.NewRegistry(), nil
	}, logging.NewNop())
	require.NoError(t, err)

	var got *defparser.Registry
	w.OnChange(func(reg *defparser.Registry) { got = reg })

	assert.Error(t, w.Reload())
	assert.Nil(t, got)

	fail = false
	require.NoError(t, w.Reload())
	assert.NotNil(t, got)
	assert.Equal(t, 2, calls)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pet.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: string\n"), 0o644))

	w, err := reload.New([]string{path}, buildFrom(path), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(w.Stop)

	var current atomic.Pointer[defparser.Registry]
	w.OnChange(func(reg *defparser.Registry) { current.Store(reg) })
	require.NoError(t, w.Start())

	// unrelated files in the same directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1"), 0o644))

	require.NoError(t, os.WriteFile(path, []byte("name: string\nage: integer\n"), 0o644))
	require.Eventually(t, func() bool {
		reg := current.Load()
		return reg != nil && rootOf(reg) == "Pet{age:integer name:string}"
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := reload.New([]string{filepath.Join(t.TempDir(), "a.yaml")}, buildFrom("unused"), logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, w.Start())
	w.WatchSignals()
	w.Stop()
	w.Stop()
}

func TestWatcher_StartAfterStop(t *testing.T) {
	w, err := reload.New([]string{filepath.Join(t.TempDir(), "a.yaml")}, buildFrom("unused"), logging.NewNop())
	require.NoError(t, err)
	w.Stop()
	assert.ErrorIs(t, w.Start(), reload.ErrStopped)
}

func TestWatcher_StartStopConcurrently(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 20; i++ {
		w, err := reload.New([]string{filepath.Join(dir, "a.yaml")}, buildFrom("unused"), logging.NewNop())
		require.NoError(t, err)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			err := w.Start()
			if err != nil {
				assert.ErrorIs(t, err, reload.ErrStopped)
			}
		}()
		go func() {
			defer wg.Done()
			w.Stop()
		}()
		wg.Wait()
	}
}
