package system

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/scenerender/internal/errs"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "res10x10")
	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir), "existing directory is fine")

	fi, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}

func TestEnsureDirOverFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "taken")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	err := EnsureDir(file)
	assert.ErrorIs(t, err, errs.ErrOutputDirectory)

	err = EnsureDir(filepath.Join(file, "res1x1"))
	assert.ErrorIs(t, err, errs.ErrOutputDirectory)
}

func stubHost(t *testing.T, cpus int, memory uint64, memErr error) {
	t.Helper()
	oldCPU, oldMem := logicalCPUs, availableMemory
	logicalCPUs = func() (int, error) { return cpus, nil }
	availableMemory = func() (uint64, error) { return memory, memErr }
	t.Cleanup(func() {
		logicalCPUs, availableMemory = oldCPU, oldMem
	})
}

func TestWorkerBudget(t *testing.T) {
	tests := []struct {
		name      string
		cpus      int
		memory    uint64
		memErr    error
		requested int
		buffer    uint64
		want      int
		warned    bool
	}{
		{"cpu default", 8, 1 << 30, nil, 0, 1 << 10, 8, false},
		{"explicit request", 8, 1 << 30, nil, 3, 1 << 10, 3, false},
		{"memory bound", 8, 400, nil, 0, 100, 2, false},
		{"never below one", 8, 10, nil, 0, 100, 1, false},
		{"memory unknown", 4, 0, errors.New("no /proc"), 0, 100, 4, true},
		{"no buffer size", 2, 0, nil, 0, 0, 2, false},
		{"bad cpu count", 0, 1 << 30, nil, 0, 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubHost(t, tt.cpus, tt.memory, tt.memErr)
			var warnings []string
			got := WorkerBudget(tt.requested, tt.buffer, func(format string, args ...any) {
				warnings = append(warnings, fmt.Sprintf(format, args...))
			})
			if tt.warned {
				assert.Equal(t, []string{"Could not read available memory: no /proc"}, warnings)
			} else {
				assert.Empty(t, warnings)
			}
			if tt.want == 0 {
				assert.GreaterOrEqual(t, got, 1)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBufferPool(t *testing.T) {
	pool := NewBufferPool()
	rect := image.Rect(0, 0, 3, 2)

	buf := pool.Get(rect)
	require.NotNil(t, buf)
	assert.Equal(t, rect, buf.Rect)
	assert.Len(t, buf.Pix, 3*2*4)
	pool.Put(buf)

	again := pool.Get(rect)
	assert.Equal(t, rect, again.Rect)

	other := pool.Get(image.Rect(0, 0, 5, 5))
	assert.Len(t, other.Pix, 5*5*4)

	pool.Put(nil)
	pool.Put(image.NewNRGBA(image.Rect(0, 0, 9, 9))) // unknown size is dropped
}
