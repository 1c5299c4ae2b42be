package stats

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage, err := NewStorage(tempDir)
	require.NoError(t, err)

	t.Run("RecordAudit", func(t *testing.T) {
		storage.RecordAudit(25, 4000, false)
		storage.RecordAudit(10, 2000, true)

		current := storage.GetCurrentStats()
		assert.Equal(t, 2, current.AuditsRun)
		assert.Equal(t, 1, current.AuditsFailed)
		assert.Equal(t, 35, current.PagesCrawled)
		assert.Equal(t, int64(6000), current.TotalAuditMs)
		assert.Equal(t, int64(3000), current.AverageAuditMs())
	})

	t.Run("Persistence", func(t *testing.T) {
		storage.requestWrite()
		time.Sleep(100 * time.Millisecond)

		storage2, err := NewStorage(tempDir)
		require.NoError(t, err)
		defer storage2.Shutdown()

		assert.Equal(t, 2, storage2.GetCurrentStats().AuditsRun)
	})

	t.Run("Cleanup", func(t *testing.T) {
		oldMonth := time.Now().AddDate(0, -2, 0).Format("2006-01")
		storage.mutex.Lock()
		storage.stats[oldMonth] = &MonthlyStats{AuditsRun: 100, LastUpdated: time.Now().AddDate(0, -2, 0)}
		storage.mutex.Unlock()

		storage.Cleanup()

		_, exists := storage.GetMonthlyStats(oldMonth)
		assert.False(t, exists, "old month should have been cleaned up")
		_, exists = storage.GetMonthlyStats(time.Now().Format("2006-01"))
		assert.True(t, exists)
	})

	t.Run("ShutdownFlushes", func(t *testing.T) {
		require.NoError(t, storage.Shutdown())
		_, err := os.Stat(filepath.Join(tempDir, "stats.json"))
		assert.NoError(t, err)
	})
}

func TestEmptyMonth(t *testing.T) {
	storage, err := NewStorage(t.TempDir())
	require.NoError(t, err)
	defer storage.Shutdown()

	current := storage.GetCurrentStats()
	assert.Zero(t, current.AuditsRun)
	assert.Zero(t, current.AverageAuditMs())
}
