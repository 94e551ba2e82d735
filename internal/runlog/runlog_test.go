package runlog_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/north-cloud/ingestor/internal/domain"
	"github.com/north-cloud/ingestor/internal/runlog"
)

func TestAppendFormatsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	log := runlog.New(path)

	err := log.Append(domain.DayResult{
		Date:       time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Inserted:   3,
		Duplicates: 2,
		Elapsed:    90 * time.Second,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01: Inserted=3, Duplicates=2, Time=1.50 min\n", string(data))
}

func TestAppendIsAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	log := runlog.New(path)

	days := []domain.DayResult{
		{Date: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), Inserted: 10},
		{Date: time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC), Inserted: 20, Duplicates: 5},
	}
	for _, d := range days {
		require.NoError(t, log.Append(d))
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"2024-03-01: Inserted=10, Duplicates=0, Time=0.00 min\n"+
			"2024-03-02: Inserted=20, Duplicates=5, Time=0.00 min\n",
		string(data))
}

func TestAppendCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested.log")
	log := runlog.New(path)

	require.NoError(t, log.Append(domain.DayResult{Date: time.Now()}))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestAppendFailsOnBadPath(t *testing.T) {
	log := runlog.New(filepath.Join(t.TempDir(), "missing-dir", "run.log"))
	err := log.Append(domain.DayResult{Date: time.Now()})
	assert.Error(t, err)
}
