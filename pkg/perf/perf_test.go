package perf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudposse/hcloud-projects/pkg/schema"
)

func withCleanRegistry(t *testing.T) {
	t.Helper()
	Disable()
	Reset()
	t.Cleanup(func() {
		Disable()
		Reset()
	})
}

func TestTrack_DisabledRecordsNothing(t *testing.T) {
	withCleanRegistry(t)

	Track(nil, "noop")()
	assert.Empty(t, Snapshot())
}

func TestTrack_EnabledRecords(t *testing.T) {
	withCleanRegistry(t)
	Enable()

	for i := 0; i < 3; i++ {
		done := Track(nil, "hcloud.Client.FindProjectID")
		time.Sleep(time.Millisecond)
		done()
	}
	Track(nil, "session.Open")()

	stats := Snapshot()
	require.Len(t, stats, 2)
	assert.Equal(t, "hcloud.Client.FindProjectID", stats[0].Name)
	assert.Equal(t, int64(3), stats[0].Count)
	assert.GreaterOrEqual(t, stats[0].Max, time.Millisecond)
	assert.Equal(t, int64(1), stats[1].Count)
}

func TestTrack_ConfigEnablesProfiler(t *testing.T) {
	withCleanRegistry(t)

	cfg := &schema.Configuration{Profiler: schema.Profiler{Enabled: true}}
	Track(cfg, "cmd.login")()

	assert.True(t, Enabled())
	assert.Len(t, Snapshot(), 1)
}

func TestReport(t *testing.T) {
	withCleanRegistry(t)
	Enable()
	Track(nil, "auth.HTTPFlow.AcquireUserToken")()

	var buf bytes.Buffer
	require.NoError(t, Report(&buf))
	assert.Contains(t, buf.String(), "FUNCTION")
	assert.Contains(t, buf.String(), "auth.HTTPFlow.AcquireUserToken")
}
