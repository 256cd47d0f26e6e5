package cleanup

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/tubedrop/internal/logger"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger(t *testing.T) (*logger.Logger, *syncBuffer) {
	t.Helper()
	out := &syncBuffer{}
	log, err := logger.NewWithWriter(logger.Config{Level: "debug", Format: "text"}, out)
	require.NoError(t, err)
	return log, out
}

func writeAged(t *testing.T, dir, name string, size int, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	mtime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func defaultPolicy() Policy {
	return Policy{MaxAge: time.Hour, Interval: 300 * time.Second}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		dir     string
		policy  Policy
		wantErr bool
	}{
		{"valid interval", "/tmp/x", defaultPolicy(), false},
		{"valid schedule without interval", "/tmp/x", Policy{MaxAge: time.Hour, Schedule: "@every 1m"}, false},
		{"empty dir", "", defaultPolicy(), true},
		{"zero max age", "/tmp/x", Policy{Interval: time.Second}, true},
		{"zero interval", "/tmp/x", Policy{MaxAge: time.Hour}, true},
		{"bad schedule", "/tmp/x", Policy{MaxAge: time.Hour, Interval: time.Second, Schedule: "not a schedule"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := New(tt.dir, tt.policy, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Stopped, svc.State())
		})
	}
}

func TestRunCycle_RemovesOnlyExpired(t *testing.T) {
	dir := t.TempDir()
	fresh := writeAged(t, dir, "a.mp4", 10, 10*time.Second)
	old := writeAged(t, dir, "b.mp4", 20, 3700*time.Second)

	log, _ := newTestLogger(t)
	svc, err := New(dir, defaultPolicy(), log)
	require.NoError(t, err)

	assert.Equal(t, 1, svc.RunCycle())

	assert.FileExists(t, fresh)
	assert.NoFileExists(t, old)

	report, ok := svc.LastReport()
	require.True(t, ok)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Candidates)
	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, int64(20), report.BytesFreed)
	assert.Equal(t, "ok", report.Result())
	assert.NotEmpty(t, report.ID)
}

func TestRunCycle_EmptyAndMissingDirectory(t *testing.T) {
	svc, err := New(t.TempDir(), defaultPolicy(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, svc.RunCycle())

	svc, err = New(filepath.Join(t.TempDir(), "missing"), defaultPolicy(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, svc.RunCycle())

	report, ok := svc.LastReport()
	require.True(t, ok)
	assert.Empty(t, report.Error)
}

func TestRunCycle_ContinuesAfterDeleteFailure(t *testing.T) {
	dir := t.TempDir()
	stuck := writeAged(t, dir, "stuck.mp4", 1, 2*time.Hour)
	gone := writeAged(t, dir, "gone.mp4", 1, 2*time.Hour)

	var calls atomic.Int32
	remover := func(path string) error {
		calls.Add(1)
		if path == stuck {
			return errors.New("permission denied")
		}
		return os.Remove(path)
	}

	log, out := newTestLogger(t)
	svc, err := New(dir, defaultPolicy(), log, WithRemover(remover))
	require.NoError(t, err)

	assert.Equal(t, 1, svc.RunCycle())
	assert.Equal(t, int32(2), calls.Load(), "each candidate is attempted exactly once")
	assert.FileExists(t, stuck)
	assert.NoFileExists(t, gone)

	report, _ := svc.LastReport()
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "partial", report.Result())
	assert.Equal(t, 1, strings.Count(out.String(), "some expired files could not be removed"))
}

func TestRunCycle_VanishedFileIsNotAFailure(t *testing.T) {
	dir := t.TempDir()
	writeAged(t, dir, "raced.mp4", 1, 2*time.Hour)

	remover := func(path string) error {
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
	}

	svc, err := New(dir, defaultPolicy(), nil, WithRemover(remover))
	require.NoError(t, err)

	assert.Equal(t, 0, svc.RunCycle())
	report, _ := svc.LastReport()
	assert.Equal(t, 1, report.Vanished)
	assert.Equal(t, 0, report.Failed)
}

func TestRunCycle_RecoversPanic(t *testing.T) {
	dir := t.TempDir()
	writeAged(t, dir, "boom.mp4", 1, 2*time.Hour)

	svc, err := New(dir, defaultPolicy(), nil, WithRemover(func(string) error {
		panic("disk on fire")
	}))
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		assert.Equal(t, 0, svc.RunCycle())
	})

	report, ok := svc.LastReport()
	require.True(t, ok)
	assert.Contains(t, report.Error, "disk on fire")
	assert.Equal(t, "error", report.Result())
}

func TestRunCycle_UsesClock(t *testing.T) {
	dir := t.TempDir()
	writeAged(t, dir, "a.mp4", 1, 10*time.Second)

	future := func() time.Time { return time.Now().Add(2 * time.Hour) }
	svc, err := New(dir, defaultPolicy(), nil, WithClock(future))
	require.NoError(t, err)

	assert.Equal(t, 1, svc.RunCycle())
}

func TestStart_IsIdempotent(t *testing.T) {
	log, out := newTestLogger(t)
	svc, err := New(t.TempDir(), defaultPolicy(), log)
	require.NoError(t, err)

	svc.Start()
	svc.Start()

	assert.Equal(t, Running, svc.State())
	assert.Equal(t, 1, strings.Count(out.String(), "cleanup service started"))
	assert.Contains(t, out.String(), "cleanup service already running")

	assert.True(t, svc.Stop(5*time.Second))
	assert.Equal(t, Stopped, svc.State())
}

func TestStop_WhenStoppedIsNoop(t *testing.T) {
	log, out := newTestLogger(t)
	svc, err := New(t.TempDir(), defaultPolicy(), log)
	require.NoError(t, err)

	assert.True(t, svc.Stop(time.Second))
	assert.Equal(t, Stopped, svc.State())
	assert.Contains(t, out.String(), "cleanup service is not running")
}

func TestStop_InterruptsWait(t *testing.T) {
	dir := t.TempDir()
	svc, err := New(dir, defaultPolicy(), nil)
	require.NoError(t, err)

	svc.Start()
	require.Eventually(t, func() bool {
		_, ok := svc.LastReport()
		return ok
	}, time.Second, 5*time.Millisecond)

	started := time.Now()
	assert.True(t, svc.Stop(5*time.Second))
	assert.Less(t, time.Since(started), time.Second)
	assert.Equal(t, Stopped, svc.State())
}

func TestStop_TimesOutOnSlowCycle(t *testing.T) {
	dir := t.TempDir()
	writeAged(t, dir, "slow.mp4", 1, 2*time.Hour)

	release := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once
	remover := func(path string) error {
		once.Do(func() { close(entered) })
		<-release
		return os.Remove(path)
	}

	log, out := newTestLogger(t)
	svc, err := New(dir, defaultPolicy(), log, WithRemover(remover))
	require.NoError(t, err)

	svc.Start()
	<-entered

	assert.False(t, svc.Stop(20*time.Millisecond))
	assert.Equal(t, Stopped, svc.State())
	assert.Contains(t, out.String(), "cleanup loop did not stop in time")

	close(release)
	require.Eventually(t, func() bool {
		report, ok := svc.LastReport()
		return ok && report.Deleted == 1
	}, time.Second, 5*time.Millisecond)
}

func TestRestart_AfterStop(t *testing.T) {
	dir := t.TempDir()
	svc, err := New(dir, Policy{MaxAge: time.Hour, Interval: 10 * time.Millisecond}, nil)
	require.NoError(t, err)

	svc.Start()
	assert.True(t, svc.Stop(time.Second))

	old := writeAged(t, dir, "later.mp4", 1, 2*time.Hour)
	svc.Start()
	require.Eventually(t, func() bool {
		_, err := os.Stat(old)
		return errors.Is(err, fs.ErrNotExist)
	}, 2*time.Second, 5*time.Millisecond)
	assert.True(t, svc.Stop(time.Second))
}

func TestLoop_SurvivesPanickingCycle(t *testing.T) {
	dir := t.TempDir()
	path := writeAged(t, dir, "flaky.mp4", 1, 2*time.Hour)

	var calls atomic.Int32
	remover := func(p string) error {
		if calls.Add(1) == 1 {
			panic("first attempt explodes")
		}
		return os.Remove(p)
	}

	svc, err := New(dir, Policy{MaxAge: time.Hour, Interval: 10 * time.Millisecond}, nil, WithRemover(remover))
	require.NoError(t, err)

	svc.Start()
	defer svc.Stop(time.Second)

	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return errors.Is(err, fs.ErrNotExist)
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, Running, svc.State())
}

func TestNextDelay(t *testing.T) {
	svc, err := New(t.TempDir(), defaultPolicy(), nil)
	require.NoError(t, err)
	assert.Equal(t, 300*time.Second, svc.nextDelay(time.Now()))

	svc, err = New(t.TempDir(), Policy{MaxAge: time.Hour, Schedule: "@every 1m"}, nil)
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Minute, svc.nextDelay(now))

	svc, err = New(t.TempDir(), Policy{MaxAge: time.Hour, Schedule: "0 */15 * * * *"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, svc.nextDelay(time.Date(2026, 3, 1, 12, 10, 0, 0, time.UTC)))
}

func TestDirectorySizeAndFileCount(t *testing.T) {
	dir := t.TempDir()
	writeAged(t, dir, "a", 10, 0)
	writeAged(t, dir, "b", 20, 0)
	writeAged(t, dir, "c", 30, 0)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	svc, err := New(dir, defaultPolicy(), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, svc.FileCount())
	assert.Equal(t, int64(60), svc.DirectorySize())

	missing, err := New(filepath.Join(dir, "missing"), defaultPolicy(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, missing.FileCount())
	assert.Equal(t, int64(0), missing.DirectorySize())
}

func TestMetrics(t *testing.T) {
	dir := t.TempDir()
	writeAged(t, dir, "old.mp4", 100, 2*time.Hour)
	writeAged(t, dir, "new.mp4", 5, time.Second)

	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	svc, err := New(dir, defaultPolicy(), nil, WithMetrics(m))
	require.NoError(t, err)

	svc.RunCycle()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.cycles.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.filesDeleted))
	assert.Equal(t, float64(100), testutil.ToFloat64(m.bytesFreed))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.dirFiles))
	assert.Equal(t, float64(5), testutil.ToFloat64(m.dirBytes))

	svc.Start()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.running))
	svc.Stop(time.Second)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.running))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "running", Running.String())
}
