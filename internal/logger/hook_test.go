package logger

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
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

func TestAsyncHook_WritesEntriesBeforeClose(t *testing.T) {
	out := &syncBuffer{}
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetOutput(io.Discard)
	hook := NewAsyncHookWithWriters([]io.Writer{out}, 16)
	l.AddHook(hook)

	l.WithField("metric", "salesByPeriod").Info("first")
	l.Warn("second")
	assert.NoError(t, hook.Close())

	got := out.String()
	assert.Contains(t, got, "first")
	assert.Contains(t, got, "metric=salesByPeriod")
	assert.Contains(t, got, "second")
}

func TestAsyncHook_KeepsLevelAndMessage(t *testing.T) {
	out := &syncBuffer{}
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetOutput(io.Discard)
	hook := NewAsyncHookWithWriters([]io.Writer{out}, 16)
	l.AddHook(hook)

	l.WithField("metric", "topProducts").Warn("Sub-metric thất bại")
	l.Debug("dashboard.totalSales")
	assert.NoError(t, hook.Close())

	got := out.String()
	assert.Contains(t, got, `level=warning msg="Sub-metric thất bại" metric=topProducts`)
	assert.Contains(t, got, "level=debug msg=dashboard.totalSales")
	assert.NotContains(t, got, "level=panic")
}

func TestAsyncHook_AfterCloseWritesDirectly(t *testing.T) {
	out := &syncBuffer{}
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetOutput(io.Discard)
	hook := NewAsyncHookWithWriters([]io.Writer{out}, 1)
	l.AddHook(hook)

	assert.NoError(t, hook.Close())
	assert.NoError(t, hook.Close())

	l.Error("late entry")
	assert.Contains(t, out.String(), "late entry")
}
