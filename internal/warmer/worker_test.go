package warmer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go_productlabel/internal/label"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

type countingLister struct {
	calls atomic.Int32
	err   error
}

func (c *countingLister) LabelsList(ctx context.Context) ([]label.Rule, error) {
	c.calls.Add(1)
	return nil, c.err
}

func TestWorker_WarmsOnStartAndTick(t *testing.T) {
	logger, _ := test.NewNullLogger()
	lister := &countingLister{}

	w := NewWorker(&Config{Labels: lister, Logger: logrus.NewEntry(logger), IntervalSec: 1})
	w.interval = 10 * time.Millisecond

	w.Start()
	assert.Eventually(t, func() bool { return lister.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	w.Stop()

	stopped := lister.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, lister.calls.Load())
}

func TestWorker_WarmLogsFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	lister := &countingLister{err: errors.New("db down")}

	w := NewWorker(&Config{Labels: lister, Logger: logrus.NewEntry(logger), IntervalSec: 60})
	w.Warm()

	assert.Equal(t, int32(1), lister.calls.Load())
	if assert.NotNil(t, hook.LastEntry()) {
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		assert.Equal(t, "label-cache-warmer", hook.LastEntry().Data["component"])
	}
}
