package warmer

import (
	"context"
	"time"

	"go_productlabel/internal/label"

	"github.com/sirupsen/logrus"
)

// LabelLister loads the label list through the cache.
type LabelLister interface {
	LabelsList(ctx context.Context) ([]label.Rule, error)
}

// Worker keeps the label list cache populated so storefront renders rarely
// pay for the MySQL read after a flush or expiry.
type Worker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	labels   LabelLister
	logger   *logrus.Entry
	interval time.Duration
	done     chan struct{}
}

// Config holds the configuration for the cache warmer
type Config struct {
	Labels      LabelLister
	Logger      *logrus.Entry
	IntervalSec int
}

// NewWorker creates a new cache warmer
func NewWorker(cfg *Config) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		ctx:      ctx,
		cancel:   cancel,
		labels:   cfg.Labels,
		logger:   cfg.Logger.WithField("component", "label-cache-warmer"),
		interval: time.Duration(cfg.IntervalSec) * time.Second,
		done:     make(chan struct{}),
	}
}

// Start warms the cache once, then on every tick
func (w *Worker) Start() {
	w.logger.WithField("interval", w.interval).Info("Starting label cache warmer...")
	w.Warm()

	ticker := time.NewTicker(w.interval)
	go func() {
		defer close(w.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.Warm()
			case <-w.ctx.Done():
				w.logger.Info("Stopping label cache warmer...")
				return
			}
		}
	}()
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	w.cancel()
	<-w.done
}

// Warm loads the label list once. Failures are logged; the next tick retries.
func (w *Worker) Warm() {
	rules, err := w.labels.LabelsList(w.ctx)
	if err != nil {
		w.logger.WithError(err).Warn("Failed to warm label cache")
		return
	}
	w.logger.WithField("labels", len(rules)).Debug("Label cache warm")
}
