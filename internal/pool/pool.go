// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package pool implements the Worker Pool (C2): a fixed set of worker
// goroutines, each pinned to exactly one OCR engine, pulling tasks off one
// bounded, shared queue. The queue's capacity is the primary admission
// back-pressure mechanism.
package pool

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Recognizer is the subset of the OCR Engine Adapter the pool depends on.
// engine.Engine satisfies this; tests substitute a fake.
type Recognizer interface {
	Recognize(ctx context.Context, data []byte) (string, error)
	Close() error
	Rejuvenate() error
}

// Task is one admitted image awaiting or undergoing recognition. Done is
// invoked exactly once, from a worker goroutine, with the recognized text
// (possibly empty) and an error if recognition failed.
type Task struct {
	ImageID  string
	Filename string
	Payload  []byte
	Done     func(text string, err error)
}

// RejuvenationPolicy bounds how often a worker tears down and reconstructs
// its engine to reclaim memory the underlying recognizer leaks. A zero
// value disables rejuvenation on that axis.
type RejuvenationPolicy struct {
	EveryTasks    int
	EveryInterval time.Duration
}

// Config configures pool construction.
type Config struct {
	Workers      int
	QueueSize    int
	Rejuvenation RejuvenationPolicy
	Logger       *zap.Logger
}

// Pool owns N long-lived worker goroutines and one bounded task channel.
type Pool struct {
	tasks  chan Task
	wg     sync.WaitGroup
	logger *zap.Logger

	closeErrMu sync.Mutex
	closeErr   error
}

// EngineFactory constructs one Recognizer per worker. It is called once at
// pool startup for each worker; rejuvenation goes through the Recognizer's
// own Rejuvenate method and does not call the factory again.
type EngineFactory func() (Recognizer, error)

// New constructs a Pool and starts its workers. It returns an error only
// if every worker failed to construct its initial engine (a non-recoverable
// startup fault).
func New(cfg Config, newEngine EngineFactory) (*Pool, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{
		tasks:  make(chan Task, cfg.QueueSize),
		logger: logger,
	}

	started := 0
	var initErr error
	for i := 0; i < cfg.Workers; i++ {
		eng, err := newEngine()
		if err != nil {
			logger.Error("worker engine init failed", zap.Int("worker", i), zap.Error(err))
			initErr = multierr.Append(initErr, err)
			continue
		}
		started++
		p.wg.Add(1)
		go p.runWorker(i, eng, cfg.Rejuvenation, newEngine)
	}

	if started == 0 {
		return nil, initErr
	}
	return p, nil
}

// Submit enqueues task, blocking while the bounded queue is full. This is
// the primary back-pressure path to the session's reader loop. It returns
// ctx.Err() if ctx is cancelled before a slot is available.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting new tasks, drains queued tasks, and waits for
// every worker to exit and release its engine. It returns the aggregate of
// any errors encountered closing worker engines, built with
// multierr.Append so a failure on one worker never masks another's.
func (p *Pool) Shutdown() error {
	close(p.tasks)
	p.wg.Wait()

	p.closeErrMu.Lock()
	defer p.closeErrMu.Unlock()
	return p.closeErr
}

func (p *Pool) recordCloseErr(err error) {
	p.closeErrMu.Lock()
	p.closeErr = multierr.Append(p.closeErr, err)
	p.closeErrMu.Unlock()
}

func (p *Pool) runWorker(id int, eng Recognizer, policy RejuvenationPolicy, newEngine EngineFactory) {
	defer p.wg.Done()
	defer func() {
		if err := eng.Close(); err != nil {
			p.logger.Error("worker engine close failed", zap.Int("worker", id), zap.Error(err))
			p.recordCloseErr(err)
		}
	}()

	var ticker *time.Ticker
	var tickCh <-chan time.Time
	if policy.EveryInterval > 0 {
		ticker = time.NewTicker(policy.EveryInterval)
		tickCh = ticker.C
		defer ticker.Stop()
	}

	completed := 0
	for {
		select {
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			p.process(id, eng, task)
			completed++
			if policy.EveryTasks > 0 && completed%policy.EveryTasks == 0 {
				p.rejuvenate(id, eng)
			}
		case <-tickCh:
			p.rejuvenate(id, eng)
		}
	}
}

func (p *Pool) process(id int, eng Recognizer, task Task) {
	ctx := context.Background()
	text, err := eng.Recognize(ctx, task.Payload)
	task.Done(text, err)
	p.logger.Debug("task completed",
		zap.Int("worker", id),
		zap.String("image_id", task.ImageID),
		zap.Int("text_len", len(text)),
		zap.Error(err),
	)
}

func (p *Pool) rejuvenate(id int, eng Recognizer) {
	if err := eng.Rejuvenate(); err != nil {
		p.logger.Error("engine rejuvenation failed", zap.Int("worker", id), zap.Error(err))
		return
	}
	p.logger.Debug("engine rejuvenated", zap.Int("worker", id))
}
