// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package session implements the Stream Session (C4): one instance per
// accepted ProcessImages stream. A session runs a receive loop and a send
// loop side by side, synchronized over a single response channel so that
// exactly one goroutine ever writes to the stream.
package session

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ocrstream/ocrstream/api/ocrpb"
	"github.com/ocrstream/ocrstream/internal/engine"
	"github.com/ocrstream/ocrstream/internal/pool"
)

// Stream is the subset of the generated bidi-stream server interface a
// Session depends on, letting tests substitute a fake stream.
type Stream interface {
	Send(*ocrpb.OCRResult) error
	Recv() (*ocrpb.ImageRequest, error)
	Context() context.Context
}

// Submitter is the subset of *pool.Pool a Session depends on.
type Submitter interface {
	Submit(ctx context.Context, task pool.Task) error
}

// Admitter is the subset of *governor.Governor a Session depends on.
type Admitter interface {
	Admit(ctx context.Context, n int64) bool
	Release(ctx context.Context, n int64)
}

// Session owns one ProcessImages stream end to end.
type Session struct {
	stream   Stream
	pool     Submitter
	governor Admitter
	logger   *zap.Logger

	inFlightWG sync.WaitGroup
}

// New constructs a Session for one accepted stream.
func New(stream Stream, p Submitter, g Admitter, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{stream: stream, pool: p, governor: g, logger: logger}
}

// Run drives the session to completion: it blocks until the client
// half-closes (or errors) and every admitted task has produced a result.
func (s *Session) Run() error {
	streamCtx := s.stream.Context()
	doneCtx, doneCancel := context.WithCancel(streamCtx)
	defer doneCancel()

	pendingCh := make(chan *ocrpb.OCRResult, 64)
	errCh := make(chan error, 2)

	// The 1-count here is released after recvLoop returns, preventing a
	// race between in-flight Add() calls and sendLoop's drain Wait().
	s.inFlightWG.Add(1)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer s.inFlightWG.Done()
		errCh <- s.recvLoop(doneCtx, pendingCh)
	}()
	go func() {
		defer wg.Done()
		errCh <- s.sendLoop(doneCtx, pendingCh)
	}()
	defer wg.Wait()

	select {
	case <-doneCtx.Done():
		return status.Error(codes.Canceled, "server stream shutdown")
	case err := <-errCh:
		doneCancel()
		return err
	}
}

func (s *Session) recvLoop(ctx context.Context, pendingCh chan<- *ocrpb.OCRResult) error {
	for {
		select {
		case <-ctx.Done():
			return status.Error(codes.Canceled, "server stream shutdown")
		default:
		}

		req, err := s.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return status.Error(codes.Canceled, "server stream shutdown")
			}
			return err
		}

		if err := s.admitAndSubmit(ctx, req, pendingCh); err != nil {
			return err
		}
	}
}

// admitAndSubmit handles one request: empty-payload short-circuit,
// admission against the governor, and dispatch to the pool. Recoverable
// failures are converted locally to a result and never abort the session.
func (s *Session) admitAndSubmit(ctx context.Context, req *ocrpb.ImageRequest, pendingCh chan<- *ocrpb.OCRResult) error {
	imageID := req.GetImageId()
	payload := req.GetImageData()

	if len(payload) == 0 {
		s.inFlightWG.Add(1)
		go s.deliver(pendingCh, imageID, "", engine.ErrEmptyPayload)
		return nil
	}

	n := int64(len(payload))
	if !s.governor.Admit(ctx, n) {
		s.inFlightWG.Add(1)
		go s.deliver(pendingCh, imageID, "", engine.ErrOverloaded)
		return nil
	}

	s.inFlightWG.Add(1)
	task := pool.Task{
		ImageID:  imageID,
		Filename: req.GetFilename(),
		Payload:  payload,
		Done: func(text string, err error) {
			s.governor.Release(context.Background(), n)
			s.deliver(pendingCh, imageID, text, err)
		},
	}

	if err := s.pool.Submit(ctx, task); err != nil {
		s.governor.Release(ctx, n)
		s.inFlightWG.Done()
		if errors.Is(err, context.Canceled) {
			return status.Error(codes.Canceled, "server stream shutdown")
		}
		return err
	}
	return nil
}

// deliver translates a recognition outcome into a wire OCRResult and queues
// it for the send loop. Always called exactly once per admitted task.
func (s *Session) deliver(pendingCh chan<- *ocrpb.OCRResult, imageID, text string, err error) {
	defer s.inFlightWG.Done()

	result := &ocrpb.OCRResult{
		ImageId:       imageID,
		ExtractedText: text,
		Success:       err == nil,
	}
	if err != nil {
		result.ErrorMessage = err.Error()
	}
	pendingCh <- result
}

func (s *Session) sendOne(result *ocrpb.OCRResult) error {
	if err := s.stream.Send(result); err != nil {
		s.logger.Error("response write lost",
			zap.String("image_id", result.GetImageId()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Session) flushRemaining(pendingCh <-chan *ocrpb.OCRResult) error {
	// Keep sending while the receiver finishes and every in-flight task
	// settles, so deliver never blocks on a full pendingCh; once all have
	// settled, drain whatever is left and return.
	settled := make(chan struct{})
	go func() {
		s.inFlightWG.Wait()
		close(settled)
	}()
	for {
		select {
		case result := <-pendingCh:
			if err := s.sendOne(result); err != nil {
				return err
			}
		case <-settled:
			if len(pendingCh) == 0 {
				return nil
			}
		}
	}
}

func (s *Session) sendLoop(ctx context.Context, pendingCh <-chan *ocrpb.OCRResult) error {
	for {
		select {
		case <-ctx.Done():
			return s.flushRemaining(pendingCh)
		case result := <-pendingCh:
			if err := s.sendOne(result); err != nil {
				return err
			}
		}
	}
}
