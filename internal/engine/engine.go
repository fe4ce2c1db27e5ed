// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine implements the OCR Engine Adapter (C1): a thin,
// non-reentrant wrapper around a single instance of the third-party
// recognizer, configured once with a fixed recognition profile and then
// invoked repeatedly by exactly one worker goroutine.
package engine

import (
	"context"

	"github.com/otiai10/gosseract/v2"
)

// Profile configures one recognizer instance: the language pack,
// page-segmentation mode, and an optional character whitelist/dictionary
// restriction. Profile is fixed for the lifetime of an Engine.
type Profile struct {
	Languages     []string
	PageSegMode   gosseract.PageSegMode
	CharWhitelist string
}

// DefaultProfile is a reasonable default for unconstrained printed text.
func DefaultProfile() Profile {
	return Profile{
		Languages:   []string{"eng"},
		PageSegMode: gosseract.PSM_AUTO,
	}
}

// Engine wraps one gosseract.Client. It is not safe for concurrent use:
// callers (the worker pool) must serialize calls to Recognize on one
// Engine instance, which the pool guarantees by pinning one Engine per
// worker goroutine.
type Engine struct {
	profile Profile
	client  *gosseract.Client
}

// New configures a fresh recognizer with profile. This is the adapter's
// init() operation: it must be called exactly once before any Recognize.
func New(profile Profile) (*Engine, error) {
	client := gosseract.NewClient()

	if len(profile.Languages) > 0 {
		if err := client.SetLanguage(profile.Languages...); err != nil {
			_ = client.Close()
			return nil, ErrEngineFailure(err)
		}
	}
	if err := client.SetPageSegMode(profile.PageSegMode); err != nil {
		_ = client.Close()
		return nil, ErrEngineFailure(err)
	}
	if profile.CharWhitelist != "" {
		if err := client.SetWhitelist(profile.CharWhitelist); err != nil {
			_ = client.Close()
			return nil, ErrEngineFailure(err)
		}
	}

	return &Engine{profile: profile, client: client}, nil
}

// Recognize decodes data, runs the deterministic preprocessing pipeline,
// invokes the recognizer, and applies post-processing. ctx is honored only
// as a best-effort cancellation signal around the (otherwise
// uninterruptible) recognizer call: an in-progress OCR run completes once
// started.
func (e *Engine) Recognize(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	processed, err := preprocess(data)
	if err != nil {
		return "", err
	}

	if err := e.client.SetImageFromBytes(processed); err != nil {
		return "", ErrEngineFailure(err)
	}

	raw, err := e.client.Text()
	if err != nil {
		return "", ErrEngineFailure(err)
	}

	text := postProcess(raw)
	if text == "" {
		return "", ErrEmptyResult
	}
	return text, nil
}

// Close releases the underlying recognizer handle. Used both on normal
// pool shutdown and during engine rejuvenation.
func (e *Engine) Close() error {
	return e.client.Close()
}

// Rejuvenate tears down and reconstructs the engine in place, reusing its
// profile. It is transparent to callers: the Engine's identity (pointer)
// is unchanged, only its internal client is replaced.
func (e *Engine) Rejuvenate() error {
	if err := e.client.Close(); err != nil {
		return ErrEngineFailure(err)
	}
	fresh, err := New(e.profile)
	if err != nil {
		return err
	}
	e.client = fresh.client
	return nil
}
