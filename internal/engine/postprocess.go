// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import "strings"

// trimSet is the set of leading/trailing punctuation characters stripped
// from recognized text after whitespace collapsing, per the deterministic
// post-processing pipeline.
const trimSet = ".,!?*-|` '\""

// postProcess applies the four deterministic steps, in order:
//  1. strip leading/trailing whitespace
//  2. collapse runs of >=2 spaces to a single space
//  3. trim leading/trailing characters in trimSet
//  4. return the result (empty string allowed)
//
// For a fixed input, the output is byte-identical across runs.
func postProcess(text string) string {
	text = strings.TrimSpace(text)
	text = collapseSpaces(text)
	text = strings.Trim(text, trimSet)
	return text
}

// collapseSpaces replaces every run of two or more consecutive ASCII
// spaces with a single space. It does not touch other whitespace (tabs,
// newlines).
func collapseSpaces(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	runLen := 0
	for _, r := range text {
		if r == ' ' {
			runLen++
			if runLen == 1 {
				b.WriteRune(r)
			}
			continue
		}
		runLen = 0
		b.WriteRune(r)
	}
	return b.String()
}
