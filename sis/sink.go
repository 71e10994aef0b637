// SPDX-License-Identifier: MIT
// Package: ssis/sis
//
// sink.go — tab-separated snapshot output and sink fan-out.

package sis

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// TSVHeader is the header row written by TSVSink.
const TSVHeader = "model\ttime\ti\n"

// TSVSink writes snapshots as "label\tT\tfraction" rows (3 and 5 decimals)
// below a single header row, written lazily before the first row. It is
// safe for concurrent use.
type TSVSink struct {
	mu     sync.Mutex
	w      io.Writer
	header bool
}

// NewTSVSink returns a TSVSink writing to w.
func NewTSVSink(w io.Writer) *TSVSink {
	return &TSVSink{w: w}
}

// WriteSnapshot implements Sink.
func (s *TSVSink) WriteSnapshot(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.header {
		if _, err := io.WriteString(s.w, TSVHeader); err != nil {
			return err
		}
		s.header = true
	}
	_, err := fmt.Fprintf(s.w, "%s\t%.3f\t%.5f\n", snap.Label, snap.T, snap.Fraction)

	return err
}

// MultiSink fans every snapshot out to all sinks in order, joining errors.
func MultiSink(sinks ...Sink) Sink {
	return SinkFunc(func(snap Snapshot) error {
		var errs []error
		for _, s := range sinks {
			if s == nil {
				continue
			}
			if err := s.WriteSnapshot(snap); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
