// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package empatica

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/OpenPSG/wearables/internal/fileio"
)

// WriteOption configures a WriteSession call.
type WriteOption func(*writeConfig)

type writeConfig struct {
	// suffix is appended to each file name to select a compression codec
	// (".gz", ".zst" or ".lz4"); empty writes plain csv.
	suffix string
}

// WithCompression compresses every written file with the codec selected
// by the given extension (".gz", ".zst" or ".lz4").
func WithCompression(ext string) WriteOption {
	return func(c *writeConfig) { c.suffix = ext }
}

// WriteSession writes the session's signals back to individual csv files
// in dir, formatted the same way as they were read. The directory is
// created if it does not exist; absent signals are skipped. Write
// failures propagate unchanged.
func (s *Session) WriteSession(dir string, opts ...WriteOption) error {
	var cfg writeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating session directory: %w", err)
	}

	for _, sig := range s.Signals() {
		path := filepath.Join(dir, sig.Name+".csv"+cfg.suffix)
		if err := writeSignal(path, sig); err != nil {
			return err
		}
	}
	if s.IBI != nil {
		if err := writeIBI(filepath.Join(dir, "IBI.csv"+cfg.suffix), s.IBI); err != nil {
			return err
		}
	}
	if s.Tags != nil {
		if err := writeTags(filepath.Join(dir, "tags.csv"+cfg.suffix), s.Tags); err != nil {
			return err
		}
	}

	return nil
}

// writeSignal writes a fixed-rate signal file: the start time and sample
// rate headers, each repeated once per column, followed by one row per
// sample.
func writeSignal(path string, s *SignalSeries) error {
	return writeFile(path, func(w *bufio.Writer) error {
		n := len(s.Columns)
		if _, err := w.WriteString(repeatField(formatEpoch(s.StartTime), n) + "\n"); err != nil {
			return err
		}
		if _, err := w.WriteString(repeatField(fmt.Sprintf("%.6f", s.SampleRate), n) + "\n"); err != nil {
			return err
		}
		for _, row := range s.Values {
			fields := make([]string, len(row))
			for i, v := range row {
				fields[i] = strconv.FormatFloat(v, 'f', -1, 64)
			}
			if _, err := w.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeIBI writes the inter-beat interval file: the start time header
// followed by (seconds since start, interval) rows.
func writeIBI(path string, s *IntervalSeries) error {
	return writeFile(path, func(w *bufio.Writer) error {
		if _, err := w.WriteString(formatEpoch(s.StartTime) + ", IBI\n"); err != nil {
			return err
		}
		for _, e := range s.Entries {
			offset := strconv.FormatFloat(e.Offset.Seconds(), 'f', -1, 64)
			value := strconv.FormatFloat(e.Value, 'f', -1, 64)
			if _, err := w.WriteString(offset + "," + value + "\n"); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeTags writes the tag instants as a flat epoch-second list.
func writeTags(path string, tags TagSeries) error {
	return writeFile(path, func(w *bufio.Writer) error {
		for _, tag := range tags {
			if _, err := w.WriteString(formatEpoch(tag) + "\n"); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeFile writes one file whole, through the compression codec implied
// by the path's extension.
func writeFile(path string, fill func(*bufio.Writer) error) error {
	f, err := fileio.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	if err := fill(w); err != nil {
		f.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", path, err)
	}
	return nil
}

// formatEpoch renders a timestamp as fractional epoch seconds with the
// six-decimal precision used by the device exports.
func formatEpoch(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000)
}

// repeatField repeats a header value once per column, comma separated.
func repeatField(field string, n int) string {
	fields := make([]string, n)
	for i := range fields {
		fields[i] = field
	}
	return strings.Join(fields, ", ")
}
