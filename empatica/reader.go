// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package empatica reads, joins, timeshifts and writes session data
// exported by the Empatica E4 wristband: blood volume pulse, electrodermal
// activity, heart rate, inter-beat intervals, 3-axis acceleration and skin
// temperature.
package empatica

import (
	"bufio"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/OpenPSG/wearables/internal/fileio"
)

// Option configures a ReadSession call.
type Option func(*readConfig)

type readConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report absent or empty signal files.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *readConfig) { c.logger = l }
}

// ReadSession parses the csv files of an E4 session directory. The files
// are expected to be named ACC.csv, BVP.csv, EDA.csv, HR.csv, TEMP.csv,
// IBI.csv and, if present, tags.csv; compressed variants (.gz, .zst,
// .lz4) of each are picked up transparently.
//
// A missing or empty signal file yields a nil series and a log line, not
// an error: downstream consumers must tolerate any subset of signals. A
// malformed header is a fatal parse error for the whole session.
func ReadSession(dir string, opts ...Option) (*Session, error) {
	cfg := readConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Session{}

	var err error
	if s.ACC, err = readSignal(dir, "ACC", []string{"X", "Y", "Z"}, cfg.logger); err != nil {
		return nil, err
	}
	if s.BVP, err = readSignal(dir, "BVP", nil, cfg.logger); err != nil {
		return nil, err
	}
	if s.EDA, err = readSignal(dir, "EDA", nil, cfg.logger); err != nil {
		return nil, err
	}
	if s.HR, err = readSignal(dir, "HR", nil, cfg.logger); err != nil {
		return nil, err
	}
	if s.TEMP, err = readSignal(dir, "TEMP", nil, cfg.logger); err != nil {
		return nil, err
	}
	if s.IBI, err = readIBI(dir, cfg.logger); err != nil {
		return nil, err
	}
	if s.Tags, err = readTags(dir, cfg.logger); err != nil {
		return nil, err
	}

	s.Data = Join(s.Signals()...)

	return s, nil
}

// readSignal parses one fixed-rate signal file: start time and sample
// rate headers followed by one row per sample. cols is nil for
// single-column signals.
func readSignal(dir, name string, cols []string, logger *slog.Logger) (*SignalSeries, error) {
	path := fileio.FindVariant(filepath.Join(dir, name+".csv"))
	if path == "" {
		logger.Info("not reading signal because the file does not exist", "signal", name, "dir", dir)
		return nil, nil
	}

	f, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		logger.Info("not reading signal because the file is empty", "signal", name, "path", path)
		return nil, scanner.Err()
	}
	startTime, err := parseEpoch(firstField(scanner.Text()))
	if err != nil {
		return nil, fmt.Errorf("%s: error parsing start time: %w", path, err)
	}

	if !scanner.Scan() {
		return nil, fmt.Errorf("%s: missing sample rate header", path)
	}
	rate, err := strconv.ParseFloat(firstField(scanner.Text()), 64)
	if err != nil {
		return nil, fmt.Errorf("%s: error parsing sample rate: %w", path, err)
	}

	if cols == nil {
		cols = []string{name}
	}

	series := &SignalSeries{
		Name:       name,
		StartTime:  startTime,
		SampleRate: rate,
		Columns:    cols,
	}

	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ",")
		if len(fields) != len(cols) {
			return nil, fmt.Errorf("%s: expected %d columns, got %d", path, len(cols), len(fields))
		}
		row := make([]float64, len(fields))
		for i, field := range fields {
			row[i], err = strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("%s: error parsing sample: %w", path, err)
			}
		}
		series.Values = append(series.Values, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}

	return series, nil
}

// readIBI parses the inter-beat interval file: a start time header
// followed by rows of (seconds since start, interval duration).
func readIBI(dir string, logger *slog.Logger) (*IntervalSeries, error) {
	path := fileio.FindVariant(filepath.Join(dir, "IBI.csv"))
	if path == "" {
		logger.Info("not reading signal because the file does not exist", "signal", "IBI", "dir", dir)
		return nil, nil
	}

	f, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	if !scanner.Scan() {
		logger.Info("not reading signal because the file is empty", "signal", "IBI", "path", path)
		return nil, scanner.Err()
	}
	startTime, err := parseEpoch(firstField(scanner.Text()))
	if err != nil {
		return nil, fmt.Errorf("%s: error parsing start time: %w", path, err)
	}

	series := &IntervalSeries{StartTime: startTime}

	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ",")
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s: expected 2 columns, got %d", path, len(fields))
		}
		offset, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: error parsing offset: %w", path, err)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: error parsing interval: %w", path, err)
		}
		series.Entries = append(series.Entries, IntervalEntry{
			Offset: secondsToDuration(offset),
			Value:  value,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}

	return series, nil
}

// readTags parses the optional tags file, a flat list of epoch-second
// event instants with no header.
func readTags(dir string, logger *slog.Logger) (TagSeries, error) {
	path := fileio.FindVariant(filepath.Join(dir, "tags.csv"))
	if path == "" {
		logger.Info("not reading tags because the file does not exist", "dir", dir)
		return nil, nil
	}

	f, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer f.Close()

	var tags TagSeries
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		instant, err := parseEpoch(line)
		if err != nil {
			return nil, fmt.Errorf("%s: error parsing tag: %w", path, err)
		}
		tags = append(tags, instant)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}

	if len(tags) == 0 {
		logger.Info("not reading tags because the file is empty", "path", path)
		return nil, nil
	}

	return tags, nil
}

// firstField returns the first comma-separated field of a header line.
// Multi-column signal files repeat the header value once per column.
func firstField(line string) string {
	if i := strings.IndexByte(line, ','); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// parseEpoch parses a fractional epoch-seconds string. The integer part
// is kept exact; only the fraction goes through floating point.
func parseEpoch(s string) (time.Time, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, err
	}
	sec := math.Floor(f)
	nsec := math.Round((f - sec) * 1e9)
	return time.Unix(int64(sec), int64(nsec)).UTC(), nil
}

// secondsToDuration converts fractional seconds to a Duration, rounded to
// the nearest nanosecond.
func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
