// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package spacelabs

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/OpenPSG/wearables/internal/fileio"
)

// The literal marker some device firmwares insert before the
// valid-measurement count, moving it down one header row.
const unknownLineMarker = "Unknown Line"

// Data rows start at this fixed raw line of the file (1-based line 52).
const dataStartLine = 51

// ReadFile parses an abp file produced by the Spacelabs 90217.
//
// The header is read by non-blank position: the first non-blank row is
// the subject id, the third the base date (dd.mm.yyyy) and the fifth the
// valid-measurement count, unless the fifth is the "Unknown Line" marker,
// in which case the count is on the sixth. Measurement rows follow from
// raw line 52, and the last line holds the XML metadata block.
//
// Dates are reconstructed from the base date with the midnight-rollover
// rule: whenever a row's time of day is strictly less than the previous
// row's, the date advances by one day. This is a single forward pass; a
// spuriously out-of-order row shifts every following date, which mirrors
// the device's own semantics and is not validated further.
func ReadFile(path string) (*Session, error) {
	f, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}

	s := &Session{}

	// Header fields, located by non-blank position.
	var header []string
	for _, line := range lines {
		if len(header) == 6 {
			break
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			header = append(header, trimmed)
		}
	}
	if len(header) < 5 {
		return nil, fmt.Errorf("%s: incomplete header, %d non-blank rows", path, len(header))
	}
	s.Subject = header[0]

	baseDate, err := time.Parse("02.01.2006", header[2])
	if err != nil {
		return nil, fmt.Errorf("%s: error parsing base date: %w", path, err)
	}

	if header[4] != unknownLineMarker {
		s.ValidMeasurements = header[4]
	} else {
		if len(header) < 6 {
			return nil, fmt.Errorf("%s: missing valid-measurement count", path)
		}
		s.ValidMeasurements = header[5]
	}

	if len(lines) <= dataStartLine {
		return nil, fmt.Errorf("%s: no measurement rows", path)
	}

	// The last non-blank line is the metadata block; everything between
	// the header block and it is measurement rows.
	metaIdx := len(lines) - 1
	for metaIdx > dataStartLine && strings.TrimSpace(lines[metaIdx]) == "" {
		metaIdx--
	}
	s.Metadata, err = ParseMetadata(lines[metaIdx])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	date := time.Date(baseDate.Year(), baseDate.Month(), baseDate.Day(), 0, 0, 0, 0, time.UTC)
	var prevTimeOfDay time.Duration

	for i, line := range lines[dataStartLine:metaIdx] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		m, err := parseRow(line)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", path, i+1, err)
		}

		if len(s.Data) > 0 && m.TimeOfDay < prevTimeOfDay {
			date = date.AddDate(0, 0, 1)
		}
		prevTimeOfDay = m.TimeOfDay

		m.Date = date
		m.Timestamp = date.Add(m.TimeOfDay)
		s.Data = append(s.Data, m)
	}

	return s, nil
}

// parseRow parses one measurement row:
// hour, minute, SYS(mmHg), DIA(mmHg), x, y, error, z.
func parseRow(line string) (Measurement, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 8 {
		return Measurement{}, fmt.Errorf("expected 8 columns, got %d", len(fields))
	}

	hour, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return Measurement{}, fmt.Errorf("error parsing hour: %w", err)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return Measurement{}, fmt.Errorf("error parsing minute: %w", err)
	}

	m := Measurement{
		TimeOfDay: time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute,
	}

	if m.Systolic, err = parseCell(fields[2]); err != nil {
		return Measurement{}, fmt.Errorf("error parsing systolic: %w", err)
	}
	if m.Diastolic, err = parseCell(fields[3]); err != nil {
		return Measurement{}, fmt.Errorf("error parsing diastolic: %w", err)
	}
	if m.X, err = parseCell(fields[4]); err != nil {
		return Measurement{}, fmt.Errorf("error parsing x: %w", err)
	}
	if m.Y, err = parseCell(fields[5]); err != nil {
		return Measurement{}, fmt.Errorf("error parsing y: %w", err)
	}
	if m.Error, err = parseErrorCode(fields[6]); err != nil {
		return Measurement{}, err
	}
	if m.Z, err = parseCell(fields[7]); err != nil {
		return Measurement{}, fmt.Errorf("error parsing z: %w", err)
	}

	return m, nil
}

// parseCell decodes a numeric cell; the empty-quoted sentinel means the
// value is absent.
func parseCell(field string) (NullInt, error) {
	field = unquote(field)
	if field == "" {
		return NullInt{}, nil
	}
	v, err := strconv.Atoi(field)
	if err != nil {
		return NullInt{}, err
	}
	return Int(v), nil
}

func parseErrorCode(field string) (ErrorCode, error) {
	switch code := ErrorCode(unquote(field)); code {
	case ErrorNone, ErrorEB, ErrorAB:
		return code, nil
	default:
		return ErrorNone, fmt.Errorf("unknown error code %q", code)
	}
}

func unquote(field string) string {
	return strings.Trim(strings.TrimSpace(field), `"`)
}
