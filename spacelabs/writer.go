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

// WriteFile writes the session back in the device's file layout: the
// 51-line header block (subject, base date, "Unknown Line" marker,
// valid-measurement count at their fixed non-blank positions), the
// measurement rows with two-digit hour and minute columns, and the
// single-line XML metadata block. Absent cells and error flags use the
// same sentinel encoding the device emits, so a written file reads back
// to an identical session. Write failures propagate unchanged.
func (s *Session) WriteFile(path string) error {
	if len(s.Data) == 0 {
		return fmt.Errorf("cannot write %s: session has no measurement rows", path)
	}
	if s.Metadata == nil {
		return fmt.Errorf("cannot write %s: session has no metadata block", path)
	}

	f, err := fileio.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	writeHeader(w, s)
	for _, m := range s.Data {
		writeRow(w, m)
	}
	w.WriteString(s.Metadata.Encode())

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", path, err)
	}
	return nil
}

// writeHeader lays out the fixed 51-line header block; data rows start on
// raw line 52.
func writeHeader(w *bufio.Writer, s *Session) {
	w.WriteString("\n" + s.Subject)
	w.WriteString(strings.Repeat("\n", 8))
	w.WriteString("0")
	w.WriteString(strings.Repeat("\n", 8))
	w.WriteString(s.Data[0].Date.Format("02.01.2006"))
	w.WriteString(strings.Repeat("\n", 7))
	w.WriteString(unknownLineMarker)
	w.WriteString(strings.Repeat("\n", 26))
	w.WriteString(s.ValidMeasurements + "\n")
}

func writeRow(w *bufio.Writer, m Measurement) {
	hour := int(m.TimeOfDay / time.Hour)
	minute := int(m.TimeOfDay % time.Hour / time.Minute)

	fields := []string{
		fmt.Sprintf("%02d", hour),
		fmt.Sprintf("%02d", minute),
		formatCell(m.Systolic),
		formatCell(m.Diastolic),
		formatCell(m.X),
		formatCell(m.Y),
		formatErrorCode(m.Error),
		formatCell(m.Z),
	}
	w.WriteString(strings.Join(fields, ",") + "\n")
}

// formatCell encodes an absent value as the empty-quoted sentinel.
func formatCell(v NullInt) string {
	if !v.Valid {
		return `""`
	}
	return strconv.Itoa(v.Int)
}

// formatErrorCode encodes error flags as quoted sentinel codes.
func formatErrorCode(code ErrorCode) string {
	if code == ErrorNone {
		return `""`
	}
	return `"` + string(code) + `"`
}
