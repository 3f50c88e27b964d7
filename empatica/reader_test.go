// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package empatica_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OpenPSG/wearables/empatica"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSession(t *testing.T) {
	s, err := empatica.ReadSession("testdata/session")
	require.NoError(t, err)

	start := time.Unix(1551453301, 0).UTC()

	require.NotNil(t, s.ACC)
	assert.Equal(t, start, s.ACC.StartTime)
	assert.Equal(t, 32.0, s.ACC.SampleRate)
	assert.Equal(t, []string{"X", "Y", "Z"}, s.ACC.Columns)
	require.Equal(t, 4, s.ACC.Len())
	assert.Equal(t, []float64{-0.015625, 0.8125, 0.4375}, s.ACC.Values[0])

	require.NotNil(t, s.BVP)
	assert.Equal(t, 64.0, s.BVP.SampleRate)
	require.Equal(t, 6, s.BVP.Len())
	assert.Equal(t, []float64{-0.62}, s.BVP.Values[0])

	require.NotNil(t, s.HR)
	assert.Equal(t, start.Add(10*time.Second), s.HR.StartTime)

	require.NotNil(t, s.IBI)
	assert.Equal(t, start, s.IBI.StartTime)
	require.Len(t, s.IBI.Entries, 3)
	assert.Equal(t, 463379*time.Microsecond, s.IBI.Entries[0].Offset)
	assert.Equal(t, 0.463379, s.IBI.Entries[0].Value)
	assert.Equal(t, start.Add(463379*time.Microsecond), s.IBI.TimeAt(0))

	require.Len(t, s.Tags, 2)
	assert.Equal(t, time.Unix(1551453333, 0).UTC(), s.Tags[0])

	require.NotNil(t, s.Data)
	assert.Equal(t, []string{"ACC_X", "ACC_Y", "ACC_Z", "BVP", "EDA", "HR", "TEMP"}, s.Data.Columns)
}

func TestSignalTimestamps(t *testing.T) {
	s := &empatica.SignalSeries{
		Name:       "EDA",
		StartTime:  time.Unix(1_000_000, 0).UTC(),
		SampleRate: 4,
		Columns:    []string{"EDA"},
		Values:     make([][]float64, 8),
	}

	ts := s.Timestamps()
	require.Len(t, ts, 8)
	for k, want := range []float64{0, 0.25, 0.5, 0.75, 1.0, 1.25, 1.5, 1.75} {
		assert.Equal(t, time.Unix(1_000_000, 0).UTC().Add(time.Duration(want*float64(time.Second))), ts[k], "sample %d", k)
	}
}

func TestReadSessionMissingSignals(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BVP.csv"),
		[]byte("1551453301.000000\n64.000000\n0.5\n1.5\n"), 0o644))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	s, err := empatica.ReadSession(dir, empatica.WithLogger(logger))
	require.NoError(t, err)

	require.NotNil(t, s.BVP)
	assert.Nil(t, s.ACC)
	assert.Nil(t, s.EDA)
	assert.Nil(t, s.HR)
	assert.Nil(t, s.TEMP)
	assert.Nil(t, s.IBI)
	assert.Nil(t, s.Tags)

	// The rest of the pipeline proceeds with what exists.
	require.NotNil(t, s.Data)
	assert.Equal(t, []string{"BVP"}, s.Data.Columns)

	// Absent files are logged, not raised.
	assert.Contains(t, buf.String(), "does not exist")
}

func TestReadSessionEmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "EDA.csv"), nil, 0o644))

	s, err := empatica.ReadSession(dir)
	require.NoError(t, err)
	assert.Nil(t, s.EDA)
}

func TestReadSessionMalformedHeader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "HR.csv"),
		[]byte("not-a-number\n1.000000\n90.0\n"), 0o644))

	_, err := empatica.ReadSession(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start time")
}

func TestReadSessionCompressedVariant(t *testing.T) {
	plain, err := empatica.ReadSession("testdata/session")
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, plain.WriteSession(dir, empatica.WithCompression(".gz")))

	// No plain csv files were written.
	_, statErr := os.Stat(filepath.Join(dir, "BVP.csv"))
	require.True(t, os.IsNotExist(statErr))

	reread, err := empatica.ReadSession(dir)
	require.NoError(t, err)
	assert.Equal(t, plain.BVP, reread.BVP)
	assert.Equal(t, plain.ACC, reread.ACC)
	assert.Equal(t, plain.IBI, reread.IBI)
	assert.Equal(t, plain.Tags, reread.Tags)
}
