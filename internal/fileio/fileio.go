// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package fileio provides one-shot file access with transparent
// compression, selected by file extension. Device exports are commonly
// distributed as gzip, zstd or lz4 compressed CSV files; callers read and
// write them through the same API as plain files.
package fileio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// compressedExts lists the recognized compression suffixes in probe order.
var compressedExts = []string{".gz", ".zst", ".lz4"}

// Open opens the named file for reading, decompressing on the fly if the
// extension indicates a compressed file.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch filepath.Ext(path) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("error opening gzip stream: %w", err)
		}
		return &wrappedReader{r: zr, closers: []io.Closer{zr, f}}, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("error opening zstd stream: %w", err)
		}
		rc := zr.IOReadCloser()
		return &wrappedReader{r: rc, closers: []io.Closer{rc, f}}, nil
	case ".lz4":
		return &wrappedReader{r: lz4.NewReader(f), closers: []io.Closer{f}}, nil
	default:
		return f, nil
	}
}

// Create creates or truncates the named file for writing, compressing on
// the fly if the extension indicates a compressed file.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	switch filepath.Ext(path) {
	case ".gz":
		zw := gzip.NewWriter(f)
		return &wrappedWriter{w: zw, closers: []io.Closer{zw, f}}, nil
	case ".zst":
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("error opening zstd stream: %w", err)
		}
		return &wrappedWriter{w: zw, closers: []io.Closer{zw, f}}, nil
	case ".lz4":
		zw := lz4.NewWriter(f)
		return &wrappedWriter{w: zw, closers: []io.Closer{zw, f}}, nil
	default:
		return f, nil
	}
}

// FindVariant returns the path of the first existing variant of the named
// file, probing the plain name first and then each recognized compression
// suffix. It returns the empty string if no variant exists.
func FindVariant(path string) string {
	if fileExists(path) {
		return path
	}
	for _, ext := range compressedExts {
		if candidate := path + ext; fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

type wrappedReader struct {
	r       io.Reader
	closers []io.Closer
}

func (w *wrappedReader) Read(p []byte) (int, error) { return w.r.Read(p) }

func (w *wrappedReader) Close() error {
	var firstErr error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type wrappedWriter struct {
	w       io.Writer
	closers []io.Closer
}

func (w *wrappedWriter) Write(p []byte) (int, error) { return w.w.Write(p) }

func (w *wrappedWriter) Close() error {
	var firstErr error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
