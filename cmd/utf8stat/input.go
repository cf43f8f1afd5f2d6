// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
)

// maxLineSize bounds the length of a single input line.
const maxLineSize = 16 << 20

// openInput opens path for reading. "-" reads standard input, and files
// ending in .zst are decompressed.
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening zstd stream %s: %w", path, err)
	}
	return &zstdReadCloser{dec: dec, f: f}, nil
}

type zstdReadCloser struct {
	dec *zstd.Decoder
	f   *os.File
}

func (r *zstdReadCloser) Read(p []byte) (int, error) {
	return r.dec.Read(p)
}

func (r *zstdReadCloser) Close() error {
	r.dec.Close()
	return r.f.Close()
}

// addInput feeds every line of path to s.
func (s *Stats) addInput(path string) error {
	rc, err := openInput(path)
	if err != nil {
		return err
	}
	defer rc.Close()

	start := s.Lines
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	for sc.Scan() {
		s.Add(sc.Bytes())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	logrus.WithFields(logrus.Fields{
		"path":  path,
		"lines": s.Lines - start,
	}).Debug("read input")
	return nil
}
