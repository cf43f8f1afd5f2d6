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
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/cockroachdb/utf8str"
	"github.com/cockroachdb/utf8str/utf8scan"
)

// Stats accumulates line statistics.
type Stats struct {
	Lines      int
	ASCIILines int
	BlankLines int
	Bytes      int
	CodePoints int

	// counts maps each distinct line to its number of occurrences. It is nil
	// when distinct counting is disabled.
	counts *utf8str.Map[int]
}

// Row is a distinct line and its number of occurrences.
type Row struct {
	Line  utf8str.View
	Count int
}

func newStats(distinct bool) *Stats {
	s := &Stats{}
	if distinct {
		s.counts = utf8str.New[int](0)
	}
	return s
}

// Add records one line. The line is copied if it is retained, so the caller
// may reuse its buffer.
func (s *Stats) Add(line []byte) {
	s.Lines++
	s.Bytes += len(line)
	s.CodePoints += utf8scan.CodePointCount(line)
	if utf8scan.IsASCII(line) {
		s.ASCIILines++
	}
	if utf8scan.IsEmptyOrWhiteSpace(line) {
		s.BlankLines++
	}
	if s.counts == nil {
		return
	}
	if p, added := s.counts.GetOrAddBytes(line, 1); !added {
		*p++
	}
}

// Distinct returns the number of distinct lines, or 0 if distinct counting
// is disabled.
func (s *Stats) Distinct() int {
	if s.counts == nil {
		return 0
	}
	return s.counts.Len()
}

// Top returns up to n distinct lines, most frequent first. Lines with equal
// counts are ordered by c.
func (s *Stats) Top(n int, c utf8scan.Collation) []Row {
	if n <= 0 || s.counts == nil {
		return nil
	}
	rows := make([]Row, 0, s.counts.Len())
	s.counts.All(func(line utf8str.View, count int) bool {
		rows = append(rows, Row{Line: line, Count: count})
		return true
	})
	slices.SortFunc(rows, func(a, b Row) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		if r := a.Line.CompareWith(b.Line, c); r != 0 {
			return r
		}
		// Keep the order total for collations that equate distinct lines.
		return utf8str.CompareOrdinal(a.Line, b.Line)
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// Report writes the totals, followed by the n most frequent lines, to w.
func (s *Stats) Report(w io.Writer, n int, c utf8scan.Collation) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "lines\t%d\n", s.Lines)
	fmt.Fprintf(tw, "ascii\t%d\n", s.ASCIILines)
	fmt.Fprintf(tw, "blank\t%d\n", s.BlankLines)
	fmt.Fprintf(tw, "bytes\t%d\n", s.Bytes)
	fmt.Fprintf(tw, "code points\t%d\n", s.CodePoints)
	if s.counts != nil {
		fmt.Fprintf(tw, "distinct\t%d\n", s.Distinct())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	rows := s.Top(n, c)
	if len(rows) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\ntop %d:\n", len(rows)); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%8d  %q\n", r.Count, r.Line); err != nil {
			return err
		}
	}
	return nil
}
