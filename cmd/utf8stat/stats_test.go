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
	"bytes"
	"strings"
	"testing"

	"github.com/cockroachdb/utf8str/utf8scan"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func addLines(s *Stats, lines ...string) {
	buf := make([]byte, 0, 64)
	for _, l := range lines {
		// Reuse one buffer, as bufio.Scanner does.
		buf = append(buf[:0], l...)
		s.Add(buf)
	}
}

func rowStrings(rows []Row) []string {
	var r []string
	for _, row := range rows {
		r = append(r, row.Line.String())
	}
	return r
}

func TestStatsAdd(t *testing.T) {
	s := newStats(true)
	addLines(s, "abc", "", "  ", "αβ", "abc", "\u3000", "abc", "αβ")

	require.Equal(t, 8, s.Lines)
	require.Equal(t, 4, s.ASCIILines) // "abc" x3 and "  ", not ""
	require.Equal(t, 3, s.BlankLines)
	require.Equal(t, 3*3+2+2*4+3, s.Bytes)
	require.Equal(t, 3*3+2+2*2+1, s.CodePoints)
	require.Equal(t, 5, s.Distinct())

	p := s.counts.PtrBytes([]byte("abc"))
	require.NotNil(t, p)
	require.Equal(t, 3, *p)
}

func TestStatsTop(t *testing.T) {
	s := newStats(true)
	addLines(s, "b", "B", "a", "b", "A", "c", "c", "b")

	rows := s.Top(10, utf8scan.Ordinal)
	require.Equal(t, []string{"b", "c", "A", "B", "a"}, rowStrings(rows))
	require.Equal(t, []int{3, 2, 1, 1, 1}, []int{rows[0].Count, rows[1].Count, rows[2].Count, rows[3].Count, rows[4].Count})

	// The root collation puts lowercase first.
	rows = s.Top(10, utf8scan.NewLinguistic(language.Und))
	require.Equal(t, []string{"b", "c", "a", "A", "B"}, rowStrings(rows))

	require.Len(t, s.Top(2, utf8scan.Ordinal), 2)
	require.Nil(t, s.Top(0, utf8scan.Ordinal))
}

func TestStatsNoDistinct(t *testing.T) {
	s := newStats(false)
	addLines(s, "a", "a")
	require.Equal(t, 2, s.Lines)
	require.Equal(t, 0, s.Distinct())
	require.Nil(t, s.Top(5, utf8scan.Ordinal))

	var buf bytes.Buffer
	require.NoError(t, s.Report(&buf, 5, utf8scan.Ordinal))
	require.NotContains(t, buf.String(), "distinct")
	require.NotContains(t, buf.String(), "top")
}

func TestStatsReport(t *testing.T) {
	s := newStats(true)
	addLines(s, "x", "y", "x", "")

	var buf bytes.Buffer
	require.NoError(t, s.Report(&buf, 2, utf8scan.Ordinal))
	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, []string{
		"lines        4",
		"ascii        3",
		"blank        1",
		"bytes        3",
		"code points  3",
		"distinct     3",
		"",
		"top 2:",
		`       2  "x"`,
		`       1  ""`,
	}, lines)
}
