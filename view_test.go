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

package utf8str

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"unicode/utf16"

	"github.com/cockroachdb/utf8str/utf8scan"
	"github.com/stretchr/testify/require"
)

var viewStrings = []string{
	"",
	"a",
	"abc",
	"αβγ",
	"あいう",
	"\U00029e3d",
	"aα\U00029e3dあ",
	"\U0001F469\U0001F3FD\u200d\U0001F692",
	"hello, world",
}

func TestViewConstructors(t *testing.T) {
	for _, s := range viewStrings {
		t.Run(fmt.Sprintf("%q", s), func(t *testing.T) {
			views := []View{
				FromString(s),
				FromBytes([]byte(s)),
				Wrap([]byte(s)),
				UnsafeString(s),
				FromUTF16(utf16.Encode([]rune(s))),
			}
			for _, v := range views {
				require.Equal(t, len(s), v.Len())
				require.Equal(t, len(s) == 0, v.IsEmpty())
				require.Equal(t, s, v.String())
				require.True(t, v.Equal(views[0]))
				require.Equal(t, views[0].Hash(), v.Hash())
				require.Equal(t, 0, CompareOrdinal(v, views[0]))
				require.Equal(t, 0, v.Compare(views[0]))
			}
		})
	}
}

func TestViewEmpty(t *testing.T) {
	for _, v := range []View{
		Empty, {}, FromString(""), FromBytes(nil), FromBytes([]byte{}),
		Wrap(nil), UnsafeString(""), FromUTF16(nil),
	} {
		require.True(t, v.IsEmpty())
		require.True(t, v.Equal(Empty))
		require.Equal(t, Empty.Hash(), v.Hash())
		require.False(t, v.IsASCII())
		require.True(t, v.IsEmptyOrWhiteSpace())
		require.Equal(t, 0, v.CodePointCount())
		_, err := v.FirstCodePointLen()
		require.True(t, errors.Is(err, utf8scan.ErrEmpty))
	}
}

func TestViewOwnership(t *testing.T) {
	b := []byte("abc")
	copied := FromBytes(b)
	wrapped := Wrap(b)
	b[0] = 'x'
	require.Equal(t, "abc", copied.String())
	require.Equal(t, "xbc", wrapped.String())

	// ByteSlice returns a copy, Bytes does not.
	s := copied.ByteSlice()
	s[0] = 'y'
	require.Equal(t, "abc", copied.String())
	require.Equal(t, byte('a'), copied.At(0))
	require.Equal(t, []byte("abc"), copied.Bytes())
}

func TestViewCopyTo(t *testing.T) {
	v := FromString("あb")
	dst := make([]byte, 3)
	n, err := v.CopyTo(dst)
	require.Equal(t, io.ErrShortBuffer, err)
	require.Equal(t, 0, n)
	require.Equal(t, []byte{0, 0, 0}, dst)

	dst = make([]byte, 8)
	n, err = v.CopyTo(dst)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "あb", string(dst[:n]))
}

func TestViewDecodeUTF16(t *testing.T) {
	for _, s := range viewStrings {
		t.Run(fmt.Sprintf("%q", s), func(t *testing.T) {
			v := FromString(s)
			expected := utf16.Encode([]rune(s))
			require.Equal(t, len(expected), v.UTF16Len())

			dst := make([]uint16, len(expected))
			n, ok := v.DecodeUTF16(dst)
			require.True(t, ok)
			require.Equal(t, len(expected), n)
			require.Equal(t, expected, dst[:n])

			if len(expected) > 0 {
				short := make([]uint16, len(expected)-1)
				n, ok = v.DecodeUTF16(short)
				require.False(t, ok)
				require.Equal(t, 0, n)
				require.Equal(t, make([]uint16, len(short)), short)
			}
		})
	}
}

func TestViewDecodeUTF16Malformed(t *testing.T) {
	// Each byte of a truncated sequence decodes to its own U+FFFD.
	v := Wrap([]byte("a\xffb\xe3\x80"))
	require.Equal(t, 5, v.UTF16Len())
	dst := make([]uint16, 5)
	n, ok := v.DecodeUTF16(dst)
	require.True(t, ok)
	require.Equal(t, 5, n)
	require.Equal(t, []uint16{'a', 0xfffd, 'b', 0xfffd, 0xfffd}, dst)
}

func TestFromUTF16Surrogates(t *testing.T) {
	testCases := []struct {
		input    []uint16
		expected string
	}{
		{[]uint16{0xd83d, 0xde00}, "\U0001F600"},
		{[]uint16{0xd83d}, "\ufffd"},
		{[]uint16{0xde00}, "\ufffd"},
		{[]uint16{0xde00, 0xd83d}, "\ufffd\ufffd"},
		{[]uint16{'a', 0xd83d, 'b'}, "a\ufffdb"},
		{[]uint16{0x7ff, 0x800, 0xffff}, "\u07ff\u0800\uffff"},
	}
	for _, c := range testCases {
		t.Run("", func(t *testing.T) {
			v := FromUTF16(c.input)
			require.Equal(t, c.expected, v.String())
			require.Equal(t, len(c.expected), utf16ByteLen(c.input))
		})
	}
}

func TestViewScanners(t *testing.T) {
	testCases := []struct {
		s          string
		ascii      bool
		codePoints int
		whiteSpace bool
	}{
		{"", false, 0, true},
		{"abc", true, 3, false},
		{" \t\n", true, 3, true},
		{"aα\U00029e3dあ", false, 4, false},
		{"\u3000\u00a0", false, 2, true},
	}
	for _, c := range testCases {
		t.Run(fmt.Sprintf("%q", c.s), func(t *testing.T) {
			v := FromString(c.s)
			require.Equal(t, c.ascii, v.IsASCII())
			require.Equal(t, c.codePoints, v.CodePointCount())
			require.Equal(t, c.whiteSpace, v.IsEmptyOrWhiteSpace())
		})
	}
}

func TestViewFirstCodePointLen(t *testing.T) {
	n, err := FromString("あa").FirstCodePointLen()
	require.NoError(t, err)
	require.Equal(t, 3, n)

	_, err = Wrap([]byte{0x80}).FirstCodePointLen()
	require.True(t, errors.Is(err, utf8scan.ErrInvalidUTF8))
}

func TestViewCompare(t *testing.T) {
	testCases := []struct {
		x, y string
	}{
		{"", "a"},
		{"a", "b"},
		{"a", "A"},
		{"!", "0"},
		{"0", "a"},
		{"a", "α"},
		{"α", "あ"},
		{"あ", "\U00029e3d"},
		{"abc", "abd"},
	}
	for _, c := range testCases {
		t.Run(fmt.Sprintf("%q<%q", c.x, c.y), func(t *testing.T) {
			x, y := FromString(c.x), FromString(c.y)
			require.Less(t, x.Compare(y), 0)
			require.Greater(t, y.Compare(x), 0)
			require.Less(t, Compare(x, y), 0)
			require.Equal(t, 0, x.Compare(x))
		})
	}

	// Ordinal orders by bytes, so uppercase sorts first.
	a, A := FromString("a"), FromString("A")
	require.Greater(t, CompareOrdinal(a, A), 0)
	require.Greater(t, a.CompareWith(A, utf8scan.Ordinal), 0)
}

func TestViewCompareConcurrent(t *testing.T) {
	x, y := FromString("あい"), FromString("あう")
	var wg sync.WaitGroup
	var misordered atomic.Int64
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if x.Compare(y) >= 0 || y.Compare(x) <= 0 {
					misordered.Add(1)
				}
			}
		}()
	}
	wg.Wait()
	require.Zero(t, misordered.Load())
}
