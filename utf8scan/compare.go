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

package utf8scan

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// A Collation orders two code points. Compare walks its inputs one code point
// at a time and asks the Collation for the order of the first pair that
// differs.
type Collation interface {
	// CompareCodePoints returns a negative number, zero, or a positive number
	// when x sorts before, the same as, or after y.
	CompareCodePoints(x, y rune) int
}

// Ordinal orders code points by their UTF-16 code units, so supplementary
// plane code points (encoded as surrogate pairs starting at 0xD800) sort
// before U+E000..U+FFFF.
var Ordinal Collation = ordinal{}

type ordinal struct{}

func (ordinal) CompareCodePoints(x, y rune) int {
	var xbuf, ybuf [2]uint16
	xu := encodeUTF16(&xbuf, x)
	yu := encodeUTF16(&ybuf, y)
	for i := 0; i < len(xu) && i < len(yu); i++ {
		if d := int(xu[i]) - int(yu[i]); d != 0 {
			return d
		}
	}
	return len(xu) - len(yu)
}

// encodeUTF16 writes the UTF-16 encoding of r into buf and returns the used
// prefix.
func encodeUTF16(buf *[2]uint16, r rune) []uint16 {
	const surrSelf = 0x10000
	if r < surrSelf || r > utf8.MaxRune {
		buf[0] = uint16(r)
		return buf[:1]
	}
	r -= surrSelf
	buf[0] = uint16(0xd800 + (r>>10)&0x3ff)
	buf[1] = uint16(0xdc00 + r&0x3ff)
	return buf[:2]
}

// Linguistic is a culture-aware Collation backed by the Unicode Collation
// Algorithm tables of golang.org/x/text/collate. A Linguistic is NOT
// goroutine-safe.
type Linguistic struct {
	c *collate.Collator
}

// NewLinguistic returns a Linguistic collation for the language tag t.
// language.Und selects the CLDR root collation.
func NewLinguistic(t language.Tag, opts ...collate.Option) *Linguistic {
	return &Linguistic{c: collate.New(t, opts...)}
}

// CompareCodePoints implements Collation.
func (l *Linguistic) CompareCodePoints(x, y rune) int {
	var xbuf, ybuf [utf8.UTFMax]byte
	xn := utf8.EncodeRune(xbuf[:], x)
	yn := utf8.EncodeRune(ybuf[:], y)
	return l.c.Compare(xbuf[:xn], ybuf[:yn])
}

// CompareOrdinal compares x and y byte by byte. For well-formed UTF-8 this is
// code point order.
func CompareOrdinal(x, y []byte) int {
	return bytes.Compare(x, y)
}

// Compare compares x and y one code point at a time under collation c. A nil
// c selects Ordinal. The result is the first non-zero comparison of a pair of
// code points; if one input is exhausted first the result is the difference
// of the remaining byte lengths, so a strict prefix sorts first.
//
// Compare never decodes more than one code point per input at a time and does
// not allocate. Malformed bytes are compared by byte value.
func Compare(x, y []byte, c Collation) int {
	if c == nil {
		c = Ordinal
	}
	_, isOrdinal := c.(ordinal)

	i, j := 0, 0
	for i < len(x) && j < len(y) {
		xb, yb := x[i], y[j]

		if xb < utf8.RuneSelf && yb < utf8.RuneSelf {
			if xb != yb {
				if isOrdinal {
					return int(xb) - int(yb)
				}
				if r := c.CompareCodePoints(rune(xb), rune(yb)); r != 0 {
					return r
				}
			}
			i++
			j++
			continue
		}

		xr, xn := decode(x[i:])
		yr, yn := decode(y[j:])
		if xn == 0 || yn == 0 {
			// At least one side is malformed at this position.
			if d := int(xb) - int(yb); d != 0 {
				return d
			}
			i, j = i+1, j+1
			continue
		}
		if xr != yr {
			if r := c.CompareCodePoints(xr, yr); r != 0 {
				return r
			}
		}
		i += xn
		j += yn
	}

	return (len(x) - i) - (len(y) - j)
}

// decode decodes the code point at the start of b. It returns a size of 0 for
// malformed input.
func decode(b []byte) (rune, int) {
	if b[0] < utf8.RuneSelf {
		return rune(b[0]), 1
	}
	r, n := utf8.DecodeRune(b)
	if r == utf8.RuneError && n <= 1 {
		return r, 0
	}
	return r, n
}
