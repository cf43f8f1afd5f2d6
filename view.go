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
	"bytes"
	"io"
	"sync"
	"unicode/utf16"
	"unicode/utf8"
	"unsafe"

	"github.com/cockroachdb/utf8str/utf8scan"
	"golang.org/x/text/language"
)

// View is an immutable sequence of UTF-8 encoded bytes. Equality, hashing and
// ordinal comparison are defined over the bytes only, so two views holding the
// same bytes are interchangeable however they were constructed.
//
// The zero View is Empty. Views are small values meant to be passed by value.
// The bytes are not validated: a View may hold malformed UTF-8, in which case
// the scanning methods give best-effort answers.
type View struct {
	b []byte
}

// Empty is the View of length 0. Every constructor returns Empty for empty
// input.
var Empty = View{}

// FromString returns a View holding a copy of the bytes of s.
func FromString(s string) View {
	if len(s) == 0 {
		return Empty
	}
	return View{b: []byte(s)}
}

// FromBytes returns a View holding a copy of b.
func FromBytes(b []byte) View {
	if len(b) == 0 {
		return Empty
	}
	return View{b: bytes.Clone(b)}
}

// FromUTF16 returns a View holding the UTF-8 encoding of the UTF-16 code
// units u. Unpaired surrogates are encoded as U+FFFD.
func FromUTF16(u []uint16) View {
	if len(u) == 0 {
		return Empty
	}
	return View{b: appendUTF16(make([]byte, 0, utf16ByteLen(u)), u)}
}

// Wrap returns a View aliasing b without copying it. The caller transfers
// ownership of b and must not modify it afterwards.
func Wrap(b []byte) View {
	if len(b) == 0 {
		return Empty
	}
	return View{b: b}
}

// UnsafeString returns a View aliasing the bytes of s without copying them.
// Go strings are immutable, so this is only unsafe if s itself was built with
// unsafe from a buffer that is later modified.
func UnsafeString(s string) View {
	if len(s) == 0 {
		return Empty
	}
	return View{b: unsafe.Slice(unsafe.StringData(s), len(s))}
}

// Len returns the number of bytes in v.
func (v View) Len() int {
	return len(v.b)
}

// IsEmpty returns true if v has no bytes.
func (v View) IsEmpty() bool {
	return len(v.b) == 0
}

// Bytes returns the bytes of v without copying. The returned slice must not
// be modified.
func (v View) Bytes() []byte {
	return v.b
}

// ByteSlice returns a copy of the bytes of v.
func (v View) ByteSlice() []byte {
	return bytes.Clone(v.b)
}

// At returns the byte at index i. It panics if i is out of range.
func (v View) At(i int) byte {
	return v.b[i]
}

// String returns v as a Go string (a copy).
func (v View) String() string {
	return string(v.b)
}

// CopyTo copies the bytes of v into dst, returning the number of bytes
// copied. It returns io.ErrShortBuffer, and copies nothing, if dst is shorter
// than v.
func (v View) CopyTo(dst []byte) (int, error) {
	if len(dst) < len(v.b) {
		return 0, io.ErrShortBuffer
	}
	return copy(dst, v.b), nil
}

// UTF16Len returns the number of UTF-16 code units needed to hold v. Each
// malformed byte counts as one U+FFFD.
func (v View) UTF16Len() int {
	var n int
	for i := 0; i < len(v.b); {
		if v.b[i] < utf8.RuneSelf {
			n++
			i++
			continue
		}
		r, size := utf8.DecodeRune(v.b[i:])
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
		i += size
	}
	return n
}

// DecodeUTF16 decodes v into dst as UTF-16 code units and returns the number
// of code units written. If dst is too small nothing is written and ok is
// false.
func (v View) DecodeUTF16(dst []uint16) (n int, ok bool) {
	if v.UTF16Len() > len(dst) {
		return 0, false
	}
	for i := 0; i < len(v.b); {
		if c := v.b[i]; c < utf8.RuneSelf {
			dst[n] = uint16(c)
			n++
			i++
			continue
		}
		r, size := utf8.DecodeRune(v.b[i:])
		if r >= 0x10000 {
			r1, r2 := utf16.EncodeRune(r)
			dst[n], dst[n+1] = uint16(r1), uint16(r2)
			n += 2
		} else {
			dst[n] = uint16(r)
			n++
		}
		i += size
	}
	return n, true
}

// Equal returns true if v and o hold the same bytes.
func (v View) Equal(o View) bool {
	return utf8scan.Equal(v.b, o.b)
}

// Hash returns a deterministic hash of the bytes of v. Views for which Equal
// returns true have the same Hash.
func (v View) Hash() uint64 {
	return utf8scan.Hash(v.b)
}

// IsASCII returns true if v is non-empty and consists only of ASCII bytes.
func (v View) IsASCII() bool {
	return utf8scan.IsASCII(v.b)
}

// CodePointCount returns the number of code points encoded in v.
func (v View) CodePointCount() int {
	return utf8scan.CodePointCount(v.b)
}

// IsEmptyOrWhiteSpace returns true if v is empty or all whitespace.
func (v View) IsEmptyOrWhiteSpace() bool {
	return utf8scan.IsEmptyOrWhiteSpace(v.b)
}

// FirstCodePointLen returns the length in bytes of the first code point of
// v. It fails with utf8scan.ErrEmpty or utf8scan.ErrInvalidUTF8.
func (v View) FirstCodePointLen() (int, error) {
	return utf8scan.FirstSequenceLength(v.b)
}

// linguisticPool holds root locale collators for View.Compare. A collator
// keeps scratch buffers and cannot be shared between goroutines.
var linguisticPool = sync.Pool{
	New: func() any {
		return utf8scan.NewLinguistic(language.Und)
	},
}

// Compare orders v and o using the culture-aware root collation (CLDR root,
// language.Und). See utf8scan.Compare for the walking rules.
func (v View) Compare(o View) int {
	l := linguisticPool.Get().(*utf8scan.Linguistic)
	defer linguisticPool.Put(l)
	return utf8scan.Compare(v.b, o.b, l)
}

// CompareWith orders v and o under collation c.
func (v View) CompareWith(o View, c utf8scan.Collation) int {
	return utf8scan.Compare(v.b, o.b, c)
}

// Compare orders x and y using the culture-aware root collation.
func Compare(x, y View) int {
	return x.Compare(y)
}

// CompareOrdinal orders x and y by their bytes.
func CompareOrdinal(x, y View) int {
	return utf8scan.CompareOrdinal(x.b, y.b)
}

// utf16ByteLen returns the length of the UTF-8 encoding of u, as produced by
// appendUTF16.
func utf16ByteLen(u []uint16) int {
	var n int
	for i := 0; i < len(u); i++ {
		switch c := u[i]; {
		case c < 0x80:
			n++
		case c < 0x800:
			n += 2
		case isHighSurrogate(c) && i+1 < len(u) && isLowSurrogate(u[i+1]):
			n += 4
			i++
		default:
			// BMP code point, or an unpaired surrogate written as U+FFFD.
			n += 3
		}
	}
	return n
}

// appendUTF16 appends the UTF-8 encoding of the UTF-16 code units u to dst.
func appendUTF16(dst []byte, u []uint16) []byte {
	for i := 0; i < len(u); i++ {
		c := u[i]
		if c < utf8.RuneSelf {
			dst = append(dst, byte(c))
			continue
		}
		r := rune(c)
		if isHighSurrogate(c) && i+1 < len(u) && isLowSurrogate(u[i+1]) {
			r = utf16.DecodeRune(r, rune(u[i+1]))
			i++
		}
		// utf8.AppendRune writes U+FFFD for surrogate code points.
		dst = utf8.AppendRune(dst, r)
	}
	return dst
}

func isHighSurrogate(c uint16) bool {
	return c >= 0xd800 && c < 0xdc00
}

func isLowSurrogate(c uint16) bool {
	return c >= 0xdc00 && c < 0xe000
}
