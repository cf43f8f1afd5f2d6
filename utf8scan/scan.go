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

// Package utf8scan provides scanning primitives that operate directly on
// UTF-8 encoded bytes: lead byte classification, ASCII detection, code point
// counting, whitespace detection, hashing and ordering comparisons.
//
// None of the functions in this package allocate, decode the whole input, or
// return an error for malformed UTF-8. Malformed input degrades to a best
// effort answer: an invalid lead byte has a sequence length of 0, is never
// whitespace, and is compared byte-wise. Callers that need to reject malformed
// input can use FirstSequenceLength or the unicode/utf8 validators.
//
// # Word-at-a-time scanning
//
// IsASCII and CodePointCount process the input 8 bytes at a time using
// SIMD-within-a-register tricks on little-endian 64-bit words, with an
// unrolled 32 byte inner loop that keeps several independent accumulators so
// that the CPU can overlap the loads. Tails shorter than a word are handled
// by a narrowing cascade (IsASCII) or a byte loop (CodePointCount). The
// reference byte-at-a-time versions live in the tests and are cross-checked
// against the word-at-a-time versions on random inputs.
package utf8scan

import (
	"errors"
	"fmt"
)

const (
	bitsetLSB = 0x0101010101010101
	bitsetMSB = 0x8080808080808080

	// wideBlock is the number of bytes consumed by one iteration of the
	// unrolled loops.
	wideBlock = 32
)

var (
	// ErrEmpty is returned by FirstSequenceLength for empty input.
	ErrEmpty = errors.New("utf8scan: empty input")
	// ErrInvalidUTF8 is returned by FirstSequenceLength when the input does
	// not start with a valid UTF-8 lead byte.
	ErrInvalidUTF8 = errors.New("utf8scan: invalid UTF-8 sequence")
)

// sequenceLengths maps a lead byte to the length of the UTF-8 sequence it
// starts. Continuation bytes and bytes that can never appear in well-formed
// UTF-8 (0xC0, 0xC1, 0xF5-0xFF) map to 0.
var sequenceLengths = [256]uint8{
	//  1  2  3  4  5  6  7  8  9  A  B  C  D  E  F
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x00-0x0F
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x10-0x1F
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x20-0x2F
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x30-0x3F
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x40-0x4F
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x50-0x5F
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x60-0x6F
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x70-0x7F
	//  1  2  3  4  5  6  7  8  9  A  B  C  D  E  F
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 0x80-0x8F
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 0x90-0x9F
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 0xA0-0xAF
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 0xB0-0xBF
	0, 0, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, // 0xC0-0xCF
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, // 0xD0-0xDF
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, // 0xE0-0xEF
	4, 4, 4, 4, 4, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 0xF0-0xFF
}

// SequenceLength returns the number of bytes in the UTF-8 sequence started by
// the lead byte b (1 to 4), or 0 if b cannot start a sequence. Callers
// walking a buffer must treat 0 as malformed input rather than advancing by
// it.
func SequenceLength(b byte) int {
	return int(sequenceLengths[b])
}

// IsASCIICodePoint returns true if b encodes an ASCII code point on its own.
func IsASCIICodePoint(b byte) bool {
	return b <= 0x7f
}

// FirstSequenceLength returns the length of the UTF-8 sequence at the start
// of b. Unlike SequenceLength it rejects input it cannot classify.
func FirstSequenceLength(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, ErrEmpty
	}
	n := SequenceLength(b[0])
	if n == 0 {
		return 0, fmt.Errorf("%w: lead byte %#02x", ErrInvalidUTF8, b[0])
	}
	return n, nil
}
