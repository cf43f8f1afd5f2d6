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
	"encoding/binary"
	"math/bits"
)

const (
	// maxWideBlocks is the number of 32 byte blocks that can be summed into
	// the per-byte lane counters of CodePointCount before a lane can
	// overflow. Each block adds at most 4 to a lane: 63*4 = 252 <= 255.
	maxWideBlocks = 63

	lanes16 = 0x00ff00ff00ff00ff
	lsb16   = 0x0001000100010001
)

// CodePointCount returns the number of code points (Unicode scalar values)
// encoded in b. This is not the number of user-perceived characters: the
// woman firefighter emoji, U+1F469 U+1F3FD U+200D U+1F692, is a single
// grapheme cluster made of 4 code points.
//
// Every byte whose top two bits are not 10 (i.e. every byte that is not a
// continuation byte) starts a code point. For well-formed UTF-8 the result
// equals utf8.RuneCount(b). Malformed input is counted by lead bytes, which
// differs from utf8.RuneCount's treatment of invalid bytes.
func CodePointCount(b []byte) int {
	var n int

	for len(b) >= wideBlock {
		blocks := len(b) / wideBlock
		if blocks > maxWideBlocks {
			blocks = maxWideBlocks
		}
		// acc holds 8 independent byte lanes, each counting lead bytes seen
		// at that byte position of a word.
		var acc uint64
		for i := 0; i < blocks; i++ {
			acc += leadBytes(binary.LittleEndian.Uint64(b))
			acc += leadBytes(binary.LittleEndian.Uint64(b[8:]))
			acc += leadBytes(binary.LittleEndian.Uint64(b[16:]))
			acc += leadBytes(binary.LittleEndian.Uint64(b[24:]))
			b = b[wideBlock:]
		}
		n += horizontalSum(acc)
	}

	for len(b) >= 8 {
		n += bits.OnesCount64(leadBytes(binary.LittleEndian.Uint64(b)))
		b = b[8:]
	}

	for _, c := range b {
		if c&0xc0 != 0x80 {
			n++
		}
	}
	return n
}

// leadBytes returns a word with the low bit of byte i set iff byte i of w is
// not a UTF-8 continuation byte. A continuation byte is 10xxxxxx: bit 7 set
// and bit 6 clear. Shifting right by 6 moves bit 6 of every byte into the low
// bit of that byte, and shifting the complement right by 7 moves the inverse
// of bit 7 there. The OR is 0 exactly for continuation bytes.
func leadBytes(w uint64) uint64 {
	return ((w >> 6) | (^w >> 7)) & bitsetLSB
}

// horizontalSum adds the 8 byte lanes of acc. The lanes are first widened
// into 4 16-bit lanes so the final multiply cannot overflow a lane.
func horizontalSum(acc uint64) int {
	acc = (acc & lanes16) + ((acc >> 8) & lanes16)
	return int((acc * lsb16) >> 48)
}
