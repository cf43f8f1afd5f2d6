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

import "encoding/binary"

// IsASCII returns true if every byte of b has its high bit clear.
//
// IsASCII returns false for empty input. Note that IsEmptyOrWhiteSpace
// returns true for empty input; the two are intentionally not reconciled.
func IsASCII(b []byte) bool {
	if len(b) == 0 {
		return false
	}

	// The bytes are OR-ed into four independent accumulators and the high
	// bits are only inspected once at the end, so the loop has no
	// data-dependent branches.
	var m1, m2, m3, m4 uint64
	for len(b) >= wideBlock {
		m1 |= binary.LittleEndian.Uint64(b)
		m2 |= binary.LittleEndian.Uint64(b[8:])
		m3 |= binary.LittleEndian.Uint64(b[16:])
		m4 |= binary.LittleEndian.Uint64(b[24:])
		b = b[wideBlock:]
	}

	// Fewer than 32 bytes remain. Each step of the cascade below consumes
	// at most once, halving the width each time.
	if len(b) >= 16 {
		m1 |= binary.LittleEndian.Uint64(b)
		m2 |= binary.LittleEndian.Uint64(b[8:])
		b = b[16:]
	}
	if len(b) >= 8 {
		m3 |= binary.LittleEndian.Uint64(b)
		b = b[8:]
	}
	if len(b) >= 4 {
		m4 |= uint64(binary.LittleEndian.Uint32(b))
		b = b[4:]
	}
	if len(b) >= 2 {
		m1 |= uint64(binary.LittleEndian.Uint16(b))
		b = b[2:]
	}
	if len(b) == 1 {
		m2 |= uint64(b[0])
	}

	return (m1|m2|m3|m4)&bitsetMSB == 0
}
