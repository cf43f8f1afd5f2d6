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

import "bytes"

// Hash returns a deterministic hash of the bytes of b. The result depends
// only on the content of b, never on its address or on the process, so equal
// byte sequences hash equally however they were produced.
//
// The core is djb2 (h = h*33 + c). djb2 leaves the high bits of the last
// bytes poorly mixed into the low bits, which is where power-of-two tables
// take their bucket index from, so the result goes through the murmur3 64-bit
// finalizer.
func Hash(b []byte) uint64 {
	h := uint64(5381)
	for _, c := range b {
		h = (h << 5) + h + uint64(c)
	}
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}

// Equal reports whether x and y hold the same bytes. A nil slice equals an
// empty one.
func Equal(x, y []byte) bool {
	return bytes.Equal(x, y)
}
