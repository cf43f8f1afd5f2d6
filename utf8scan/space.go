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
	"unicode"
	"unicode/utf8"
)

// IsEmptyOrWhiteSpace returns true if b is empty or consists only of code
// points with the Unicode White_Space property.
func IsEmptyOrWhiteSpace(b []byte) bool {
	i := 0
	for i < len(b) {
		c := b[i]
		// [0x21, 0x7f] is printable ASCII or DEL, never whitespace. Bytes
		// >= 0x80 are negative as int8 and fall through.
		if int8(c) > ' ' {
			break
		}
		if c < utf8.RuneSelf {
			if !isASCIIWhiteSpace(c) {
				break
			}
			i++
			continue
		}
		// utf8.RuneError is not whitespace, so malformed input stops the
		// scan.
		r, size := utf8.DecodeRune(b[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i == len(b)
}

// isASCIIWhiteSpace matches '\t', '\n', '\v', '\f', '\r' and ' '.
func isASCIIWhiteSpace(c byte) bool {
	return c == ' ' || (c >= '\t' && c <= '\r')
}
