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
	"encoding"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

var (
	_ encoding.TextMarshaler   = View{}
	_ encoding.TextUnmarshaler = (*View)(nil)
	_ json.Marshaler           = View{}
	_ json.Unmarshaler         = (*View)(nil)
	_ yaml.Marshaler           = View{}
	_ yaml.Unmarshaler         = (*View)(nil)
)

// MarshalText implements encoding.TextMarshaler. It returns a copy of the
// bytes of v.
func (v View) MarshalText() ([]byte, error) {
	return v.ByteSlice(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The bytes of text are
// copied.
func (v *View) UnmarshalText(text []byte) error {
	*v = FromBytes(text)
	return nil
}

// MarshalJSON encodes v as a JSON string. Malformed UTF-8 is replaced by
// U+FFFD, as encoding/json does for strings.
func (v View) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON decodes a JSON string into v. JSON null decodes to Empty.
func (v *View) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("utf8str: decoding view from JSON: %w", err)
	}
	*v = FromString(s)
	return nil
}

// MarshalYAML encodes v as a YAML string scalar.
func (v View) MarshalYAML() (interface{}, error) {
	return v.String(), nil
}

// UnmarshalYAML decodes a YAML scalar into v.
func (v *View) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("utf8str: decoding view from YAML: line %d: expected a scalar", value.Line)
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("utf8str: decoding view from YAML: %w", err)
	}
	*v = FromString(s)
	return nil
}
