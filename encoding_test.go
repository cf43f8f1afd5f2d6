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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type labeled struct {
	Name  View   `json:"name" yaml:"name"`
	Notes []View `json:"notes" yaml:"notes"`
}

func TestJSON(t *testing.T) {
	in := labeled{
		Name:  FromString("あ\"b"),
		Notes: []View{Empty, FromString("x\ny")},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"あ\"b","notes":["","x\ny"]}`, string(data))

	var out labeled
	require.NoError(t, json.Unmarshal(data, &out))
	require.True(t, in.Name.Equal(out.Name))
	require.Len(t, out.Notes, 2)
	require.True(t, out.Notes[0].IsEmpty())
	require.Equal(t, "x\ny", out.Notes[1].String())

	var v View
	require.NoError(t, json.Unmarshal([]byte(`null`), &v))
	require.True(t, v.IsEmpty())

	err = json.Unmarshal([]byte(`{"name":12}`), &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decoding view from JSON")
}

func TestJSONMalformed(t *testing.T) {
	data, err := json.Marshal(Wrap([]byte("a\xff")))
	require.NoError(t, err)
	require.Equal(t, `"a\ufffd"`, string(data))
}

func TestText(t *testing.T) {
	v := FromString("\U00029e3d")
	text, err := v.MarshalText()
	require.NoError(t, err)
	require.Equal(t, []byte("\U00029e3d"), text)

	var out View
	require.NoError(t, out.UnmarshalText(text))
	text[0] = 'x'
	require.True(t, v.Equal(out))
}

func TestYAML(t *testing.T) {
	in := labeled{
		Name:  FromString("αβ"),
		Notes: []View{FromString("one"), FromString("two: three")},
	}
	data, err := yaml.Marshal(in)
	require.NoError(t, err)

	var out labeled
	require.NoError(t, yaml.Unmarshal(data, &out))
	require.Equal(t, "αβ", out.Name.String())
	require.Len(t, out.Notes, 2)
	require.Equal(t, "two: three", out.Notes[1].String())

	err = yaml.Unmarshal([]byte("name: [a, b]\n"), &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected a scalar")
}
