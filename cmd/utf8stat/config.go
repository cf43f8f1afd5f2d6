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

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/utf8str/utf8scan"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	collationOrdinal    = "ordinal"
	collationLinguistic = "linguistic"
)

// Config controls what utf8stat reports and how. It is read from YAML and
// then overridden by command-line flags.
type Config struct {
	// CollationKind is "ordinal" or "linguistic".
	CollationKind string `yaml:"collation"`
	// Language is the BCP 47 tag used by the linguistic collation.
	Language string `yaml:"language"`
	// IgnoreCase makes the linguistic collation ignore case differences.
	IgnoreCase bool `yaml:"ignore_case"`
	// Top is the number of most frequent lines to report. 0 disables the
	// report, as does turning Distinct off.
	Top int `yaml:"top"`
	// Distinct enables counting of distinct lines.
	Distinct bool `yaml:"distinct"`
	// LogLevel is a logrus level name.
	LogLevel string `yaml:"log_level"`
}

func defaultConfig() Config {
	return Config{
		CollationKind: collationLinguistic,
		Language:      "und",
		Top:           10,
		Distinct:      true,
		LogLevel:      "info",
	}
}

// loadConfig returns the default configuration overlaid with the YAML file
// at path. An empty path yields the defaults. Unknown keys are rejected.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting of cfg.
func (cfg Config) Validate() error {
	switch cfg.CollationKind {
	case collationOrdinal, collationLinguistic:
	default:
		return fmt.Errorf("invalid collation %q: must be %q or %q",
			cfg.CollationKind, collationOrdinal, collationLinguistic)
	}
	if _, err := language.Parse(cfg.Language); err != nil {
		return fmt.Errorf("invalid language %q: %w", cfg.Language, err)
	}
	if cfg.Top < 0 {
		return fmt.Errorf("invalid top %d: must not be negative", cfg.Top)
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// Collation returns the collation used to order lines with equal counts.
func (cfg Config) Collation() (utf8scan.Collation, error) {
	if cfg.CollationKind == collationOrdinal {
		return utf8scan.Ordinal, nil
	}
	tag, err := language.Parse(cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("invalid language %q: %w", cfg.Language, err)
	}
	var opts []collate.Option
	if cfg.IgnoreCase {
		opts = append(opts, collate.IgnoreCase)
	}
	return utf8scan.NewLinguistic(tag, opts...), nil
}
