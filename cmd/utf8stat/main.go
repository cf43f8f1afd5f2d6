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

// Command utf8stat reports statistics about the UTF-8 text lines of its
// inputs: how many are ASCII or blank, how many code points they hold, and
// which lines occur most often.
//
// Usage:
//
//	utf8stat [-config file.yaml] [-collation ordinal|linguistic] [-lang tag]
//	         [-top n] [-log-level level] [file ...]
//
// With no files, or with "-", standard input is read. Files ending in .zst
// are decompressed with zstd.
package main

import (
	"errors"
	"flag"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		logrus.WithError(err).Error("utf8stat failed")
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("utf8stat", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	collation := fs.String("collation", "", `line collation, "ordinal" or "linguistic"`)
	lang := fs.String("lang", "", "BCP 47 language tag of the linguistic collation")
	ignoreCase := fs.Bool("ignore-case", false, "ignore case in the linguistic collation")
	top := fs.Int("top", 0, "number of most frequent lines to report")
	distinct := fs.Bool("distinct", true, "count distinct lines")
	logLevel := fs.String("log-level", "", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	// Flags override the config file only when given explicitly.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "collation":
			cfg.CollationKind = *collation
		case "lang":
			cfg.Language = *lang
		case "ignore-case":
			cfg.IgnoreCase = *ignoreCase
		case "top":
			cfg.Top = *top
		case "distinct":
			cfg.Distinct = *distinct
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	c, err := cfg.Collation()
	if err != nil {
		return err
	}
	logrus.Debugf("collation %s (%s), top %d", cfg.CollationKind, cfg.Language, cfg.Top)

	paths := fs.Args()
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	stats := newStats(cfg.Distinct)
	for _, path := range paths {
		if err := stats.addInput(path); err != nil {
			return err
		}
	}
	logrus.Infof("read %d lines from %d inputs", stats.Lines, len(paths))
	return stats.Report(stdout, cfg.Top, c)
}
