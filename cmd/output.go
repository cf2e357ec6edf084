// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// writeValue renders v as indented JSON or as YAML.
func writeValue(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)

		return enc.Encode(v)
	case formatYAML:
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}

		_, err = w.Write(b)

		return err
	default:
		return fmt.Errorf("unknown format %q, expected %s or %s", format, formatJSON, formatYAML)
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
