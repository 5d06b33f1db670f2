package core

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/valter-silva-au/dmenv/pkg/models"
	"gopkg.in/yaml.v3"
)

// Lock view formats accepted by show:lock.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
	FormatJSON  = "json"
)

// WriteLockEntries renders lock entries in the given format.
func WriteLockEntries(w io.Writer, entries []models.LockEntry, format string) error {
	switch format {
	case "", FormatTable:
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Name", "Kind", "Version", "Marker"})
		for _, e := range entries {
			version := e.Version
			if e.Kind == "git" {
				version = e.URL
				if e.Ref != "" {
					version += "@" + e.Ref
				}
			}
			t.AppendRow(table.Row{e.Name, e.Kind, version, e.Marker})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("encoding lock as yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("encoding lock as json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q: expected %s, %s or %s", format, FormatTable, FormatYAML, FormatJSON)
	}
}
