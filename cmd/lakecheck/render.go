// Verdict report rendering.
// Implements: prd003-lakecheck-cli R5 (table and JSON output).
package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/mesh-intelligence/lakecheck/pkg/types"
)

// renderTable writes the verdicts as an aligned report table with a
// pass/fail summary row.
func renderTable(w io.Writer, verdicts []types.Verdict) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Scenario", "Kind", "Result", "Detail"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Detail", WidthMax: 72, WidthMaxEnforcer: text.WrapSoft},
	})

	passed := 0
	for _, v := range verdicts {
		result := "FAIL"
		if v.Passed {
			result = "PASS"
			passed++
		}
		detail := v.Message
		if len(v.Checkpoints) > 0 {
			detail = "[" + strings.Join(v.Checkpoints, ", ") + "] " + detail
		}
		t.AppendRow(table.Row{v.Scenario, v.Kind, result, detail})
	}
	t.AppendFooter(table.Row{"", "", "passed", passed})
	t.AppendFooter(table.Row{"", "", "failed", len(verdicts) - passed})
	t.Render()
}

// renderJSON writes the verdicts as an indented JSON array, the shape
// CI consumers ingest.
func renderJSON(w io.Writer, verdicts []types.Verdict) error {
	return renderJSONValue(w, verdicts)
}

func renderJSONValue(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
