package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "table", input: "table", want: FormatTable},
		{name: "empty defaults to table", input: "", want: FormatTable},
		{name: "json", input: "json", want: FormatJSON},
		{name: "JSON uppercase", input: "JSON", want: FormatJSON},
		{name: "yaml", input: "yaml", want: FormatYAML},
		{name: "yml alias", input: "yml", want: FormatYAML},
		{name: "whitespace trimmed", input: "  table  ", want: FormatTable},
		{name: "invalid format", input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer

	table := NewTableData("ID", "KEY", "STATUS", "SIZE")
	table.AddRow("0199b2f0", "models/resnet.onnx", "COMMITTED", "98.5MiB")
	table.AddRow("0199b2f1", "models/bert.onnx", "WRITING", "-")

	require.NoError(t, PrintTable(&buf, table))

	out := buf.String()
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "models/resnet.onnx")
	assert.Contains(t, out, "COMMITTED")
	assert.Contains(t, out, "WRITING")
}

func TestSimpleTable(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, SimpleTable(&buf, [][2]string{
		{"Objects scanned", "1204"},
		{"Blobs deleted", "17"},
	}))

	out := buf.String()
	assert.Contains(t, out, "Objects scanned")
	assert.Contains(t, out, "17")
}

func TestPrinterJSONFallback(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, FormatTable, false)

	// Non-TableRenderer data falls back to JSON
	require.NoError(t, printer.Print(map[string]int{"deleted": 3}))

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3, decoded["deleted"])
}

func TestPrinterColorMessages(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, FormatTable, false)

	printer.Success("committed")
	printer.Warning("stale upload")
	printer.Error("hash mismatch")

	out := buf.String()
	assert.Contains(t, out, "committed")
	assert.Contains(t, out, "stale upload")
	assert.Contains(t, out, "hash mismatch")
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintYAML(&buf, map[string]string{"status": "ok"}))
	assert.Contains(t, buf.String(), "status: ok")
}
