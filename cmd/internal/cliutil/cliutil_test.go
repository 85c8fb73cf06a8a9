package cliutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestEncode(t *testing.T) {
	v := struct {
		Name string   `json:"name" yaml:"name"`
		Arcs []uint32 `json:"arcs" yaml:"arcs"`
	}{"ifIndex", []uint32{1, 3}}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatJSON, v))
	assert.JSONEq(t, `{"name":"ifIndex","arcs":[1,3]}`, buf.String())

	buf.Reset()
	require.NoError(t, Encode(&buf, FormatYAML, v))
	assert.Equal(t, "name: ifIndex\narcs:\n  - 1\n  - 3\n", buf.String())

	assert.Error(t, Encode(&buf, FormatText, v))
}

func TestUseColor(t *testing.T) {
	on, err := UseColor("on", nil)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = UseColor("never", nil)
	require.NoError(t, err)
	assert.False(t, on)

	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()
	on, err = UseColor("auto", f)
	require.NoError(t, err)
	assert.False(t, on, "a regular file is not a terminal")

	t.Setenv("NO_COLOR", "1")
	on, err = UseColor("", os.Stdout)
	require.NoError(t, err)
	assert.False(t, on)

	_, err = UseColor("sometimes", nil)
	assert.Error(t, err)
}

func TestPaletteSeverity(t *testing.T) {
	p := &DefaultPalette
	assert.Same(t, p.Error, p.Severity("error"))
	assert.Same(t, p.Warning, p.Severity("warning"))
	assert.Same(t, p.Info, p.Severity("info"))

	prev := color.NoColor
	t.Cleanup(func() { color.NoColor = prev })
	SetColor(false)
	assert.Equal(t, "plain", p.Error.Sprint("plain"))
}

func TestGetOutput(t *testing.T) {
	f, done, err := GetOutput("")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, f)
	done()

	path := filepath.Join(t.TempDir(), "report.json")
	f, done, err = GetOutput(path)
	require.NoError(t, err)
	_, err = f.WriteString("{}")
	require.NoError(t, err)
	done()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
