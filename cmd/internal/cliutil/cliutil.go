// Package cliutil provides shared output helpers for the mibtree
// command-line tool.
package cliutil

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(s); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}

// Encode writes v to w as JSON or YAML.
func Encode(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("format %q is not a data format", format)
}

// GetOutput opens the output file or returns stdout.
func GetOutput(outputFile string) (*os.File, func(), error) {
	if outputFile == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// UseColor decides whether output to f is colored. mode is "auto", "on"
// or "off"; auto colors terminals unless NO_COLOR is set.
func UseColor(mode string, f *os.File) (bool, error) {
	switch strings.ToLower(mode) {
	case "on", "always", "true":
		return true, nil
	case "off", "never", "false":
		return false, nil
	case "", "auto":
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false, nil
		}
		return f != nil && term.IsTerminal(int(f.Fd())), nil
	}
	return false, fmt.Errorf("unknown color mode %q (want auto, on or off)", mode)
}

// SetColor switches colored output on or off for every Palette.
func SetColor(on bool) {
	color.NoColor = !on
}

// Palette holds the styles used for terminal text.
type Palette struct {
	Error   *color.Color
	Warning *color.Color
	Info    *color.Color
	Name    *color.Color
	OID     *color.Color
	Faint   *color.Color
	OK      *color.Color
}

// DefaultPalette is the palette the commands use.
var DefaultPalette = Palette{
	Error:   color.New(color.FgRed, color.Bold),
	Warning: color.New(color.FgYellow),
	Info:    color.New(color.FgCyan),
	Name:    color.New(color.Bold),
	OID:     color.New(color.FgBlue),
	Faint:   color.New(color.Faint),
	OK:      color.New(color.FgGreen, color.Bold),
}

// Severity returns the style for a severity name.
func (p *Palette) Severity(sev string) *color.Color {
	switch sev {
	case "error":
		return p.Error
	case "warning":
		return p.Warning
	default:
		return p.Info
	}
}

// PrintError writes a formatted error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s "+format+"\n", append([]any{DefaultPalette.Error.Sprint("error:")}, args...)...)
}
