package mibtree

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/golangsnmp/mibtree/internal/types"
)

// SystemDirs returns the module directories configured for net-snmp and
// libsmi on this machine: their built-in defaults, edited by their
// config files and then by the MIBDIRS and SMIPATH environment
// variables. The result is de-duplicated and holds only directories
// that exist.
func SystemDirs(logger *slog.Logger) []string {
	log := types.Logger{L: logger}
	var all []string
	for _, s := range pathSchemes() {
		all = append(all, s.resolve(&log)...)
	}
	return existingDirs(dedup(all))
}

// SystemSource combines every directory SystemDirs finds into one
// Source. It returns ErrNoSources when none exists.
func SystemSource(logger *slog.Logger) (Source, error) {
	dirs := SystemDirs(logger)
	if len(dirs) == 0 {
		return nil, ErrNoSources
	}
	sources := make([]Source, 0, len(dirs))
	for _, d := range dirs {
		src, err := Dir(d)
		if err != nil {
			continue
		}
		sources = append(sources, src)
	}
	return Multi(sources...), nil
}

type pathOp int

const (
	pathReplace pathOp = iota
	pathAppend
	pathPrepend
)

// pathScheme is one tool's way of configuring its search path.
type pathScheme struct {
	name     string
	defaults []string
	files    []string
	env      string
	// parseLine returns the edit a config line makes, ok false when the
	// line says nothing about the path.
	parseLine func(line string) (op pathOp, dirs []string, ok bool)
	// parseEnv returns the edit the environment variable makes.
	parseEnv func(value string) (pathOp, []string)
}

func pathSchemes() []pathScheme {
	home, _ := os.UserHomeDir()
	inHome := func(parts ...string) []string {
		if home == "" {
			return nil
		}
		return []string{filepath.Join(append([]string{home}, parts...)...)}
	}

	netsnmp := pathScheme{
		name: "net-snmp",
		defaults: append(inHome(".snmp", "mibs"),
			"/usr/share/snmp/mibs",
			"/usr/share/snmp/mibs/iana",
			"/usr/share/snmp/mibs/ietf",
			"/usr/local/share/snmp/mibs"),
		files:     append([]string{"/etc/snmp/snmp.conf"}, inHome(".snmp", "snmp.conf")...),
		env:       "MIBDIRS",
		parseLine: parseNetSNMPLine,
		parseEnv:  signPrefix,
	}
	libsmi := pathScheme{
		name: "libsmi",
		defaults: []string{
			"/usr/share/mibs/ietf",
			"/usr/share/mibs/iana",
			"/usr/share/mibs/irtf",
			"/usr/share/mibs/site",
			"/usr/local/share/mibs/ietf",
			"/usr/local/share/mibs/iana",
			"/usr/local/share/mibs/irtf",
			"/usr/local/share/mibs/site",
		},
		files:     append([]string{"/etc/smi.conf"}, inHome(".smirc")...),
		env:       "SMIPATH",
		parseLine: parseLibSMILine,
		parseEnv:  colonEdges,
	}
	return []pathScheme{netsnmp, libsmi}
}

func (s *pathScheme) resolve(log *types.Logger) []string {
	paths := slices.Clone(s.defaults)
	for _, f := range s.files {
		paths = s.applyFile(f, paths, log)
	}
	if v := os.Getenv(s.env); v != "" {
		op, dirs := s.parseEnv(v)
		paths = applyOp(op, dirs, paths)
	}
	log.Log(slog.LevelDebug, "search path", slog.String("scheme", s.name), slog.Any("dirs", paths))
	return paths
}

func (s *pathScheme) applyFile(path string, current []string, log *types.Logger) []string {
	f, err := os.Open(path)
	if err != nil {
		return current
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if op, dirs, ok := s.parseLine(scanner.Text()); ok {
			current = applyOp(op, dirs, current)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Log(slog.LevelDebug, "error reading config file", slog.String("path", path), slog.Any("error", err))
	}
	return current
}

// parseNetSNMPLine reads "mibdirs" directives from snmp.conf. The sign
// may sit on the value ("mibdirs +/path") or on the directive
// ("+mibdirs /path").
func parseNetSNMPLine(line string) (pathOp, []string, bool) {
	fields := configFields(line)
	if len(fields) < 2 {
		return 0, nil, false
	}
	switch fields[0] {
	case "mibdirs":
		op, dirs := signPrefix(fields[1])
		return op, dirs, true
	case "+mibdirs":
		return pathAppend, splitPaths(fields[1]), true
	case "-mibdirs":
		return pathPrepend, splitPaths(fields[1]), true
	}
	return 0, nil, false
}

// parseLibSMILine reads untagged "path" lines from smi.conf. Tagged
// lines ("smilint: path ...") apply to a single tool and are skipped.
func parseLibSMILine(line string) (pathOp, []string, bool) {
	fields := configFields(line)
	if len(fields) < 2 || fields[0] != "path" {
		return 0, nil, false
	}
	op, dirs := colonEdges(fields[1])
	return op, dirs, true
}

func configFields(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' {
		return nil
	}
	return strings.Fields(line)
}

// signPrefix reads net-snmp's convention: "+dirs" appends, "-dirs"
// prepends, anything else replaces.
func signPrefix(value string) (pathOp, []string) {
	if rest, ok := strings.CutPrefix(value, "+"); ok {
		return pathAppend, splitPaths(rest)
	}
	if rest, ok := strings.CutPrefix(value, "-"); ok {
		return pathPrepend, splitPaths(rest)
	}
	return pathReplace, splitPaths(value)
}

// colonEdges reads libsmi's convention: a leading colon appends, a
// trailing colon prepends, neither replaces.
func colonEdges(value string) (pathOp, []string) {
	if rest, ok := strings.CutPrefix(value, ":"); ok {
		return pathAppend, splitPaths(rest)
	}
	if rest, ok := strings.CutSuffix(value, ":"); ok {
		return pathPrepend, splitPaths(rest)
	}
	return pathReplace, splitPaths(value)
}

func applyOp(op pathOp, dirs, current []string) []string {
	switch op {
	case pathAppend:
		return append(current, dirs...)
	case pathPrepend:
		return append(dirs, current...)
	default:
		return dirs
	}
}

func splitPaths(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ":") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func dedup(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	var out []string
	for _, p := range paths {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

func existingDirs(paths []string) []string {
	var out []string
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			out = append(out, p)
		}
	}
	return out
}
