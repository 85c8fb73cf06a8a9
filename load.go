package mibtree

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/golangsnmp/mibtree/internal/types"
)

// Load reads every module file from source, extracts the files in
// parallel and resolves the records into one forest.
//
// Example:
//
//	res, err := mibtree.Load(ctx,
//	    mibtree.DirTree("/usr/share/snmp/mibs"),
//	    mibtree.WithLogger(slog.Default()),
//	)
//
//	// Multiple sources:
//	res, err := mibtree.Load(ctx,
//	    mibtree.Multi(mibtree.MustDirTree("/usr/share/snmp/mibs"), mibtree.MustDir("./custom")),
//	)
func Load(ctx context.Context, source Source, opts ...Option) (*Result, error) {
	records, err := LoadRecords(ctx, source, opts...)
	if err != nil {
		return nil, err
	}
	return Resolve(records, opts...)
}

// LoadRecords is Load without the resolution step. Files with an
// unlisted extension, and files that do not look like module source, are
// skipped.
func LoadRecords(ctx context.Context, source Source, opts ...Option) ([]Record, error) {
	if source == nil {
		return nil, ErrNoSources
	}
	cfg := newConfig(opts)
	logger := types.Logger{L: cfg.logger}

	listed, err := source.Files()
	if err != nil {
		return nil, err
	}
	extSet := makeExtensionSet(cfg.extensions)
	var paths []string
	for _, p := range listed {
		if hasValidExtension(p, extSet) {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil, ErrNoSources
	}

	logger.Log(slog.LevelInfo, "parallel loading",
		slog.Int("files", len(paths)),
		slog.Int("jobs", cfg.jobs))

	files, err := extractSource(ctx, source, paths, &cfg, !cfg.noHeuristic)
	if err != nil {
		return nil, err
	}
	var records []Record
	skipped := 0
	for _, f := range files {
		if f.skipped {
			skipped++
			continue
		}
		records = append(records, f.records...)
	}

	logger.Log(slog.LevelInfo, "parallel loading complete",
		slog.Int("records", len(records)),
		slog.Int("skipped", skipped))
	return records, nil
}

var (
	sigDefinitions = []byte("DEFINITIONS")
	sigAssign      = []byte("::=")
)

type heuristicConfig struct {
	maxProbeSize int
}

func defaultHeuristic() heuristicConfig {
	return heuristicConfig{maxProbeSize: 128 * 1024}
}

// looksLikeModuleSource reports whether content is text that holds a
// module header within the probe window.
func (h *heuristicConfig) looksLikeModuleSource(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	probe := content[:min(h.maxProbeSize, len(content))]
	if bytes.IndexByte(probe, 0) >= 0 {
		return false
	}
	return bytes.Contains(probe, sigDefinitions) && bytes.Contains(probe, sigAssign)
}
