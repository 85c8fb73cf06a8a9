package mibtree

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/golangsnmp/mibtree/internal/extract"
	"github.com/golangsnmp/mibtree/internal/types"
)

// Extract returns the record of the first module in text. file is
// recorded as the record's source file. Extraction never fails: when
// text has no module header the record is named "UNKNOWN", and skipped
// fragments are listed in the record's diagnostics.
func Extract(file string, text []byte, opts ...Option) Record {
	cfg := newConfig(opts)
	return extract.Extract(text, file, types.Component(cfg.logger, "extract"))
}

// ExtractAll returns one record per module in text.
func ExtractAll(file string, text []byte, opts ...Option) []Record {
	cfg := newConfig(opts)
	return extract.ExtractAll(text, file, types.Component(cfg.logger, "extract"))
}

// ExtractFiles reads and extracts every file in paths, in parallel.
// Records are returned in path order, every module of each file. The
// first read error cancels the rest.
func ExtractFiles(ctx context.Context, paths []string, opts ...Option) ([]Record, error) {
	cfg := newConfig(opts)
	files, err := extractSource(ctx, Files(paths...), paths, &cfg, false)
	if err != nil {
		return nil, err
	}
	var records []Record
	for _, f := range files {
		records = append(records, f.records...)
	}
	return records, nil
}

// extractedFile is the outcome for one listed file. skipped is set when
// the content heuristic rejected it.
type extractedFile struct {
	path    string
	records []Record
	skipped bool
}

func extractSource(ctx context.Context, src Source, paths []string, cfg *config, heuristic bool) ([]extractedFile, error) {
	logger := types.Logger{L: cfg.logger}
	extractLogger := types.Component(cfg.logger, "extract")
	probe := defaultHeuristic()

	results := make([]extractedFile, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(cfg.jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := src.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			results[i].path = path
			if heuristic && !probe.looksLikeModuleSource(content) {
				results[i].skipped = true
				logger.Log(slog.LevelDebug, "content rejected by heuristic", slog.String("file", path))
				return nil
			}
			results[i].records = extract.ExtractAll(content, path, extractLogger)
			if logger.TraceEnabled() {
				logger.Trace("extracted file",
					slog.String("file", path),
					slog.Int("modules", len(results[i].records)))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
