package library

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/skaarfundgandr/Stellaron/internal/extract"
)

// ImportResult is the outcome for one book file
type ImportResult struct {
	Path   string
	BookID int64
	Err    error
}

// Duplicate reports whether the file was skipped because its content is
// already cataloged
func (r ImportResult) Duplicate() bool {
	return errors.Is(r.Err, ErrDuplicateContent)
}

// ImportSummary aggregates the outcomes of one import run
type ImportSummary struct {
	Imported   int
	Duplicates int
	Failed     int
	Results    []ImportResult
}

// Importer catalogs book files concurrently. One file failing never stops
// the run; every outcome lands in the summary.
type Importer struct {
	store   *Store
	workers int
	logger  *slog.Logger
}

// NewImporter builds an importer over store. workers <= 0 means one worker
// per CPU; a nil logger falls back to slog.Default().
func NewImporter(store *Store, workers int, logger *slog.Logger) *Importer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: store, workers: workers, logger: logger}
}

// ImportDir scans root for book files and imports everything found
func (im *Importer) ImportDir(ctx context.Context, root string) (*ImportSummary, error) {
	books, err := ScanBooks(root)
	if err != nil {
		return nil, err
	}
	return im.ImportFiles(ctx, books), nil
}

// ImportFiles imports the given files through the worker pool. Cancelling
// ctx stops dispatching new files; results for files already in flight are
// still collected.
func (im *Importer) ImportFiles(ctx context.Context, paths []string) *ImportSummary {
	workCh := make(chan string, im.workers)
	resCh := make(chan ImportResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < im.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range workCh {
				resCh <- im.importOne(ctx, path)
			}
		}()
	}

	go func() {
		defer close(workCh)
		for _, path := range paths {
			select {
			case workCh <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resCh)
	}()

	summary := &ImportSummary{}
	for res := range resCh {
		switch {
		case res.Err == nil:
			summary.Imported++
		case res.Duplicate():
			summary.Duplicates++
		default:
			summary.Failed++
		}
		summary.Results = append(summary.Results, res)
	}

	// Completion order depends on worker scheduling; sort so reports are
	// stable across runs
	sort.Slice(summary.Results, func(i, j int) bool {
		return summary.Results[i].Path < summary.Results[j].Path
	})
	return summary
}

func (im *Importer) importOne(ctx context.Context, path string) ImportResult {
	meta, err := extract.ReadMetadata(path)
	if err != nil {
		im.logger.Warn("failed to read book metadata", "path", path, "error", err)
		return ImportResult{Path: path, Err: err}
	}

	id, err := im.store.AddBook(ctx, meta)
	if err != nil {
		if errors.Is(err, ErrDuplicateContent) {
			im.logger.Info("skipping duplicate book", "path", path, "checksum", meta.Checksum)
		} else {
			im.logger.Warn("failed to catalog book", "path", path, "error", err)
		}
		return ImportResult{Path: path, Err: err}
	}

	im.logger.Info("cataloged book", "path", path, "title", meta.Title, "id", id)
	return ImportResult{Path: path, BookID: id}
}
