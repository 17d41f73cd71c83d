package index

import (
	"log/slog"
	"time"

	"github.com/asakura/interlink/internal/checksum"
	"github.com/asakura/interlink/internal/parser"
	"github.com/asakura/interlink/internal/seo"
	"github.com/asakura/interlink/internal/storage"
)

// Sync walks the posts directory and brings the index up to date:
//   - new/changed files are parsed, scored, and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, postsDir string, logger *slog.Logger) error {
	metas, err := store.List(postsDir)
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeletePost(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexFile parses and scores data, then upserts it into the DB.
// Exported so the watcher and service layer can reuse it.
func IndexFile(db *DB, path string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}

	p := parser.PostFromResult(path, res)
	p.Checksum = checksum.Sum(data)
	analysis := seo.NewAnalyzer().AnalyzePost(p)

	return db.UpsertPost(PostRow{
		Path:        path,
		URL:         p.URL,
		Title:       p.Title,
		Checksum:    p.Checksum,
		Categories:  p.Categories,
		Tags:        p.Tags,
		Description: p.Description,
		SeoScore:    analysis.Score,
		UpdatedAt:   time.Now(),
	}, res.Body)
}
