// Package postservice coordinates storage, the keyword linker, the SEO
// analyzer, and the index for the CLI and API surfaces.
package postservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/asakura/interlink/internal/apperr"
	"github.com/asakura/interlink/internal/checksum"
	"github.com/asakura/interlink/internal/index"
	"github.com/asakura/interlink/internal/linker"
	"github.com/asakura/interlink/internal/models"
	"github.com/asakura/interlink/internal/parser"
	"github.com/asakura/interlink/internal/seo"
	"github.com/asakura/interlink/internal/storage"
)

// PostDetail is the full representation of a post.
type PostDetail struct {
	Path        string          `json:"path"`
	URL         string          `json:"url"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Checksum    string          `json:"checksum"`
	Categories  []string        `json:"categories"`
	Tags        []string        `json:"tags"`
	Description string          `json:"description,omitempty"`
	SeoScore    int             `json:"seo_score"`
	Backlinks   []index.LinkRow `json:"backlinks"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PostListItem is a lightweight item in a list response.
type PostListItem struct {
	Path          string    `json:"path"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	Categories    []string  `json:"categories"`
	Tags          []string  `json:"tags"`
	SeoScore      int       `json:"seo_score"`
	LinksInserted int       `json:"links_inserted"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AnnotateResult summarises the rewrite pass for one post.
type AnnotateResult struct {
	Path     string                `json:"path"`
	URL      string                `json:"url"`
	Inserted []models.InsertedLink `json:"inserted"`
}

// Service coordinates the blog tree and the index.
type Service struct {
	store     storage.Provider
	db        *index.DB
	postsDir  string
	draftsDir string
	seedFile  string
	maxLinks  int
	logger    *slog.Logger
}

// NewService creates a new post service. db may be nil for index-less CLI
// commands (annotate, analyze).
func NewService(store storage.Provider, db *index.DB, postsDir, draftsDir, seedFile string, maxLinks int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		db:        db,
		postsDir:  postsDir,
		draftsDir: draftsDir,
		seedFile:  seedFile,
		maxLinks:  maxLinks,
		logger:    logger,
	}
}

// LoadPosts reads and parses every post in a stable path order. Any read or
// parse failure is fatal: the rewrite pass must see the complete document set
// or not run at all.
func (s *Service) LoadPosts(includeDrafts bool) ([]*models.Post, error) {
	dirs := []string{s.postsDir}
	if includeDrafts && s.draftsDir != "" {
		dirs = append(dirs, s.draftsDir)
	}

	var metas []models.PostMetadata
	for _, dir := range dirs {
		m, err := s.store.List(dir)
		if err != nil {
			return nil, fmt.Errorf("postservice: list %s: %w", dir, err)
		}
		metas = append(metas, m...)
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Path < metas[j].Path })

	posts := make([]*models.Post, 0, len(metas))
	for _, m := range metas {
		data, err := s.store.Read(m.Path)
		if err != nil {
			return nil, fmt.Errorf("postservice: read %s: %w", m.Path, err)
		}
		res, err := parser.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("postservice: parse %s: %w", m.Path, err)
		}
		p := parser.PostFromResult(m.Path, res)
		p.Checksum = m.Checksum
		p.UpdatedAt = m.UpdatedAt
		posts = append(posts, p)
	}
	return posts, nil
}

// Annotate runs the internal-link pass over all posts. When write is true the
// rewritten bodies are persisted atomically; otherwise the pass is a dry run.
// When an index is attached, inserted links are recorded either way.
func (s *Service) Annotate(_ context.Context, write bool) ([]AnnotateResult, error) {
	posts, err := s.LoadPosts(false)
	if err != nil {
		return nil, err
	}

	// Keep the raw prefix (frontmatter block) per post so rewritten bodies
	// can be written back without re-marshalling the frontmatter.
	prefixes := make(map[string]string, len(posts))
	if write {
		for _, p := range posts {
			raw, err := s.store.Read(p.Path)
			if err != nil {
				return nil, fmt.Errorf("postservice: reread %s: %w", p.Path, err)
			}
			content := string(raw)
			if !strings.HasSuffix(content, p.Body) {
				return nil, fmt.Errorf("postservice: body mismatch for %s", p.Path)
			}
			prefixes[p.Path] = content[:len(content)-len(p.Body)]
		}
	}

	seed, err := linker.LoadSeed(s.seedFile)
	if err != nil {
		// A broken seed file degrades to an empty seed map.
		s.logger.Warn("seed keywords unavailable", slog.String("file", s.seedFile), slog.String("error", err.Error()))
	}

	results := linker.Annotate(posts, seed, s.maxLinks)

	out := make([]AnnotateResult, 0, len(results))
	for _, r := range results {
		out = append(out, AnnotateResult{
			Path:     r.Post.Path,
			URL:      r.Post.URL,
			Inserted: r.Inserted,
		})

		if write && len(r.Inserted) > 0 {
			content := prefixes[r.Post.Path] + r.Post.Body
			if err := s.store.Write(r.Post.Path, []byte(content)); err != nil {
				return nil, fmt.Errorf("postservice: write %s: %w", r.Post.Path, err)
			}
			if s.db != nil {
				if err := index.IndexFile(s.db, r.Post.Path, []byte(content)); err != nil {
					s.logger.Warn("reindex after annotate failed", slog.String("path", r.Post.Path), slog.String("error", err.Error()))
				}
			}
		}

		if s.db != nil {
			links := make([]index.LinkRow, 0, len(r.Inserted))
			for _, l := range r.Inserted {
				links = append(links, index.LinkRow{SourceURL: l.SourceURL, TargetURL: l.TargetURL, Keyword: l.Keyword})
			}
			if err := s.db.ReplaceInsertedLinks(r.Post.URL, links); err != nil {
				s.logger.Warn("record links failed", slog.String("url", r.Post.URL), slog.String("error", err.Error()))
			}
		}
	}
	return out, nil
}

// Analyze scores every post (optionally drafts too) against the SEO checklist.
func (s *Service) Analyze(_ context.Context, includeDrafts bool) ([]*seo.Analysis, error) {
	posts, err := s.LoadPosts(includeDrafts)
	if err != nil {
		return nil, err
	}
	analyzer := seo.NewAnalyzer()
	out := make([]*seo.Analysis, 0, len(posts))
	for _, p := range posts {
		out = append(out, analyzer.AnalyzePost(p))
	}
	return out, nil
}

// GetPost reads a post from storage, parses it, and enriches it with index data.
func (s *Service) GetPost(_ context.Context, path string) (*PostDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	p := parser.PostFromResult(path, res)

	detail := &PostDetail{
		Path:        p.Path,
		URL:         p.URL,
		Title:       p.Title,
		Content:     string(data),
		Checksum:    checksum.Sum(data),
		Categories:  nonNilSlice(p.Categories),
		Tags:        nonNilSlice(p.Tags),
		Description: p.Description,
		Backlinks:   []index.LinkRow{},
		UpdatedAt:   time.Now(),
	}

	if s.db != nil {
		if row, err := s.db.GetPost(path); err == nil && row != nil {
			detail.SeoScore = row.SeoScore
			detail.UpdatedAt = row.UpdatedAt
		}
		if bl, err := s.db.Backlinks(p.URL); err == nil {
			detail.Backlinks = nonNilSlice(bl)
		}
	}
	return detail, nil
}

// ListPosts returns paginated posts from the index with an optional category filter.
func (s *Service) ListPosts(_ context.Context, limit, offset int, category, sortBy string) ([]PostListItem, int, error) {
	rows, total, err := s.db.ListPosts(limit, offset, category, sortBy)
	if err != nil {
		return nil, 0, err
	}
	items := make([]PostListItem, len(rows))
	for i, r := range rows {
		items[i] = PostListItem{
			Path:          r.Path,
			URL:           r.URL,
			Title:         r.Title,
			Categories:    nonNilSlice(r.Categories),
			Tags:          nonNilSlice(r.Tags),
			SeoScore:      r.SeoScore,
			LinksInserted: r.LinksInserted,
			UpdatedAt:     r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// IndexFile parses, scores, and upserts raw post data into the index.
func (s *Service) IndexFile(path string, data []byte) error {
	return index.IndexFile(s.db, path, data)
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
