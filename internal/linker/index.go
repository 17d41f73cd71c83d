package linker

import (
	"sort"
	"unicode/utf8"

	"github.com/asakura/interlink/internal/models"
)

// Target is one candidate destination for a keyword.
type Target struct {
	URL   string `yaml:"url" json:"url"`
	Title string `yaml:"title" json:"title"`
}

// Index maps keywords to ordered, URL-deduplicated candidate targets.
// Construction order is preserved: for a given keyword, targets appear in
// the order their posts were processed, seed entries first.
type Index struct {
	entries map[string][]Target
	keys    []string // insertion order, for deterministic iteration
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[string][]Target)}
}

// Add appends a target to a keyword's entry unless a target with the same
// URL is already present for that keyword.
func (ix *Index) Add(keyword string, t Target) {
	if keyword == "" || t.URL == "" {
		return
	}
	existing, ok := ix.entries[keyword]
	if !ok {
		ix.keys = append(ix.keys, keyword)
	}
	for _, e := range existing {
		if e.URL == t.URL {
			return
		}
	}
	ix.entries[keyword] = append(existing, t)
}

// Targets returns the candidate targets for a keyword in insertion order.
func (ix *Index) Targets(keyword string) []Target {
	return ix.entries[keyword]
}

// Len returns the number of distinct keywords.
func (ix *Index) Len() int {
	return len(ix.keys)
}

// KeywordsByLength returns all keywords sorted by rune length descending.
// Longer keywords take precedence during rewriting so a short keyword never
// matches inside a longer one handled later. Equal lengths keep insertion
// order, which keeps the whole pass deterministic.
func (ix *Index) KeywordsByLength() []string {
	out := make([]string, len(ix.keys))
	copy(out, ix.keys)
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i]) > utf8.RuneCountInString(out[j])
	})
	return out
}

// BuildIndex constructs the keyword index for a full document set. Seed
// entries are merged first, then every post (in input order) contributes
// its title keywords, categories, and tags. The returned index is complete:
// rewriting must not begin until this has run over all posts, because later
// posts are link targets for earlier ones.
func BuildIndex(posts []*models.Post, seed SeedMap) *Index {
	ix := NewIndex()

	for _, kw := range seed.keywords {
		for _, t := range seed.entries[kw] {
			ix.Add(kw, t)
		}
	}

	for _, p := range posts {
		for _, kw := range candidateKeywords(p) {
			ix.Add(kw, Target{URL: p.URL, Title: p.Title})
		}
	}

	return ix
}

// candidateKeywords unions title keywords, categories, and tags preserving
// first-seen order.
func candidateKeywords(p *models.Post) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(kw string) {
		if kw == "" {
			return
		}
		if _, dup := seen[kw]; dup {
			return
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}

	for _, kw := range ExtractKeywords(p.Title) {
		add(kw)
	}
	for _, c := range p.Categories {
		add(c)
	}
	for _, t := range p.Tags {
		add(t)
	}
	return out
}
