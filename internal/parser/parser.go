// Package parser extracts frontmatter and post metadata from Markdown content.
package parser

import (
	"bytes"
	"path"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/asakura/interlink/internal/models"
)

var datePrefixRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-`)

// Result holds the output of parsing a Markdown post.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	Title       string
	Categories  []string
	Tags        []string
	Description string
}

// Parse extracts frontmatter, body, and post metadata from raw Markdown bytes.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	return &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       deriveTitle(fm, body),
		Categories:  stringList(fm, "categories"),
		Tags:        stringList(fm, "tags"),
		Description: stringField(fm, "description"),
	}, nil
}

// PostFromResult converts a parse result into a Post with its canonical URL.
func PostFromResult(relPath string, r *Result) *models.Post {
	return &models.Post{
		Path:        relPath,
		URL:         URLForPost(relPath, r.Frontmatter),
		Title:       r.Title,
		Categories:  r.Categories,
		Tags:        r.Tags,
		Description: r.Description,
		Frontmatter: r.Frontmatter,
		Body:        r.Body,
	}
}

// URLForPost returns the canonical URL for a post: the frontmatter "permalink"
// when present, otherwise derived from a Jekyll-style file name
// (2024-01-02-my-slug.md -> /my-slug/).
func URLForPost(relPath string, fm map[string]interface{}) string {
	if p := stringField(fm, "permalink"); p != "" {
		return p
	}
	name := path.Base(strings.ReplaceAll(relPath, "\\", "/"))
	name = strings.TrimSuffix(name, path.Ext(name))
	name = datePrefixRe.ReplaceAllString(name, "")
	if name == "" {
		return "/"
	}
	return "/" + name + "/"
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	// Find end delimiter.
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter — treat everything as body.
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	// Body starts after closing delimiter line.
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML — return body only, no error (malformed posts still build).
		return nil, string(data), nil
	}

	return fm, body, nil
}

// stringList coerces a frontmatter field that may be a YAML list or a single
// space-separated string (both forms appear in Jekyll posts) into a
// deduplicated slice preserving first occurrence.
func stringList(fm map[string]interface{}, key string) []string {
	if fm == nil {
		return nil
	}
	raw, ok := fm[key]
	if !ok {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case string:
		for _, s := range strings.Fields(v) {
			add(s)
		}
	}
	return out
}

func stringField(fm map[string]interface{}, key string) string {
	if fm == nil {
		return ""
	}
	if s, ok := fm[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]interface{}, body string) string {
	if t := stringField(fm, "title"); t != "" {
		return t
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
