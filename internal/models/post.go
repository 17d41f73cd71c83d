// Package models defines the domain types for Interlink.
package models

import "time"

// Post represents a parsed Markdown blog post.
type Post struct {
	Path        string                 `json:"path"`
	URL         string                 `json:"url"`
	Title       string                 `json:"title,omitempty"`
	Categories  []string               `json:"categories,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
	Description string                 `json:"description,omitempty"`
	Frontmatter map[string]interface{} `json:"frontmatter,omitempty"`
	Body        string                 `json:"body"`
	Checksum    string                 `json:"checksum"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// PostMetadata is a lightweight representation returned by list operations.
type PostMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InsertedLink records one internal link placed into a post body.
type InsertedLink struct {
	SourceURL string `json:"source_url"`
	TargetURL string `json:"target_url"`
	Keyword   string `json:"keyword"`
}
