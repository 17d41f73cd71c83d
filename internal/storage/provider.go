// Package storage defines the blog-tree file-system abstraction.
package storage

import "github.com/asakura/interlink/internal/models"

// Provider is the interface for blog file operations.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to the blog root).
	List(dir string) ([]models.PostMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the blog root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the blog root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the blog root).
	Delete(path string) error
}
