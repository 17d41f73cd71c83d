package api

import (
	"github.com/asakura/interlink/internal/postservice"
	"github.com/asakura/interlink/internal/seo"
)

// AnnotateRequest is the request body for POST /annotate.
type AnnotateRequest struct {
	Write bool `json:"write"`
}

// PostDetail is the full post response type (aliased from the domain layer).
type PostDetail = postservice.PostDetail

// PostListItem is a lightweight item in a list response (aliased from the domain layer).
type PostListItem = postservice.PostListItem

// PostListResponse wraps paginated post listings.
type PostListResponse struct {
	Posts []PostListItem `json:"posts"`
	Total int            `json:"total"`
}

// AnnotateResponse wraps the per-post rewrite results.
type AnnotateResponse struct {
	Write    bool                         `json:"write"`
	Inserted int                          `json:"inserted"`
	Results  []postservice.AnnotateResult `json:"results"`
}

// ReportResponse wraps the SEO checklist run.
type ReportResponse struct {
	AverageScore float64         `json:"average_score"`
	LowScoring   int             `json:"low_scoring"`
	Posts        []*seo.Analysis `json:"posts"`
}
