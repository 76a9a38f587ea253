package domain

import "strings"

// The frontend speaks a fixed status vocabulary while the backend stores
// organization-defined slugs. The tables below cover the canonical default
// workflow; anything else goes through a best-effort case-and-separator
// transform that is not guaranteed to round trip for custom slugs.

// Frontend status tokens. TokenTODO is a legacy alias accepted on input
// but never produced on output.
const (
	TokenBacklog    = "BACKLOG"
	TokenToDo       = "TO_DO"
	TokenInProgress = "IN_PROGRESS"
	TokenReview     = "REVIEW"
	TokenDone       = "DONE"
	TokenTODO       = "TODO"
)

// DefaultToken is the displayed status for issues without a workflow
// status assigned.
const DefaultToken = TokenBacklog

var slugToToken = map[string]string{
	"backlog":     TokenBacklog,
	"to-do":       TokenToDo,
	"in-progress": TokenInProgress,
	"review":      TokenReview,
	"done":        TokenDone,
}

var tokenToSlug = map[string]string{
	TokenBacklog:    "backlog",
	TokenToDo:       "to-do",
	TokenInProgress: "in-progress",
	TokenReview:     "review",
	TokenDone:       "done",
	TokenTODO:       "to-do",
}

// TokenForSlug translates a backend slug into the frontend vocabulary.
// Canonical slugs use the exact table; any other slug falls back to
// upper-casing with underscores.
func TokenForSlug(slug string) string {
	if token, ok := slugToToken[slug]; ok {
		return token
	}
	return strings.ReplaceAll(strings.ToUpper(slug), "-", "_")
}

// SlugForToken translates a frontend token into a backend slug. Canonical
// tokens (and the legacy TODO alias) use the exact table; any other token
// falls back to lower-casing with hyphens.
func SlugForToken(token string) string {
	if slug, ok := tokenToSlug[token]; ok {
		return slug
	}
	return strings.ReplaceAll(strings.ToLower(token), "_", "-")
}
