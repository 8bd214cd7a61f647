package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ContentKind identifies one searchable table.
type ContentKind string

// Content kinds.
const (
	ContentKindDiary    ContentKind = "diary"
	ContentKindNotes    ContentKind = "notes"
	ContentKindFinances ContentKind = "finances"
)

// ContentScopeAll selects diary entries and notes. Finance records are only searched when named.
const ContentScopeAll = "all"

// ErrInvalidContentKind is returned for an unknown kind or scope.
var ErrInvalidContentKind = errors.New("invalid content kind")

// allContentKinds is the canonical kind order used for stable scopes.
var allContentKinds = []ContentKind{ContentKindDiary, ContentKindNotes, ContentKindFinances}

// AllContentKinds returns every content kind in canonical order.
func AllContentKinds() []ContentKind {
	return slices.Clone(allContentKinds)
}

// IsValid reports whether k is a known content kind.
func (k ContentKind) IsValid() bool {
	return slices.Contains(allContentKinds, k)
}

func (k ContentKind) String() string { return string(k) }

// ParseContentKind parses a single kind name.
func ParseContentKind(s string) (ContentKind, error) {
	k := ContentKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidContentKind, s)
	}

	return k, nil
}

// ParseContentScope parses a contentKind parameter: "all", a single kind, or a comma-separated
// list of kinds. The result is deduplicated and in canonical order.
func ParseContentScope(s string) ([]ContentKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidContentKind)
	}

	if s == ContentScopeAll {
		return []ContentKind{ContentKindDiary, ContentKindNotes}, nil
	}

	seen := make(map[ContentKind]bool, len(allContentKinds))

	for part := range strings.SplitSeq(s, ",") {
		k, err := ParseContentKind(part)
		if err != nil {
			return nil, err
		}

		seen[k] = true
	}

	kinds := make([]ContentKind, 0, len(seen))

	for _, k := range allContentKinds {
		if seen[k] {
			kinds = append(kinds, k)
		}
	}

	return kinds, nil
}
