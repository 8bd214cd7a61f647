package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/diarybot/diarybot/internal/models"
)

// timeKeywords maps the phrases recognized in a query to the filter they select.
var timeKeywords = map[string]models.TimeFilter{
	"today":     models.TimeFilterToday,
	"yesterday": models.TimeFilterYesterday,
	"this week": models.TimeFilterThisWeek,
	"last week": models.TimeFilterLastWeek,
}

// DefaultTimeKeywordPriority is the order keywords are checked in when none is configured.
var DefaultTimeKeywordPriority = []string{"today", "yesterday", "this week", "last week"}

// Interpretation is the interpreter's reading of one raw query.
type Interpretation struct {
	Term       string
	TimeFilter models.TimeFilter
	// Matched lists every keyword found, in priority order. The first one decides TimeFilter.
	Matched []string
}

// Ambiguous reports whether the query mentioned more than one time window.
func (i Interpretation) Ambiguous() bool {
	return len(i.Matched) > 1
}

// QueryInterpreter derives a time filter from free text by case-insensitive substring match
// against an ordered keyword list. The first keyword in priority order wins.
type QueryInterpreter struct {
	priority      []string
	stripKeywords bool
	// strip holds one case-insensitive pattern per keyword; nil unless stripKeywords.
	strip map[string]*regexp.Regexp
}

// NewQueryInterpreter validates priority and returns an interpreter. An empty priority uses
// DefaultTimeKeywordPriority. With stripKeywords the winning keyword is removed from the term.
func NewQueryInterpreter(priority []string, stripKeywords bool) (*QueryInterpreter, error) {
	if len(priority) == 0 {
		priority = DefaultTimeKeywordPriority
	}

	normalized := make([]string, 0, len(priority))
	seen := make(map[string]bool, len(priority))

	for _, kw := range priority {
		kw = strings.ToLower(strings.Join(strings.Fields(kw), " "))
		if _, ok := timeKeywords[kw]; !ok {
			return nil, fmt.Errorf("unknown time keyword %q", kw)
		}

		if seen[kw] {
			return nil, fmt.Errorf("duplicate time keyword %q", kw)
		}

		seen[kw] = true
		normalized = append(normalized, kw)
	}

	qi := &QueryInterpreter{priority: normalized, stripKeywords: stripKeywords}

	if stripKeywords {
		qi.strip = make(map[string]*regexp.Regexp, len(normalized))
		for _, kw := range normalized {
			qi.strip[kw] = regexp.MustCompile("(?i)" + regexp.QuoteMeta(kw))
		}
	}

	return qi, nil
}

// Interpret reads raw. It never fails; a query with no keyword gets TimeFilterNone.
func (q *QueryInterpreter) Interpret(raw string) Interpretation {
	lowered := strings.ToLower(raw)
	out := Interpretation{Term: raw, TimeFilter: models.TimeFilterNone}

	for _, kw := range q.priority {
		if strings.Contains(lowered, kw) {
			out.Matched = append(out.Matched, kw)
		}
	}

	if len(out.Matched) == 0 {
		return out
	}

	winner := out.Matched[0]
	out.TimeFilter = timeKeywords[winner]

	if q.stripKeywords {
		out.Term = stripKeyword(raw, q.strip[winner])
	}

	return out
}

// stripKeyword removes every match of pattern from raw and collapses whitespace. When nothing
// would remain the raw query is kept so the search term is never empty.
func stripKeyword(raw string, pattern *regexp.Regexp) string {
	if pattern == nil {
		return raw
	}

	term := strings.Join(strings.Fields(pattern.ReplaceAllString(raw, " ")), " ")
	if term == "" {
		return raw
	}

	return term
}
