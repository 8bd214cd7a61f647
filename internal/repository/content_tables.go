package repository

import (
	"fmt"

	"github.com/diarybot/diarybot/internal/models"
)

// contentTable describes where a content kind lives. body is the SQL expression of the
// searchable text and must match the full-text index expression in the schema.
type contentTable struct {
	name string
	body string
}

var contentTables = map[models.ContentKind]contentTable{
	models.ContentKindDiary:    {name: "diary_entries", body: "content"},
	models.ContentKindNotes:    {name: "notes", body: "content"},
	models.ContentKindFinances: {name: "finances", body: "COALESCE(description, '')"},
}

func tableFor(kind models.ContentKind) (contentTable, error) {
	t, ok := contentTables[kind]
	if !ok {
		return contentTable{}, fmt.Errorf("%w: %q", models.ErrInvalidContentKind, kind)
	}

	return t, nil
}

// timeFilterConditions restrict created_at to a calendar window of the database's CURRENT_DATE.
// Weeks start on Monday (date_trunc ISO semantics).
var timeFilterConditions = map[models.TimeFilter]string{
	models.TimeFilterNone:      "",
	models.TimeFilterToday:     "created_at::date = CURRENT_DATE",
	models.TimeFilterYesterday: "created_at::date = CURRENT_DATE - 1",
	models.TimeFilterThisWeek:  "date_trunc('week', created_at) = date_trunc('week', CURRENT_DATE::timestamptz)",
	models.TimeFilterLastWeek:  "date_trunc('week', created_at) = date_trunc('week', CURRENT_DATE::timestamptz) - INTERVAL '1 week'",
}

func timeCondition(f models.TimeFilter) (string, error) {
	if f == "" {
		return "", nil
	}

	cond, ok := timeFilterConditions[f]
	if !ok {
		return "", fmt.Errorf("unknown time filter %q", f)
	}

	return cond, nil
}
