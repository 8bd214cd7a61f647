package service

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diarybot/diarybot/internal/models"
)

func TestQueryInterpreter_Interpret(t *testing.T) {
	interp, err := NewQueryInterpreter(nil, false)
	require.NoError(t, err)

	tests := []struct {
		name       string
		raw        string
		wantFilter models.TimeFilter
		wantAmbig  bool
	}{
		{name: "today", raw: "What did I do today?", wantFilter: models.TimeFilterToday},
		{name: "last week possessive", raw: "last week's summary", wantFilter: models.TimeFilterLastWeek},
		{name: "today beats yesterday", raw: "notes about today and yesterday", wantFilter: models.TimeFilterToday, wantAmbig: true},
		{name: "priority not position", raw: "yesterday or today", wantFilter: models.TimeFilterToday, wantAmbig: true},
		{name: "case insensitive", raw: "THIS WEEK at work", wantFilter: models.TimeFilterThisWeek},
		{name: "substring match", raw: "todays plans", wantFilter: models.TimeFilterToday},
		{name: "none", raw: "coffee with Sam", wantFilter: models.TimeFilterNone},
		{name: "yesterday", raw: "Yesterday I ran", wantFilter: models.TimeFilterYesterday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := interp.Interpret(tt.raw)
			assert.Equal(t, tt.wantFilter, got.TimeFilter)
			assert.Equal(t, tt.wantAmbig, got.Ambiguous())
			assert.Equal(t, tt.raw, got.Term, "term is not modified by default")
		})
	}
}

func TestQueryInterpreter_MatchedInPriorityOrder(t *testing.T) {
	interp, err := NewQueryInterpreter(nil, false)
	require.NoError(t, err)

	got := interp.Interpret("last week, yesterday and today")
	assert.Equal(t, []string{"today", "yesterday", "last week"}, got.Matched)
}

func TestQueryInterpreter_CustomPriority(t *testing.T) {
	interp, err := NewQueryInterpreter([]string{"Yesterday", "today"}, false)
	require.NoError(t, err)

	got := interp.Interpret("notes about today and yesterday")
	assert.Equal(t, models.TimeFilterYesterday, got.TimeFilter)

	got = interp.Interpret("this week")
	assert.Equal(t, models.TimeFilterNone, got.TimeFilter, "keywords left out of the list are ignored")
}

func TestNewQueryInterpreter_RejectsBadPriority(t *testing.T) {
	_, err := NewQueryInterpreter([]string{"tomorrow"}, false)
	require.Error(t, err)

	_, err = NewQueryInterpreter([]string{"today", "TODAY"}, false)
	require.Error(t, err)
}

func TestQueryInterpreter_StripKeywords(t *testing.T) {
	interp, err := NewQueryInterpreter(nil, true)
	require.NoError(t, err)

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "What did I do Today?", want: "What did I do ?"},
		{raw: "gym last week", want: "gym"},
		{raw: "today", want: "today"},
		{raw: "today and yesterday", want: "and yesterday"},
		{raw: "\u212A today \u023A\u023A", want: "\u212A \u023A\u023A"},
		{raw: "Café THIS WEEK crème", want: "Café crème"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			term := interp.Interpret(tt.raw).Term
			assert.Equal(t, tt.want, term)
			assert.True(t, utf8.ValidString(term))
		})
	}
}
