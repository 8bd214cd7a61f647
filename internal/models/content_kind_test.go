package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContentScope(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []ContentKind
		wantErr bool
	}{
		{name: "all is diary and notes", input: "all", want: []ContentKind{ContentKindDiary, ContentKindNotes}},
		{name: "all is case insensitive", input: " ALL ", want: []ContentKind{ContentKindDiary, ContentKindNotes}},
		{name: "diary only", input: "diary", want: []ContentKind{ContentKindDiary}},
		{name: "notes only", input: "notes", want: []ContentKind{ContentKindNotes}},
		{name: "finances when named", input: "finances", want: []ContentKind{ContentKindFinances}},
		{name: "list in canonical order", input: "finances,diary", want: []ContentKind{ContentKindDiary, ContentKindFinances}},
		{name: "duplicates collapse", input: "notes, notes", want: []ContentKind{ContentKindNotes}},
		{name: "unknown kind", input: "todos", wantErr: true},
		{name: "empty", input: "  ", wantErr: true},
		{name: "trailing comma", input: "diary,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseContentScope(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidContentKind)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContentKind_IsValid(t *testing.T) {
	for _, k := range AllContentKinds() {
		assert.True(t, k.IsValid(), k)
	}

	assert.False(t, ContentKind("all").IsValid())
}
