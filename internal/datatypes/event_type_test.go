package datatypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "diary_entry.created", DiaryEntryCreated.String())
	assert.Equal(t, "finance_record.deleted", FinanceRecordDeleted.String())
	assert.Empty(t, EventType(999).String())
}

func TestEventType_IsCreated(t *testing.T) {
	assert.True(t, NoteCreated.IsCreated())
	assert.False(t, NoteDeleted.IsCreated())
}

func TestIsValidEventType(t *testing.T) {
	assert.True(t, IsValidEventType("note.created"))
	assert.False(t, IsValidEventType("webhook.created"))
}
