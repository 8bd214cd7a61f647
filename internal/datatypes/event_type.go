// Package datatypes defines the record lifecycle events published inside the service.
package datatypes

// EventType is a record lifecycle event. Use String() for logs and metric attributes.
type EventType uint16

// Event types; string forms live in eventTypeNames.
const (
	DiaryEntryCreated EventType = iota
	DiaryEntryDeleted
	NoteCreated
	NoteDeleted
	FinanceRecordCreated
	FinanceRecordDeleted
)

var eventTypeNames = map[EventType]string{
	DiaryEntryCreated:    "diary_entry.created",
	DiaryEntryDeleted:    "diary_entry.deleted",
	NoteCreated:          "note.created",
	NoteDeleted:          "note.deleted",
	FinanceRecordCreated: "finance_record.created",
	FinanceRecordDeleted: "finance_record.deleted",
}

// String returns the dotted event name, or "" for an unknown value.
func (et EventType) String() string {
	return eventTypeNames[et]
}

// IsCreated reports whether et announces a new record.
func (et EventType) IsCreated() bool {
	switch et {
	case DiaryEntryCreated, NoteCreated, FinanceRecordCreated:
		return true
	default:
		return false
	}
}

// IsValidEventType reports whether s is the name of a known event type.
func IsValidEventType(s string) bool {
	for _, name := range eventTypeNames {
		if name == s {
			return true
		}
	}

	return false
}
