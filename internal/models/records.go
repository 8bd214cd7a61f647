// Package models defines the domain types of the diary service: searchable records, search
// queries and results.
package models

import (
	"time"

	"github.com/google/uuid"
)

// DiaryEntry is a free-form journal entry.
type DiaryEntry struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	Mood      *string   `json:"mood,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateDiaryEntryRequest represents the request to create a diary entry.
type CreateDiaryEntryRequest struct {
	OwnerID string   `json:"ownerId" validate:"required,no_null_bytes,max=255"`
	Content string   `json:"content" validate:"required,no_null_bytes,min=1,max=20000"`
	Mood    *string  `json:"mood,omitempty" validate:"omitempty,no_null_bytes,max=64"`
	Tags    []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,no_null_bytes,min=1,max=64"`
}

// Note is a titled note.
type Note struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateNoteRequest represents the request to create a note.
type CreateNoteRequest struct {
	OwnerID string `json:"ownerId" validate:"required,no_null_bytes,max=255"`
	Title   string `json:"title" validate:"required,no_null_bytes,min=1,max=255"`
	Content string `json:"content" validate:"required,no_null_bytes,min=1,max=20000"`
}

// FinanceType is income or expense.
type FinanceType string

// Finance types.
const (
	FinanceTypeIncome  FinanceType = "income"
	FinanceTypeExpense FinanceType = "expense"
)

// FinanceRecord is one income or expense line. Its description is the searchable body.
type FinanceRecord struct {
	ID          uuid.UUID   `json:"id"`
	OwnerID     string      `json:"ownerId"`
	Amount      float64     `json:"amount"`
	Type        FinanceType `json:"type"`
	Category    string      `json:"category"`
	Description *string     `json:"description,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// CreateFinanceRecordRequest represents the request to create a finance record.
type CreateFinanceRecordRequest struct {
	OwnerID     string      `json:"ownerId" validate:"required,no_null_bytes,max=255"`
	Amount      float64     `json:"amount" validate:"gt=0"`
	Type        FinanceType `json:"type" validate:"required,oneof=income expense"`
	Category    string      `json:"category" validate:"required,no_null_bytes,min=1,max=64"`
	Description *string     `json:"description,omitempty" validate:"omitempty,no_null_bytes,max=2000"`
}

// RecordFilters scopes list, get and delete operations to one owner.
type RecordFilters struct {
	OwnerID string `form:"ownerId" validate:"required,no_null_bytes,max=255"`
	Limit   int    `form:"limit" validate:"omitempty,min=1,max=1000"`
	Offset  int    `form:"offset" validate:"omitempty,min=0"`
}

// ListResponse is the envelope for list endpoints.
type ListResponse[T any] struct {
	Data   []T `json:"data"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// EmbeddingTarget is the text of one record to embed.
type EmbeddingTarget struct {
	Kind ContentKind
	ID   uuid.UUID
	Text string
}
