package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diarybot/diarybot/internal/datatypes"
	"github.com/diarybot/diarybot/internal/models"
)

type recordingProvider struct {
	mu     sync.Mutex
	events []Event
	block  chan struct{}
}

func (p *recordingProvider) PublishEvent(_ context.Context, event Event) {
	if p.block != nil {
		<-p.block
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)
}

func (p *recordingProvider) received() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]Event(nil), p.events...)
}

func TestMessagePublisherManager_FansOutToAllProviders(t *testing.T) {
	m := NewMessagePublisherManager(nil)
	a, b := &recordingProvider{}, &recordingProvider{}
	m.RegisterProvider(a)
	m.RegisterProvider(b)

	note := &models.Note{Content: "x"}
	m.PublishEvent(context.Background(), datatypes.NoteCreated, note)
	m.PublishEvent(context.Background(), datatypes.NoteDeleted, note)
	m.Shutdown()

	for _, p := range []*recordingProvider{a, b} {
		got := p.received()
		require.Len(t, got, 2)
		assert.Equal(t, datatypes.NoteCreated, got[0].Type)
		assert.Equal(t, datatypes.NoteDeleted, got[1].Type)
		assert.Same(t, note, got[0].Data)
		assert.NotEqual(t, got[0].ID, got[1].ID)
	}
}

func TestMessagePublisherManager_DiscardsWhenFull(t *testing.T) {
	block := make(chan struct{})
	p := &recordingProvider{block: block}

	m := newMessagePublisherManager(1, nil)
	m.RegisterProvider(p)

	// The worker takes one event and blocks in the provider; one more fits in the buffer.
	for range 10 {
		m.PublishEvent(context.Background(), datatypes.DiaryEntryCreated, &models.DiaryEntry{})
	}

	close(block)
	m.Shutdown()

	got := p.received()
	assert.GreaterOrEqual(t, len(got), 1)
	assert.LessOrEqual(t, len(got), 2)
}
