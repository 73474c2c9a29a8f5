package ui

import (
	"bytes"
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/pagetalk/pagetalk/internal/chat"
)

func TestIsTTYFalseForBuffer(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
}

func TestWriterFormats(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.Success("ingested %d passages", 12)
	w.Error("no such document")
	w.Block("line one\nline two")

	out := buf.String()
	assert.Contains(t, out, "✅ ingested 12 passages")
	assert.Contains(t, out, "❌ no such document")
	assert.Contains(t, out, "  line one\n  line two")
}

func TestChatModelRecordsExchanges(t *testing.T) {
	// Given a chat model with a stub ask function
	m := newChatModel(context.Background(), "novel",
		func(ctx context.Context, q string) (*chat.Answer, error) {
			return &chat.Answer{Text: "An answer.", Grounded: true}, nil
		})

	// When an answer message arrives
	updated, _ := m.Update(answerMsg{
		question: "what happens",
		answer:   &chat.Answer{Text: "An answer.", Grounded: true},
	})

	// Then the transcript grows and renders the exchange
	cm := updated.(*chatModel)
	assert.Len(t, cm.history, 1)
	view := cm.View()
	assert.Contains(t, view, "what happens")
	assert.Contains(t, view, "An answer.")
}

func TestChatModelRendersErrors(t *testing.T) {
	m := newChatModel(context.Background(), "novel", nil)

	updated, _ := m.Update(answerMsg{question: "q", err: errors.New("service down")})

	view := updated.(*chatModel).View()
	assert.Contains(t, view, "service down")
}

func TestChatModelQuitsOnEscape(t *testing.T) {
	m := newChatModel(context.Background(), "novel", nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.NotNil(t, cmd)
}
