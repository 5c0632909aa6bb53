package formatter

import (
	"testing"
	"time"

	"github.com/docuchat/docuchat-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_RendersTranscript(t *testing.T) {
	f := NewPDFFormatter()

	now := time.Now()
	data, err := f.Format("Trip planning", []*entity.Message{
		{Sender: entity.SenderUser, Content: "Where should I go?", CreatedAt: now},
		{Sender: entity.SenderAI, Content: "Somewhere warm.", CreatedAt: now},
	})

	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestFormat_EmptyConversation(t *testing.T) {
	f := NewPDFFormatter()

	data, err := f.Format("Empty", nil)

	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestContentMetadata(t *testing.T) {
	f := NewPDFFormatter()
	assert.Equal(t, "application/pdf", f.ContentType())
	assert.Equal(t, ".pdf", f.FileExtension())
}
