package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/llmprint/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/llmprint/internal/adapters/driven/table/csvtable"
	"github.com/custodia-labs/llmprint/internal/core/domain"
)

func sampleDocs() []domain.GeneratedDocument {
	return []domain.GeneratedDocument{
		{Model: "gpt-4o", Genre: "news", Prompt: "Write a headline", Text: "Markets rally."},
		{Model: "gpt-4o", Genre: "poetry", Prompt: "Write a haiku", Text: ""},
		{Model: "claude", Genre: "news", Prompt: "Write, with a comma", Text: "Rain expected."},
	}
}

func TestCorpusWriter_Save(t *testing.T) {
	sink := memory.NewCorpusSink()
	writer := NewCorpusWriter(sink, csvtable.NewRowWriter)

	summary, err := writer.Save(context.Background(), sampleDocs())

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Count())
	assert.Equal(t, []string{"gpt-4o_news_000.txt", "gpt-4o_poetry_001.txt", "claude_news_002.txt"}, sink.Names())

	text, ok := sink.Document("gpt-4o_news_000.txt")
	require.True(t, ok)
	assert.Equal(t, "Markets rally.", text)

	empty, ok := sink.Document("gpt-4o_poetry_001.txt")
	require.True(t, ok)
	assert.Empty(t, empty)

	expected := "doc_id,model,genre,prompt\n" +
		"gpt-4o_news_000.txt,gpt-4o,news,Write a headline\n" +
		"gpt-4o_poetry_001.txt,gpt-4o,poetry,Write a haiku\n" +
		"claude_news_002.txt,claude,news,\"Write, with a comma\"\n"
	assert.Equal(t, expected, sink.Metadata())
}

func TestCorpusWriter_MetadataMatchesFiles(t *testing.T) {
	sink := memory.NewCorpusSink()

	summary, err := NewCorpusWriter(sink, csvtable.NewRowWriter).Save(context.Background(), sampleDocs())
	require.NoError(t, err)

	table, err := csvtable.Read(strings.NewReader(sink.Metadata()))
	require.NoError(t, err)
	ids, _ := table.Column(domain.ColumnDocID)
	assert.Equal(t, sink.Names(), ids)
	for i, row := range summary.Rows {
		assert.Equal(t, ids[i], row.DocID)
	}
}

func TestCorpusWriter_Deterministic(t *testing.T) {
	first := memory.NewCorpusSink()
	second := memory.NewCorpusSink()

	_, err := NewCorpusWriter(first, csvtable.NewRowWriter).Save(context.Background(), sampleDocs())
	require.NoError(t, err)
	_, err = NewCorpusWriter(second, csvtable.NewRowWriter).Save(context.Background(), sampleDocs())
	require.NoError(t, err)

	assert.Equal(t, first.Names(), second.Names())
	assert.Equal(t, first.Metadata(), second.Metadata())
}

func TestCorpusWriter_WriteFailureLeavesConsistentPrefix(t *testing.T) {
	sink := memory.NewCorpusSink()
	sink.FailOn = "claude_news_002.txt"

	summary, err := NewCorpusWriter(sink, csvtable.NewRowWriter).Save(context.Background(), sampleDocs())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "claude_news_002.txt")
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 2, summary.Count())

	table, err := csvtable.Read(strings.NewReader(sink.Metadata()))
	require.NoError(t, err)
	ids, _ := table.Column(domain.ColumnDocID)
	assert.Equal(t, sink.Names(), ids)
}

func TestCorpusWriter_EmptyInput(t *testing.T) {
	sink := memory.NewCorpusSink()

	summary, err := NewCorpusWriter(sink, csvtable.NewRowWriter).Save(context.Background(), nil)

	require.NoError(t, err)
	assert.Zero(t, summary.Count())
	assert.Equal(t, "doc_id,model,genre,prompt\n", sink.Metadata())
}

func TestCorpusWriter_SanitisesNames(t *testing.T) {
	sink := memory.NewCorpusSink()
	docs := []domain.GeneratedDocument{{Model: "meta-llama/Llama-3", Genre: "short story", Text: "x"}}

	summary, err := NewCorpusWriter(sink, csvtable.NewRowWriter).Save(context.Background(), docs)

	require.NoError(t, err)
	assert.Equal(t, "meta-llama_Llama-3_short_story_000.txt", summary.Rows[0].DocID)
	assert.Equal(t, "meta-llama/Llama-3", summary.Rows[0].Model)
}

func TestCorpusWriter_CancelledContext(t *testing.T) {
	sink := memory.NewCorpusSink()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCorpusWriter(sink, csvtable.NewRowWriter).Save(ctx, sampleDocs())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sink.Names())
}
