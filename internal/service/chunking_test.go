package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextEmptyInput(t *testing.T) {
	assert.Nil(t, splitText("", DefaultChunkConfig()))
	assert.Nil(t, splitText("   \n\t  ", DefaultChunkConfig()))
}

func TestSplitTextShortInputSingleChunk(t *testing.T) {
	text := "Alice said: I love the onboarding flow. Bob said: The pricing page confused me."

	chunks := splitText(text, DefaultChunkConfig())

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitTextPrefersParagraphBreaks(t *testing.T) {
	para1 := strings.Repeat("alpha ", 10)
	para2 := strings.Repeat("beta ", 10)
	text := strings.TrimSpace(para1) + "\n\n" + strings.TrimSpace(para2)

	chunks := splitText(text, ChunkConfig{ChunkSize: 70, Overlap: 0})

	require.Len(t, chunks, 2)
	assert.Equal(t, strings.TrimSpace(para1)+"\n\n", chunks[0])
	assert.Equal(t, strings.TrimSpace(para2), chunks[1])
}

func TestSplitTextChunkSizeBound(t *testing.T) {
	configs := []ChunkConfig{
		{ChunkSize: 50, Overlap: 10},
		{ChunkSize: 100, Overlap: 25},
		{ChunkSize: 1000, Overlap: 100},
	}
	text := strings.Repeat("The interviewee described the checkout funnel in detail. ", 80)

	for _, cfg := range configs {
		for _, chunk := range splitText(text, cfg) {
			assert.LessOrEqual(t, utf8.RuneCountInString(chunk), cfg.ChunkSize,
				"chunk exceeds size for config %+v", cfg)
		}
	}
}

func TestSplitTextUnsplittableToken(t *testing.T) {
	// A single word longer than the chunk size gets hard-split at the
	// character level rather than dropped or kept oversized.
	text := strings.Repeat("x", 120)

	chunks := splitText(text, ChunkConfig{ChunkSize: 50, Overlap: 0})

	require.Len(t, chunks, 3)
	joined := strings.Join(chunks, "")
	assert.Equal(t, text, joined)
}

func TestSplitTextDeterministic(t *testing.T) {
	text := strings.Repeat("Interviewer: how did you find setup?\nUser: honestly pretty confusing at first.\n\n", 40)
	cfg := ChunkConfig{ChunkSize: 200, Overlap: 40}

	first := splitText(text, cfg)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, splitText(text, cfg))
	}
}

func TestSplitTextCoversSourceWithOverlap(t *testing.T) {
	// Distinct numbered sentences so overlap detection is unambiguous.
	var b strings.Builder
	for i := 0; i < 60; i++ {
		b.WriteString("Sentence number ")
		b.WriteRune(rune('a' + i%26))
		b.WriteString(" talks about feature ")
		b.WriteRune(rune('A' + (i*7)%26))
		b.WriteString(". ")
	}
	text := strings.TrimSpace(b.String())
	cfg := ChunkConfig{ChunkSize: 120, Overlap: 30}

	chunks := splitText(text, cfg)
	require.NotEmpty(t, chunks)

	// Every chunk is a contiguous substring of the source.
	for _, chunk := range chunks {
		assert.Contains(t, text, chunk)
	}

	// Dropping each chunk's leading overlap reconstructs the source.
	reconstructed := chunks[0]
	for _, chunk := range chunks[1:] {
		overlap := suffixPrefixOverlap(reconstructed, chunk)
		reconstructed += chunk[overlap:]
	}
	assert.Equal(t, text, reconstructed)
}

func TestSplitTextAdjacentChunksShareOverlap(t *testing.T) {
	text := strings.Repeat("every word here is unique-ish token ", 60)
	cfg := ChunkConfig{ChunkSize: 100, Overlap: 20}

	chunks := splitText(text, cfg)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		shared := suffixPrefixOverlap(chunks[i-1], chunks[i])
		assert.LessOrEqual(t, shared, cfg.Overlap+cfg.ChunkSize) // sanity
		assert.Greater(t, shared, 0, "chunks %d and %d share no context", i-1, i)
	}
}

// suffixPrefixOverlap returns the length in bytes of the longest suffix of a
// that is also a prefix of b.
func suffixPrefixOverlap(a, b string) int {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	for n := max; n > 0; n-- {
		if strings.HasSuffix(a, b[:n]) {
			return n
		}
	}
	return 0
}
