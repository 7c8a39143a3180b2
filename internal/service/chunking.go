package service

import (
	"strings"
	"unicode/utf8"
)

// ChunkConfig controls how transcripts are split for embedding.
type ChunkConfig struct {
	ChunkSize int
	Overlap   int
}

// DefaultChunkConfig provides the retrieval defaults: 1000-rune chunks with
// 100 runes of overlap.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		ChunkSize: 1000,
		Overlap:   100,
	}
}

// chunkSeparators is the fallback hierarchy: paragraph break, line break,
// sentence break, word break, then individual characters.
var chunkSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// splitText splits text into chunks of at most ChunkSize runes, breaking at
// the coarsest separator that keeps pieces within budget and only
// descending to finer separators for pieces that still exceed it. Adjacent
// chunks share up to Overlap trailing/leading runes of the source.
// Deterministic for a given (text, config); empty input yields nil.
func splitText(text string, cfg ChunkConfig) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	if cfg.ChunkSize <= 0 {
		cfg = DefaultChunkConfig()
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Overlap >= cfg.ChunkSize {
		cfg.Overlap = cfg.ChunkSize - 1
	}

	pieces := splitBySeparators(clean, chunkSeparators, cfg.ChunkSize)
	return mergePieces(pieces, cfg)
}

// splitBySeparators breaks text into pieces no longer than maxRunes.
// Separators stay attached to the preceding piece, so concatenating the
// pieces reproduces the input exactly.
func splitBySeparators(text string, separators []string, maxRunes int) []string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return []string{text}
	}

	sep := separators[0]
	if sep == "" {
		return splitRunes(text, maxRunes)
	}

	var out []string
	for _, part := range strings.SplitAfter(text, sep) {
		if part == "" {
			continue
		}
		if utf8.RuneCountInString(part) <= maxRunes {
			out = append(out, part)
			continue
		}
		out = append(out, splitBySeparators(part, separators[1:], maxRunes)...)
	}
	return out
}

func splitRunes(text string, maxRunes int) []string {
	runes := []rune(text)
	out := make([]string, 0, (len(runes)+maxRunes-1)/maxRunes)
	for start := 0; start < len(runes); start += maxRunes {
		end := start + maxRunes
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

// mergePieces greedily packs pieces into chunks of at most ChunkSize runes,
// seeding each new chunk with the trailing Overlap runes of the previous
// chunk. The seed shrinks when the next piece alone nearly fills the
// budget, so the size bound always holds.
func mergePieces(pieces []string, cfg ChunkConfig) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	for _, piece := range pieces {
		pl := utf8.RuneCountInString(piece)
		if currentLen > 0 && currentLen+pl > cfg.ChunkSize {
			chunk := current.String()
			chunks = append(chunks, chunk)

			seed := tailRunes(chunk, cfg.Overlap)
			if utf8.RuneCountInString(seed)+pl > cfg.ChunkSize {
				seed = tailRunes(chunk, cfg.ChunkSize-pl)
			}
			current.Reset()
			current.WriteString(seed)
			currentLen = utf8.RuneCountInString(seed)
		}
		current.WriteString(piece)
		currentLen += pl
	}

	if currentLen > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func tailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
