package ingest

import (
	"strings"
	"unicode"
)

// splitSentences breaks text into sentences on terminal punctuation followed
// by whitespace. Abbreviation handling is deliberately naive: over-splitting
// costs a little retrieval quality, never correctness.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	runes := []rune(strings.TrimSpace(text))
	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if runes[i] == '.' || runes[i] == '!' || runes[i] == '?' {
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				sentence := strings.TrimSpace(b.String())
				if sentence != "" {
					sentences = append(sentences, sentence)
				}
				b.Reset()
				for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
					i++
				}
			}
		}
	}
	if tail := strings.TrimSpace(b.String()); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// chunkText packs sentences into chunks of at most chunkSize characters,
// carrying overlap characters' worth of trailing sentences into the next
// chunk for context continuity. A single sentence longer than chunkSize
// becomes its own chunk rather than being split mid-sentence.
func chunkText(text string, chunkSize, overlap int) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}
	if chunkSize <= 0 {
		return []string{text}
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, " "))

		// Seed the next chunk with trailing sentences up to the overlap budget.
		var carried []string
		carriedLen := 0
		for i := len(current) - 1; i >= 0 && overlap > 0; i-- {
			l := len(current[i])
			if carriedLen+l > overlap {
				break
			}
			carried = append([]string{current[i]}, carried...)
			carriedLen += l + 1
		}
		current = carried
		currentLen = carriedLen
	}

	for _, sentence := range sentences {
		if currentLen > 0 && currentLen+len(sentence)+1 > chunkSize {
			flush()
			// Overlap alone may already exceed the budget for this sentence.
			if currentLen > 0 && currentLen+len(sentence)+1 > chunkSize {
				current = nil
				currentLen = 0
			}
		}
		current = append(current, sentence)
		currentLen += len(sentence) + 1
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	// Drop a trailing chunk that is pure overlap of the previous one.
	if n := len(chunks); n >= 2 && strings.HasSuffix(chunks[n-2], chunks[n-1]) {
		chunks = chunks[:n-1]
	}

	return chunks
}
