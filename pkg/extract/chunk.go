package extract

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

type chunk struct {
	index int
	text  string
}

// splitIntoSentences breaks text into sentence-like segments. Blank lines
// always end a segment, so lists and headings stay intact.
func splitIntoSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}

		for _, part := range splitLineIntoSentences(trimmed) {
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(part)
			if endsSentence(part) {
				flush()
			}
		}
	}
	flush()

	return sentences
}

func splitLineIntoSentences(line string) []string {
	var parts []string
	start := 0
	for i, r := range line {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Sentence boundary only when followed by whitespace or end of line.
		next := i + 1
		if next < len(line) && line[next] != ' ' && line[next] != '\t' {
			continue
		}
		parts = append(parts, strings.TrimSpace(line[start:next]))
		start = next
	}
	if rest := strings.TrimSpace(line[start:]); rest != "" {
		parts = append(parts, rest)
	}
	return parts
}

func endsSentence(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

// buildChunks packs sentences into token-bounded chunks. A single sentence
// longer than maxTokens becomes its own oversized chunk rather than being
// cut mid-sentence.
func buildChunks(text string, encoder string, maxTokens int) ([]chunk, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	enc, err := tiktoken.GetEncoding(encoder)
	if err != nil {
		return nil, err
	}

	var chunks []chunk
	var current strings.Builder
	currentTokens := 0

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, chunk{
				index: len(chunks),
				text:  strings.TrimSpace(current.String()),
			})
			current.Reset()
			currentTokens = 0
		}
	}

	for _, sentence := range splitIntoSentences(text) {
		tokens := len(enc.Encode(sentence, nil, nil))
		if currentTokens > 0 && currentTokens+tokens > maxTokens {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
		currentTokens += tokens
	}
	flush()

	return chunks, nil
}
