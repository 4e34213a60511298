package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	paragraphSep = "\n\n"
	sentenceSep  = " "
)

// TextChunker splits a document into passages of at most size runes. Each
// passage after the first repeats the last overlap runes of the one before it.
type TextChunker struct {
	size    int
	overlap int
}

func NewTextChunker(size, overlap int) *TextChunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap > size/2 {
		overlap = size / 2
	}
	return &TextChunker{size: size, overlap: overlap}
}

type textUnit struct {
	text string
	sep  string
}

// Split packs paragraphs greedily into passages. Paragraphs that do not fit are
// broken into sentences, and sentences that still do not fit are cut by length.
func (c *TextChunker) Split(text string) []string {
	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)

	for _, u := range c.units(text) {
		n := utf8.RuneCountInString(u.text)
		sepLen := utf8.RuneCountInString(u.sep)

		if curLen > 0 && curLen+sepLen+n > c.size {
			chunk := cur.String()
			chunks = append(chunks, chunk)

			tail := strings.TrimLeftFunc(lastRunes(chunk, c.overlap), unicode.IsSpace)
			cur.Reset()
			cur.WriteString(tail)
			curLen = utf8.RuneCountInString(tail)
		}

		if curLen > 0 {
			cur.WriteString(u.sep)
			curLen += sepLen
		}
		cur.WriteString(u.text)
		curLen += n
	}

	if curLen > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// unitLimit leaves room for the overlap tail and a separator in front of every unit.
func (c *TextChunker) unitLimit() int {
	limit := c.size - c.overlap - len(paragraphSep)
	if limit < 1 {
		return 1
	}
	return limit
}

func (c *TextChunker) units(text string) []textUnit {
	limit := c.unitLimit()
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var units []textUnit
	for _, para := range strings.Split(text, paragraphSep) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if utf8.RuneCountInString(para) <= limit {
			units = append(units, textUnit{text: para, sep: paragraphSep})
			continue
		}

		sep := paragraphSep
		for _, sentence := range splitSentences(para) {
			for i, piece := range cutRunes(sentence, limit) {
				if i > 0 {
					sep = ""
				}
				units = append(units, textUnit{text: piece, sep: sep})
				sep = sentenceSep
			}
		}
	}
	return units
}

// splitSentences breaks text after '.', '!' or '?' when followed by whitespace.
// Terminators stay with their sentence.
func splitSentences(text string) []string {
	var (
		sentences []string
		start     int
	)

	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}

	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func cutRunes(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	pieces := make([]string, 0, len(runes)/limit+1)
	for len(runes) > limit {
		pieces = append(pieces, string(runes[:limit]))
		runes = runes[limit:]
	}
	if len(runes) > 0 {
		pieces = append(pieces, string(runes))
	}
	return pieces
}

func lastRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}
