package rag

import "strings"

const (
	chunkSize    = 1200
	chunkOverlap = 200
)

// splitText cuts a document into retrieval-sized chunks. Paragraph boundaries
// are respected where possible; oversized paragraphs are split at the nearest
// space. Consecutive chunks overlap so sentences near a cut stay findable.
func splitText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	paragraphs := strings.Split(text, "\n\n")

	var (
		chunks  []string
		current strings.Builder
	)

	flush := func() {
		c := strings.TrimSpace(current.String())
		if c != "" {
			chunks = append(chunks, c)
		}
		current.Reset()
	}

	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		for len(p) > chunkSize {
			cut := lastSpaceBefore(p, chunkSize)
			flushPiece := strings.TrimSpace(p[:cut])
			if current.Len() > 0 {
				flush()
			}
			chunks = append(chunks, flushPiece)
			p = strings.TrimSpace(p[cut:])
		}

		if current.Len() > 0 && current.Len()+len(p)+2 > chunkSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	flush()

	return withOverlap(chunks)
}

// withOverlap prefixes each chunk after the first with the tail of its
// predecessor.
func withOverlap(chunks []string) []string {
	if len(chunks) < 2 {
		return chunks
	}
	out := make([]string, len(chunks))
	out[0] = chunks[0]
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tailStart := len(prev) - chunkOverlap
		if tailStart < 0 {
			tailStart = 0
		}
		for tailStart > 0 && prev[tailStart]&0xC0 == 0x80 {
			tailStart--
		}
		tail := prev[firstSpaceAfter(prev, tailStart):]
		tail = strings.TrimSpace(tail)
		if tail != "" {
			out[i] = tail + "\n\n" + chunks[i]
		} else {
			out[i] = chunks[i]
		}
	}
	return out
}

// lastSpaceBefore finds a cut point at or before limit, on a space when one
// exists in the back half, byte limit otherwise (also keeps multi-byte runes
// whole).
func lastSpaceBefore(s string, limit int) int {
	if limit >= len(s) {
		return len(s)
	}
	for i := limit; i > limit/2; i-- {
		if s[i] == ' ' || s[i] == '\n' {
			return i
		}
	}
	// no space found, back up to a rune boundary
	i := limit
	for i > 0 && s[i]&0xC0 == 0x80 {
		i--
	}
	return i
}

func firstSpaceAfter(s string, from int) int {
	for i := from; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '\n' {
			return i
		}
	}
	return from
}
