package text

import "strings"

// ChunkBySentence groups consecutive sentences into chunks of at most
// maxChars bytes. A sentence longer than maxChars becomes its own chunk.
// maxChars <= 0 disables splitting.
func ChunkBySentence(s string, maxChars int) []string {
	sentences := Sentences(s)
	if maxChars <= 0 || len(sentences) <= 1 {
		return []string{s}
	}

	var (
		chunks []string
		cur    strings.Builder
	)
	for _, sent := range sentences {
		switch {
		case cur.Len() == 0:
		case cur.Len()+1+len(sent) > maxChars:
			chunks = append(chunks, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(' ')
		}
		cur.WriteString(sent)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}

	return chunks
}

// Sentences splits s after every '.', '!' or '?', keeping the terminator
// with its sentence. Segments are trimmed and empty ones dropped.
func Sentences(s string) []string {
	var out []string

	emit := func(seg string) {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}

	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', '!', '?':
			emit(s[start : i+1])
			start = i + 1
		}
	}
	emit(s[start:])

	return out
}
