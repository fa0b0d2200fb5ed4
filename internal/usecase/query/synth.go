package query

import "strings"

// contextSeparator joins retrieved chunks into one context block.
const contextSeparator = "\n\n---\n\n"

// fallbackAnswer is the sentence the model is instructed to emit when the
// retrieved context cannot answer the question.
const fallbackAnswer = "I don't have enough information to answer that."

// buildPrompt assembles the grounding prompt. Each context piece has already
// been truncated to the configured per-chunk cap.
func buildPrompt(question string, contexts []string) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant answering questions about uploaded documents. ")
	b.WriteString("Answer ONLY using the context below. ")
	b.WriteString("If the context does not contain enough information to answer, reply exactly: ")
	b.WriteString(`"` + fallbackAnswer + `"`)
	b.WriteString("\n\nContext:\n")
	b.WriteString(strings.Join(contexts, contextSeparator))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}

// truncate cuts s to at most max runes, appending an ellipsis when it cuts.
// max <= 0 means no limit.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
