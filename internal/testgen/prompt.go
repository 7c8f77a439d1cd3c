package testgen

import (
	"html"
	"strings"

	"github.com/weitinglin/tingxie/internal/domain"
)

// PromptHTML renders the question prompt: the context word with the first
// occurrence of the target character replaced by a highlighted span. The
// span always shows the piece of information the user is NOT asked to
// produce — the zhuyin when they must write the character, the character
// when they must write the zhuyin. A word that does not contain the target
// character renders bare. Data is HTML-escaped; the markup is ours.
func PromptHTML(q domain.Question) string {
	idx := strings.Index(q.ContextWord, q.TargetChar)
	if idx < 0 {
		return html.EscapeString(q.ContextWord)
	}

	hint := q.TargetZhuyin
	if q.Type == domain.QuestionZhuyin {
		hint = q.TargetChar
	}

	var b strings.Builder
	b.WriteString(html.EscapeString(q.ContextWord[:idx]))
	b.WriteString(`<span class="test-item">`)
	b.WriteString(html.EscapeString(hint))
	b.WriteString(`</span>`)
	b.WriteString(html.EscapeString(q.ContextWord[idx+len(q.TargetChar):]))
	return b.String()
}
