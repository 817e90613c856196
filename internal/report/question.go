package report

import (
	"fmt"
	"strings"

	"github.com/rshade/sequestra/internal/flow"
)

// Prompt renders a question as plain text.
//
// step and total add a "Question n of m" line when total > 0. answer is the
// stored answer, shown as the value Enter keeps.
func Prompt(q flow.Question, answer string, step, total int) string {
	var sb strings.Builder

	if total > 0 {
		fmt.Fprintf(&sb, "Question %d of %d\n", step, total)
	}
	sb.WriteString(q.Prompt)
	if q.Unit != "" {
		fmt.Fprintf(&sb, " (%s)", q.Unit)
	}
	sb.WriteString("\n")

	switch q.Kind {
	case flow.KindSelect:
		for i, o := range q.Options {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, o)
		}
	case flow.KindInformation:
		if q.Info != "" {
			sb.WriteString(q.Info)
			sb.WriteString("\n")
		}
		return sb.String()
	case flow.KindNumber:
		if q.Fraction {
			sb.WriteString("  a fraction between 0 and 1\n")
		}
	}

	if answer != "" {
		fmt.Fprintf(&sb, "Current answer: %s\n", answer)
	}
	return sb.String()
}
