package domain

import (
	"fmt"
	"strings"
)

// NoPrecedentsContext is the fixed sentinel returned for an empty case list.
const NoPrecedentsContext = "No relevant legal precedents found in the database."

const contextHeader = "**Relevant Legal Precedents:**\n\n"

// ContextFormatter renders a ranked case list into a bounded textual context
// block for the generator. Output is byte-deterministic for identical input.
type ContextFormatter struct {
	maxLength int
}

// NewContextFormatter creates a formatter with the given truncation bound.
func NewContextFormatter(maxLength int) *ContextFormatter {
	return &ContextFormatter{maxLength: maxLength}
}

// Format appends one stanza per case in ranked order and stops once adding
// the next stanza would exceed the configured bound, noting how many cases
// were omitted. The result never exceeds maxLength plus one stanza and the
// truncation marker.
func (f *ContextFormatter) Format(cases []RelevantCase) string {
	if len(cases) == 0 {
		return NoPrecedentsContext
	}

	var b strings.Builder
	b.WriteString(contextHeader)
	length := b.Len()

	for i, c := range cases {
		stanza := f.stanza(i+1, c)

		if length+len(stanza) > f.maxLength {
			fmt.Fprintf(&b, "*[Additional %d cases available but truncated for brevity]*\n", len(cases)-i)
			break
		}

		b.WriteString(stanza)
		length += len(stanza)
	}

	return b.String()
}

func (f *ContextFormatter) stanza(rank int, c RelevantCase) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**Case %d: %s**\n", rank, c.Title)
	fmt.Fprintf(&b, "- Relevance: %.1f%%\n", c.Relevance*100)
	if c.Court != "" {
		fmt.Fprintf(&b, "- Court: %s\n", c.Court)
	}
	if c.Date != "" {
		fmt.Fprintf(&b, "- Date: %s\n", c.Date)
	}
	if c.Citation != "" {
		fmt.Fprintf(&b, "- Citation: %s\n", c.Citation)
	}

	excerpt := c.Excerpt
	if excerpt == "" {
		excerpt = "No excerpt available"
	}
	fmt.Fprintf(&b, "- Key Points: %s...\n\n", excerpt)

	return b.String()
}
