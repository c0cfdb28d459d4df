package rephrase

import (
	"fmt"
	"strings"

	"github.com/papercomputeco/smartread/pkg/memory"
)

const (
	sectionRecap = "## SECTION 1 – Recap & References"
	sectionFresh = "## SECTION 2 – Fresh Content in Author's Voice"
)

// WordLimit is the soft cap given to the model: the input word count, never
// more than MaxOutputWords.
func WordLimit(content string) int {
	return min(MaxOutputWords, len(strings.Fields(content)))
}

// Prompt builds the rewrite prompt for content and the selected memories.
func Prompt(content string, memories []memory.Memory) string {
	var b strings.Builder

	b.WriteString("You rewrite an article for a reader, connecting it to things they have read before.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("1. Use only facts stated in the ARTICLE or in the READER MEMORIES. Do not add outside knowledge.\n")
	b.WriteString("2. Produce exactly two sections with these headings and stop after the second:\n")
	fmt.Fprintf(&b, "   %s\n", sectionRecap)
	fmt.Fprintf(&b, "   %s\n", sectionFresh)
	b.WriteString("3. In SECTION 1, recap which memories relate to the article and list their sources as references.\n")
	b.WriteString("4. In SECTION 2, present the article's new material in the author's voice, linking back to memories where it builds on them.\n")
	fmt.Fprintf(&b, "5. Write at most %d words in total.\n\n", WordLimit(content))

	b.WriteString("READER MEMORIES:\n")
	for _, m := range memories {
		b.WriteString("• ")
		b.WriteString(m.Text)
		if url := memory.SourceURL(m); url != "" {
			fmt.Fprintf(&b, " (source: %s)", url)
		}
		b.WriteByte('\n')
	}

	b.WriteString("\nARTICLE:\n")
	b.WriteString(content)
	b.WriteByte('\n')

	return b.String()
}
