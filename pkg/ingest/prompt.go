package ingest

import (
	"fmt"
	"strings"

	"github.com/papercomputeco/smartread/pkg/llm"
)

// MaxSnippetWords is the length limit each snippet is asked to respect.
const MaxSnippetWords = 25

// Prompt asks for 3-5 short memory snippets as a JSON array.
func Prompt(content string) string {
	return fmt.Sprintf(`You create short memory snippets from web page content so a reader can be reminded of it later.

Extract 3-5 snippets covering the main facts, insights, methods and conclusions of the page.
Each snippet must capture one distinct idea, be specific, self-contained and at most %d words.
Do not repeat an idea across snippets.

Page content:
%s

Return only a JSON array of strings with no other text and no code fence.`, MaxSnippetWords, content)
}

// ParseSnippets extracts the snippet array from a model response, trimming
// entries and dropping blanks.
func ParseSnippets(response string) ([]string, error) {
	raw, err := llm.ParseStringArray(response)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
