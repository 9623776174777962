package analyser

import (
	"encoding/json"
	"regexp"

	"github.com/wayming/Automated-Trading-System/internal/article"
)

// structuredBlockPattern matches text enclosed by two lines of
// three-or-more hyphens, reproducing Python's
// re.search(r'^-{3,}\s*\n(.*?)\n-{3,}$', text, re.DOTALL|re.MULTILINE)
// bit-for-bit. Go's RE2 (?m) gives multiline ^/$, (?s) gives dot-matches-
// newline; combined they are exactly Python's MULTILINE|DOTALL.
var structuredBlockPattern = regexp.MustCompile(`(?ms)^-{3,}\s*\n(.*?)\n-{3,}$`)

// extractStructured pulls the first hyphen-delimited block out of raw LLM
// text and parses it as a JSON object. If no block is found, or the block
// fails to parse as JSON, it returns (nil, false) — never an error; the
// caller logs that no structured block could be parsed and treats it as
// "no structure" (spec.md Testable Property 1, E1-E3). The JSON parser's
// own error text is not passed back to the caller.
func extractStructured(raw string) (*article.StructuredAnalysis, bool) {
	m := structuredBlockPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}

	var parsed article.StructuredAnalysis
	if err := json.Unmarshal([]byte(m[1]), &parsed); err != nil {
		return nil, false
	}
	return &parsed, true
}
