package rewriter

import (
	"regexp"
	"strings"
)

var (
	paragraphOpenExpr = regexp.MustCompile(`(?i)<p[\s>]`)
	trailingRuleExpr  = regexp.MustCompile(`(?i)<hr\s*/?>\s*$`)
	statPixelExpr     = regexp.MustCompile(`(?i)<img\b[^>]*src="https://medium\.com/_/stat\?[^"]*"[^>]*>`)
)

// StripFooter removes the tracking pixel and the "originally published ... on
// Medium" paragraph Medium appends to every feed item. Only the last paragraph
// of the body is considered, together with a directly preceding <hr>.
func StripFooter(content string) string {
	out := strings.TrimSpace(statPixelExpr.ReplaceAllString(content, ""))
	if !strings.HasSuffix(strings.ToLower(out), "</p>") {
		return out
	}

	opens := paragraphOpenExpr.FindAllStringIndex(out, -1)
	if len(opens) == 0 {
		return out
	}
	start := opens[len(opens)-1][0]
	last := strings.ToLower(out[start:])
	if !strings.Contains(last, "was originally published in") || !strings.Contains(last, "on medium") {
		return out
	}
	head := trailingRuleExpr.ReplaceAllString(strings.TrimSpace(out[:start]), "")
	return strings.TrimSpace(head)
}
