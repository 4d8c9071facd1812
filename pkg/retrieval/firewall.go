package retrieval

import "regexp"

// The content firewall strips prompt-injection vectors from retrieved
// context before it reaches the generation model: role-prefix lines,
// fenced blocks claiming to be system or html content, script tags and
// inline event handlers.
var (
	rolePrefixRe   = regexp.MustCompile(`(?im)^\s*(system:|assistant:|user:)`)
	fencedBlockRe  = regexp.MustCompile("(?i)```\\s*(system|html)[\\s\\S]*?```")
	scriptMarkupRe = regexp.MustCompile(`(?i)<script[\s\S]*?>[\s\S]*?</script>|on[a-zA-Z]+\s*=\s*"[\s\S]*?"`)
)

// Firewall removes role-prefix tokens and embedded markup from text.
// Ingested documents are untrusted; anything that reads like an
// instruction to the model is dropped rather than escaped.
func Firewall(text string) string {
	text = rolePrefixRe.ReplaceAllString(text, "")
	text = fencedBlockRe.ReplaceAllString(text, "")
	text = scriptMarkupRe.ReplaceAllString(text, "")
	return text
}
