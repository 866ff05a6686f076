package cleaner

import "unicode/utf8"

// EstimateTokens provides a fast token count estimate without importing a
// tokenizer.
//
// Heuristic: utf8 rune count / 3. English averages ~4 chars/token, CJK ~1.5;
// dividing by 3 is a reasonable middle ground and slightly over-estimates,
// which is the safe direction for prompt budgeting.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	est := n / 3
	if est < 1 {
		return 1
	}
	return est
}
