package perturb

import (
	"strings"
	"unicode"
)

// token is one whitespace-delimited unit of text, split into the core word
// and any leading/trailing punctuation so that lexicon lookups see the bare
// word while replacements preserve the surrounding punctuation.
type token struct {
	leading  string
	core     string
	trailing string
}

func (t token) String() string { return t.leading + t.core + t.trailing }

// isTokenPunct covers ASCII punctuation plus the Devanagari danda and the
// pipe sometimes used in its place in web text.
func isTokenPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r) || r == '।' || r == '|'
}

// splitToken separates surrounding punctuation from the core word.
// A token consisting entirely of punctuation keeps it all in core.
func splitToken(raw string) token {
	runes := []rune(raw)
	start, end := 0, len(runes)
	for start < end && isTokenPunct(runes[start]) {
		start++
	}
	for end > start && isTokenPunct(runes[end-1]) {
		end--
	}
	if start == end {
		return token{core: raw}
	}
	return token{
		leading:  string(runes[:start]),
		core:     string(runes[start:end]),
		trailing: string(runes[end:]),
	}
}

// tokenize splits text on whitespace into punctuation-aware tokens.
func tokenize(text string) []token {
	fields := strings.Fields(text)
	tokens := make([]token, len(fields))
	for i, f := range fields {
		tokens[i] = splitToken(f)
	}
	return tokens
}

// joinTokens reassembles tokens into a single space-separated string.
// Original inter-token whitespace is normalized, matching the whitespace
// tokenization boundary.
func joinTokens(tokens []token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// isContentToken reports whether a token core is eligible for lexical
// substitution: non-empty, not pure punctuation, and not a digit string.
func isContentToken(core string) bool {
	if core == "" {
		return false
	}
	for _, r := range core {
		if !isTokenPunct(r) && !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
