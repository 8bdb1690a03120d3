package usecase

import "strings"

// CommonPrefixTokens returns the leading whitespace tokens shared by a and b,
// compared case-insensitively and returned upper-cased, joined by single spaces.
// The scan stops at the first mismatching position; later tokens that realign
// are ignored. An empty string means the names share no leading token.
func CommonPrefixTokens(a, b string) string {
	ta := strings.Fields(strings.ToUpper(a))
	tb := strings.Fields(strings.ToUpper(b))

	n := 0
	for n < len(ta) && n < len(tb) && ta[n] == tb[n] {
		n++
	}

	switch n {
	case 0:
		return ""
	case 1:
		return ta[0]
	default:
		return strings.Join(ta[:n], " ")
	}
}
