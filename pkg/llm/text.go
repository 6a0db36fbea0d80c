package llm

import "strings"

// StripCodeFence removes a markdown code block wrapper (```json, ```html or a
// bare ```) that models sometimes put around their answer.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimRight(s, " \t\r\n"), "```")

	// Drop the info string on the opening line, if any.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		if info := strings.TrimSpace(s[:i]); !strings.ContainsAny(info, " <{[") {
			s = s[i+1:]
		}
	} else {
		s = stripInfoWord(s)
	}

	return strings.TrimSpace(s)
}

// stripInfoWord drops a language tag glued to a one-line body, as in
// ```json{"a":1}```.
func stripInfoWord(s string) string {
	n := 0
	for n < len(s) && isInfoByte(s[n]) {
		n++
	}
	if n == 0 {
		return s
	}
	rest := strings.TrimLeft(s[n:], " \t")
	if rest != "" && strings.ContainsRune("{[<", rune(rest[0])) {
		return rest
	}
	return s
}

func isInfoByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_' || c == '+'
}
