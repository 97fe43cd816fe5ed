package logging

import "strings"

// momentTokens maps moment.js date tokens to Go layout fragments, longest first.
var momentTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"SSS", "000"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"hh", "03"},
	{"mm", "04"},
	{"ss", "05"},
	{"M", "1"},
	{"D", "2"},
	{"h", "3"},
	{"m", "4"},
	{"s", "5"},
	{"A", "PM"},
	{"a", "pm"},
}

// goLayout converts a moment-style format such as "YYYY-MM-DD" to a Go time
// layout. Characters that are not tokens are copied through.
func goLayout(format string) string {
	var b strings.Builder
	b.Grow(len(format))

	for i := 0; i < len(format); {
		matched := false
		for _, t := range momentTokens {
			if strings.HasPrefix(format[i:], t.token) {
				b.WriteString(t.layout)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String()
}
