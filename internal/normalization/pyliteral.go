package normalization

import (
	"errors"
	"strings"
	"unicode"
)

var errUnterminatedString = errors.New("unterminated string literal")

// pythonLiteralToJSON rewrites a Python list/dict literal into JSON: single-quoted
// strings become double-quoted, None/True/False become null/true/false, and trailing
// commas before a closing bracket are dropped.
func pythonLiteralToJSON(raw string) (string, error) {
	var b strings.Builder
	b.Grow(len(raw) + 16)

	rs := []rune(raw)
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		switch {
		case c == '\'' || c == '"':
			end, err := writeQuoted(&b, rs, i)
			if err != nil {
				return "", err
			}
			i = end
		case unicode.IsLetter(c):
			j := i
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_') {
				j++
			}
			switch word := string(rs[i:j]); word {
			case "None":
				b.WriteString("null")
			case "True":
				b.WriteString("true")
			case "False":
				b.WriteString("false")
			default:
				b.WriteString(word)
			}
			i = j - 1
		case c == ',':
			j := i + 1
			for j < len(rs) && unicode.IsSpace(rs[j]) {
				j++
			}
			if j < len(rs) && (rs[j] == ']' || rs[j] == '}') {
				continue
			}
			b.WriteRune(c)
		default:
			b.WriteRune(c)
		}
	}
	return b.String(), nil
}

// writeQuoted emits the string literal starting at rs[start] as a JSON string and
// returns the index of its closing quote.
func writeQuoted(b *strings.Builder, rs []rune, start int) (int, error) {
	quote := rs[start]
	b.WriteByte('"')
	for i := start + 1; i < len(rs); i++ {
		c := rs[i]
		switch {
		case c == quote:
			b.WriteByte('"')
			return i, nil
		case c == '\\':
			if i+1 >= len(rs) {
				return 0, errUnterminatedString
			}
			next := rs[i+1]
			switch next {
			case '\'':
				b.WriteRune('\'')
			case 'x':
				// \xNN has no JSON form; widen it to \u00NN.
				if i+3 < len(rs) {
					b.WriteString(`\u00`)
					b.WriteRune(rs[i+2])
					b.WriteRune(rs[i+3])
					i += 2
				}
			default:
				b.WriteRune('\\')
				b.WriteRune(next)
			}
			i++
		case c == '"':
			b.WriteString(`\"`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(c)
		}
	}
	return 0, errUnterminatedString
}
