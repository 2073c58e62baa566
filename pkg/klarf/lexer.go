package klarf

import (
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2/lexer"
)

// valueLexer splits the value part of a statement. Quote characters are
// lexed as their own token and dropped, so a quoted value containing spaces
// still yields one token per word.
var valueLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Quote", Pattern: `"`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Word", Pattern: `[^\s"]+`},
})

var wordToken = valueLexer.Symbols()["Word"]

// Line is a tokenized statement: the leading keyword and its value tokens.
type Line struct {
	Keyword string
	Values  []string
}

// Is reports whether the line's keyword matches kw, ignoring case.
func (l Line) Is(kw string) bool {
	return strings.EqualFold(l.Keyword, kw)
}

// Fields returns the keyword followed by the values, for rows where the
// first token is data rather than a keyword.
func (l Line) Fields() []string {
	fields := make([]string, 0, len(l.Values)+1)
	fields = append(fields, l.Keyword)
	return append(fields, l.Values...)
}

// Tokenize splits one input line. It returns false for blank lines.
func Tokenize(raw string) (Line, bool) {
	s := trimTerminator(strings.TrimSpace(raw))
	if s == "" {
		return Line{}, false
	}

	keyword, rest := s, ""
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		keyword, rest = s[:i], s[i:]
	}
	return Line{
		Keyword: strings.Trim(keyword, `"`),
		Values:  splitValues(trimTerminator(strings.TrimSpace(rest))),
	}, true
}

// trimTerminator removes a single trailing ';'.
func trimTerminator(s string) string {
	if strings.HasSuffix(s, ";") {
		return strings.TrimSpace(s[:len(s)-1])
	}
	return s
}

// splitValues lexes s into Word tokens. The three rules between them match
// any input, so the lexer cannot fail; an error only ends the token stream.
func splitValues(s string) []string {
	if s == "" {
		return nil
	}
	lex, err := valueLexer.LexString("", s)
	if err != nil {
		return nil
	}
	var values []string
	for {
		tok, err := lex.Next()
		if err != nil || tok.EOF() {
			break
		}
		if tok.Type == wordToken {
			values = append(values, tok.Value)
		}
	}
	return values
}
