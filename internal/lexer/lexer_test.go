// Grounded on CWBudde-go-dws/internal/lexer's table-driven NextToken
// test style.
package lexer

import (
	"testing"

	"github.com/flipboards/cslc/pkg/token"
)

func allTokens(src string) []token.Token {
	l := New(src, "test.csl")
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func TestNextTokenKeywordsAndTypes(t *testing.T) {
	cases := []struct {
		text string
		typ  token.Type
	}{
		{"int", token.INT_KW}, {"float", token.FLOAT_KW}, {"bool", token.BOOL},
		{"char", token.CHAR}, {"void", token.VOID},
		{"if", token.IF}, {"else", token.ELSE}, {"for", token.FOR}, {"while", token.WHILE},
		{"return", token.RETURN}, {"break", token.BREAK}, {"continue", token.CONTINUE},
		{"def", token.DEF},
	}
	for _, c := range cases {
		toks := allTokens(c.text)
		if len(toks) < 1 || toks[0].Type != c.typ {
			t.Errorf("NextToken(%q) = %v, want type %s", c.text, toks, c.typ)
		}
	}
}

func TestNextTokenIdentifier(t *testing.T) {
	toks := allTokens("foo_bar1")
	if toks[0].Type != token.IDENT || toks[0].Literal != "foo_bar1" {
		t.Errorf("got %v, want IDENT(foo_bar1)", toks[0])
	}
}

func TestNextTokenNumbers(t *testing.T) {
	toks := allTokens("42")
	if toks[0].Type != token.INT || toks[0].Literal != "42" {
		t.Errorf("got %v, want INT(42)", toks[0])
	}
	toks = allTokens("3.14")
	if toks[0].Type != token.FLOAT || toks[0].Literal != "3.14" {
		t.Errorf("got %v, want FLOAT(3.14)", toks[0])
	}
}

func TestNextTokenOperatorMaximalMunch(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"+=", "+="}, {"+", "+"}, {"==", "=="}, {"=", "="}, {"++", "++"},
	}
	for _, c := range cases {
		toks := allTokens(c.text)
		if toks[0].Type != token.OP || toks[0].Literal != c.want {
			t.Errorf("NextToken(%q) = %v, want OP(%q)", c.text, toks[0], c.want)
		}
	}
}

func TestNextTokenSeparators(t *testing.T) {
	cases := map[string]token.Type{
		"{": token.LBRACE, "}": token.RBRACE, ",": token.COMMA,
		":": token.COLON, ";": token.SEMICOLON,
	}
	for text, want := range cases {
		toks := allTokens(text)
		if toks[0].Type != want {
			t.Errorf("NextToken(%q) = %v, want %s", text, toks[0], want)
		}
	}
}

func TestNextTokenSkipsWhitespaceAndComments(t *testing.T) {
	toks := allTokens("  int   // a comment\n  x ;")
	var types []token.Type
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	want := []token.Type{token.INT_KW, token.IDENT, token.SEMICOLON, token.EOF}
	if len(types) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(types), types, len(want))
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, types[i], want[i])
		}
	}
}

func TestTokenizerRoundTrip(t *testing.T) {
	// spec.md §8 invariant 1: concatenating token source-slices reproduces
	// the input modulo whitespace and comments.
	src := "int x=3+4*2;"
	toks := allTokens(src)
	var rebuilt string
	for _, tok := range toks {
		if tok.Type == token.EOF {
			continue
		}
		rebuilt += tok.Literal
	}
	if rebuilt != "intx=3+4*2;" {
		t.Errorf("round-trip mismatch: got %q", rebuilt)
	}
}
