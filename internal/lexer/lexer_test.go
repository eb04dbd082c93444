package lexer

import (
	"testing"

	"github.com/cascade-lang/cascade/internal/token"
	"github.com/stretchr/testify/require"
)

type expectedToken struct {
	expectedType    token.Type
	expectedLiteral string
}

func requireTokens(t *testing.T, input string, tests []expectedToken) {
	t.Helper()
	l := New(input)
	for i, tt := range tests {
		tok := l.Next()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong, expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - Literal wrong, expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNextToken1(t *testing.T) {
	input := "(){};,.-+/*"
	requireTokens(t, input, []expectedToken{
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RBRACE, "}"},
		{token.SEMICOLON, ";"},
		{token.COMMA, ","},
		{token.PERIOD, "."},
		{token.MINUS, "-"},
		{token.PLUS, "+"},
		{token.SLASH, "/"},
		{token.ASTERISK, "*"},
		{token.EOF, ""},
	})
}

func TestNextToken2(t *testing.T) {
	input := `var five = 5;
fun add(x, y) {
  return x + y;
}
if (five <= 10) print !true; else print nil;
10 == 10 != 9 >= 1 > 0 < 3
"foo bar"
`
	requireTokens(t, input, []expectedToken{
		{token.VAR, "var"},
		{token.IDENT, "five"},
		{token.ASSIGN, "="},
		{token.NUMBER, "5"},
		{token.SEMICOLON, ";"},
		{token.FUN, "fun"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.COMMA, ","},
		{token.IDENT, "y"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.IDENT, "x"},
		{token.PLUS, "+"},
		{token.IDENT, "y"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.IF, "if"},
		{token.LPAREN, "("},
		{token.IDENT, "five"},
		{token.LT_EQUALS, "<="},
		{token.NUMBER, "10"},
		{token.RPAREN, ")"},
		{token.PRINT, "print"},
		{token.BANG, "!"},
		{token.TRUE, "true"},
		{token.SEMICOLON, ";"},
		{token.ELSE, "else"},
		{token.PRINT, "print"},
		{token.NIL, "nil"},
		{token.SEMICOLON, ";"},
		{token.NUMBER, "10"},
		{token.EQ, "=="},
		{token.NUMBER, "10"},
		{token.NOT_EQ, "!="},
		{token.NUMBER, "9"},
		{token.GT_EQUALS, ">="},
		{token.NUMBER, "1"},
		{token.GT, ">"},
		{token.NUMBER, "0"},
		{token.LT, "<"},
		{token.NUMBER, "3"},
		{token.STRING, `"foo bar"`},
		{token.EOF, ""},
	})
}

func TestAllKeywords(t *testing.T) {
	for _, kw := range token.Keywords() {
		tok := New(kw).Next()
		require.Equal(t, token.LookupIdentifier(kw), tok.Type, kw)
		require.NotEqual(t, token.IDENT, tok.Type, kw)

		tok = New(kw + "x").Next()
		require.Equal(t, token.IDENT, tok.Type, kw+"x")
		require.Equal(t, kw+"x", tok.Literal)

		tok = New(kw[:len(kw)-1]).Next()
		require.Equal(t, token.IDENT, tok.Type, kw[:len(kw)-1])
	}
}

func TestKeywordExactness(t *testing.T) {
	requireTokens(t, "i if iff If _if if_ if2", []expectedToken{
		{token.IDENT, "i"},
		{token.IF, "if"},
		{token.IDENT, "iff"},
		{token.IDENT, "If"},
		{token.IDENT, "_if"},
		{token.IDENT, "if_"},
		{token.IDENT, "if2"},
		{token.EOF, ""},
	})
}

func TestTwoCharacterOperators(t *testing.T) {
	inputs := []string{"!", "!=", "=", "==", "<", "<=", ">", ">="}
	seen := map[token.Type]string{}
	for _, input := range inputs {
		tok := New(input).Next()
		require.Equal(t, input, tok.Literal)
		prev, dup := seen[tok.Type]
		require.False(t, dup, "%q and %q share type %q", prev, input, tok.Type)
		seen[tok.Type] = input
	}
	require.Len(t, seen, 8)
	requireTokens(t, "!===", []expectedToken{
		{token.NOT_EQ, "!="},
		{token.EQ, "=="},
		{token.EOF, ""},
	})
}

func TestNumbers(t *testing.T) {
	requireTokens(t, "123 1.5 0.25 007", []expectedToken{
		{token.NUMBER, "123"},
		{token.NUMBER, "1.5"},
		{token.NUMBER, "0.25"},
		{token.NUMBER, "007"},
		{token.EOF, ""},
	})
}

func TestNumberTrailingDot(t *testing.T) {
	requireTokens(t, "1.", []expectedToken{
		{token.NUMBER, "1"},
		{token.PERIOD, "."},
		{token.EOF, ""},
	})
	requireTokens(t, "1.x", []expectedToken{
		{token.NUMBER, "1"},
		{token.PERIOD, "."},
		{token.IDENT, "x"},
		{token.EOF, ""},
	})
	requireTokens(t, "1.2.3", []expectedToken{
		{token.NUMBER, "1.2"},
		{token.PERIOD, "."},
		{token.NUMBER, "3"},
		{token.EOF, ""},
	})
	requireTokens(t, ".5", []expectedToken{
		{token.PERIOD, "."},
		{token.NUMBER, "5"},
		{token.EOF, ""},
	})
}

func TestStrings(t *testing.T) {
	l := New(`"" "abc"`)
	tok := l.Next()
	require.Equal(t, token.STRING, tok.Type)
	require.Equal(t, `""`, tok.Literal)
	tok = l.Next()
	require.Equal(t, token.STRING, tok.Type)
	require.Equal(t, `"abc"`, tok.Literal)
	require.Equal(t, 3, tok.Start)
	require.Equal(t, 5, tok.Length)
}

func TestUnterminatedStringAtEOF(t *testing.T) {
	tok := New(`"abc`).Next()
	require.Equal(t, token.ERROR, tok.Type)
	require.Equal(t, ErrUnterminatedAtEOF, tok.Literal)
	require.Equal(t, 1, tok.Line)
}

func TestUnterminatedStringAtNewline(t *testing.T) {
	l := New("\"ab\nc\"")
	tok := l.Next()
	require.Equal(t, token.ERROR, tok.Type)
	require.Equal(t, ErrUnterminatedString, tok.Literal)
	require.Equal(t, 1, tok.Line)

	// Scanning resumes after the newline
	tok = l.Next()
	require.Equal(t, token.IDENT, tok.Type)
	require.Equal(t, "c", tok.Literal)
	require.Equal(t, 2, tok.Line)
	tok = l.Next()
	require.Equal(t, token.ERROR, tok.Type)
	require.Equal(t, ErrUnterminatedAtEOF, tok.Literal)
	require.Equal(t, 2, tok.Line)
}

func TestUnexpectedCharacter(t *testing.T) {
	requireTokens(t, "1 @ 2 世 #", []expectedToken{
		{token.NUMBER, "1"},
		{token.ERROR, ErrUnexpectedCharacter},
		{token.NUMBER, "2"},
		{token.ERROR, ErrUnexpectedCharacter},
		{token.ERROR, ErrUnexpectedCharacter},
		{token.EOF, ""},
	})
	l := New("世")
	tok := l.Next()
	require.Equal(t, 3, tok.Length)
	require.Equal(t, token.EOF, l.Next().Type)
}

func TestComments(t *testing.T) {
	input := `// leading comment
1 // trailing comment
/ 2 //`
	l := New(input)
	tok := l.Next()
	require.Equal(t, token.NUMBER, tok.Type)
	require.Equal(t, 2, tok.Line)
	tok = l.Next()
	require.Equal(t, token.SLASH, tok.Type)
	require.Equal(t, 3, tok.Line)
	tok = l.Next()
	require.Equal(t, token.NUMBER, tok.Type)
	require.Equal(t, "2", tok.Literal)
	tok = l.Next()
	require.Equal(t, token.EOF, tok.Type)
	require.Equal(t, 3, tok.Line)
}

func TestDiv(t *testing.T) {
	requireTokens(t, "6/2", []expectedToken{
		{token.NUMBER, "6"},
		{token.SLASH, "/"},
		{token.NUMBER, "2"},
		{token.EOF, ""},
	})
}

func TestLineNumbers(t *testing.T) {
	l := New("1\n\n2\r\n\t3\n")
	for _, want := range []int{1, 3, 4} {
		tok := l.Next()
		require.Equal(t, token.NUMBER, tok.Type)
		require.Equal(t, want, tok.Line)
	}
	tok := l.Next()
	require.Equal(t, token.EOF, tok.Type)
	require.Equal(t, 5, tok.Line)
}

func TestTokenSpans(t *testing.T) {
	source := "  foo <= 12.5"
	for _, tok := range Tokenize(source) {
		require.Equal(t, tok.Literal, source[tok.Start:tok.Start+tok.Length])
	}
}

func TestEmptyInput(t *testing.T) {
	tok := New("").Next()
	require.Equal(t, token.EOF, tok.Type)
	require.Equal(t, "", tok.Literal)
	require.Equal(t, 1, tok.Line)
}

func TestWhitespaceOnly(t *testing.T) {
	tok := New(" \t\r\n\n ").Next()
	require.Equal(t, token.EOF, tok.Type)
	require.Equal(t, 3, tok.Line)
}

func TestMultipleEOFReads(t *testing.T) {
	l := New("x\n")
	require.Equal(t, token.IDENT, l.Next().Type)
	for i := 0; i < 5; i++ {
		tok := l.Next()
		require.Equal(t, token.EOF, tok.Type)
		require.Equal(t, 2, tok.Line)
		require.Equal(t, 0, tok.Length)
	}
}

func TestReset(t *testing.T) {
	l := New("a\nb")
	l.Next()
	require.Equal(t, 2, l.Next().Line)
	l.Reset("c")
	tok := l.Next()
	require.Equal(t, "c", tok.Literal)
	require.Equal(t, 0, tok.Start)
	require.Equal(t, 1, tok.Line)
}

func TestZeroValueLexer(t *testing.T) {
	var l Lexer
	require.Equal(t, token.EOF, l.Next().Type)
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("(1 + 2) * 3")
	var types []token.Type
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	require.Equal(t, []token.Type{
		token.LPAREN, token.NUMBER, token.PLUS, token.NUMBER, token.RPAREN,
		token.ASTERISK, token.NUMBER, token.EOF,
	}, types)
}
