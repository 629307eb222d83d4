package eiffel

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TokenType identifies the lexical category of a token.
type TokenType string

const (
	tokenIllegal TokenType = "ILLEGAL"
	tokenEOF     TokenType = "EOF"

	tokenIdent  TokenType = "IDENTIFIER"
	tokenInt    TokenType = "NUMBER_INT"
	tokenReal   TokenType = "NUMBER_REAL"
	tokenString TokenType = "STRING"

	tokenAssign   TokenType = ":="
	tokenPlus     TokenType = "+"
	tokenMinus    TokenType = "-"
	tokenAsterisk TokenType = "*"
	tokenSlash    TokenType = "/"
	tokenEQ       TokenType = "="
	tokenNotEQ    TokenType = "/="
	tokenLT       TokenType = "<"
	tokenGT       TokenType = ">"
	tokenLTE      TokenType = "<="
	tokenGTE      TokenType = ">="

	tokenDot       TokenType = "."
	tokenComma     TokenType = ","
	tokenColon     TokenType = ":"
	tokenSemicolon TokenType = ";"
	tokenLParen    TokenType = "("
	tokenRParen    TokenType = ")"
	tokenLBrace    TokenType = "{"
	tokenRBrace    TokenType = "}"

	tokenClass   TokenType = "CLASS"
	tokenFeature TokenType = "FEATURE"
	tokenDo      TokenType = "DO"
	tokenEnd     TokenType = "END"
	tokenIf      TokenType = "IF"
	tokenThen    TokenType = "THEN"
	tokenElse    TokenType = "ELSE"
	tokenElseif  TokenType = "ELSEIF"
	tokenFrom    TokenType = "FROM"
	tokenUntil   TokenType = "UNTIL"
	tokenLoop    TokenType = "LOOP"
	tokenLocal   TokenType = "LOCAL"
	tokenCreate  TokenType = "CREATE"
	tokenCurrent TokenType = "CURRENT"
	tokenVoid    TokenType = "VOID"
)

// Token captures lexical information for the parser.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// Position identifies a line and column in the source file.
type Position struct {
	Line   int
	Column int
}

var tokenNames = map[TokenType]string{
	tokenAssign:    "ASSIGN",
	tokenPlus:      "PLUS",
	tokenMinus:     "MINUS",
	tokenAsterisk:  "MULT",
	tokenSlash:     "DIV",
	tokenEQ:        "EQ",
	tokenNotEQ:     "NE",
	tokenLT:        "LT",
	tokenGT:        "GT",
	tokenLTE:       "LE",
	tokenGTE:       "GE",
	tokenDot:       "DOT",
	tokenComma:     "COMMA",
	tokenColon:     "COLON",
	tokenSemicolon: "SEMI",
	tokenLParen:    "LPAREN",
	tokenRParen:    "RPAREN",
	tokenLBrace:    "LBRACE",
	tokenRBrace:    "RBRACE",
}

// Name is the upper-case token name used in token listings, such as TOKEN_ASSIGN.
func (tt TokenType) Name() string {
	if name, ok := tokenNames[tt]; ok {
		return "TOKEN_" + name
	}
	return "TOKEN_" + string(tt)
}

// FprintTokens writes one `[Line N] TOKEN_NAME: "lexeme"` line per token, stopping
// before EOF.
func FprintTokens(w io.Writer, tokens []Token) error {
	var b strings.Builder
	for _, tok := range tokens {
		if tok.Type == tokenEOF {
			break
		}
		fmt.Fprintf(&b, "[Line %d] %s: %s\n", tok.Pos.Line, tok.Type.Name(), strconv.Quote(tok.Literal))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
