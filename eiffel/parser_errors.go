package eiffel

import (
	"errors"
	"fmt"
	"strings"
)

type parseError struct {
	pos    Position
	msg    string
	source string
}

func (e *parseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parse error at %d:%d: %s", e.pos.Line, e.pos.Column, e.msg)
	if frame := formatCodeFrame(e.source, e.pos); frame != "" {
		b.WriteString("\n")
		b.WriteString(frame)
	}
	return b.String()
}

func (p *parser) errorExpected(tok Token, expected string) {
	if tok.Type == tokenIllegal {
		p.addParseError(tok.Pos, fmt.Sprintf("expected %s, got %s", expected, illegalLabel(tok)))
		return
	}
	p.addParseError(tok.Pos, fmt.Sprintf("expected %s, got %s", expected, tokenLabel(tok.Type)))
}

func (p *parser) errorUnexpected(tok Token) {
	if tok.Type == tokenIllegal {
		p.addParseError(tok.Pos, illegalLabel(tok))
		return
	}
	p.addParseError(tok.Pos, fmt.Sprintf("unexpected token %s", tokenLabel(tok.Type)))
}

func (p *parser) addParseError(pos Position, msg string) {
	p.errors = append(p.errors, &parseError{pos: pos, msg: msg, source: p.l.input})
}

func illegalLabel(tok Token) string {
	if len([]rune(tok.Literal)) == 1 {
		return fmt.Sprintf("invalid character %q", tok.Literal)
	}
	return tok.Literal
}

func tokenLabel(tt TokenType) string {
	switch tt {
	case tokenIllegal:
		return "invalid token"
	case tokenEOF:
		return "end of input"
	case tokenIdent:
		return "identifier"
	case tokenInt:
		return "integer"
	case tokenReal:
		return "real"
	case tokenString:
		return "string"
	case tokenCurrent:
		return "'Current'"
	case tokenVoid:
		return "'Void'"
	default:
		if strings.ToUpper(string(tt)) == string(tt) && len(tt) > 2 {
			return fmt.Sprintf("'%s'", strings.ToLower(string(tt)))
		}
		return fmt.Sprintf("%q", string(tt))
	}
}

func combineErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	msg := ""
	for _, err := range errs {
		if msg != "" {
			msg += "\n\n"
		}
		msg += err.Error()
	}
	return errors.New(msg)
}
