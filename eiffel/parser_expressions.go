package eiffel

import "strconv"

const (
	lowestPrec = iota
	precComparison
	precSum
	precProduct
	precPrefix
	precCall
)

var precedences = map[TokenType]int{
	tokenEQ:       precComparison,
	tokenNotEQ:    precComparison,
	tokenLT:       precComparison,
	tokenLTE:      precComparison,
	tokenGT:       precComparison,
	tokenGTE:      precComparison,
	tokenPlus:     precSum,
	tokenMinus:    precSum,
	tokenAsterisk: precProduct,
	tokenSlash:    precProduct,
	tokenLParen:   precCall,
	tokenDot:      precCall,
}

func (p *parser) parseExpression(precedence int) Node {
	prefix := p.prefixFns[p.curToken.Type]
	if prefix == nil {
		p.errorUnexpected(p.curToken)
		return nil
	}

	left := prefix()
	if left == nil {
		return nil
	}

	for p.peekToken.Type != tokenEOF && precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
		if left == nil {
			return nil
		}
	}

	return left
}

func (p *parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return lowestPrec
}

func (p *parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return lowestPrec
}

func (p *parser) parseIdentifier() Node {
	return &Variable{Name: p.curToken.Literal, position: p.curToken.Pos}
}

func (p *parser) parseCurrent() Node {
	return &CurrentRef{position: p.curToken.Pos}
}

func (p *parser) parseVoid() Node {
	return &VoidLiteral{position: p.curToken.Pos}
}

func (p *parser) parseIntegerLiteral() Node {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.addParseError(p.curToken.Pos, "invalid integer literal")
		return nil
	}
	return &IntegerLiteral{Value: value, position: p.curToken.Pos}
}

func (p *parser) parseRealLiteral() Node {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addParseError(p.curToken.Pos, "invalid real literal")
		return nil
	}
	return &RealLiteral{Value: value, position: p.curToken.Pos}
}

func (p *parser) parseStringLiteral() Node {
	return &StringLiteral{Value: p.curToken.Literal, position: p.curToken.Pos}
}

func (p *parser) parseGroupedExpression() Node {
	p.nextToken()
	expr := p.parseExpression(lowestPrec)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(tokenRParen) {
		return nil
	}
	return expr
}

// parseNegation desugars `-x` into `0 - x`.
func (p *parser) parseNegation() Node {
	pos := p.curToken.Pos
	p.nextToken()
	operand := p.parseExpression(precPrefix)
	if operand == nil {
		return nil
	}
	return &BinaryExpr{
		Op:       '-',
		Left:     &IntegerLiteral{Value: 0, position: pos},
		Right:    operand,
		position: pos,
	}
}

func (p *parser) parseBinaryExpression(left Node) Node {
	expr := &BinaryExpr{Op: p.curToken.Literal[0], Left: left, position: p.curToken.Pos}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *parser) parseComparison(left Node) Node {
	expr := &ComparisonExpr{Op: CompareOp(p.curToken.Literal), Left: left, position: p.curToken.Pos}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}
	return expr
}

// parseCallExpression attaches an argument list to a bare name or a member access.
func (p *parser) parseCallExpression(callee Node) Node {
	args, ok := p.parseArguments()
	if !ok {
		return nil
	}
	switch c := callee.(type) {
	case *Variable:
		return &ProcedureCall{Name: c.Name, Args: args, position: c.position}
	case *AttributeAccess:
		return &MethodCall{Object: c.Object, Name: c.Name, Args: args, position: c.position}
	default:
		p.addParseError(callee.Pos(), "expression is not callable")
		return nil
	}
}

func (p *parser) parseMemberExpression(object Node) Node {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	return &AttributeAccess{Object: object, Name: p.curToken.Literal, position: pos}
}

// parseArguments expects curToken at '(' and leaves it at ')'.
func (p *parser) parseArguments() ([]Node, bool) {
	args := []Node{}
	if p.peekToken.Type == tokenRParen {
		p.nextToken()
		return args, true
	}
	p.nextToken()
	arg := p.parseExpression(lowestPrec)
	if arg == nil {
		return nil, false
	}
	args = append(args, arg)
	for p.peekToken.Type == tokenComma {
		p.nextToken()
		p.nextToken()
		arg = p.parseExpression(lowestPrec)
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)
	}
	if !p.expectPeek(tokenRParen) {
		return nil, false
	}
	return args, true
}
