package eiffel

// parseStatements reads statements starting at curToken until one of the stop
// tokens (or EOF) becomes current.
func (p *parser) parseStatements(stop ...TokenType) []Node {
	var stmts []Node
	for !p.curIs(stop...) && p.curToken.Type != tokenEOF {
		if p.curToken.Type == tokenSemicolon {
			p.nextToken()
			continue
		}
		if stmt := p.parseStatement(); stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.nextToken()
	}
	return stmts
}

func (p *parser) curIs(types ...TokenType) bool {
	for _, tt := range types {
		if p.curToken.Type == tt {
			return true
		}
	}
	return false
}

func (p *parser) parseStatement() Node {
	switch p.curToken.Type {
	case tokenCreate:
		return p.parseCreate()
	case tokenIf:
		return p.parseIf()
	case tokenFrom:
		return p.parseLoop()
	default:
		return p.parseExpressionOrAssign()
	}
}

func (p *parser) parseExpressionOrAssign() Node {
	expr := p.parseExpression(lowestPrec)
	if expr == nil {
		return nil
	}
	if p.peekToken.Type != tokenAssign {
		return expr
	}
	if !isAssignable(expr) {
		p.addParseError(expr.Pos(), "invalid assignment target")
		return nil
	}
	p.nextToken()
	p.nextToken()
	value := p.parseExpression(lowestPrec)
	if value == nil {
		return nil
	}
	return &Assign{Target: expr, Value: value, position: expr.Pos()}
}

func isAssignable(expr Node) bool {
	switch expr.(type) {
	case *Variable, *AttributeAccess:
		return true
	default:
		return false
	}
}

// parseCreate handles `create [{T}] x [.init [(args)]]`.
func (p *parser) parseCreate() Node {
	stmt := &Create{position: p.curToken.Pos}

	if p.peekToken.Type == tokenLBrace {
		p.nextToken()
		if !p.expectPeek(tokenIdent) {
			return nil
		}
		stmt.ClassName = p.curToken.Literal
		if !p.expectPeek(tokenRBrace) {
			return nil
		}
	}

	if !p.expectPeek(tokenIdent) {
		return nil
	}
	stmt.Target = p.curToken.Literal

	if p.peekToken.Type == tokenDot {
		p.nextToken()
		if !p.expectPeek(tokenIdent) {
			return nil
		}
		stmt.Init = p.curToken.Literal
		if p.peekToken.Type == tokenLParen {
			p.nextToken()
			args, ok := p.parseArguments()
			if !ok {
				return nil
			}
			stmt.Args = args
		}
	}
	return stmt
}

// parseIf leaves curToken at the closing 'end'. Each elseif becomes an If nested in
// the else branch of the previous one.
func (p *parser) parseIf() Node {
	stmt := &IfStmt{position: p.curToken.Pos}
	p.nextToken()
	stmt.Condition = p.parseExpression(lowestPrec)
	if stmt.Condition == nil {
		return nil
	}
	if !p.expectPeek(tokenThen) {
		return nil
	}
	p.nextToken()
	stmt.Then = p.parseStatements(tokenElseif, tokenElse, tokenEnd)

	switch p.curToken.Type {
	case tokenElseif:
		nested := p.parseIf()
		if nested == nil {
			return nil
		}
		stmt.Else = []Node{nested}
		return stmt
	case tokenElse:
		p.nextToken()
		stmt.Else = p.parseStatements(tokenEnd)
	}

	if p.curToken.Type != tokenEnd {
		p.errorExpected(p.curToken, "'end' to close if")
		return nil
	}
	return stmt
}

func (p *parser) parseLoop() Node {
	stmt := &LoopStmt{position: p.curToken.Pos}
	p.nextToken()
	stmt.Init = p.parseStatements(tokenUntil)
	if p.curToken.Type != tokenUntil {
		p.errorExpected(p.curToken, "'until'")
		return nil
	}
	p.nextToken()
	stmt.Until = p.parseExpression(lowestPrec)
	if stmt.Until == nil {
		return nil
	}
	if !p.expectPeek(tokenLoop) {
		return nil
	}
	p.nextToken()
	stmt.Body = p.parseStatements(tokenEnd)
	if p.curToken.Type != tokenEnd {
		p.errorExpected(p.curToken, "'end' to close loop")
		return nil
	}
	return stmt
}
