package eiffel

type (
	prefixParseFn func() Node
	infixParseFn  func(Node) Node
)

type parser struct {
	l *lexer

	curToken  Token
	peekToken Token

	errors []error

	prefixFns map[TokenType]prefixParseFn
	infixFns  map[TokenType]infixParseFn
}

// Parse turns source text into a Program. Every syntax error found is reported in
// the returned error.
func Parse(source string) (*Program, error) {
	program, errs := newParser(source).ParseProgram()
	if len(errs) > 0 {
		return nil, combineErrors(errs)
	}
	return program, nil
}

func newParser(input string) *parser {
	p := &parser{l: newLexer(input)}

	p.prefixFns = make(map[TokenType]prefixParseFn)
	p.infixFns = make(map[TokenType]infixParseFn)

	p.registerPrefix(tokenIdent, p.parseIdentifier)
	p.registerPrefix(tokenCurrent, p.parseCurrent)
	p.registerPrefix(tokenVoid, p.parseVoid)
	p.registerPrefix(tokenInt, p.parseIntegerLiteral)
	p.registerPrefix(tokenReal, p.parseRealLiteral)
	p.registerPrefix(tokenString, p.parseStringLiteral)
	p.registerPrefix(tokenLParen, p.parseGroupedExpression)
	p.registerPrefix(tokenMinus, p.parseNegation)

	p.infixFns[tokenPlus] = p.parseBinaryExpression
	p.infixFns[tokenMinus] = p.parseBinaryExpression
	p.infixFns[tokenAsterisk] = p.parseBinaryExpression
	p.infixFns[tokenSlash] = p.parseBinaryExpression
	p.infixFns[tokenEQ] = p.parseComparison
	p.infixFns[tokenNotEQ] = p.parseComparison
	p.infixFns[tokenLT] = p.parseComparison
	p.infixFns[tokenLTE] = p.parseComparison
	p.infixFns[tokenGT] = p.parseComparison
	p.infixFns[tokenGTE] = p.parseComparison
	p.infixFns[tokenLParen] = p.parseCallExpression
	p.infixFns[tokenDot] = p.parseMemberExpression

	p.nextToken()
	p.nextToken()

	return p
}

func (p *parser) registerPrefix(tt TokenType, fn prefixParseFn) {
	p.prefixFns[tt] = fn
}

func (p *parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// ParseProgram parses class declarations and the loose top-level statements around
// them. The loose statements and any top-level locals end up in one unnamed feature
// body appended after the classes.
func (p *parser) ParseProgram() (*Program, []error) {
	program := &Program{}
	main := &FeatureBody{}
	hasMain := false

	for p.curToken.Type != tokenEOF {
		switch p.curToken.Type {
		case tokenSemicolon:
		case tokenClass:
			if class := p.parseClass(); class != nil {
				program.Statements = append(program.Statements, class)
			}
		case tokenLocal:
			if !hasMain {
				main.position = p.curToken.Pos
				hasMain = true
			}
			p.nextToken()
			main.Locals = append(main.Locals, p.parseDeclarations()...)
			continue
		default:
			if !hasMain {
				main.position = p.curToken.Pos
				hasMain = true
			}
			if stmt := p.parseStatement(); stmt != nil {
				main.Body = append(main.Body, stmt)
			}
		}
		p.nextToken()
	}

	if hasMain {
		program.Statements = append(program.Statements, main)
	}
	return program, p.errors
}

// parseClass expects curToken at 'class' and leaves it at the closing 'end'.
func (p *parser) parseClass() *ClassDecl {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenIdent) {
		p.skipTo(tokenEnd)
		return nil
	}
	class := &ClassDecl{Name: p.curToken.Literal, position: pos}
	p.nextToken()

	for p.curToken.Type != tokenEnd {
		switch p.curToken.Type {
		case tokenEOF:
			p.errorExpected(p.curToken, "'end' to close class "+class.Name)
			return class
		case tokenFeature, tokenSemicolon:
			p.nextToken()
		case tokenIdent:
			if feature := p.parseFeature(); feature != nil {
				class.Features = append(class.Features, feature)
			}
			p.nextToken()
		default:
			p.errorExpected(p.curToken, "feature declaration")
			p.nextToken()
		}
	}
	return class
}

// parseFeature reads one attribute list or one routine. curToken starts at the first
// name and ends on the last token of the feature.
func (p *parser) parseFeature() Node {
	pos := p.curToken.Pos
	names := []string{p.curToken.Literal}

	if p.peekToken.Type == tokenLParen {
		p.nextToken()
		params, ok := p.parseParams()
		if !ok {
			return nil
		}
		return p.parseRoutine(pos, names[0], params)
	}

	if p.peekToken.Type == tokenDo || p.peekToken.Type == tokenLocal {
		return p.parseRoutine(pos, names[0], nil)
	}

	for p.peekToken.Type == tokenComma {
		p.nextToken()
		if !p.expectPeek(tokenIdent) {
			return nil
		}
		names = append(names, p.curToken.Literal)
	}
	if !p.expectPeek(tokenColon) {
		return nil
	}
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	typeName := p.curToken.Literal

	if len(names) == 1 && (p.peekToken.Type == tokenDo || p.peekToken.Type == tokenLocal) {
		routine := p.parseRoutine(pos, names[0], nil)
		if routine != nil {
			routine.ResultType = typeName
		}
		return routine
	}

	list := &DeclarationList{position: pos}
	for _, name := range names {
		list.Decls = append(list.Decls, Declaration{Name: name, Type: typeName})
	}
	return list
}

// parseRoutine expects curToken on the token before an optional result type, locals
// or 'do', and leaves it at the routine's 'end'.
func (p *parser) parseRoutine(pos Position, name string, params []Declaration) *FeatureBody {
	routine := &FeatureBody{Name: name, Params: params, position: pos}

	if p.peekToken.Type == tokenColon {
		p.nextToken()
		if !p.expectPeek(tokenIdent) {
			return nil
		}
		routine.ResultType = p.curToken.Literal
	}

	p.nextToken()
	if p.curToken.Type == tokenLocal {
		p.nextToken()
		routine.Locals = p.parseDeclarations()
	}
	if p.curToken.Type != tokenDo {
		p.errorExpected(p.curToken, "'do'")
		p.skipTo(tokenEnd)
		return nil
	}
	p.nextToken()
	routine.Body = p.parseStatements(tokenEnd)
	if p.curToken.Type != tokenEnd {
		p.errorExpected(p.curToken, "'end' to close "+name)
		return nil
	}
	return routine
}

// parseParams expects curToken at '(' and leaves it at ')'.
func (p *parser) parseParams() ([]Declaration, bool) {
	var params []Declaration
	if p.peekToken.Type == tokenRParen {
		p.nextToken()
		return params, true
	}
	for {
		if !p.expectPeek(tokenIdent) {
			return nil, false
		}
		group := []string{p.curToken.Literal}
		for p.peekToken.Type == tokenComma {
			p.nextToken()
			if !p.expectPeek(tokenIdent) {
				return nil, false
			}
			group = append(group, p.curToken.Literal)
		}
		if !p.expectPeek(tokenColon) || !p.expectPeek(tokenIdent) {
			return nil, false
		}
		for _, name := range group {
			params = append(params, Declaration{Name: name, Type: p.curToken.Literal})
		}
		switch p.peekToken.Type {
		case tokenSemicolon, tokenComma:
			p.nextToken()
		case tokenRParen:
			p.nextToken()
			return params, true
		default:
			p.errorExpected(p.peekToken, "')'")
			return nil, false
		}
	}
}

// parseDeclarations reads `a, b: T` groups starting at curToken. It stops on the
// first token that does not begin a declaration and leaves curToken there.
func (p *parser) parseDeclarations() []Declaration {
	var decls []Declaration
	for {
		if p.curToken.Type == tokenSemicolon {
			p.nextToken()
			continue
		}
		if p.curToken.Type != tokenIdent || (p.peekToken.Type != tokenColon && p.peekToken.Type != tokenComma) {
			return decls
		}
		group := []string{p.curToken.Literal}
		for p.peekToken.Type == tokenComma {
			p.nextToken()
			if !p.expectPeek(tokenIdent) {
				return decls
			}
			group = append(group, p.curToken.Literal)
		}
		if !p.expectPeek(tokenColon) {
			return decls
		}
		if !p.expectPeek(tokenIdent) {
			return decls
		}
		for _, name := range group {
			decls = append(decls, Declaration{Name: name, Type: p.curToken.Literal})
		}
		p.nextToken()
	}
}

func (p *parser) skipTo(tt TokenType) {
	for p.curToken.Type != tt && p.curToken.Type != tokenEOF {
		p.nextToken()
	}
}

func (p *parser) expectPeek(tt TokenType) bool {
	if p.peekToken.Type == tt {
		p.nextToken()
		return true
	}
	p.errorExpected(p.peekToken, tokenLabel(tt))
	return false
}
