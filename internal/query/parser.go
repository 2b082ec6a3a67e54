// Package query implements the preset filter language used by
// "preset list --query", the HTTP API and the MCP tools.
//
//	tier:heavy AND transforms:>=4
//	tag:2d OR (name:sierpinski-triangle AND NOT output:points)
//	points:<1000000
package query

import (
	"fmt"
	"strings"
	"unicode"
)

// Node types of a parsed filter.
const (
	NodePredicate = "predicate"
	NodeAnd       = "and"
	NodeOr        = "or"
	NodeNot       = "not"
)

// AST represents a parsed filter expression.
type AST struct {
	Type     string `json:"type"`
	Key      string `json:"key,omitempty"`
	Operator string `json:"operator,omitempty"`
	Value    string `json:"value,omitempty"`
	Left     *AST   `json:"left,omitempty"`
	Right    *AST   `json:"right,omitempty"`
	Child    *AST   `json:"child,omitempty"`
}

// Keys accepted on the left of a predicate. Numeric keys take an optional
// comparison operator.
var keys = map[string]bool{
	"name":       false,
	"tag":        false,
	"tier":       false,
	"output":     false,
	"transforms": true,
	"iterations": true,
	"points":     true,
	"seed":       true,
}

type tokenKind int

const (
	tokWord tokenKind = iota
	tokColon
	tokLParen
	tokRParen
	tokOp // >, <, >=, <=, =
	tokEOF
)

type token struct {
	kind  tokenKind
	value string
}

type parser struct {
	tokens []token
	pos    int
}

// Parse parses a filter string into an AST. An empty filter yields nil.
func Parse(input string) (*AST, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	p := &parser{tokens: tokenize(input)}
	ast, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at token %d", t.value, p.pos)
	}
	return ast, nil
}

func tokenize(input string) []token {
	var tokens []token
	for i := 0; i < len(input); {
		ch := rune(input[i])
		switch {
		case unicode.IsSpace(ch):
			i++
		case ch == '(':
			tokens = append(tokens, token{tokLParen, "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{tokRParen, ")"})
			i++
		case ch == ':':
			tokens = append(tokens, token{tokColon, ":"})
			i++
		case ch == '>' || ch == '<' || ch == '=':
			n := 1
			if ch != '=' && i+1 < len(input) && input[i+1] == '=' {
				n = 2
			}
			tokens = append(tokens, token{tokOp, input[i : i+n]})
			i += n
		default:
			start := i
			for i < len(input) && !strings.ContainsRune(" \t\n():<>=", rune(input[i])) {
				i++
			}
			tokens = append(tokens, token{tokWord, input[start:i]})
		}
	}
	return append(tokens, token{tokEOF, ""})
}

func (p *parser) peek() token {
	if p.pos >= len(p.tokens) {
		return token{tokEOF, ""}
	}
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) keyword(word string) bool {
	t := p.peek()
	return t.kind == tokWord && strings.EqualFold(t.value, word)
}

// AND binds tighter than OR.
func (p *parser) parseOr() (*AST, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.keyword("OR") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &AST{Type: NodeOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (*AST, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.keyword("AND") {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &AST{Type: NodeAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (*AST, error) {
	if p.keyword("NOT") {
		p.next()
		child, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &AST{Type: NodeNot, Child: child}, nil
	}
	return p.parseFactor()
}

func (p *parser) parseFactor() (*AST, error) {
	if p.peek().kind == tokLParen {
		p.next()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.next().kind != tokRParen {
			return nil, fmt.Errorf("expected closing parenthesis")
		}
		return expr, nil
	}
	return p.parsePredicate()
}

func (p *parser) parsePredicate() (*AST, error) {
	key := p.next()
	if key.kind != tokWord {
		return nil, fmt.Errorf("expected key, got %q", key.value)
	}
	numeric, ok := keys[strings.ToLower(key.value)]
	if !ok {
		return nil, fmt.Errorf("unknown key: %s", key.value)
	}
	name := strings.ToLower(key.value)

	if p.next().kind != tokColon {
		return nil, fmt.Errorf("expected ':' after key %q", key.value)
	}

	var operator string
	if p.peek().kind == tokOp {
		operator = p.next().value
		if !numeric {
			return nil, fmt.Errorf("key %s does not take operator %s", name, operator)
		}
	}

	value := p.next()
	if value.kind != tokWord {
		return nil, fmt.Errorf("expected value after %s:", name)
	}

	// Tag values may themselves contain colons, e.g. tag:set:classic
	v := value.value
	if name == "tag" {
		for p.peek().kind == tokColon && len(p.tokens) > p.pos+1 && p.tokens[p.pos+1].kind == tokWord {
			p.next()
			v += ":" + p.next().value
		}
	}

	return &AST{Type: NodePredicate, Key: name, Operator: operator, Value: v}, nil
}
