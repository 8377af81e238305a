package graphdb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Parser converts tokens into a step tree
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser initializes a new Parser
func NewParser(tokens []Token) *Parser {
	return &Parser{
		tokens: tokens,
		pos:    0,
	}
}

// ParseQuery tokenizes and parses a query string
func ParseQuery(query string) ([]ASTNode, error) {
	tokens, err := NewTokenizer(query).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

// Parse parses the token stream into the top-level block of the step tree.
// Step names and arity are not validated here.
func (p *Parser) Parse() ([]ASTNode, error) {
	log := logrus.WithField("component", "Parser")
	log.Debug("Starting parsing")
	nodes := []ASTNode{}
	for {
		token := p.next()
		if token.Type == TokenEOF {
			break
		}
		if token.Type != TokenName {
			log.WithFields(logrus.Fields{
				"pos":   token.Pos,
				"token": token.Value,
			}).Debug("Skipping token outside of a step")
			continue
		}

		switch {
		case p.acceptSymbol("("):
			call, err := p.function(token)
			if err != nil {
				log.WithError(err).Error("Failed to parse query")
				return nil, err
			}
			nodes = append(nodes, call)
		case p.acceptSymbol("="):
			nodes = append(nodes,
				ASTNode{Type: NodeIdentifier, Value: token.Value},
				ASTNode{Type: NodeAssignment, Value: "="},
			)
		default:
			nodes = append(nodes, ASTNode{Type: NodeIdentifier, Value: token.Value})
		}
	}
	log.WithField("node_count", len(nodes)).Debug("Parsing complete")
	return nodes, nil
}

// function parses the argument list of a step whose opening parenthesis was consumed
func (p *Parser) function(name Token) (ASTNode, error) {
	node := ASTNode{Type: NodeFunction, Value: name.Value, Children: []ASTNode{}}
	for {
		token := p.next()
		switch token.Type {
		case TokenEOF:
			return ASTNode{}, fmt.Errorf("unterminated argument list of %s at position %d: %w",
				name.Value, name.Pos, ErrMalformedQuery)
		case TokenSymbol:
			if token.Value == ")" {
				return node, nil
			}
		case TokenString:
			node.Children = append(node.Children, ASTNode{Type: NodeLiteral, Value: token.Value, Literal: token.Value})
		case TokenNumber:
			value, err := parseNumber(token.Value)
			if err != nil {
				return ASTNode{}, fmt.Errorf("invalid number %q at position %d: %w", token.Value, token.Pos, ErrMalformedQuery)
			}
			node.Children = append(node.Children, ASTNode{Type: NodeLiteral, Value: token.Value, Literal: value})
		case TokenName:
			if p.acceptSymbol("(") {
				nested, err := p.function(token)
				if err != nil {
					return ASTNode{}, err
				}
				node.Children = append(node.Children, nested)
			} else {
				node.Children = append(node.Children, ASTNode{Type: NodeIdentifier, Value: token.Value})
			}
		}
	}
}

// next consumes a token; past the end it keeps returning TokenEOF
func (p *Parser) next() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	token := p.tokens[p.pos]
	p.pos++
	return token
}

// acceptSymbol consumes the next token if it is the given symbol
func (p *Parser) acceptSymbol(value string) bool {
	if p.pos < len(p.tokens) && p.tokens[p.pos].Type == TokenSymbol && p.tokens[p.pos].Value == value {
		p.pos++
		return true
	}
	return false
}

// parseNumber returns an int64 for integral literals and a float64 otherwise
func parseNumber(s string) (interface{}, error) {
	if !strings.Contains(s, ".") {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v, nil
		}
	}
	return strconv.ParseFloat(s, 64)
}
