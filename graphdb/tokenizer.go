package graphdb

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
)

// TokenType defines types of tokens
type TokenType int

const (
	TokenName TokenType = iota
	TokenString
	TokenNumber
	TokenSymbol
	TokenEOF
)

// String returns the token type name
func (t TokenType) String() string {
	switch t {
	case TokenName:
		return "NAME"
	case TokenString:
		return "STRING"
	case TokenNumber:
		return "NUMBER"
	case TokenSymbol:
		return "SYMBOL"
	case TokenEOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// Tokenizer breaks a query into tokens
type Tokenizer struct {
	input  []rune
	pos    int
	tokens []Token
}

// NewTokenizer initializes a new Tokenizer
func NewTokenizer(input string) *Tokenizer {
	return &Tokenizer{
		input:  []rune(input),
		pos:    0,
		tokens: []Token{},
	}
}

// Tokenize processes the input query into tokens terminated by TokenEOF
func (t *Tokenizer) Tokenize() ([]Token, error) {
	log := logrus.WithField("component", "Tokenizer")
	log.Debug("Starting tokenization")
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		switch {
		case unicode.IsSpace(c):
			t.pos++
		case unicode.IsLetter(c) || c == '_':
			t.readName()
		case c == '\'' || c == '"':
			if err := t.readString(c); err != nil {
				log.WithError(err).Error("Tokenization failed")
				return nil, err
			}
		case unicode.IsDigit(c):
			t.readNumber()
		case c == '-' && t.pos+1 < len(t.input) && unicode.IsDigit(t.input[t.pos+1]):
			t.readNumber()
		default:
			t.readSymbol()
		}
	}
	t.tokens = append(t.tokens, Token{Type: TokenEOF, Value: "", Pos: t.pos})
	log.WithField("token_count", len(t.tokens)).Debug("Tokenization complete")
	if log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		tokenList := make([]string, len(t.tokens))
		for i, token := range t.tokens {
			tokenList[i] = fmt.Sprintf("%v:%s", token.Type, token.Value)
		}
		log.WithField("tokens", strings.Join(tokenList, ", ")).Trace("Tokens produced")
	}
	return t.tokens, nil
}

// readName reads a step name or identifier
func (t *Tokenizer) readName() {
	start := t.pos
	for t.pos < len(t.input) && (unicode.IsLetter(t.input[t.pos]) || unicode.IsDigit(t.input[t.pos]) || t.input[t.pos] == '_') {
		t.pos++
	}
	t.tokens = append(t.tokens, Token{Type: TokenName, Value: string(t.input[start:t.pos]), Pos: start})
}

// readString reads a quoted string, honouring backslash escapes
func (t *Tokenizer) readString(quote rune) error {
	start := t.pos
	t.pos++ // Skip opening quote
	var sb strings.Builder
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		switch {
		case c == '\\' && t.pos+1 < len(t.input):
			sb.WriteRune(unescape(t.input[t.pos+1]))
			t.pos += 2
		case c == quote:
			t.pos++ // Skip closing quote
			t.tokens = append(t.tokens, Token{Type: TokenString, Value: sb.String(), Pos: start})
			return nil
		default:
			sb.WriteRune(c)
			t.pos++
		}
	}
	return fmt.Errorf("unterminated string starting at position %d: %w", start, ErrMalformedQuery)
}

func unescape(c rune) rune {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	default:
		return c
	}
}

// readNumber reads an integer or a decimal number with an optional sign
func (t *Tokenizer) readNumber() {
	start := t.pos
	if t.input[t.pos] == '-' {
		t.pos++
	}
	seenDot := false
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		if unicode.IsDigit(c) {
			t.pos++
			continue
		}
		if c == '.' && !seenDot && t.pos+1 < len(t.input) && unicode.IsDigit(t.input[t.pos+1]) {
			seenDot = true
			t.pos++
			continue
		}
		break
	}
	t.tokens = append(t.tokens, Token{Type: TokenNumber, Value: string(t.input[start:t.pos]), Pos: start})
}

// readSymbol reads a single character operator
func (t *Tokenizer) readSymbol() {
	c := t.input[t.pos]
	switch c {
	case '(', ')', '.', ',', '=':
		t.tokens = append(t.tokens, Token{Type: TokenSymbol, Value: string(c), Pos: t.pos})
	default:
		logrus.WithFields(logrus.Fields{
			"component": "Tokenizer",
			"char":      string(c),
			"pos":       t.pos,
		}).Warn("Unknown symbol, skipping")
	}
	t.pos++
}
