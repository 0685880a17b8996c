package mrl

import (
	"strconv"
	"strings"
	"sync"

	"github.com/npillmayer/scfg/scanner"
	"github.com/npillmayer/scfg/scanner/lexmach"
	"github.com/pkg/errors"
)

// Token types of the MR lexer.
const (
	tokAtom scanner.TokType = iota + 1
	tokString
	tokVar
	tokArg
	tokWild
	tokOpen
	tokClose
)

var literals = map[string]scanner.TokType{"(": tokOpen, ")": tokClose}

var patterns = []lexmach.Pattern{
	{Regex: `;[^\n]*\n?`, Type: lexmach.Skip}, // comments
	{Regex: `'[^']*'`, Type: tokString},
	{Regex: `\"[^"]*\"`, Type: tokString},
	{Regex: `([a-z]|[A-Z]|_)([a-z]|[A-Z]|[0-9]|_|-|\.)*#[0-9]+`, Type: tokArg},
	{Regex: `([a-z]|[A-Z]|[0-9]|_|\.|:|<|>|=|\+|-|/|\?|!|@|&)+`, Type: tokAtom},
	{Regex: `$([a-z]|[A-Z]|[0-9]|_)+`, Type: tokVar},
	{Regex: `\*([a-z]|[A-Z])+`, Type: tokWild},
	{Regex: `( |\t|\n|\r)+`, Type: lexmach.Skip},
}

var lexer *lexmach.Lexer
var lexerErr error
var initOnce sync.Once // monitors one-time initialization of the lexer

// Lexer returns the lexer for MRs and rule patterns.
func Lexer() (*lexmach.Lexer, error) {
	initOnce.Do(func() {
		lexer, lexerErr = lexmach.Compile(patterns, literals)
	})
	return lexer, lexerErr
}

// Read reads an MR in s-expression notation, e.g.
//
//    (answer (capital (stateid 'texas')))
//
// Variables are written as $x. Argument symbols and wildcards are not allowed;
// see ReadPattern. sig may be nil.
func Read(input string, sig *Signature) (*Tree, error) {
	root, err := read(input, false)
	if err != nil {
		return nil, err
	}
	return NewTree(root, sig), nil
}

// MustRead is like Read, but panics on malformed input.
func MustRead(input string, sig *Signature) *Tree {
	t, err := Read(input, sig)
	if err != nil {
		panic(err)
	}
	return t
}

// ReadPattern reads the MR side of a rule. In addition to MR syntax, patterns
// may contain argument symbols (State#1) and wildcards (*num). Operators
// declared AC by sig are flagged, with the same condition NewTree uses.
func ReadPattern(input string, sig *Signature) (*Node, error) {
	root, err := read(input, true)
	if err != nil {
		return nil, err
	}
	root.Each(func(n *Node) {
		n.AC = n.Kind == Atom && len(n.Children) > 1 && sig.IsAC(n.Label)
	})
	return root, nil
}

func read(input string, pattern bool) (*Node, error) {
	lx, err := Lexer()
	if err != nil {
		return nil, err
	}
	tokens, err := lx.Tokens(input)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read MR")
	}
	if len(tokens) == 0 {
		return nil, errors.New("empty MR")
	}
	p := &sexprReader{tokens: tokens, pattern: pattern}
	root, err := p.expr()
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read MR %q", input)
	}
	if p.pos < len(tokens) {
		return nil, errors.Errorf("cannot read MR %q: trailing input at %s",
			input, tokens[p.pos].Span())
	}
	return root, nil
}

type sexprReader struct {
	tokens  []scanner.Token
	pos     int
	pattern bool
}

func (p *sexprReader) next() (scanner.Token, bool) {
	if p.pos >= len(p.tokens) {
		return nil, false
	}
	tok := p.tokens[p.pos]
	p.pos++
	return tok, true
}

func (p *sexprReader) expr() (*Node, error) {
	tok, ok := p.next()
	if !ok {
		return nil, errors.New("unexpected end of input")
	}
	switch tok.TokType() {
	case tokOpen:
		label, ok := p.next()
		if !ok {
			return nil, errors.New("unexpected end of input after '('")
		}
		if label.TokType() != tokAtom && label.TokType() != tokString {
			return nil, errors.Errorf("expected operator at %s, have %q", label.Span(), label.Lexeme())
		}
		n := NewNode(label.Lexeme())
		for {
			if p.pos >= len(p.tokens) {
				return nil, errors.Errorf("missing ')' for operator %q", n.Label)
			}
			if p.tokens[p.pos].TokType() == tokClose {
				p.pos++
				return n, nil
			}
			ch, err := p.expr()
			if err != nil {
				return nil, err
			}
			n.Append(ch)
		}
	case tokClose:
		return nil, errors.Errorf("unexpected ')' at %s", tok.Span())
	case tokAtom, tokString:
		return &Node{Label: tok.Lexeme(), Kind: Atom}, nil
	case tokVar:
		return &Node{Label: tok.Lexeme()[1:], Kind: Var}, nil
	case tokArg, tokWild:
		if !p.pattern {
			return nil, errors.Errorf("pattern symbol %q not allowed in MR", tok.Lexeme())
		}
		if tok.TokType() == tokWild {
			return &Node{Label: tok.Lexeme()[1:], Kind: Wild}, nil
		}
		return argNode(tok.Lexeme())
	}
	return nil, errors.Errorf("unexpected token %q", tok.Lexeme())
}

func argNode(lexeme string) (*Node, error) {
	i := strings.LastIndexByte(lexeme, '#')
	inx, err := strconv.Atoi(lexeme[i+1:])
	if err != nil || inx < 1 {
		return nil, errors.Errorf("illegal argument index in %q", lexeme)
	}
	return &Node{Label: lexeme[:i], Kind: Arg, Index: inx}, nil
}
