package lexmach

import (
	"strings"
	"unicode"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/scfg/scanner"
	"github.com/pkg/errors"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// tracer traces with key 'scfg.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("scfg.scanner")
}

// Skip is the token type of patterns whose matches are dropped.
const Skip scanner.TokType = 0

// Pattern pairs a lexmachine regular expression with the token type of its
// matches. Patterns listed earlier win over later ones for matches of equal
// length.
type Pattern struct {
	Regex string
	Type  scanner.TokType
}

// Lexer is a compiled lexmachine DFA.
type Lexer struct {
	dfa *lexmachine.Lexer
}

// Compile builds a lexer from literals and a table of patterns.
func Compile(patterns []Pattern, literals map[string]scanner.TokType) (*Lexer, error) {
	dfa := lexmachine.NewLexer()
	for lit, typ := range literals {
		dfa.Add([]byte(quote(lit)), action(typ))
	}
	for _, p := range patterns {
		dfa.Add([]byte(p.Regex), action(p.Type))
	}
	if err := dfa.Compile(); err != nil {
		tracer().Errorf("Error compiling DFA: %v", err)
		return nil, errors.Wrap(err, "compiling lexer DFA")
	}
	tracer().Debugf("compiled DFA for %d patterns, %d literals", len(patterns), len(literals))
	return &Lexer{dfa: dfa}, nil
}

// quote escapes the non-alphanumeric characters of a literal.
func quote(lit string) string {
	var b strings.Builder
	for _, r := range lit {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func action(typ scanner.TokType) lexmachine.Action {
	if typ == Skip {
		return func(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
			return nil, nil
		}
	}
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(int(typ), string(m.Bytes), m), nil
	}
}

// Scanner creates a scanner for an input.
func (lx *Lexer) Scanner(input string) (*Scanner, error) {
	s, err := lx.dfa.Scanner([]byte(input))
	if err != nil {
		return &Scanner{}, err
	}
	return &Scanner{lms: s, onError: logError}, nil
}

// Tokens scans a complete input and returns its tokens, without the final EOF
// token. It fails on the first input position no pattern matches.
func (lx *Lexer) Tokens(input string) ([]scanner.Token, error) {
	s, err := lx.Scanner(input)
	if err != nil {
		return nil, err
	}
	var failure error
	s.SetErrorHandler(func(e error) {
		if failure == nil {
			failure = e
		}
	})
	var tokens []scanner.Token
	for tok := s.NextToken(); tok.TokType() != scanner.EOF && failure == nil; tok = s.NextToken() {
		tokens = append(tokens, tok)
	}
	if failure != nil {
		return tokens, errors.Wrapf(failure, "cannot tokenize %q", input)
	}
	return tokens, nil
}

// Scanner tokenizes a single input. It implements scanner.Tokenizer.
type Scanner struct {
	lms     *lexmachine.Scanner
	onError func(error)
}

var _ scanner.Tokenizer = (*Scanner)(nil)

// SetErrorHandler sets an error handler for the scanner; nil resets it to
// logging errors.
func (s *Scanner) SetErrorHandler(h func(error)) {
	if h == nil {
		h = logError
	}
	s.onError = h
}

func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

// NextToken is part of the Tokenizer interface. Token spans are byte offsets
// into the input. Unmatched input is reported and skipped.
func (s *Scanner) NextToken() scanner.Token {
	if s.lms == nil {
		return scanner.MakeDefaultToken(scanner.EOF, "", scanner.Span{})
	}
	tok, err, eof := s.lms.Next()
	for err != nil {
		s.onError(err)
		if ui, ok := err.(*machines.UnconsumedInput); ok {
			s.lms.TC = ui.FailTC
		}
		tok, err, eof = s.lms.Next()
	}
	if eof {
		end := uint64(s.lms.TC)
		return scanner.MakeDefaultToken(scanner.EOF, "", scanner.Span{end, end})
	}
	t := tok.(*lexmachine.Token)
	from := uint64(t.TC)
	return scanner.MakeDefaultToken(scanner.TokType(t.Type), string(t.Lexeme),
		scanner.Span{from, from + uint64(len(t.Lexeme))})
}
