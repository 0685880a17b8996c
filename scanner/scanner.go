/*
Package scanner defines an interface for tokenizers, together with a tokenizer
for natural language sentences.

An adapter for lexmachine, used for meaning representations, lives in sub-package
`lexmach`.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package scanner

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'scfg.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("scfg.scanner")
}

// Token types of the word tokenizer.
const (
	EOF    TokType = -1
	Word   TokType = 1
	Number TokType = 2
	Punct  TokType = 3
)

// Tokenizer is a scanner interface.
type Tokenizer interface {
	NextToken() Token
	SetErrorHandler(func(error))
}

// --- Default tokens --------------------------------------------------------

// DefaultToken is a very unsophisticated token type, used as default for the word
// tokenizer as well as the LexMachine scanner.
type DefaultToken struct {
	kind   TokType
	lexeme string
	Val    interface{}
	span   Span
}

// MakeDefaultToken creates a token.
func MakeDefaultToken(typ TokType, lexeme string, span Span) DefaultToken {
	return DefaultToken{
		kind:   typ,
		lexeme: lexeme,
		span:   span,
	}
}

// TokType is part of the Token interface.
func (t DefaultToken) TokType() TokType {
	return t.kind
}

// Value is part of the Token interface.
func (t DefaultToken) Value() interface{} {
	return t.Val
}

// Lexeme is part of the Token interface.
func (t DefaultToken) Lexeme() string {
	return t.lexeme
}

// Span is part of the Token interface.
func (t DefaultToken) Span() Span {
	return t.span
}

// --- Word tokenizer --------------------------------------------------------

// CatCode is a rune category.
type CatCode int8

// Rune categories of the word tokenizer.
const (
	catOther CatCode = iota
	catLetter
	catDigit
	catSpace
	catApostrophe
	catPunct
)

func category(r rune) CatCode {
	switch {
	case unicode.IsLetter(r) || r == '_':
		return catLetter
	case unicode.IsDigit(r):
		return catDigit
	case unicode.IsSpace(r):
		return catSpace
	case r == '\'' || r == '’':
		return catApostrophe
	case unicode.IsPunct(r) || unicode.IsSymbol(r):
		return catPunct
	}
	return catOther
}

// WordTokenizer splits natural language input into words, numbers and punctuation.
// Runs of letters and digits form words, an apostrophe starts a new word ("what's"
// is split into "what" and "'s"), decimal numbers are kept together. Create one
// with NewWordTokenizer.
type WordTokenizer struct {
	input     []rune
	offsets   []uint64 // byte offset of each rune, plus end offset
	next      int      // index of next rune
	lowercase bool
	Error     func(error) // error handler
}

var _ Tokenizer = (*WordTokenizer)(nil)

// Default error reporting function for scanners
func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

// NewWordTokenizer creates a tokenizer for natural language input.
// Sentences are short, the input is read completely.
func NewWordTokenizer(input io.Reader, opts ...Option) *WordTokenizer {
	t := &WordTokenizer{Error: logError}
	for _, opt := range opts {
		opt(t)
	}
	reader := bufio.NewReader(input)
	var offset uint64
	for {
		r, sz, err := reader.ReadRune()
		if err != nil {
			if err != io.EOF {
				t.Error(fmt.Errorf("cannot read input: %w", err))
			}
			break
		}
		t.input = append(t.input, r)
		t.offsets = append(t.offsets, offset)
		offset += uint64(sz)
	}
	t.offsets = append(t.offsets, offset)
	return t
}

// SetErrorHandler sets an error handler for the scanner.
func (t *WordTokenizer) SetErrorHandler(h func(error)) {
	if h == nil {
		t.Error = logError
		return
	}
	t.Error = h
}

func (t *WordTokenizer) cat(i int) CatCode {
	if i >= len(t.input) {
		return catOther
	}
	return category(t.input[i])
}

// NextToken is part of the Tokenizer interface.
func (t *WordTokenizer) NextToken() Token {
	for t.next < len(t.input) && t.cat(t.next) == catSpace {
		t.next++
	}
	if t.next >= len(t.input) {
		tracer().Debugf("WordTokenizer reached end of input")
		end := t.offsets[len(t.input)]
		return MakeDefaultToken(EOF, "", Span{end, end})
	}
	start := t.next
	kind := Word
	switch cat := t.cat(t.next); cat {
	case catLetter, catDigit, catApostrophe:
		if cat == catDigit {
			kind = Number
		}
		t.next++
		for t.next < len(t.input) {
			c := t.cat(t.next)
			if c == catLetter || c == catDigit {
				if c == catLetter {
					kind = Word
				}
				t.next++
				continue
			}
			r := t.input[t.next]
			if kind == Number && (r == '.' || r == ',') && t.cat(t.next+1) == catDigit {
				t.next += 2 // decimal separator
				continue
			}
			break
		}
	default:
		kind = Punct
		t.next++
	}
	lexeme := string(t.input[start:t.next])
	if t.lowercase {
		lexeme = strings.ToLower(lexeme)
	}
	tracer().Debugf("word token %q", lexeme)
	return MakeDefaultToken(kind, lexeme, Span{t.offsets[start], t.offsets[t.next]})
}

// --- Options ---------------------------------------------------------------

// Option configures a word tokenizer.
type Option func(t *WordTokenizer)

// Lowercase sets or clears option Lowercase: convert all words to lower case.
func Lowercase(b bool) Option {
	return func(t *WordTokenizer) {
		t.lowercase = b
	}
}

// Words is a helper to split a sentence into words.
func Words(sentence string, opts ...Option) []string {
	t := NewWordTokenizer(strings.NewReader(sentence), opts...)
	var words []string
	for tok := t.NextToken(); tok.TokType() != EOF; tok = t.NextToken() {
		words = append(words, tok.Lexeme())
	}
	return words
}

// Lexeme is a helper function to receive a string from a token.
func Lexeme(token interface{}) string {
	switch t := token.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case Token:
		return t.Lexeme()
	default:
		return fmt.Sprintf("%v", t)
	}
}
