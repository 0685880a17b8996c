package scanner

import "fmt"

// TokType categorizes tokens. Tokenizers define their own token types, with
// EOF being reserved.
type TokType int

// Token is a word of a sentence or a token of an MR, as delivered by a
// Tokenizer. Spans are byte offsets into the input, e.g. 'texas' in
// "capital of texas" has span (11…16).
type Token interface {
	TokType() TokType
	Lexeme() string
	Value() interface{}
	Span() Span
}

// Span denotes a run of input positions: the start position and the position
// just behind the end. The chart engines use spans over word or MR token
// positions, too.
type Span [2]uint64 // (x…y)

// From returns the start position.
func (s Span) From() uint64 { return s[0] }

// To returns the position behind the end.
func (s Span) To() uint64 { return s[1] }

// Len returns the number of positions covered.
func (s Span) Len() uint64 { return s[1] - s[0] }

// IsNull is true for the zero span (0…0).
func (s Span) IsNull() bool { return s[0] == 0 && s[1] == 0 }

// Extend returns the smallest span covering both s and other.
func (s Span) Extend(other Span) Span {
	return Span{min(s[0], other[0]), max(s[1], other[1])}
}

func min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}
