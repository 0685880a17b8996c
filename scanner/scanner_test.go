package scanner

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestWordTokenizer(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.scanner")
	defer teardown()
	//
	for i, test := range []struct {
		input string
		words []string
	}{
		{input: "what is the capital of texas ?", words: []string{"what", "is", "the", "capital", "of", "texas", "?"}},
		{input: "What's  the population?", words: []string{"what", "'s", "the", "population", "?"}},
		{input: "rivers longer than 3.5 km.", words: []string{"rivers", "longer", "than", "3.5", "km", "."}},
		{input: "it has 12, not 13", words: []string{"it", "has", "12", ",", "not", "13"}},
		{input: "   ", words: nil},
	} {
		words := Words(test.input, Lowercase(true))
		if strings.Join(words, "|") != strings.Join(test.words, "|") {
			t.Errorf("test %d: expected words to be %v, are %v", i+1, test.words, words)
		}
	}
}

func TestWordTokenizerSpans(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.scanner")
	defer teardown()
	//
	tz := NewWordTokenizer(strings.NewReader("größte stadt 42"))
	tok := tz.NextToken()
	if tok.TokType() != Word || tok.Span() != (Span{0, 8}) {
		t.Errorf("Expected first token to be a word at (0…8), is %d at %s", tok.TokType(), tok.Span())
	}
	tok = tz.NextToken()
	if tok.Lexeme() != "stadt" || tok.Span().From() != 9 {
		t.Errorf("Expected second token 'stadt' at 9, is %q at %d", tok.Lexeme(), tok.Span().From())
	}
	tok = tz.NextToken()
	if tok.TokType() != Number || tok.Span().Len() != 2 {
		t.Errorf("Expected a number of length 2, have %q", tok.Lexeme())
	}
	if tok = tz.NextToken(); tok.TokType() != EOF {
		t.Errorf("Expected EOF, have %q", tok.Lexeme())
	}
}

func TestSpan(t *testing.T) {
	s := Span{3, 5}.Extend(Span{1, 4})
	if s.From() != 1 || s.To() != 5 || s.Len() != 4 {
		t.Errorf("Expected extended span to be (1…5), is %s", s)
	}
	if !(Span{}).IsNull() {
		t.Errorf("Expected zero span to be null")
	}
}
