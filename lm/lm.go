/*
Package lm provides n-gram language models.

Language models score n-grams of word ids from a vocabulary (see package symtab).
Scores are log-probabilities. Missing n-grams back off to shorter histories;
words without any probability receive Log0.

N-grams passed to Score always have the full order of the model. Histories
shorter than the order (at the start of a sentence) are padded on the left with
None.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lm

import (
	"encoding/binary"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/scfg/symtab"
)

// tracer traces with key 'scfg.lm'.
func tracer() tracing.Trace {
	return tracing.Select("scfg.lm")
}

// None pads histories which are shorter than the order of a model.
const None int32 = -1

// Log0 is the log-probability of impossible events.
const Log0 = -99.0

// Model is the interface of n-gram language models.
type Model interface {
	Order() int
	Score(ngram []int32) float64
}

// Uniform is a model which assigns log-probability 0 to every word. It switches
// off language model scoring.
type Uniform struct{}

var _ Model = Uniform{}

// Order is part of interface Model.
func (Uniform) Order() int { return 1 }

// Score is part of interface Model.
func (Uniform) Score(ngram []int32) float64 { return 0 }

// NGram is a back-off n-gram model. It is filled once and read-only afterwards,
// i.e. it may be shared between concurrent generation runs.
type NGram struct {
	order int
	vocab *symtab.Table
	probs map[string]entry
}

type entry struct {
	logp float64
	bow  float64 // back-off weight
}

var _ Model = (*NGram)(nil)

// NewNGram creates an empty model of the given order over a vocabulary.
// vocab is expected to be a word table, i.e. to have the reserved words
// defined (see symtab.NewWordTable).
func NewNGram(order int, vocab *symtab.Table) *NGram {
	if order < 1 {
		order = 1
	}
	return &NGram{
		order: order,
		vocab: vocab,
		probs: make(map[string]entry),
	}
}

// Order returns the order n of the model.
func (m *NGram) Order() int {
	return m.order
}

// Vocabulary returns the word table of the model.
func (m *NGram) Vocabulary() *symtab.Table {
	return m.vocab
}

// Size returns the number of n-grams stored.
func (m *NGram) Size() int {
	return len(m.probs)
}

// Add adds an n-gram, given as words, with its log-probability and back-off weight.
// Words are interned into the vocabulary. N-grams longer than the order of the
// model are ignored.
func (m *NGram) Add(words []string, logp float64, bow float64) {
	if len(words) == 0 || len(words) > m.order {
		tracer().Errorf("ignoring n-gram of length %d for model of order %d", len(words), m.order)
		return
	}
	ids := make([]int32, len(words))
	for i, w := range words {
		ids[i] = int32(m.vocab.Intern(w))
	}
	m.AddIDs(ids, logp, bow)
}

// AddIDs adds an n-gram of word ids.
func (m *NGram) AddIDs(ids []int32, logp float64, bow float64) {
	m.probs[key(ids)] = entry{logp: logp, bow: bow}
}

// Score returns the log-probability of the last word of ngram, given the other
// words as history. Leading None entries are ignored.
func (m *NGram) Score(ngram []int32) float64 {
	for len(ngram) > 0 && ngram[0] == None {
		ngram = ngram[1:]
	}
	if len(ngram) > m.order {
		ngram = ngram[len(ngram)-m.order:]
	}
	return m.score(ngram)
}

func (m *NGram) score(ngram []int32) float64 {
	if len(ngram) == 0 {
		return Log0
	}
	if e, ok := m.probs[key(ngram)]; ok {
		return e.logp
	}
	if len(ngram) == 1 {
		if e, ok := m.probs[key([]int32{symtab.Unk})]; ok {
			return e.logp
		}
		return Log0
	}
	bow := 0.0
	if e, ok := m.probs[key(ngram[:len(ngram)-1])]; ok {
		bow = e.bow
	}
	return bow + m.score(ngram[1:])
}

// String returns the words of an n-gram of ids, for debugging.
func (m *NGram) String(ngram []int32) string {
	w := make([]string, len(ngram))
	for i, id := range ngram {
		if id == None {
			w[i] = "_"
		} else if w[i] = m.vocab.Name(int(id)); w[i] == "" {
			w[i] = symtab.UnkName
		}
	}
	return strings.Join(w, " ")
}

func key(ids []int32) string {
	b := make([]byte, 4*len(ids))
	for i, id := range ids {
		binary.LittleEndian.PutUint32(b[4*i:], uint32(id))
	}
	return string(b)
}

// SentenceScore scores a complete sentence of word ids, including the sentence
// end marker, with the sentence start marker as initial history. This is the
// reference against which incremental scoring during generation must agree.
func SentenceScore(m Model, words []int32) float64 {
	n := m.Order()
	seq := make([]int32, 0, len(words)+2)
	seq = append(seq, symtab.BOS)
	seq = append(seq, words...)
	seq = append(seq, symtab.EOS)
	ngram := make([]int32, n)
	score := 0.0
	for p := 1; p < len(seq); p++ {
		for j := 0; j < n; j++ {
			q := p - (n - 1) + j
			if q < 0 {
				ngram[j] = None
			} else {
				ngram[j] = seq[q]
			}
		}
		score += m.Score(ngram)
	}
	return score
}
