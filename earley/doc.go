/*
Package earley implements an Earley-style chart generator for synchronous
context-free grammars, generating NL sentences from meaning representations.

The generator reads an MR tree in its linearized prefix form and parses it with
the MR sides of the grammar rules. While doing so, it builds up the NL sides of
the rules in parallel: every chart item carries a context vector (see package
lmctx) for incremental n-gram scoring of the NL words realized so far, and a
vector of feature scores. Items are recombined if they agree in rule, dots,
span and context vector; only the best K of them (by inner score) survive.

Prediction uses the left-corner relation of the grammar to filter rules. Rules
with wildcards are specialized when scanning a concrete MR token. Before a
completed item enters the chart, the word gaps of its rule are filled with
candidate phrases of a gap model (see package gaps).

Derivations are read off the chart by walking back-pointers, with a listener
receiving reductions and terminals, similar to parse tree construction in
ordinary Earley parsers.

A good introduction to Earley parsing may be found in

     http://loup-vaillant.fr/tutorials/earley-parsing/recogniser

Language models used with a generator must share the NL word table of the
grammar, e.g.

     model := lm.NewNGram(2, g.NL)

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package earley

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'scfg.earley'.
func tracer() tracing.Trace {
	return tracing.Select("scfg.earley")
}
