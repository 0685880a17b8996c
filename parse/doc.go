/*
Package parse implements an Earley parser for synchronous context-free grammars,
reading NL sentences and producing meaning representations.

The parser recognizes a sentence with the NL sides of the grammar rules. Every
complete item stands for a rule instance, and the MR side of the rule is
instantiated from the MR sides of its arguments when a derivation is read off
the chart. Items are recombined if they agree in rule, dot and span; only the
best K of them (by inner score) survive. There is no language model involved:
scores are the feature scores of the rules used.

Wildcard copies on the NL side match a phrase of up to MaxWildcardWords words,
which is converted to an MR terminal of the wildcard's class:

    State → ⟨ (stateid *str) , *str ⟩

parses "new york" as (stateid 'new_york'). Rules with a wildcard but without
an NL copy of it cannot be used for parsing, as the MR terminal cannot be told.
Word gaps of a rule may skip input words; every skipped word is penalized with
a gap score of -1.

Usage:

    p := parse.NewParser(g, scfg.NewConfig(scfg.WithK(3)))
    results := p.Parse("what is the capital of texas")
    for results.Next() {
        fmt.Println(results.Derivation())
    }

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package parse

import (
	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'scfg.parse'.
func tracer() tracing.Trace {
	return tracing.Select("scfg.parse")
}

// MaxWildcardWords is the maximum number of NL words a wildcard copy may match.
const MaxWildcardWords = 3

func stuck(msg string) bool {
	tracer().Errorf(msg)
	if gconf.GetBool("panic-on-chart-stuck") {
		panic(`Parse tree construction is stuck.

Configuration flag panic-on-chart-stuck is set to true. It is aimed at helping
to debug a parser and do a post-mortem of why it got stuck. However, if this
is a production environment and you did not expect this to panic, please unset
panic-on-chart-stuck to its default (false).

` + msg)
	}
	return true
}
