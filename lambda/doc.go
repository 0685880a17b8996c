/*
Package lambda implements a bottom-up chart generator for synchronous grammars
over MR trees with variables and associative-commutative (AC) operators.

Different from the Earley generator (package earley), which reads a linearized
MR from left to right, this generator works on the MR tree directly. Rule
patterns are matched against tree nodes; a match consumes a set of tree nodes
and binds the arguments of the rule to sub-targets: sub-trees, or, for AC
operators, partial views of a node containing some of its children only. This
way a rule like

    Form → ⟨ (and Form#1 Form#2) , Form#1 and Form#2 ⟩

may be applied to any split of the conjuncts of an n-ary 'and'. Items therefore
cover sets of tree nodes (see Coverage) rather than contiguous spans.

Targets are processed bottom-up, deeper roots first and by increasing number
of covered nodes. Before the items of a cell are used for completion, the cell
is pruned to the best PruneK items (scfg.Config), using randomized selection.

Completing an item records a hyperarc. After the chart is complete, the best K
derivations are extracted lazily from the resulting hypergraph, following

    Liang Huang, David Chiang: Better k-best Parsing (2005).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lambda

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'scfg.lambda'.
func tracer() tracing.Trace {
	return tracing.Select("scfg.lambda")
}
