/*
Package scfg is a toolbox for semantic parsing and natural language generation
with synchronous context-free grammars (SCFGs).

An SCFG rule pairs a meaning-representation side (MR) with a natural language side
(NL). Generation derives NL sentences from a given MR, parsing derives an MR from a
given NL sentence. Package structure is as follows:

■ grammar: Package grammar holds SCFG rules, their scores and the grammar builder.

■ earley: Package earley implements a left-corner Earley chart generator over
linearized MRs, with word gaps and n-gram language model integration.

■ lambda: Package lambda implements a bottom-up chart generator over MR trees, with
support for associative-commutative operators and variable binding, and lazy
k-best extraction.

■ parse: Package parse derives MRs from NL sentences (semantic parsing).

■ mrl, lm, lmctx, gaps, scoring, symtab: supporting packages for meaning
representations, language models, language model context vectors, gap fillers,
feature scores and symbol tables.

■ cmd/screpl and cmd/scfgbatch: an interactive sandbox and a batch tool, both
working with a small demo grammar.

The base package contains data types which are used throughout all the other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package scfg
