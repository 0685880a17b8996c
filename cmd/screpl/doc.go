/*
Package screpl/main provides an interactive command line tool (SC.REPL)
for synchronous grammars. Users enter meaning representations to have them
realized as sentences, or sentences to have them parsed into meaning
representations. SC.REPL serves as a sandbox for grammar development.


License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/

package main

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'scfg.repl'
func tracer() tracing.Trace {
	return tracing.Select("scfg.repl")
}
