/*
Package scfgbatch/main provides a batch command line tool for the demo
grammar. It reads one MR or sentence per line and writes the k best
derivations for each of them.

	$ scfgbatch gen -k 3 -in mrs.txt
	$ scfgbatch parse -workers 4 < sentences.txt

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"fmt"
	"os"

	"github.com/gonuts/commander"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

// tracer traces with key 'scfg.batch'
func tracer() tracing.Trace {
	return tracing.Select("scfg.batch")
}

var batchCmd = &commander.Command{
	UsageLine: "scfgbatch <command> [options]",
	Short:     "batch generation and parsing with a synchronous grammar",
}

func init() {
	batchCmd.Subcommands = []*commander.Command{
		GenCmd(),
		LGenCmd(),
		ParseCmd(),
	}
}

func main() {
	gtrace.SyntaxTracer = gologadapter.New()
	tracer().SetTraceLevel(tracing.LevelError)
	err := batchCmd.Dispatch(os.Args[1:])
	if err != nil {
		fmt.Printf("**err**: %v\n", err)
		os.Exit(1)
	}
}
