package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	"github.com/npillmayer/scfg"
	"github.com/npillmayer/scfg/earley"
	"github.com/npillmayer/scfg/gaps"
	"github.com/npillmayer/scfg/grammar"
	"github.com/npillmayer/scfg/internal/demo"
	"github.com/npillmayer/scfg/lambda"
	"github.com/npillmayer/scfg/lm"
	"github.com/npillmayer/scfg/mrl"
	"github.com/npillmayer/scfg/parse"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/

// main() starts an interactive CLI ("SC.REPL"), where users may enter
// commands to realize MRs as sentences or to parse sentences into MRs.
// SC.REPL uses a small geography grammar (see package internal/demo).
//
// Commands are
//
//   gen   (answer (stateid 'texas'))    realize MR top-down
//   lgen  (answer (stateid 'texas'))    realize MR bottom-up
//   parse what is the capital of texas  parse sentence into MRs
//   k 3                                 set number of results
//   tree                                display tree of last result
//   rules                               list grammar rules
//   quit
//
// A line starting with '(' is realized top-down.
//
func main() {
	// set up logging
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	initf := flag.String("init", "", "Initial load")
	k := flag.Int("k", 1, "Number of results")
	lmfile := flag.String("lm", "", "Language model in ARPA format")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelInfo) // will set the correct level later
	pterm.Info.Println("Welcome to SC.REPL")  // colored welcome message
	tracer().Infof("Trace level is %s", *tlevel)
	//
	// set up grammar and models
	g := demo.Grammar()
	tracer().SetTraceLevel(traceLevel(*tlevel)) // now set the user supplied level
	var model lm.Model = demo.Model(g)
	if *lmfile != "" {
		m, err := loadModel(*lmfile, g)
		if err != nil {
			tracer().Errorf("%v", err)
			os.Exit(2)
		}
		model = m
	}
	//
	// set up REPL
	repl, err := readline.New("screpl> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := NewIntp(g, model, demo.Fillers(g), *k)
	intp.repl = repl
	//
	// load an init file and start receiving commands
	tracer().Infof("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.loadInitFile(*initf)           // init file name provided by flag
	intp.REPL()                         // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func loadModel(filename string, g *grammar.Grammar) (*lm.NGram, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open language model")
	}
	defer f.Close()
	m, err := lm.ReadARPA(bufio.NewReader(f), g.NL)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read language model %s", filename)
	}
	tracer().Infof("loaded %d-gram model with %d entries", m.Order(), m.Size())
	return m, nil
}

// Intp is our interpreter object
type Intp struct {
	g       *grammar.Grammar
	model   lm.Model
	fillers gaps.Source
	k       int
	gen     *earley.Generator
	lgen    *lambda.Generator
	parser  *parse.Parser
	last    scfg.Derivation
	repl    *readline.Instance
}

// NewIntp creates an interpreter for a grammar, producing k results per
// command.
func NewIntp(g *grammar.Grammar, model lm.Model, fillers gaps.Source, k int) *Intp {
	intp := &Intp{g: g, model: model, fillers: fillers}
	intp.setK(k)
	return intp
}

// setK recreates generators and parser, as they are configured at creation
// time.
func (intp *Intp) setK(k int) {
	conf := scfg.NewConfig(scfg.WithK(k))
	intp.k = conf.K
	intp.gen = earley.NewGenerator(intp.g, intp.model, intp.fillers, conf)
	intp.lgen = lambda.NewGenerator(intp.g, intp.model, conf)
	intp.parser = parse.NewParser(intp.g, conf)
}

func (intp *Intp) loadInitFile(filename string) {
	if filename == "" {
		return
	}
	f, err := os.Open(filename)
	if err != nil {
		tracer().Errorf("Unable to open init file: %s", filename)
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineno := 1
	for scanner.Scan() {
		line := scanner.Text()
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		_, err := intp.Eval(line)
		if err != nil {
			tracer().Errorf("Error line %d: "+err.Error(), lineno)
		}
		lineno++
	}
	if err := scanner.Err(); err != nil {
		tracer().Errorf("Error while reading init file: " + err.Error())
	}
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		quit, err := intp.Eval(line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	println("Good bye!")
}

// Eval executes a command, given on a line by itself.
//
func (intp *Intp) Eval(line string) (bool, error) {
	cmd, arg := line, ""
	if strings.HasPrefix(line, "(") {
		cmd, arg = "gen", line
	} else if i := strings.IndexByte(line, ' '); i > 0 {
		cmd, arg = line[:i], strings.TrimSpace(line[i+1:])
	}
	tracer().Debugf("command '%s', argument '%s'", cmd, arg)
	switch cmd {
	case "quit", "exit":
		return true, nil
	case "gen", "lgen":
		tree, err := mrl.Read(arg, intp.g.Sig)
		if err != nil {
			return false, errors.Wrap(err, "malformed MR")
		}
		var res scfg.Results
		if cmd == "gen" {
			res = intp.gen.Generate(tree)
		} else {
			res = intp.lgen.Generate(tree)
		}
		return false, intp.printResults(res, "no sentence for this MR")
	case "parse":
		return false, intp.printResults(intp.parser.Parse(arg), "no parse for this sentence")
	case "k":
		k, err := strconv.Atoi(arg)
		if err != nil || k < 1 {
			return false, errors.Errorf("k expects a positive number, have '%s'", arg)
		}
		intp.setK(k)
		pterm.Info.Printf("k = %d\n", intp.k)
	case "tree":
		if intp.last == nil || intp.last.Tree() == nil {
			return false, errors.New("no result to display")
		}
		pterm.DefaultTree.WithRoot(treeFrom(intp.last.Tree())).Render()
	case "rules":
		var b strings.Builder
		intp.g.Dump(&b)
		pterm.Println(b.String())
	default:
		return false, errors.Errorf("unknown command '%s'", cmd)
	}
	return false, nil
}

func (intp *Intp) printResults(res scfg.Results, none string) error {
	intp.last = nil
	if res.Len() == 0 {
		return errors.New(none)
	}
	for i := 1; res.Next(); i++ {
		d := res.Derivation()
		if intp.last == nil {
			intp.last = d
		}
		pterm.Info.Println(fmt.Sprintf("%2d  %8.4f  %s", i, d.Score(), d.String()))
	}
	return nil
}

// treeFrom converts a tree to a pterm tree for display.
func treeFrom(root *mrl.Node) pterm.TreeNode {
	ll := leveledNode(root, pterm.LeveledList{}, 0)
	tracer().Debugf("|ll| = %d", len(ll))
	return pterm.NewTreeFromLeveledList(ll)
}

func leveledNode(n *mrl.Node, ll pterm.LeveledList, level int) pterm.LeveledList {
	ll = append(ll, pterm.LeveledListItem{
		Level: level,
		Text:  n.Token(),
	})
	for _, ch := range n.Children {
		ll = leveledNode(ch, ll, level+1)
	}
	return ll
}

func traceLevel(l string) tracing.TraceLevel {
	return tracing.TraceLevelFromString(l)
}
