package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/pkg/errors"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/scfg"
	"github.com/npillmayer/scfg/earley"
	"github.com/npillmayer/scfg/grammar"
	"github.com/npillmayer/scfg/internal/demo"
	"github.com/npillmayer/scfg/lambda"
	"github.com/npillmayer/scfg/lm"
	"github.com/npillmayer/scfg/mrl"
	"github.com/npillmayer/scfg/parse"
)

var (
	inFile    string
	outFile   string
	lmFile    string
	kBest     int
	workers   int
	traceFlag string
)

// Mode selects what a batch run does with its input lines.
type Mode int

// Batch modes
const (
	TopDown  Mode = iota // realize MRs with the Earley generator
	BottomUp             // realize MRs with the bottom-up generator
	Parsing              // parse sentences into MRs
)

// Options configure a batch run.
type Options struct {
	Mode    Mode
	K       int
	Workers int
	Model   lm.Model // nil for the demo model
}

// Batch reads one input per line from r and writes the results to w. Each
// input is followed by its derivations, one per line with rank and score, and
// a blank line. Malformed MRs are reported and yield no derivations.
func Batch(g *grammar.Grammar, r io.Reader, w io.Writer, opts Options) error {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "error while reading input")
	}
	tracer().Infof("%d input lines", len(lines))
	model := opts.Model
	if model == nil {
		model = demo.Model(g)
	}
	conf := scfg.NewConfig(scfg.WithK(opts.K))
	var results []scfg.Results
	if opts.Mode == Parsing {
		results = parse.NewParser(g, conf).ParseAll(lines, opts.Workers)
	} else {
		trees := make([]*mrl.Tree, len(lines))
		for i, line := range lines {
			t, err := mrl.Read(line, g.Sig)
			if err != nil {
				tracer().Errorf("line %d: %v", i+1, err)
			}
			trees[i] = t
		}
		results = generateAll(g, model, conf, opts, trees)
	}
	bw := bufio.NewWriter(w)
	for i, res := range results {
		fmt.Fprintln(bw, lines[i])
		for n := 1; res != nil && res.Next(); n++ {
			d := res.Derivation()
			fmt.Fprintf(bw, "%d\t%.4f\t%s\n", n, d.Score(), d.String())
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// generateAll realizes the well-formed trees; malformed inputs get empty
// results.
func generateAll(g *grammar.Grammar, model lm.Model, conf scfg.Config, opts Options,
	trees []*mrl.Tree) []scfg.Results {
	//
	var valid []*mrl.Tree
	for _, t := range trees {
		if t != nil {
			valid = append(valid, t)
		}
	}
	var generated []scfg.Results
	if opts.Mode == BottomUp {
		generated = lambda.NewGenerator(g, model, conf).GenerateAll(valid, opts.Workers)
	} else {
		generated = earley.NewGenerator(g, model, demo.Fillers(g), conf).GenerateAll(valid, opts.Workers)
	}
	results := make([]scfg.Results, len(trees))
	j := 0
	for i, t := range trees {
		if t == nil {
			results[i] = scfg.NewResultList(nil)
			continue
		}
		results[i] = generated[j]
		j++
	}
	return results
}

func runBatch(mode Mode) func(cmd *commander.Command, args []string) error {
	return func(cmd *commander.Command, args []string) error {
		tracer().SetTraceLevel(tracing.TraceLevelFromString(traceFlag))
		g := demo.Grammar()
		opts := Options{Mode: mode, K: kBest, Workers: workers}
		if lmFile != "" {
			f, err := os.Open(lmFile)
			if err != nil {
				return errors.Wrap(err, "unable to open language model")
			}
			m, err := lm.ReadARPA(bufio.NewReader(f), g.NL)
			f.Close()
			if err != nil {
				return errors.Wrapf(err, "unable to read language model %s", lmFile)
			}
			opts.Model = m
		}
		var in io.Reader = os.Stdin
		if inFile != "" {
			f, err := os.Open(inFile)
			if err != nil {
				return errors.Wrap(err, "unable to open input")
			}
			defer f.Close()
			in = f
		}
		var out io.Writer = os.Stdout
		if outFile != "" {
			f, err := os.Create(outFile)
			if err != nil {
				return errors.Wrap(err, "unable to create output")
			}
			defer f.Close()
			out = f
		}
		return Batch(g, in, out, opts)
	}
}

func addFlags(cmd *commander.Command) *commander.Command {
	cmd.Flag.StringVar(&inFile, "in", "", "Input file, one entry per line (default stdin)")
	cmd.Flag.StringVar(&outFile, "out", "", "Output file (default stdout)")
	cmd.Flag.StringVar(&lmFile, "lm", "", "Language model in ARPA format")
	cmd.Flag.IntVar(&kBest, "k", 1, "Number of results per input")
	cmd.Flag.IntVar(&workers, "workers", 1, "Number of concurrent workers")
	cmd.Flag.StringVar(&traceFlag, "trace", "Error", "Trace level [Debug|Info|Error]")
	return cmd
}

// GenCmd creates the command for top-down generation.
func GenCmd() *commander.Command {
	return addFlags(&commander.Command{
		Run:       runBatch(TopDown),
		UsageLine: "gen <file options> [arguments]",
		Short:     "realize MRs as sentences, top-down",
		Long: `
realize MRs as sentences, using the Earley generator

	$ scfgbatch gen -in <MR file> [options]

`,
		Flag: *flag.NewFlagSet("gen", flag.ExitOnError),
	})
}

// LGenCmd creates the command for bottom-up generation.
func LGenCmd() *commander.Command {
	return addFlags(&commander.Command{
		Run:       runBatch(BottomUp),
		UsageLine: "lgen <file options> [arguments]",
		Short:     "realize MRs as sentences, bottom-up",
		Long: `
realize MRs as sentences, using the bottom-up generator

	$ scfgbatch lgen -in <MR file> [options]

`,
		Flag: *flag.NewFlagSet("lgen", flag.ExitOnError),
	})
}

// ParseCmd creates the command for parsing.
func ParseCmd() *commander.Command {
	return addFlags(&commander.Command{
		Run:       runBatch(Parsing),
		UsageLine: "parse <file options> [arguments]",
		Short:     "parse sentences into MRs",
		Long: `
parse sentences into MRs

	$ scfgbatch parse -in <sentence file> [options]

`,
		Flag: *flag.NewFlagSet("parse", flag.ExitOnError),
	})
}
