package parse

import (
	"fmt"
	"sync"

	"github.com/npillmayer/scfg"
	"github.com/npillmayer/scfg/grammar"
	"github.com/npillmayer/scfg/mrl"
	"github.com/npillmayer/scfg/scanner"
	"github.com/npillmayer/scfg/scoring"
)

// Parser parses NL sentences into MRs. A parser holds read-only data only and
// may be used by concurrent goroutines.
type Parser struct {
	g      *grammar.Grammar
	conf   scfg.Config
	usable []bool     // by rule ID
	vars   [][]string // pattern variable names, by rule ID and variable number
}

// NewParser creates a parser for a grammar.
func NewParser(g *grammar.Grammar, conf scfg.Config) *Parser {
	if conf.K < 1 {
		conf.K = 1
	}
	p := &Parser{
		g:      g,
		conf:   conf,
		usable: make([]bool, g.Size()),
		vars:   make([][]string, g.Size()),
	}
	g.EachRule(func(r *grammar.Rule) {
		seen := make(map[string]bool)
		r.Pattern.Each(func(n *mrl.Node) { // same numbering as the linearized MR side
			if n.Kind == mrl.Var && !seen[n.Label] {
				seen[n.Label] = true
				p.vars[r.ID] = append(p.vars[r.ID], n.Label)
			}
		})
		p.usable[r.ID] = r.LengthE() > 0 && (!r.IsWildcard() || r.WildcardCopies() > 0)
		if !p.usable[r.ID] {
			tracer().Debugf("rule %s cannot be used for parsing", r)
		}
	})
	return p
}

// Grammar returns the grammar of the parser.
func (p *Parser) Grammar() *grammar.Grammar {
	return p.g
}

// Chart creates and fills a chart for a sequence of words.
func (p *Parser) Chart(words []string) *Chart {
	c := newChart(p, words)
	c.run()
	return c
}

// Parse splits a sentence into lower-case words and parses it.
func (p *Parser) Parse(sentence string) scfg.Results {
	return p.ParseWords(scanner.Words(sentence, scanner.Lowercase(true)))
}

// ParseWords parses a sequence of words. It returns up to K derivations with
// distinct MRs, best first.
func (p *Parser) ParseWords(words []string) scfg.Results {
	return p.Chart(words).Results()
}

// ParseAll parses a batch of sentences, using up to workers goroutines. Results
// are returned in input order.
func (p *Parser) ParseAll(sentences []string, workers int) []scfg.Results {
	results := make([]scfg.Results, len(sentences))
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.Parse(sentences[i])
			}
		}()
	}
	for i := range sentences {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

// --- Derivations -----------------------------------------------------------

// Derivation is a parse of a sentence, i.e. an MR together with its score.
type Derivation struct {
	score  float64
	scores scoring.Vector
	tokens []string
	mr     *mrl.Tree
}

var _ scfg.Derivation = (*Derivation)(nil)

// Score returns the model score of the derivation.
func (d *Derivation) Score() float64 { return d.score }

// Scores returns the feature scores of the derivation.
func (d *Derivation) Scores() scoring.Vector { return d.scores }

// Terms returns the tokens of the linearized MR.
func (d *Derivation) Terms() []string { return d.tokens }

// Tree returns the root node of the MR.
func (d *Derivation) Tree() *mrl.Node { return d.mr.Root }

// MR returns the MR tree.
func (d *Derivation) MR() *mrl.Tree { return d.mr }

// String returns the MR as an s-expression.
func (d *Derivation) String() string {
	return d.mr.String()
}

// Results returns the best derivations of the chart. Derivations resulting in
// the same MR (after flattening AC operators) are reported once, with the best
// score.
func (c *Chart) Results() *scfg.ResultList {
	var ds []scfg.Derivation
	seen := make(map[string]bool)
	for _, h := range c.Roots() {
		if len(ds) >= c.conf.K {
			break
		}
		tokens, ok := c.mrTokens(h, 0)
		if !ok {
			continue
		}
		tree, err := mrl.FromLinear(tokens, c.g.Sig)
		if err != nil {
			stuck(fmt.Sprintf("derivation of %v yields malformed MR: %v", &c.items[h], err))
			continue
		}
		tree = tree.FlattenAC()
		if seen[tree.String()] {
			continue
		}
		seen[tree.String()] = true
		it := &c.items[h]
		ds = append(ds, &Derivation{
			score:  it.score,
			scores: it.scores,
			tokens: tree.Linearize(),
			mr:     tree,
		})
	}
	tracer().Infof("%d parses", len(ds))
	return scfg.NewResultList(ds)
}

// mrTokens instantiates the MR side of the rule of complete item h with the MRs
// of its arguments, in linearized form.
func (c *Chart) mrTokens(h int, level int) ([]string, bool) {
	it := &c.items[h]
	if !it.complete() {
		return nil, !stuck(fmt.Sprintf("derivation reached incomplete item %v", it))
	}
	ref := it.ref
	r := ref.Rule
	children := make(map[int]int) // argument index → item
	steps := 0
	for k := h; k >= 0; k = c.items[k].prev {
		x := &c.items[k]
		if x.child >= 0 {
			children[r.E(x.dot-1).Index] = x.child
		}
		if steps++; steps > 2*r.LengthE()+2 {
			return nil, !stuck(fmt.Sprintf("back-pointer chain of item %v too long", it))
		}
	}
	var tokens []string
	for i := 0; i < r.LengthF(); i++ {
		s := ref.F(i)
		switch s.Kind {
		case scfg.Terminal:
			tokens = append(tokens, c.mrVoc.Name(s.ID))
		case scfg.Variable:
			tokens = append(tokens, "$"+c.parser.vars[r.ID][s.ID])
		case scfg.Nonterminal:
			ch, ok := children[s.Index]
			if !ok {
				return nil, !stuck(fmt.Sprintf("argument #%d of item %v not completed", s.Index, it))
			}
			sub, ok := c.mrTokens(ch, level+1)
			if !ok {
				return nil, false
			}
			tokens = append(tokens, sub...)
		default:
			return nil, !stuck(fmt.Sprintf("unbound MR symbol %s in item %v", s, it))
		}
	}
	tracer().Debugf("%*s%s", 2*level, "", r.Grammar().NT.Name(r.LHS))
	return tokens, true
}
