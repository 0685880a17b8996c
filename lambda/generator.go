package lambda

import (
	"fmt"
	"sync"

	"github.com/npillmayer/scfg"
	"github.com/npillmayer/scfg/grammar"
	"github.com/npillmayer/scfg/lm"
	"github.com/npillmayer/scfg/lmctx"
	"github.com/npillmayer/scfg/mrl"
	"github.com/npillmayer/scfg/scoring"
)

// Generator generates NL sentences from MR trees, bottom-up. A generator holds
// read-only data only and may be used by concurrent goroutines.
//
// Word gaps of rules are not filled by this generator; they are treated as
// empty.
type Generator struct {
	g       *grammar.Grammar
	model   lm.Model
	conf    scfg.Config
	initial []initialContext // by rule ID
}

type initialContext struct {
	ctx lmctx.Vector
	lm  float64
}

// NewGenerator creates a bottom-up generator for a grammar. model has to share
// the NL word table of the grammar; it may be nil.
func NewGenerator(g *grammar.Grammar, model lm.Model, conf scfg.Config) *Generator {
	if model == nil {
		model = lm.Uniform{}
	}
	if conf.K < 1 {
		conf.K = 1
	}
	if conf.PruneK < 1 {
		conf.PruneK = 1
	}
	gen := &Generator{
		g:       g,
		model:   model,
		conf:    conf,
		initial: make([]initialContext, g.Size()),
	}
	scorer := lmctx.NewScorer(model)
	g.EachRule(func(r *grammar.Rule) {
		if !r.IsWildcard() {
			gen.initial[r.ID] = initialContextOf(scorer, grammar.Generic(r))
		}
	})
	return gen
}

// initialContextOf creates the context vector of the NL side of a rule, with
// a slot for every argument.
func initialContextOf(scorer *lmctx.Scorer, ref grammar.RuleRef) initialContext {
	var elems []int32
	for i := 0; i < ref.Rule.LengthE(); i++ {
		s := ref.E(i)
		switch s.Kind {
		case scfg.Terminal:
			elems = append(elems, int32(s.ID))
		case scfg.Nonterminal:
			elems = append(elems, lmctx.Slot(s.Index))
		}
	}
	ctx, score := scorer.Initial(elems)
	return initialContext{ctx: ctx, lm: score}
}

// Grammar returns the grammar of the generator.
func (gen *Generator) Grammar() *grammar.Grammar {
	return gen.g
}

// Chart creates and fills a chart for an MR tree.
func (gen *Generator) Chart(tree *mrl.Tree) *Chart {
	c := newChart(gen, tree)
	c.run()
	return c
}

// Generate generates the best K sentences for an MR tree.
func (gen *Generator) Generate(tree *mrl.Tree) scfg.Results {
	return gen.Chart(tree).Results()
}

// GenerateString reads an MR and generates sentences for it. The MR is read
// with the signature of the grammar, which decides about AC operators.
func (gen *Generator) GenerateString(mr string) (scfg.Results, error) {
	tree, err := mrl.Read(mr, gen.g.Sig)
	if err != nil {
		return nil, err
	}
	return gen.Generate(tree), nil
}

// GenerateAll generates sentences for a batch of MR trees, using up to workers
// goroutines. Results are returned in input order.
func (gen *Generator) GenerateAll(trees []*mrl.Tree, workers int) []scfg.Results {
	results := make([]scfg.Results, len(trees))
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
				results[i] = gen.Generate(trees[i])
			}
		}()
	}
	for i := range trees {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

// --- Derivations -----------------------------------------------------------

// Derivation is a generated sentence, together with its derivation tree.
type Derivation struct {
	score  float64
	scores scoring.Vector
	words  []int32
	terms  []string
	tree   *mrl.Node
}

var _ scfg.Derivation = (*Derivation)(nil)

// Score returns the model score of the derivation.
func (d *Derivation) Score() float64 { return d.score }

// Scores returns the feature scores of the derivation.
func (d *Derivation) Scores() scoring.Vector { return d.scores }

// Words returns the word ids of the sentence.
func (d *Derivation) Words() []int32 { return d.words }

// Terms returns the words of the sentence.
func (d *Derivation) Terms() []string { return d.terms }

// Tree returns the derivation tree, with nonterminals as inner nodes and words
// as leaves.
func (d *Derivation) Tree() *mrl.Node { return d.tree }

func (d *Derivation) String() string {
	return scfg.JoinTerms(d.terms)
}

type realization struct {
	words []int32
	node  *mrl.Node
}

// Results returns the best K derivations of the chart.
func (c *Chart) Results() *scfg.ResultList {
	var ds []scfg.Derivation
	if c.goal < 0 || len(c.items[c.goal].arcs) == 0 {
		tracer().Infof("no derivation")
		return scfg.NewResultList(ds)
	}
	c.lazyKthBest(c.goal, c.conf.K)
	for _, d := range c.items[c.goal].kbest {
		root := c.arcs[d.arc].tails[0]
		r := c.realize(root, d.ptrs[0])
		der := &Derivation{
			score:  d.score,
			scores: d.scores,
			words:  r.words,
			tree:   r.node,
		}
		for _, w := range r.words {
			der.terms = append(der.terms, c.nlVoc.Name(int(w)))
		}
		ds = append(ds, der)
	}
	tracer().Infof("%d derivations", len(ds))
	return scfg.NewResultList(ds)
}

// realize builds the NL words and the derivation tree of the j-th best
// derivation of the complete item v.
func (c *Chart) realize(v, j int) realization {
	kids := make(map[int]realization)
	c.collect(v, j, kids)
	ref := c.items[v].ref
	r := ref.Rule
	node := mrl.NewNode(c.g.NT.Name(r.LHS))
	var words []int32
	for i := 0; i < r.LengthE(); i++ {
		s := ref.E(i)
		switch s.Kind {
		case scfg.Terminal:
			words = append(words, int32(s.ID))
			node.Append(&mrl.Node{Label: c.nlVoc.Name(s.ID), Kind: mrl.Atom})
		case scfg.Nonterminal:
			kid, ok := kids[s.Index]
			if !ok {
				panic(fmt.Sprintf("argument #%d of item %v not filled", s.Index, &c.items[v]))
			}
			words = append(words, kid.words...)
			node.Append(kid.node)
		}
	}
	return realization{words: words, node: node}
}

// collect follows the derivation back to the prediction of the rule instance,
// realizing the arguments on the way.
func (c *Chart) collect(v, j int, kids map[int]realization) {
	d := c.items[v].kbest[j]
	arc := &c.arcs[d.arc]
	if len(arc.tails) == 0 {
		return
	}
	prev, child := arc.tails[0], arc.tails[1]
	c.collect(prev, d.ptrs[0], kids)
	kids[c.items[prev].next().Index] = c.realize(child, d.ptrs[1])
}
