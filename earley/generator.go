package earley

import (
	"sync"

	"github.com/npillmayer/scfg"
	"github.com/npillmayer/scfg/gaps"
	"github.com/npillmayer/scfg/grammar"
	"github.com/npillmayer/scfg/lm"
	"github.com/npillmayer/scfg/lmctx"
	"github.com/npillmayer/scfg/mrl"
)

// Generator generates NL sentences from MRs. A generator holds read-only data
// only and may be used by concurrent goroutines; every call to Generate uses a
// chart of its own.
type Generator struct {
	g       *grammar.Grammar
	model   lm.Model
	fillers gaps.Source
	conf    scfg.Config
	initial []initialContext // by rule ID
}

// initialContext is the context vector of a freshly predicted rule instance,
// together with the LM score of its words with complete history. It does not
// depend on the position of the instance.
type initialContext struct {
	ctx lmctx.Vector
	lm  float64
}

// NewGenerator creates a generator for a grammar. model has to share the NL
// word table of the grammar; a nil model switches off LM scoring. fillers may be
// nil for generation without word gaps.
func NewGenerator(g *grammar.Grammar, model lm.Model, fillers gaps.Source, conf scfg.Config) *Generator {
	if model == nil {
		model = lm.Uniform{}
	}
	if fillers == nil {
		fillers = gaps.NoGaps{}
	}
	if conf.K < 1 {
		conf.K = 1
	}
	gen := &Generator{
		g:       g,
		model:   model,
		fillers: fillers,
		conf:    conf,
		initial: make([]initialContext, g.Size()),
	}
	scorer := lmctx.NewScorer(model)
	g.EachRule(func(r *grammar.Rule) {
		gen.initial[r.ID] = initialContextOf(scorer, r)
	})
	return gen
}

func initialContextOf(scorer *lmctx.Scorer, r *grammar.Rule) initialContext {
	var elems []int32
	for i := 0; i <= r.LengthE(); i++ {
		if r.Gap(i) > 0 {
			elems = append(elems, lmctx.Slot(gapSlot(r, i)))
		}
		if i == r.LengthE() {
			break
		}
		s := r.E(i)
		switch s.Kind {
		case scfg.Terminal:
			elems = append(elems, int32(s.ID))
		case scfg.Nonterminal:
			elems = append(elems, lmctx.Slot(s.Index))
		case scfg.Wildcard:
			elems = append(elems, lmctx.Slot(wildSlot(r, i)))
		}
	}
	ctx, score := scorer.Initial(elems)
	return initialContext{ctx: ctx, lm: score}
}

// Grammar returns the grammar of the generator.
func (gen *Generator) Grammar() *grammar.Grammar {
	return gen.g
}

// Config returns the configuration of the generator.
func (gen *Generator) Config() scfg.Config {
	return gen.conf
}

// Chart creates and fills a chart for an MR tree.
func (gen *Generator) Chart(tree *mrl.Tree) *Chart {
	c := newChart(gen, tree)
	c.run()
	return c
}

// Generate generates the best K sentences for an MR tree. If no sentence
// can be generated, the result is empty.
func (gen *Generator) Generate(tree *mrl.Tree) scfg.Results {
	return gen.Chart(tree).Results()
}

// GenerateString reads an MR from its s-expression and generates sentences
// for it.
func (gen *Generator) GenerateString(mr string) (scfg.Results, error) {
	tree, err := mrl.Read(mr, gen.g.Sig)
	if err != nil {
		return nil, err
	}
	return gen.Generate(tree), nil
}

// GenerateAll generates sentences for a batch of MR trees. With workers > 1,
// up to workers charts are filled concurrently. Results are returned in input
// order.
func (gen *Generator) GenerateAll(trees []*mrl.Tree, workers int) []scfg.Results {
	results := make([]scfg.Results, len(trees))
	if workers <= 1 {
		for i, t := range trees {
			results[i] = gen.Generate(t)
		}
		return results
	}
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i, t := range trees {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, t *mrl.Tree) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = gen.Generate(t)
		}(i, t)
	}
	wg.Wait()
	return results
}
