package grammar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cnf/structhash"
	"github.com/npillmayer/scfg"
	"github.com/npillmayer/scfg/mrl"
	"github.com/npillmayer/scfg/scoring"
	"github.com/npillmayer/scfg/symtab"
	"github.com/pkg/errors"
)

// Builder is used to construct grammars. Rules are added with a fluent
// interface:
//
//     b := grammar.NewBuilder("geo")
//     b.LHS("Query").MR("(answer State#1)").NL("what is State#1").End()
//
// Errors are collected and reported by Grammar().
type Builder struct {
	g       *Grammar
	start   string
	errs    []error
	hashes  map[string]*Rule
	grammar *Grammar // result, after successful build
}

// NewBuilder creates a builder for a grammar with a given name.
func NewBuilder(name string) *Builder {
	g := &Grammar{
		Name: name,
		NT:   symtab.NewTable(),
		MR:   symtab.NewTable("(", ")"),
		NL:   symtab.NewWordTable(),
	}
	g.wildcards = append(g.wildcards, builtinWildcards...)
	return &Builder{
		g:      g,
		hashes: make(map[string]*Rule),
	}
}

// Signature sets the MR signature (AC operators, binders). It has to be set
// before the first rule is added.
func (b *Builder) Signature(sig *mrl.Signature) *Builder {
	b.g.Sig = sig
	return b
}

// Start sets the start symbol. If not set, the LHS of the first rule is the
// start symbol.
func (b *Builder) Start(name string) *Builder {
	b.start = name
	return b
}

// Wildcard adds a wildcard class. Wildcards are referenced as *name in rules.
// Defining a class with the name of an existing class replaces its matcher.
func (b *Builder) Wildcard(name string, match func(token string) bool) *Builder {
	for i, wc := range b.g.wildcards {
		if wc.Name == name {
			b.g.wildcards[i].Match = match
			return b
		}
	}
	b.g.wildcards = append(b.g.wildcards, WildcardClass{Name: name, Match: match})
	return b
}

// LHS starts a new rule for nonterminal name.
func (b *Builder) LHS(name string) *RuleBuilder {
	return &RuleBuilder{b: b, lhs: name, active: true}
}

// Grammar returns the grammar built so far, or the first error encountered
// while adding rules. Once Grammar() has been called, the builder must not be
// used for adding rules any more.
func (b *Builder) Grammar() (*Grammar, error) {
	if b.grammar != nil {
		return b.grammar, nil
	}
	if len(b.errs) > 0 {
		if len(b.errs) > 1 {
			return nil, errors.Wrapf(b.errs[0], "grammar %s has %d errors, first", b.g.Name, len(b.errs))
		}
		return nil, b.errs[0]
	}
	g := b.g
	if len(g.rules) == 0 {
		return nil, errors.Errorf("grammar %s has no rules", g.Name)
	}
	if b.start == "" {
		g.start = g.rules[0].LHS
	} else {
		s, ok := g.NT.Lookup(b.start)
		if !ok || len(g.Rules(s)) == 0 {
			return nil, errors.Errorf("start symbol %s of grammar %s has no rules", b.start, g.Name)
		}
		g.start = s
	}
	for _, r := range g.rules { // detect nonterminals without rules
		for _, s := range r.f {
			if s.Kind == scfg.Nonterminal && len(g.Rules(s.ID)) == 0 {
				tracer().Infof("nonterminal %s has no rules", g.NT.Name(s.ID))
			}
		}
	}
	g.computeLeftCorners()
	if err := g.computeFingerprint(); err != nil {
		return nil, errors.Wrap(err, "cannot compute grammar fingerprint")
	}
	tracer().Infof("grammar %s: %d rules, %d nonterminals", g.Name, len(g.rules), g.NT.Size())
	b.grammar = g
	return g, nil
}

// --- Rules -----------------------------------------------------------------

// RuleBuilder collects the parts of a rule.
type RuleBuilder struct {
	b      *Builder
	lhs    string
	mr     string
	nl     string
	weight float64
	active bool
}

// MR sets the MR side of the rule, an s-expression pattern.
func (rb *RuleBuilder) MR(pattern string) *RuleBuilder {
	rb.mr = pattern
	return rb
}

// NL sets the NL side of the rule: blank-separated words, arguments X#i,
// wildcard copies *cls and gaps [n].
func (rb *RuleBuilder) NL(side string) *RuleBuilder {
	rb.nl = side
	return rb
}

// Weight sets the rule weight (log-probability of the rule), default is 0.
func (rb *RuleBuilder) Weight(w float64) *RuleBuilder {
	rb.weight = w
	return rb
}

// Inactive excludes the rule from generation and parsing. Rules may be
// re-activated later.
func (rb *RuleBuilder) Inactive() *RuleBuilder {
	rb.active = false
	return rb
}

// End completes the rule and adds it to the grammar. It returns the new rule, or
// nil if the rule is malformed; the error will be reported by Builder.Grammar().
func (rb *RuleBuilder) End() *Rule {
	r, err := rb.b.newRule(rb)
	if err != nil {
		tracer().Errorf("%v", err)
		rb.b.errs = append(rb.b.errs, err)
		return nil
	}
	return r
}

var (
	gapPattern = regexp.MustCompile(`^\[([0-9]+)\]$`)
	argPattern = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_\-.]*)#([0-9]+)$`)
)

func (b *Builder) newRule(rb *RuleBuilder) (*Rule, error) {
	g := b.g
	if b.grammar != nil {
		return nil, errors.New("grammar already built")
	}
	if strings.TrimSpace(rb.lhs) == "" {
		return nil, errors.New("rule without LHS")
	}
	if strings.TrimSpace(rb.mr) == "" {
		return nil, errors.Errorf("rule for %s has an empty MR side", rb.lhs)
	}
	pattern, err := mrl.ReadPattern(rb.mr, g.Sig)
	if err != nil {
		return nil, errors.Wrapf(err, "rule for %s", rb.lhs)
	}
	sig := signatureOf(rb.lhs, pattern, strings.Join(strings.Fields(rb.nl), " "))
	h, err := structhash.Hash(sig, 1)
	if err != nil {
		return nil, errors.Wrapf(err, "rule for %s", rb.lhs)
	}
	if other, ok := b.hashes[h]; ok {
		return nil, errors.Errorf("duplicate rule for %s: %s equals rule %d", rb.lhs, rb.mr, other.ID)
	}
	r := &Rule{
		ID:      len(g.rules),
		LHS:     g.NT.Intern(rb.lhs),
		Pattern: pattern,
		Weight:  rb.weight,
		Active:  rb.active,
		wild:    -1,
		g:       g,
	}
	if err := b.linearizeMR(r, pattern); err != nil {
		return nil, errors.Wrapf(err, "MR side of rule for %s", rb.lhs)
	}
	if err := b.readNL(r, rb.nl); err != nil {
		return nil, errors.Wrapf(err, "NL side of rule for %s", rb.lhs)
	}
	r.scores = r.scores.With(scoring.TM, r.Weight).With(scoring.Rule, 1)
	words := 0
	for _, s := range r.e {
		if s.Kind == scfg.Terminal {
			words++
		}
	}
	r.scores = r.scores.With(scoring.WP, float64(words))
	b.hashes[h] = r
	g.rules = append(g.rules, r)
	for len(g.byLHS) <= r.LHS {
		g.byLHS = append(g.byLHS, nil)
	}
	g.byLHS[r.LHS] = append(g.byLHS[r.LHS], r)
	tracer().Debugf("rule %s", r)
	return r, nil
}

// linearizeMR creates the F side of a rule from its pattern, in prefix form.
// Argument indices must be unique and form the range 1…n.
func (b *Builder) linearizeMR(r *Rule, pattern *mrl.Node) error {
	g := b.g
	vars := make(map[string]int)
	args := make(map[int]int) // index → position in f
	lparen, rparen := g.MR.Intern("("), g.MR.Intern(")")
	var walk func(n *mrl.Node) error
	walk = func(n *mrl.Node) error {
		switch n.Kind {
		case mrl.Arg:
			if _, dup := args[n.Index]; dup {
				return errors.Errorf("argument index %d used twice", n.Index)
			}
			args[n.Index] = len(r.f)
			r.f = append(r.f, scfg.N(g.NT.Intern(n.Label), n.Index))
		case mrl.Wild:
			cls := g.wildcardClass(n.Label)
			if cls < 0 {
				return errors.Errorf("unknown wildcard class *%s", n.Label)
			}
			if r.wild >= 0 {
				return errors.New("more than one wildcard")
			}
			r.wild = cls
			r.f = append(r.f, scfg.W(cls))
		case mrl.Var:
			v, ok := vars[n.Label]
			if !ok {
				v = len(vars)
				vars[n.Label] = v
			}
			r.f = append(r.f, scfg.V(v))
		default:
			r.f = append(r.f, scfg.T(g.MR.Intern(n.Label)))
		}
		if n.IsLeaf() {
			return nil
		}
		r.f = append(r.f, scfg.T(lparen))
		for _, ch := range n.Children {
			if err := walk(ch); err != nil {
				return err
			}
		}
		r.f = append(r.f, scfg.T(rparen))
		return nil
	}
	if err := walk(pattern); err != nil {
		return err
	}
	r.nargs = len(args)
	r.argF = make([]int, r.nargs+1)
	for inx, pos := range args {
		if inx > r.nargs {
			return errors.Errorf("argument indices must be 1…%d, have %d", r.nargs, inx)
		}
		r.argF[inx] = pos
	}
	return nil
}

// readNL reads the NL side of a rule. Arguments have to correspond one-to-one
// to the arguments of the MR side.
func (b *Builder) readNL(r *Rule, side string) error {
	g := b.g
	seen := make([]bool, r.nargs+1)
	gap := -1
	r.gaps = nil
	for _, tok := range strings.Fields(side) {
		if m := gapPattern.FindStringSubmatch(tok); m != nil {
			if gap >= 0 {
				return errors.Errorf("consecutive gaps before %q", tok)
			}
			gap, _ = strconv.Atoi(m[1])
			continue
		}
		if gap < 0 {
			gap = 0
		}
		r.gaps = append(r.gaps, gap)
		gap = -1
		switch {
		case argPattern.MatchString(tok):
			m := argPattern.FindStringSubmatch(tok)
			inx, _ := strconv.Atoi(m[2])
			if inx < 1 || inx > r.nargs {
				return errors.Errorf("argument %s has no counterpart on the MR side", tok)
			}
			if seen[inx] {
				return errors.Errorf("argument %s used twice", tok)
			}
			seen[inx] = true
			mrSym := r.f[r.argF[inx]]
			if g.NT.Name(mrSym.ID) != m[1] {
				return errors.Errorf("argument %s does not match MR argument %s#%d",
					tok, g.NT.Name(mrSym.ID), inx)
			}
			r.e = append(r.e, mrSym)
		case strings.HasPrefix(tok, "*") && len(tok) > 1:
			cls := g.wildcardClass(tok[1:])
			if cls < 0 || cls != r.wild {
				return errors.Errorf("wildcard copy %s does not match a wildcard of the MR side", tok)
			}
			r.e = append(r.e, scfg.W(cls))
			r.nlWild++
		default:
			r.e = append(r.e, scfg.T(g.NL.Intern(tok)))
		}
	}
	if gap < 0 {
		gap = 0
	}
	r.gaps = append(r.gaps, gap)
	for inx := 1; inx <= r.nargs; inx++ {
		if !seen[inx] {
			return errors.Errorf("MR argument #%d missing", inx)
		}
	}
	return nil
}

func (g *Grammar) wildcardClass(name string) int {
	for i, wc := range g.wildcards {
		if wc.Name == name {
			return i
		}
	}
	return -1
}
