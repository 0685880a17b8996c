package lambda

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// --- Variable assignments --------------------------------------------------

// VarBinding binds a pattern variable of a rule to a variable of the MR tree.
type VarBinding struct {
	Pattern string // name of the pattern variable, without '$'
	Tree    int    // variable id within the MR tree
}

// Assignment is a set of variable bindings, sorted by pattern variable.
// Assignments are injective: no two pattern variables are bound to the same
// tree variable.
type Assignment []VarBinding

// Bind adds a binding. It returns false if the binding conflicts with the
// assignment. a itself is not modified.
func (a Assignment) Bind(pv string, tv int) (Assignment, bool) {
	for _, b := range a {
		if b.Pattern == pv || b.Tree == tv {
			return a, b.Pattern == pv && b.Tree == tv
		}
	}
	out := make(Assignment, len(a), len(a)+1)
	copy(out, a)
	out = append(out, VarBinding{Pattern: pv, Tree: tv})
	sort.Slice(out, func(i, j int) bool { return out[i].Pattern < out[j].Pattern })
	return out, true
}

// Merge unifies two assignments. It returns false if they bind a variable
// differently.
func (a Assignment) Merge(b Assignment) (Assignment, bool) {
	out := a
	for _, vb := range b {
		var ok bool
		if out, ok = out.Bind(vb.Pattern, vb.Tree); !ok {
			return nil, false
		}
	}
	return out, true
}

// Lookup returns the tree variable bound to pattern variable pv.
func (a Assignment) Lookup(pv string) (int, bool) {
	for _, b := range a {
		if b.Pattern == pv {
			return b.Tree, true
		}
	}
	return -1, false
}

func (a Assignment) String() string {
	var s []string
	for _, b := range a {
		s = append(s, fmt.Sprintf("$%s=%d", b.Pattern, b.Tree))
	}
	return "{" + strings.Join(s, ",") + "}"
}

// --- Coverage --------------------------------------------------------------

// ArgBinding binds an argument of a rule to a target of the chart.
type ArgBinding struct {
	Index  int // argument index
	NT     int // nonterminal of the argument
	Target int // index of the target in the chart
}

// Tuple is a single way of matching a rule pattern (or a part of it) against
// a target. Covered holds the tree nodes consumed by the pattern itself, Claimed
// holds Covered plus the nodes of the targets the arguments are bound to.
type Tuple struct {
	Covered *bitset.BitSet
	Claimed *bitset.BitSet
	Assign  Assignment
	Args    []ArgBinding
	Wild    int // tree node matched by the wildcard of the rule, or -1
}

func emptyTuple() Tuple {
	return Tuple{Covered: bitset.New(0), Claimed: bitset.New(0), Wild: -1}
}

// nodeTuple creates a tuple consuming a single tree node.
func nodeTuple(node int) Tuple {
	t := emptyTuple()
	t.Covered.Set(uint(node))
	t.Claimed.Set(uint(node))
	return t
}

// argTuple creates a tuple binding argument inx to a target covering cov.
func argTuple(inx, nt, target int, cov *bitset.BitSet) Tuple {
	t := emptyTuple()
	t.Claimed = cov.Clone()
	t.Args = []ArgBinding{{Index: inx, NT: nt, Target: target}}
	return t
}

// combine joins two tuples. Their claimed node sets have to be disjoint, except
// for node shared (-1 for none), which is the AC node both tuples are part of.
func (t Tuple) combine(u Tuple, shared int) (Tuple, bool) {
	inter := t.Claimed.Intersection(u.Claimed)
	if shared >= 0 {
		inter.Clear(uint(shared))
	}
	if inter.Any() {
		return Tuple{}, false
	}
	if t.Wild >= 0 && u.Wild >= 0 {
		return Tuple{}, false
	}
	assign, ok := t.Assign.Merge(u.Assign)
	if !ok {
		return Tuple{}, false
	}
	z := Tuple{
		Covered: t.Covered.Union(u.Covered),
		Claimed: t.Claimed.Union(u.Claimed),
		Assign:  assign,
		Wild:    t.Wild,
	}
	if u.Wild >= 0 {
		z.Wild = u.Wild
	}
	z.Args = make([]ArgBinding, 0, len(t.Args)+len(u.Args))
	z.Args = append(z.Args, t.Args...)
	z.Args = append(z.Args, u.Args...)
	return z, true
}

// sortArgs orders the argument bindings by argument index.
func (t Tuple) sortArgs() {
	sort.Slice(t.Args, func(i, j int) bool { return t.Args[i].Index < t.Args[j].Index })
}

func (t Tuple) key() string {
	var b strings.Builder
	b.WriteString(t.Covered.String())
	b.WriteString(t.Assign.String())
	for _, a := range t.Args {
		fmt.Fprintf(&b, "%d:%d@%d;", a.Index, a.NT, a.Target)
	}
	fmt.Fprintf(&b, "*%d", t.Wild)
	return b.String()
}

func (t Tuple) String() string {
	return fmt.Sprintf("⟨%s %s %v⟩", t.Covered, t.Assign, t.Args)
}

// Coverage is a disjunction of tuples: the alternative ways of matching a
// pattern against a target. An empty coverage denotes a failed match.
type Coverage []Tuple

// Product combines every tuple of c with every tuple of d. Combinations whose
// claimed nodes overlap (other than in node shared) or whose variable
// assignments conflict are dropped. Use shared = -1 for non-AC nodes.
func (c Coverage) Product(d Coverage, shared int) Coverage {
	var out Coverage
	for _, t := range c {
		for _, u := range d {
			if z, ok := t.combine(u, shared); ok {
				out = append(out, z)
			}
		}
	}
	return out
}

// dedup removes duplicate tuples, as produced by permutations of equal
// pattern children. Order is preserved.
func (c Coverage) dedup() Coverage {
	if len(c) < 2 {
		return c
	}
	seen := make(map[string]bool, len(c))
	out := c[:0]
	for _, t := range c {
		t.sortArgs()
		k := t.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
	}
	return out
}
