package lambda

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/npillmayer/scfg/grammar"
	"github.com/npillmayer/scfg/mrl"
	"github.com/npillmayer/scfg/permute"
)

// Target is a part of the MR tree items are generated for: a node together with
// a selection of its children. For nodes which are not AC, the selection is
// always complete. For AC nodes, partial views select two or more children.
type Target struct {
	Node    int
	Mask    uint64 // selected children, by position
	Partial bool
	cov     *bitset.BitSet
	card    int
	depth   int
	free    []int
	covKey  string
}

type targetKey struct {
	node int
	mask uint64
}

// Coverage returns the set of tree nodes covered by a target.
func (t *Target) Coverage() *bitset.BitSet {
	return t.cov
}

// Card returns the number of tree nodes covered.
func (t *Target) Card() int {
	return t.card
}

// FreeVars returns the ids of the tree variables occuring free within the target,
// i.e. not bound by a binder node covered by the target.
func (t *Target) FreeVars() []int {
	return t.free
}

func (t *Target) String() string {
	if t.Partial {
		return fmt.Sprintf("%d/%b%s", t.Node, t.Mask, t.cov)
	}
	return fmt.Sprintf("%d%s", t.Node, t.cov)
}

func fullMask(n *mrl.Node) uint64 {
	k := len(n.Children)
	if k >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(k)) - 1
}

// selected returns the positions of the children selected by mask.
func selected(n *mrl.Node, mask uint64) []int {
	var pos []int
	for i := range n.Children {
		if i >= 64 || mask&(uint64(1)<<uint(i)) != 0 {
			pos = append(pos, i)
		}
	}
	return pos
}

// makeTargets enumerates the targets of a tree in processing order: deeper nodes
// first, then by increasing number of covered nodes.
func (c *Chart) makeTargets() {
	nodes := c.tree.Nodes()
	subtree := make([]*bitset.BitSet, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- { // children have larger ids
		n := nodes[i]
		subtree[i] = bitset.New(uint(len(nodes))).Set(uint(i))
		for _, ch := range n.Children {
			subtree[i].InPlaceUnion(subtree[ch.ID])
		}
	}
	add := func(n *mrl.Node, mask uint64, partial bool) {
		cov := bitset.New(uint(len(nodes))).Set(uint(n.ID))
		for _, pos := range selected(n, mask) {
			cov.InPlaceUnion(subtree[n.Children[pos].ID])
		}
		c.targets = append(c.targets, &Target{
			Node:    n.ID,
			Mask:    mask,
			Partial: partial,
			cov:     cov,
			card:    int(cov.Count()),
			depth:   c.tree.Depth(n.ID),
			free:    c.freeVars(cov),
			covKey:  cov.String(),
		})
	}
	for _, n := range nodes {
		add(n, fullMask(n), false)
		if !n.AC || len(n.Children) > c.conf.MaxACChildren {
			continue
		}
		permute.Subsets(len(n.Children), 2, len(n.Children)-1, func(set []int) bool {
			var mask uint64
			for _, pos := range set {
				mask |= uint64(1) << uint(pos)
			}
			add(n, mask, true)
			return true
		})
	}
	sort.SliceStable(c.targets, func(i, j int) bool {
		x, y := c.targets[i], c.targets[j]
		if x.depth != y.depth {
			return x.depth > y.depth
		}
		if x.card != y.card {
			return x.card < y.card
		}
		if x.Node != y.Node {
			return x.Node < y.Node
		}
		return bits.OnesCount64(x.Mask) < bits.OnesCount64(y.Mask)
	})
	c.targetIndex = make(map[targetKey]int, len(c.targets))
	for i, t := range c.targets {
		c.targetIndex[targetKey{t.Node, t.Mask}] = i
	}
	tracer().Debugf("%d targets for %d tree nodes", len(c.targets), len(nodes))
}

// freeVars collects the variables occuring in cov which are not bound by a
// binder node in cov.
func (c *Chart) freeVars(cov *bitset.BitSet) []int {
	bound := make(map[int]bool)
	for i, ok := cov.NextSet(0); ok; i, ok = cov.NextSet(i + 1) {
		if v := c.tree.BinderVar(int(i)); v >= 0 {
			bound[v] = true
		}
	}
	var free []int
	seen := make(map[int]bool)
	for i, ok := cov.NextSet(0); ok; i, ok = cov.NextSet(i + 1) {
		if v := c.tree.VarOf(int(i)); v >= 0 && !bound[v] && !seen[v] {
			seen[v] = true
			free = append(free, v)
		}
	}
	sort.Ints(free)
	return free
}

// --- Matching --------------------------------------------------------------

// match matches the pattern of rule r against target t. Only tuples claiming
// exactly the nodes of t are returned.
func (c *Chart) match(r *grammar.Rule, t *Target) Coverage {
	cov := c.matchNode(r, r.Pattern, t.Node, t.Mask)
	var out Coverage
	for _, tup := range cov {
		if tup.Claimed.SymmetricDifference(t.cov).None() {
			out = append(out, tup)
		}
	}
	return out.dedup()
}

func (c *Chart) matchNode(r *grammar.Rule, p *mrl.Node, node int, mask uint64) Coverage {
	n := c.tree.Node(node)
	switch p.Kind {
	case mrl.Arg:
		ti, ok := c.targetIndex[targetKey{node, mask}]
		if !ok {
			return nil
		}
		nt := r.F(r.ArgPosF(p.Index)).ID
		return Coverage{argTuple(p.Index, nt, ti, c.targets[ti].cov)}
	case mrl.Wild:
		if n.Kind != mrl.Atom || !n.IsLeaf() || !c.g.Wildcard(r.WildcardClass()).Match(n.Token()) {
			return nil
		}
		tup := nodeTuple(node)
		tup.Wild = node
		return Coverage{tup}
	case mrl.Var:
		if n.Kind != mrl.Var {
			return nil
		}
		tup := nodeTuple(node)
		tup.Assign, _ = tup.Assign.Bind(p.Label, c.tree.VarOf(node))
		return Coverage{tup}
	}
	if n.Kind != mrl.Atom || n.Label != p.Label {
		return nil
	}
	if p.IsLeaf() {
		if !n.IsLeaf() {
			return nil
		}
		return Coverage{nodeTuple(node)}
	}
	sel := selected(n, mask)
	base := Coverage{nodeTuple(node)}
	k := len(p.Children)
	if !n.AC || len(n.Children) > c.conf.MaxACChildren {
		if k != len(sel) {
			return nil
		}
		cov := base
		for i, pc := range p.Children {
			ch := n.Children[sel[i]]
			if cov = cov.Product(c.matchNode(r, pc, ch.ID, fullMask(ch)), -1); len(cov) == 0 {
				return nil
			}
		}
		return cov
	}
	var out Coverage
	if k == len(sel) { // every pattern child matches one of the children, in any order
		permute.Permutations(len(sel), k, func(perm []int) bool {
			cov := base
			for i, pc := range p.Children {
				ch := n.Children[sel[perm[i]]]
				if cov = cov.Product(c.matchNode(r, pc, ch.ID, fullMask(ch)), node); len(cov) == 0 {
					return true
				}
			}
			out = append(out, cov...)
			return true
		})
		return out
	}
	if k < 2 || k > len(sel) {
		return nil
	}
	// more children than pattern children: one argument takes the rest
	for ri, rest := range p.Children {
		if rest.Kind != mrl.Arg {
			continue
		}
		others := make([]*mrl.Node, 0, k-1)
		others = append(others, p.Children[:ri]...)
		others = append(others, p.Children[ri+1:]...)
		permute.Permutations(len(sel), k-1, func(perm []int) bool {
			cov := base
			restMask := mask
			for i, pc := range others {
				pos := sel[perm[i]]
				restMask &^= uint64(1) << uint(pos)
				ch := n.Children[pos]
				if cov = cov.Product(c.matchNode(r, pc, ch.ID, fullMask(ch)), node); len(cov) == 0 {
					return true
				}
			}
			cov = cov.Product(c.matchNode(r, rest, node, restMask), node)
			out = append(out, cov...)
			return true
		})
	}
	return out
}
