package mrl

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestReadMR(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.mrl")
	defer teardown()
	//
	for i, test := range []struct {
		input string
		size  int
		lin   string
	}{
		{input: "texas", size: 1, lin: "texas"},
		{input: "(answer (state texas))", size: 3, lin: "answer ( state ( texas ) )"},
		{input: "(count $0 (river $0))", size: 4, lin: "count ( $0 river ( $0 ) )"},
		{input: "(city 'new york')", size: 2, lin: "city ( 'new york' )"},
		{input: "(size 3.5) ; comment", size: 2, lin: "size ( 3.5 )"},
	} {
		tree, err := Read(test.input, nil)
		if err != nil {
			t.Errorf("test %d: %v", i+1, err)
			continue
		}
		if tree.Size() != test.size {
			t.Errorf("test %d: expected tree size %d, is %d", i+1, test.size, tree.Size())
		}
		if lin := strings.Join(tree.Linearize(), " "); lin != test.lin {
			t.Errorf("test %d: expected linearization %q, is %q", i+1, test.lin, lin)
		}
	}
}

func TestReadErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.mrl")
	defer teardown()
	//
	for _, input := range []string{"", "(answer", "answer)", "(answer State#1)", "((a) b)"} {
		if _, err := Read(input, nil); err == nil {
			t.Errorf("Expected MR %q to be rejected", input)
		} else {
			t.Logf("error = %v", err)
		}
	}
}

func TestPreorderAndVariables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.mrl")
	defer teardown()
	//
	sig := NewSignature().AC("and").Binders("lambda")
	tree := MustRead("(lambda $x (and (state $x) (loc $x texas)))", sig)
	if tree.Root.ID != 0 || tree.Node(1).Token() != "$x" {
		t.Errorf("Expected pre-order numbering, node 1 is %s", tree.Node(1))
	}
	and := tree.Node(2)
	if !and.AC || and.Label != "and" {
		t.Errorf("Expected node 2 to be AC operator 'and', is %s (AC=%v)", and.Label, and.AC)
	}
	if tree.Depth(4) != 3 {
		t.Errorf("Expected depth of node 4 to be 3, is %d", tree.Depth(4))
	}
	if len(tree.Vars()) != 1 || tree.VarOf(4) != 0 || tree.VarOf(3) != -1 {
		t.Errorf("Expected one variable $x at node 4, vars are %v", tree.Vars())
	}
	if tree.BinderVar(0) != 0 || tree.BinderVar(2) != -1 {
		t.Errorf("Expected root to bind variable 0")
	}
}

func TestReadPattern(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.mrl")
	defer teardown()
	//
	p, err := ReadPattern("(population State#1 *num $v)", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Children) != 3 {
		t.Fatalf("Expected pattern to have 3 children, has %d", len(p.Children))
	}
	arg, wild, v := p.Children[0], p.Children[1], p.Children[2]
	if arg.Kind != Arg || arg.Label != "State" || arg.Index != 1 {
		t.Errorf("Expected argument State#1, is %s", arg.Token())
	}
	if wild.Kind != Wild || wild.Label != "num" {
		t.Errorf("Expected wildcard *num, is %s", wild.Token())
	}
	if v.Kind != Var || v.Label != "v" {
		t.Errorf("Expected variable $v, is %s", v.Token())
	}
	if _, err = ReadPattern("(population State#0)", nil); err == nil {
		t.Errorf("Expected argument index 0 to be rejected")
	}
	sig := NewSignature().AC("and")
	p, err = ReadPattern("(answer (and C#1 C#2) (and C#3))", sig)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Children[0].AC {
		t.Errorf("Expected pattern node %s to be AC", p.Children[0])
	}
	if p.AC || p.Children[1].AC {
		t.Errorf("Expected only binary 'and' to be AC, is %s", p)
	}
	if _, err = Read("(answer State#1)", sig); err == nil {
		t.Errorf("Expected argument symbol to be rejected in MR")
	}
}

func TestFromLinear(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.mrl")
	defer teardown()
	//
	orig := MustRead("(answer (count $0 (river $0)))", nil)
	tree, err := FromLinear(orig.Linearize(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !tree.Root.Equal(orig.Root) {
		t.Errorf("Expected round trip to reproduce %s, is %s", orig, tree)
	}
	if _, err = FromLinear([]string{"answer", "(", "x"}, nil); err == nil {
		t.Errorf("Expected unbalanced token sequence to be rejected")
	}
}

func TestFlattenAC(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.mrl")
	defer teardown()
	//
	sig := NewSignature().AC("and")
	orig := MustRead("(answer (and red (and big (or a (or b c))) (and round)))", sig)
	flat := orig.FlattenAC()
	if flat.String() != "(answer (and red big (or a (or b c)) round))" {
		t.Errorf("Expected nested 'and' to be flattened, is %s", flat)
	}
	if flat.Size() != orig.Size()-2 {
		t.Errorf("Expected flattened tree to have %d nodes, has %d", orig.Size()-2, flat.Size())
	}
	if !flat.Node(1).AC || len(flat.Node(1).Children) != 4 {
		t.Errorf("Expected AC node with 4 children, is %s", flat.Node(1))
	}
	if orig.String() == flat.String() {
		t.Errorf("Expected original tree to be unchanged")
	}
}
