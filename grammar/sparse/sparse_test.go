package sparse

import "testing"

func TestRelation(t *testing.T) {
	R := NewRelation()
	for _, p := range [][2]int{{2, 1}, {0, 2}, {2, 0}} {
		if !R.Add(p[0], p[1]) {
			t.Errorf("Expected %v to be new", p)
		}
	}
	if R.Add(2, 1) || R.Size() != 3 {
		t.Errorf("Expected (2,1) to be present once, size is %d", R.Size())
	}
	if !R.Has(2, 1) || R.Has(1, 1) {
		t.Errorf("Expected (2,1) to be in and (1,1) not to be in %s", R)
	}
	if row := R.Row(2); len(row) != 2 || row[0] != 0 || row[1] != 1 {
		t.Errorf("Expected row 2 to be [0 1], is %v", row)
	}
	if R.String() != "{(0,2), (2,0), (2,1)}" {
		t.Errorf("Expected pairs in row-major order, have %s", R)
	}
	if !R.Inherit(1, 2) || R.Inherit(1, 2) {
		t.Errorf("Expected row 1 to inherit from row 2 once")
	}
	if row := R.Row(1); len(row) != 2 || R.Rows() != 3 {
		t.Errorf("Expected row 1 to be [0 1] and 3 rows, have %v and %d rows", row, R.Rows())
	}
}
