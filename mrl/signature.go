package mrl

import (
	"github.com/emirpasic/gods/sets/treeset"
)

// Signature declares properties of MR operators: which operators are
// associative-commutative (AC), and which operators bind variables. A binder
// binds the variable given as its first child, as in
//
//     (lambda $0 (state $0))
//
// Operators not mentioned are ordered and non-binding.
type Signature struct {
	ac      *treeset.Set
	binders *treeset.Set
}

// NewSignature creates an empty signature.
func NewSignature() *Signature {
	return &Signature{
		ac:      treeset.NewWithStringComparator(),
		binders: treeset.NewWithStringComparator(),
	}
}

// AC declares operators to be associative-commutative. Returns the signature
// (for chaining).
func (sig *Signature) AC(labels ...string) *Signature {
	for _, l := range labels {
		sig.ac.Add(l)
	}
	return sig
}

// Binders declares operators which bind variables. Returns the signature
// (for chaining).
func (sig *Signature) Binders(labels ...string) *Signature {
	for _, l := range labels {
		sig.binders.Add(l)
	}
	return sig
}

// IsAC is a predicate. A nil signature declares nothing.
func (sig *Signature) IsAC(label string) bool {
	return sig != nil && sig.ac.Contains(label)
}

// IsBinder is a predicate. A nil signature declares nothing.
func (sig *Signature) IsBinder(label string) bool {
	return sig != nil && sig.binders.Contains(label)
}

// ACLabels returns the AC operators, sorted.
func (sig *Signature) ACLabels() []string {
	return labels(sig.ac)
}

// BinderLabels returns the binding operators, sorted.
func (sig *Signature) BinderLabels() []string {
	return labels(sig.binders)
}

func labels(set *treeset.Set) []string {
	vals := set.Values()
	l := make([]string, len(vals))
	for i, v := range vals {
		l[i] = v.(string)
	}
	return l
}
