package boolexpr

import (
	"github.com/wesm/askvault/internal/indexset"
)

// Resolver resolves operands to index sets. Universe is the full index
// range of the active collection; NOT complements against it.
type Resolver interface {
	Universe() *indexset.Set
	Match(term string) *indexset.Set
}

// Evaluate runs a postfix sequence over a stack of index sets.
//
// An empty sequence yields the empty set. An operator without enough
// operands returns ErrStackUnderflow; more than one value left on the stack
// at the end returns ErrDanglingOperand.
func Evaluate(postfix []string, r Resolver) (*indexset.Set, error) {
	var stack []*indexset.Set
	var universe *indexset.Set

	pop := func() *indexset.Set {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return top
	}

	for pos, tok := range postfix {
		switch tok {
		case OpAnd, OpOr:
			if len(stack) < 2 {
				return nil, newCompileError(pos, ErrStackUnderflow, "%s needs two operands", tok)
			}
			b := pop()
			a := pop()
			if tok == OpAnd {
				stack = append(stack, a.And(b))
			} else {
				stack = append(stack, a.Or(b))
			}
		case OpNot:
			if len(stack) < 1 {
				return nil, newCompileError(pos, ErrStackUnderflow, "NOT needs an operand")
			}
			if universe == nil {
				universe = r.Universe()
			}
			stack = append(stack, universe.AndNot(pop()))
		default:
			stack = append(stack, r.Match(tok))
		}
	}

	switch len(stack) {
	case 0:
		return indexset.New(), nil
	case 1:
		return stack[0], nil
	default:
		return nil, newCompileError(-1, ErrDanglingOperand, "%d values left on the stack", len(stack))
	}
}

// Run compiles and evaluates expr in one step. The returned Compiled value
// carries the postfix form and, on failure, the compile or evaluation error.
func Run(expr string, r Resolver) (*indexset.Set, Compiled) {
	c := Compile(expr)
	if !c.OK() {
		return nil, c
	}
	set, err := Evaluate(c.Postfix, r)
	if err != nil {
		c.Err = err
		return nil, c
	}
	return set, c
}
