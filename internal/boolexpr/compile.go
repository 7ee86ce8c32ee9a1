// Package boolexpr compiles infix AND/OR/NOT expressions with parentheses
// into postfix form and evaluates them over record index sets.
//
// Operands are opaque terms; resolving a term to records is the caller's
// job (see Resolver). Compilation never panics: failures are reported as a
// *CompileError carried in the Compiled value.
package boolexpr

import (
	"strings"
	"unicode"
)

// Operator tokens as they appear in postfix output.
const (
	OpAnd = "AND"
	OpOr  = "OR"
	OpNot = "NOT"
)

var precedence = map[string]int{
	OpNot: 3,
	OpAnd: 2,
	OpOr:  1,
}

// IsOperator reports whether tok is one of AND, OR, NOT (any case).
func IsOperator(tok string) bool {
	_, ok := precedence[strings.ToUpper(tok)]
	return ok
}

// Compiled is the result of compiling an expression: either a postfix
// token sequence or the error that prevented compilation.
type Compiled struct {
	Source  string
	Postfix []string
	Err     error
}

// OK reports whether compilation succeeded.
func (c Compiled) OK() bool { return c.Err == nil }

// String renders the postfix sequence space-separated.
func (c Compiled) String() string { return strings.Join(c.Postfix, " ") }

// Tokenize splits an expression on whitespace with "(" and ")" as
// standalone tokens. Operators are upper-cased and operands lower-cased.
func Tokenize(expr string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		tok := current.String()
		current.Reset()
		if IsOperator(tok) {
			tokens = append(tokens, strings.ToUpper(tok))
		} else {
			tokens = append(tokens, strings.ToLower(tok))
		}
	}

	for _, char := range expr {
		switch {
		case char == '(' || char == ')':
			flush()
			tokens = append(tokens, string(char))
		case unicode.IsSpace(char):
			flush()
		default:
			current.WriteRune(char)
		}
	}
	flush()

	return tokens
}

// Compile converts an infix expression into postfix using the
// shunting-yard algorithm. Precedence is NOT > AND > OR and all operators
// are left-associative.
func Compile(expr string) Compiled {
	c := Compiled{Source: expr}
	tokens := Tokenize(expr)
	if len(tokens) == 0 {
		c.Err = newCompileError(-1, ErrEmptyExpr, "nothing to compile")
		return c
	}

	output := make([]string, 0, len(tokens))
	var stack []string
	var open []int // token positions of unclosed "("

	for pos, tok := range tokens {
		switch {
		case tok == "(":
			stack = append(stack, tok)
			open = append(open, pos)
		case tok == ")":
			for len(stack) > 0 && stack[len(stack)-1] != "(" {
				output = append(output, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				c.Err = newCompileError(pos, ErrUnmatchedParen, "unexpected ')'")
				return c
			}
			stack = stack[:len(stack)-1]
			open = open[:len(open)-1]
		case IsOperator(tok):
			// NOT is a prefix operator: it has no left operand, so there is
			// nothing on the stack it could bind tighter than.
			for tok != OpNot && len(stack) > 0 {
				top := stack[len(stack)-1]
				if top == "(" || precedence[top] < precedence[tok] {
					break
				}
				output = append(output, top)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)
		default:
			output = append(output, tok)
		}
	}

	if len(open) > 0 {
		c.Err = newCompileError(open[len(open)-1], ErrUnmatchedParen, "'(' is never closed")
		return c
	}
	for len(stack) > 0 {
		output = append(output, stack[len(stack)-1])
		stack = stack[:len(stack)-1]
	}

	c.Postfix = output
	return c
}
