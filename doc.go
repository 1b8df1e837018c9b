// Package calc evaluates arithmetic expressions given as text without
// executing anything else.
//
// The syntax is that of Python expressions: integer and floating-point
// literals, parentheses, unary -, and the binary operators + - * / % **, with
// Python's precedence. "-2 ** 2" is "-(2 ** 2)", and "2 ** 3 ** 2" is
// "2 ** (3 ** 2)". Anything else that Python would parse as an expression,
// such as a call, a name, a string, or a comparison, is recognized and
// rejected.
//
// Results are either exact 64-bit integers or floats. Integer operands give
// integer results, except that / always performs true division and a negative
// power gives a float. % is floor modulo, so the result takes the sign of the
// divisor. Integer results that don't fit in 64 bits are errors rather than
// silently wrapping.
package calc
