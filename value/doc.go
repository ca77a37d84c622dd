// Package value implements the textual value micro-language used by every
// attribute of a scenario document.
//
// An attribute's text is one of three things:
//
//	12.5          a literal of the attribute's primitive type
//	$speed        a reference to a declared parameter
//	${$speed*2}   an expression over parameters
//
// [Parse] classifies text into an [Expr] without ever failing. Text that does
// not parse under the attribute's [Codec] is kept as an expression and
// reported only when resolved. [Expr.String] returns the original text, so
// parsing and serializing round-trips exactly.
//
// Resolution looks parameters up through a [Lookup] and delegates
// expression evaluation to an optional [Evaluator]. Without one, expressions
// fail with [ErrUnevaluatedExpression], except for the bare form
// "${$name}", which resolves like "$name".
package value
