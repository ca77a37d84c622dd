// Package engine turns one input document into fully literal scenario
// documents.
//
// A plain scenario yields one document bound to its declaration defaults. A
// parameter value distribution yields one document per variant of the
// scenario it names. Variants are resolved concurrently and returned in
// enumeration order.
package engine
