// Package xosc reads and writes scenario documents as generic XML trees
// and exposes the parts of a document this module interprets: parameter
// declarations and assignments, catalog references, and parameter value
// distributions.
//
// Elements are [aqwari.net/xml/xmltree] elements. No typed model of the
// scenario schema is built. Every attribute is treated as a value that may
// hold a parameter reference or expression, and [Sites] walks a tree
// yielding those attributes together with the catalog references that must
// be replaced by resolved catalog entries.
package xosc
