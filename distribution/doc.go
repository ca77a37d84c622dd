// Package distribution expands a parameter distribution into the
// ordered, finite sequence of concrete parameter assignments it describes.
//
// A [Spec] is a list of axes in document order. Deterministic axes vary one
// parameter over a set or a stepped range ([Single]), or several parameters
// together over a list of value sets ([Multi]). Stochastic axes draw a fixed
// number of joint samples from per-parameter probability laws
// ([Stochastic]). The axes combine as a cartesian product with the first
// axis varying slowest.
//
// Expansion validates every axis up front and precomputes its positions.
// The returned [Sequence] may be iterated any number of times and
// addresses each variant by a stable index.
package distribution
