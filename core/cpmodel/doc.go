// Package cpmodel is a small pseudo-boolean modelling layer. Models are
// built from boolean variables, integer-weighted linear expressions and
// linear constraints that may be enforced only when a set of literals holds
// (half reification). A single weighted objective is maximised.
//
// Models compile to normalised pseudo-boolean constraints solved by
// github.com/crillab/gophersat under a wall-clock budget. Integer quantities
// are represented in unary with NewCounter.
//
// A Model is not safe for concurrent use; build one per run.
package cpmodel
