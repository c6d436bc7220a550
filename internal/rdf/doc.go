// Package rdf defines the term model shared by every layer of the quint
// store: IRIs, blank nodes, literals, and the default-graph marker.
//
// Terms form a sealed interface - only the four types in this package
// implement it. Terms are immutable and compared by value, never by
// pointer identity. Literal language tags are canonicalized to their
// BCP 47 form at construction so that equality is well defined.
package rdf
