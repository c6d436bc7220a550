// Package quint defines the stored five-tuple, the pattern language
// used to query it, and the Store contract implemented by the SQL
// backends.
//
// A pattern constrains any subset of the four identity fields; each
// constraint is either a concrete term or a set of operators. The two
// forms are a sealed union (Concrete | Operators), discriminated at
// construction rather than by runtime shape inspection.
package quint
