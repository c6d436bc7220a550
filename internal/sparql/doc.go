// Package sparql contains the push-down side of query execution: a
// typed algebra tree, a parser for the subset of SPARQL the planner
// can inspect, the planner itself, and the pattern builder that merges
// query terms with tenant filters.
//
// The planner never evaluates SPARQL in general. It walks the algebra
// from the outside in; the moment it sees an operator it does not
// model (FILTER, joins, unions, a complex ORDER BY) it declares the
// query "not eligible" and the caller hands the original query string
// to the external evaluator. Parse failures take the same path -
// delegation is the recovery, not an error.
package sparql
