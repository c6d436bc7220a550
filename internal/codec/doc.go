// Package codec maps RDF terms to and from the strings stored in the
// quints table.
//
// The object column carries three encodings, discriminated by prefix:
//
//	N\x00<fpstring>\x00<datatype>\x00<lexical>   numeric literals
//	D\x00<fpstring>\x00<datatype>\x00<lexical>   dateTime/date literals
//	"lexical"[@lang|^^<datatype>]                all other literals
//
// IRIs are stored as-is and blank nodes with a "_:" prefix. The fpstring
// is a fixed-width decimal key whose byte order equals numeric order; it
// drives range comparisons only, the trailing fields preserve the exact
// lexical form for round-tripping.
//
// Decoding is lenient: a stored string that matches no known encoding is
// read back as an IRI, never an error, so reads survive format evolution.
package codec
