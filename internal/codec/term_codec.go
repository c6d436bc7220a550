package codec

import (
	"strings"

	"github.com/undefinedsco/quintstore/internal/rdf"
)

// Sep separates the fields of the N and D object encodings. It is also
// the byte the Postgres dialect must substitute on write (its TEXT type
// rejects NUL). Legal IRIs and literal lexical forms never contain it;
// input that does violates the caller's contract and is not defended
// against here.
const Sep = "\x00"

// MaxSuffix sorts after every legal continuation of a key prefix. Used
// for half-open prefix ranges and for the exclusive/inclusive boundary
// adjustment on numeric range operators.
const MaxSuffix = "￿"

const (
	numericPrefix  = "N" + Sep
	dateTimePrefix = "D" + Sep

	// defaultGraphKey is the stored form of the default-graph marker.
	defaultGraphKey = "urn:quintstore:defaultGraph"
)

// EncodeTerm encodes a term for the graph, subject, and predicate
// columns. Literals keep their quoted textual form; the sortable
// numeric encodings apply to the object column only (EncodeObject).
func EncodeTerm(t rdf.Term) string {
	switch term := t.(type) {
	case rdf.IRI:
		return string(term)
	case rdf.BlankNode:
		return "_:" + string(term)
	case rdf.Literal:
		return encodeQuotedLiteral(term)
	case rdf.DefaultGraph:
		return defaultGraphKey
	default:
		return t.Value()
	}
}

// EncodeObject encodes a term for the object column. Numeric literals
// get the N encoding and temporal literals the D encoding so that byte
// comparison of the column matches value order; everything else falls
// through to EncodeTerm.
func EncodeObject(t rdf.Term) string {
	lit, ok := t.(rdf.Literal)
	if !ok {
		return EncodeTerm(t)
	}

	if rdf.IsNumericDatatype(lit.Datatype) {
		if fp, ok := FPStringLexical(lit.Lexical); ok {
			return numericPrefix + fp + Sep + string(lit.Datatype) + Sep + lit.Lexical
		}
		// Unparseable lexical form for a numeric datatype: stored in
		// quoted form, ordered lexically.
		return encodeQuotedLiteral(lit)
	}

	if rdf.IsDateTimeDatatype(lit.Datatype) {
		if ts, ok := rdf.DateTimeValue(lit); ok {
			fp := FPString(float64(ts.UnixMilli()))
			return dateTimePrefix + fp + Sep + string(lit.Datatype) + Sep + lit.Lexical
		}
		return encodeQuotedLiteral(lit)
	}

	return encodeQuotedLiteral(lit)
}

// NumericBound returns the fpstring-prefixed key used as a range bound
// for an ordering operator against a numeric or temporal literal.
// Returns false when the term is not an ordered literal; such operands
// fall back to the full object encoding.
//
// The bound deliberately omits the datatype and lexical fields: every
// stored encoding of the same value shares the fpstring prefix, so a
// fpstring-only bound compares against the whole value class.
func NumericBound(t rdf.Term) (string, bool) {
	lit, ok := t.(rdf.Literal)
	if !ok {
		return "", false
	}
	if rdf.IsNumericDatatype(lit.Datatype) {
		fp, ok := FPStringLexical(lit.Lexical)
		if !ok {
			return "", false
		}
		return numericPrefix + fp, true
	}
	if rdf.IsDateTimeDatatype(lit.Datatype) {
		ts, ok := rdf.DateTimeValue(lit)
		if !ok {
			return "", false
		}
		return dateTimePrefix + FPString(float64(ts.UnixMilli())), true
	}
	return "", false
}

// DecodeObject is the inverse of EncodeObject. Unknown or corrupt
// encodings decode as an IRI of the raw string - reads stay usable if
// the format ever grows a new case.
func DecodeObject(s string) rdf.Term {
	switch {
	case strings.HasPrefix(s, numericPrefix):
		rest := s[len(numericPrefix):]
		// <fpstring> \x00 <datatype> \x00 <lexical>
		i := strings.Index(rest, Sep)
		if i < 0 {
			return rdf.IRI(s)
		}
		rest = rest[i+1:]
		j := strings.Index(rest, Sep)
		if j < 0 {
			return rdf.IRI(s)
		}
		return rdf.NewTypedLiteral(rest[j+1:], rdf.IRI(rest[:j]))

	case strings.HasPrefix(s, dateTimePrefix):
		rest := s[len(dateTimePrefix):]
		// <fpstring> \x00 <datatype> \x00 <lexical>
		i := strings.Index(rest, Sep)
		if i < 0 {
			return rdf.IRI(s)
		}
		rest = rest[i+1:]
		j := strings.Index(rest, Sep)
		if j < 0 {
			return rdf.IRI(s)
		}
		return rdf.NewTypedLiteral(rest[j+1:], rdf.IRI(rest[:j]))

	case strings.HasPrefix(s, `"`):
		if lit, ok := decodeQuotedLiteral(s); ok {
			return lit
		}
		return rdf.IRI(s)

	default:
		return DecodeTerm(s)
	}
}

// DecodeTerm is the inverse of EncodeTerm.
func DecodeTerm(s string) rdf.Term {
	switch {
	case s == defaultGraphKey:
		return rdf.DefaultGraph{}
	case strings.HasPrefix(s, "_:"):
		return rdf.BlankNode(s[2:])
	case strings.HasPrefix(s, `"`):
		if lit, ok := decodeQuotedLiteral(s); ok {
			return lit
		}
		return rdf.IRI(s)
	default:
		return rdf.IRI(s)
	}
}

// encodeQuotedLiteral renders "lexical"[@lang|^^<datatype>]. Quotes and
// backslashes inside the lexical form are backslash-escaped so the
// closing quote is unambiguous.
func encodeQuotedLiteral(l rdf.Literal) string {
	var b strings.Builder
	b.Grow(len(l.Lexical) + len(l.Datatype) + len(l.Language) + 8)
	b.WriteByte('"')
	for i := 0; i < len(l.Lexical); i++ {
		c := l.Lexical[i]
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	switch {
	case l.Language != "":
		b.WriteByte('@')
		b.WriteString(l.Language)
	case l.Datatype != "":
		b.WriteString("^^<")
		b.WriteString(string(l.Datatype))
		b.WriteByte('>')
	}
	return b.String()
}

// decodeQuotedLiteral parses the quoted literal form. Returns false on
// anything malformed so the caller can apply the lenient IRI fallback.
func decodeQuotedLiteral(s string) (rdf.Literal, bool) {
	if len(s) < 2 || s[0] != '"' {
		return rdf.Literal{}, false
	}

	var lex strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			lex.WriteByte(s[i+1])
			i += 2
			continue
		}
		if c == '"' {
			break
		}
		lex.WriteByte(c)
		i++
	}
	if i >= len(s) || s[i] != '"' {
		return rdf.Literal{}, false
	}

	tail := s[i+1:]
	switch {
	case tail == "":
		return rdf.NewLiteral(lex.String()), true
	case strings.HasPrefix(tail, "@"):
		return rdf.Literal{Lexical: lex.String(), Language: tail[1:]}, true
	case strings.HasPrefix(tail, "^^<") && strings.HasSuffix(tail, ">"):
		return rdf.NewTypedLiteral(lex.String(), rdf.IRI(tail[3:len(tail)-1])), true
	default:
		return rdf.Literal{}, false
	}
}
