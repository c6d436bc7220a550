package rdf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// Term is a sealed interface over the RDF value types.
// Only IRI, BlankNode, Literal, and DefaultGraph implement it.
type Term interface {
	term() // Sealed - only these types implement it

	// Value returns the primary lexical content of the term:
	// the IRI string, the blank node label, or the literal's lexical form.
	Value() string

	// Equal reports whether two terms are equal by value.
	Equal(other Term) bool

	// String returns a Turtle-like rendering, for logs and errors.
	String() string
}

// IRI is an absolute or relative IRI reference.
type IRI string

func (IRI) term() {}

// Value returns the IRI string.
func (i IRI) Value() string { return string(i) }

// Equal reports whether other is the same IRI.
func (i IRI) Equal(other Term) bool {
	o, ok := other.(IRI)
	return ok && o == i
}

func (i IRI) String() string { return "<" + string(i) + ">" }

// BlankNode is a locally-scoped node identified by its label
// (without the "_:" prefix).
type BlankNode string

func (BlankNode) term() {}

// Value returns the blank node label.
func (b BlankNode) Value() string { return string(b) }

// Equal reports whether other is a blank node with the same label.
func (b BlankNode) Equal(other Term) bool {
	o, ok := other.(BlankNode)
	return ok && o == b
}

func (b BlankNode) String() string { return "_:" + string(b) }

// Literal is an RDF literal: a lexical form plus either a language tag
// or a datatype IRI, never both. A zero Language with a zero Datatype
// denotes a plain xsd:string literal.
type Literal struct {
	Lexical  string
	Language string // canonical BCP 47, lowercase; empty unless lang-tagged
	Datatype IRI    // empty for plain and lang-tagged literals
}

func (Literal) term() {}

// Value returns the literal's lexical form.
func (l Literal) Value() string { return l.Lexical }

// Equal reports whether other is a literal with identical lexical form,
// language tag, and datatype.
func (l Literal) Equal(other Term) bool {
	o, ok := other.(Literal)
	return ok && o == l
}

func (l Literal) String() string {
	s := fmt.Sprintf("%q", l.Lexical)
	switch {
	case l.Language != "":
		return s + "@" + l.Language
	case l.Datatype != "":
		return s + "^^" + l.Datatype.String()
	default:
		return s
	}
}

// DefaultGraph marks the unnamed graph position in a quint.
type DefaultGraph struct{}

func (DefaultGraph) term() {}

// Value returns the empty string; the default graph has no name.
func (DefaultGraph) Value() string { return "" }

// Equal reports whether other is also the default-graph marker.
func (DefaultGraph) Equal(other Term) bool {
	_, ok := other.(DefaultGraph)
	return ok
}

func (DefaultGraph) String() string { return "DEFAULT" }

// NewNamedNode creates an IRI term.
func NewNamedNode(iri string) IRI {
	return IRI(iri)
}

// NewBlankNode mints a fresh blank node with a UUIDv7 label.
// Labels are unique per process run; collisions across runs are not a
// concern because blank node scope is the document/store session.
func NewBlankNode() BlankNode {
	return BlankNode(uuid.Must(uuid.NewV7()).String())
}

// NewBlankNodeWithLabel creates a blank node with an explicit label.
func NewBlankNodeWithLabel(label string) BlankNode {
	return BlankNode(strings.TrimPrefix(label, "_:"))
}

// NewLiteral creates a plain string literal.
func NewLiteral(lexical string) Literal {
	return Literal{Lexical: lexical}
}

// NewLangLiteral creates a language-tagged literal. The tag is
// canonicalized per BCP 47 and lowercased; an unparseable tag is kept
// verbatim (lowercased) rather than rejected, since RDF only requires
// well-formedness at parse boundaries we do not own.
func NewLangLiteral(lexical, lang string) Literal {
	if tag, err := language.Parse(lang); err == nil {
		lang = tag.String()
	}
	return Literal{Lexical: lexical, Language: strings.ToLower(lang)}
}

// NewTypedLiteral creates a datatyped literal. An xsd:string datatype is
// dropped, making NewTypedLiteral(x, XSDString) identical to NewLiteral(x).
func NewTypedLiteral(lexical string, datatype IRI) Literal {
	if datatype == XSDString || datatype == "" {
		return Literal{Lexical: lexical}
	}
	return Literal{Lexical: lexical, Datatype: datatype}
}

// NewInteger creates an xsd:integer literal.
func NewInteger(n int64) Literal {
	return Literal{Lexical: fmt.Sprintf("%d", n), Datatype: XSDInteger}
}

// NewDouble creates an xsd:double literal.
func NewDouble(f float64) Literal {
	return Literal{Lexical: strconv.FormatFloat(f, 'g', -1, 64), Datatype: XSDDouble}
}

// NewBoolean creates an xsd:boolean literal.
func NewBoolean(b bool) Literal {
	if b {
		return Literal{Lexical: "true", Datatype: XSDBoolean}
	}
	return Literal{Lexical: "false", Datatype: XSDBoolean}
}
