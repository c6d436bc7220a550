package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTermEquality(t *testing.T) {
	assert.True(t, IRI("http://ex.org/a").Equal(IRI("http://ex.org/a")))
	assert.False(t, IRI("http://ex.org/a").Equal(IRI("http://ex.org/b")))
	assert.False(t, IRI("x").Equal(BlankNode("x")), "kinds never compare equal")

	assert.True(t, BlankNode("b1").Equal(BlankNode("b1")))
	assert.True(t, DefaultGraph{}.Equal(DefaultGraph{}))
	assert.False(t, DefaultGraph{}.Equal(IRI("")))

	assert.True(t, NewLiteral("a").Equal(NewLiteral("a")))
	assert.False(t, NewLiteral("a").Equal(NewLangLiteral("a", "en")))
	assert.False(t, NewLiteral("1").Equal(NewInteger(1)))
}

func TestNewBlankNode_Unique(t *testing.T) {
	a := NewBlankNode()
	b := NewBlankNode()
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a.Value())
}

func TestNewBlankNodeWithLabel(t *testing.T) {
	assert.Equal(t, BlankNode("b7"), NewBlankNodeWithLabel("b7"))
	assert.Equal(t, BlankNode("b7"), NewBlankNodeWithLabel("_:b7"), "prefix is stripped")
}

// TestNewLangLiteral tests BCP 47 canonicalization and lowercasing.
func TestNewLangLiteral(t *testing.T) {
	assert.Equal(t, "en-us", NewLangLiteral("color", "EN-US").Language)
	assert.Equal(t, "fr", NewLangLiteral("couleur", "FR").Language)
	// Unparseable tags are kept, lowercased, not rejected.
	assert.Equal(t, "x!y", NewLangLiteral("x", "X!Y").Language)
}

func TestNewTypedLiteral_DropsXSDString(t *testing.T) {
	assert.Equal(t, NewLiteral("abc"), NewTypedLiteral("abc", XSDString))
	assert.Equal(t, NewLiteral("abc"), NewTypedLiteral("abc", ""))
	assert.Equal(t, XSDInteger, NewTypedLiteral("1", XSDInteger).Datatype)
}

func TestNumericConstructors(t *testing.T) {
	assert.Equal(t, Literal{Lexical: "-42", Datatype: XSDInteger}, NewInteger(-42))
	assert.Equal(t, Literal{Lexical: "2.5", Datatype: XSDDouble}, NewDouble(2.5))
	assert.Equal(t, Literal{Lexical: "true", Datatype: XSDBoolean}, NewBoolean(true))
	assert.Equal(t, Literal{Lexical: "false", Datatype: XSDBoolean}, NewBoolean(false))
}

func TestNumericValue(t *testing.T) {
	f, ok := NumericValue(NewInteger(7))
	assert.True(t, ok)
	assert.Equal(t, 7.0, f)

	f, ok = NumericValue(NewTypedLiteral("-2.5e2", XSDDouble))
	assert.True(t, ok)
	assert.Equal(t, -250.0, f)

	_, ok = NumericValue(NewLiteral("7"))
	assert.False(t, ok, "plain literals are not numeric")

	_, ok = NumericValue(Literal{Lexical: "zzz", Datatype: XSDInteger})
	assert.False(t, ok)
}

func TestDateTimeValue(t *testing.T) {
	ts, ok := DateTimeValue(NewTypedLiteral("2024-06-15T12:30:00Z", XSDDateTime))
	assert.True(t, ok)
	assert.Equal(t, 2024, ts.Year())
	assert.Equal(t, 30, ts.Minute())

	ts, ok = DateTimeValue(NewTypedLiteral("2024-06-15", XSDDate))
	assert.True(t, ok)
	assert.Equal(t, 15, ts.Day())

	// Zone-less forms are accepted as UTC.
	_, ok = DateTimeValue(NewTypedLiteral("2024-06-15T12:30:00", XSDDateTime))
	assert.True(t, ok)

	_, ok = DateTimeValue(NewTypedLiteral("June 15", XSDDateTime))
	assert.False(t, ok)

	_, ok = DateTimeValue(NewLiteral("2024-06-15T12:30:00Z"))
	assert.False(t, ok, "datatype gates temporal interpretation")
}

func TestTermString(t *testing.T) {
	assert.Equal(t, "<http://ex.org/a>", IRI("http://ex.org/a").String())
	assert.Equal(t, "_:b1", BlankNode("b1").String())
	assert.Equal(t, `"hi"@en`, NewLangLiteral("hi", "en").String())
	assert.Equal(t, "DEFAULT", DefaultGraph{}.String())
}
