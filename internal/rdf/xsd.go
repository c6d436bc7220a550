package rdf

import (
	"strconv"
	"time"
)

// XSD datatype IRIs used by the codec and the query layer.
const (
	XSDString             IRI = "http://www.w3.org/2001/XMLSchema#string"
	XSDBoolean            IRI = "http://www.w3.org/2001/XMLSchema#boolean"
	XSDInteger            IRI = "http://www.w3.org/2001/XMLSchema#integer"
	XSDDecimal            IRI = "http://www.w3.org/2001/XMLSchema#decimal"
	XSDDouble             IRI = "http://www.w3.org/2001/XMLSchema#double"
	XSDFloat              IRI = "http://www.w3.org/2001/XMLSchema#float"
	XSDLong               IRI = "http://www.w3.org/2001/XMLSchema#long"
	XSDInt                IRI = "http://www.w3.org/2001/XMLSchema#int"
	XSDShort              IRI = "http://www.w3.org/2001/XMLSchema#short"
	XSDByte               IRI = "http://www.w3.org/2001/XMLSchema#byte"
	XSDNonNegativeInteger IRI = "http://www.w3.org/2001/XMLSchema#nonNegativeInteger"
	XSDNonPositiveInteger IRI = "http://www.w3.org/2001/XMLSchema#nonPositiveInteger"
	XSDNegativeInteger    IRI = "http://www.w3.org/2001/XMLSchema#negativeInteger"
	XSDPositiveInteger    IRI = "http://www.w3.org/2001/XMLSchema#positiveInteger"
	XSDUnsignedLong       IRI = "http://www.w3.org/2001/XMLSchema#unsignedLong"
	XSDUnsignedInt        IRI = "http://www.w3.org/2001/XMLSchema#unsignedInt"
	XSDUnsignedShort      IRI = "http://www.w3.org/2001/XMLSchema#unsignedShort"
	XSDUnsignedByte       IRI = "http://www.w3.org/2001/XMLSchema#unsignedByte"
	XSDDateTime           IRI = "http://www.w3.org/2001/XMLSchema#dateTime"
	XSDDate               IRI = "http://www.w3.org/2001/XMLSchema#date"
	RDFLangString         IRI = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
)

var numericDatatypes = map[IRI]struct{}{
	XSDInteger:            {},
	XSDDecimal:            {},
	XSDDouble:             {},
	XSDFloat:              {},
	XSDLong:               {},
	XSDInt:                {},
	XSDShort:              {},
	XSDByte:               {},
	XSDNonNegativeInteger: {},
	XSDNonPositiveInteger: {},
	XSDNegativeInteger:    {},
	XSDPositiveInteger:    {},
	XSDUnsignedLong:       {},
	XSDUnsignedInt:        {},
	XSDUnsignedShort:      {},
	XSDUnsignedByte:       {},
}

// IsNumericDatatype reports whether dt belongs to the XSD numeric family.
func IsNumericDatatype(dt IRI) bool {
	_, ok := numericDatatypes[dt]
	return ok
}

// IsDateTimeDatatype reports whether dt is a temporal XSD datatype.
func IsDateTimeDatatype(dt IRI) bool {
	return dt == XSDDateTime || dt == XSDDate
}

// NumericValue parses a numeric literal's lexical form.
// Returns false for non-numeric datatypes or unparseable forms.
func NumericValue(l Literal) (float64, bool) {
	if !IsNumericDatatype(l.Datatype) {
		return 0, false
	}
	f, err := strconv.ParseFloat(l.Lexical, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// dateTimeLayouts covers the xsd:dateTime and xsd:date lexical spaces we
// accept: RFC 3339 with optional fractional seconds, and zone-less forms
// interpreted as UTC.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// DateTimeValue parses a temporal literal's lexical form to a UTC instant.
// Returns false for non-temporal datatypes or unparseable forms.
func DateTimeValue(l Literal) (time.Time, bool) {
	if !IsDateTimeDatatype(l.Datatype) {
		return time.Time{}, false
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, l.Lexical); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
