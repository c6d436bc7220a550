package codec

import (
	"math"
	"strconv"
	"strings"
)

// fpstring layout: one case digit, a 3-digit biased decimal exponent,
// and a 17-digit mantissa. The case digit alone orders sign and
// magnitude classes:
//
//	0  negative infinity
//	1  negative, exponent >= 0   (v <= -1)
//	2  negative, exponent < 0    (-1 < v < 0)
//	3  zero
//	4  positive, exponent < 0    (0 < v < 1)
//	5  positive, exponent >= 0   (v >= 1)
//	6  positive infinity
//	7  NaN
//
// Within the negative cases the exponent and mantissa are nines-
// complemented so that plain string order still equals numeric order.
const (
	fpCaseNegInf   = "0"
	fpCaseZero     = "3"
	fpCasePosInf   = "6"
	fpCaseNaN      = "7"
	fpMantissaLen  = 17
	fpExponentBias = 500
)

// FPString encodes f as a fixed-width decimal string whose byte order
// equals numeric order. The encoding is lossy beyond 17 significant
// digits; callers must keep the original lexical form alongside it.
func FPString(f float64) string {
	switch {
	case math.IsNaN(f):
		return fpCaseNaN
	case math.IsInf(f, 1):
		return fpCasePosInf
	case math.IsInf(f, -1):
		return fpCaseNegInf
	case f == 0:
		return fpCaseZero
	}

	mantissa, exp := decimalParts(math.Abs(f))
	neg := f < 0

	var b strings.Builder
	b.Grow(1 + 3 + fpMantissaLen)

	switch {
	case neg && exp >= 0:
		b.WriteByte('1')
	case neg:
		b.WriteByte('2')
	case exp < 0:
		b.WriteByte('4')
	default:
		b.WriteByte('5')
	}

	biased := fpExponentBias + exp
	if neg {
		// Nines' complement keeps larger magnitudes sorting first.
		biased = 999 - biased
	}
	b.WriteString(pad3(biased))

	if neg {
		for i := 0; i < len(mantissa); i++ {
			b.WriteByte('9' - (mantissa[i] - '0'))
		}
	} else {
		b.WriteString(mantissa)
	}

	return b.String()
}

// FPStringLexical encodes a numeric lexical form. Returns false when the
// form does not parse as a float.
func FPStringLexical(lexical string) (string, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(lexical), 64)
	if err != nil {
		return "", false
	}
	return FPString(f), true
}

// decimalParts returns the 17 mantissa digits and the decimal exponent
// of a positive finite float, normalized so the mantissa is d.dddd...
func decimalParts(f float64) (string, int) {
	// FormatFloat with 'e' and prec 16 yields "d.dddddddddddddddde±dd":
	// exactly 17 significant digits.
	s := strconv.FormatFloat(f, 'e', fpMantissaLen-1, 64)
	e := strings.IndexByte(s, 'e')
	mantissa := s[:1] + s[2:e]
	exp, _ := strconv.Atoi(s[e+1:])
	return mantissa, exp
}

func pad3(n int) string {
	if n < 0 {
		n = 0
	}
	if n > 999 {
		n = 999
	}
	s := strconv.Itoa(n)
	return "000"[:3-len(s)] + s
}
