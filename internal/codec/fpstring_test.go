package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFPString_SpecialValues tests the single-digit special cases.
func TestFPString_SpecialValues(t *testing.T) {
	assert.Equal(t, "0", FPString(math.Inf(-1)))
	assert.Equal(t, "3", FPString(0))
	assert.Equal(t, "3", FPString(math.Copysign(0, -1)), "negative zero encodes as zero")
	assert.Equal(t, "6", FPString(math.Inf(1)))
	assert.Equal(t, "7", FPString(math.NaN()))
}

// TestFPString_ExactEncodings pins a few known encodings so the wire
// format cannot drift silently.
func TestFPString_ExactEncodings(t *testing.T) {
	assert.Equal(t, "5"+"500"+"50000000000000000", FPString(5))
	assert.Equal(t, "5"+"501"+"10000000000000000", FPString(10))
	assert.Equal(t, "4"+"499"+"50000000000000000", FPString(0.5))
	assert.Equal(t, "1"+"499"+"89999999999999999", FPString(-1))
}

// TestFPString_FixedWidth tests that finite encodings have a fixed length.
func TestFPString_FixedWidth(t *testing.T) {
	for _, f := range []float64{1, -1, 0.001, -12345.678, 1e300, -1e-300} {
		assert.Len(t, FPString(f), 21, "encoding of %v", f)
	}
}

// TestFPString_Ordering tests the core property: byte order of the
// encodings equals numeric order, across every sign and magnitude class.
func TestFPString_Ordering(t *testing.T) {
	ascending := []float64{
		math.Inf(-1),
		-1e300,
		-12345.678,
		-2,
		-1.5,
		-1,
		-0.5,
		-0.001,
		-1e-10,
		-1e-300,
		0,
		1e-300,
		1e-10,
		0.001,
		0.5,
		1,
		1.5,
		2,
		10,
		12345.678,
		1e300,
		math.Inf(1),
		math.NaN(),
	}

	for i := 1; i < len(ascending); i++ {
		lo, hi := ascending[i-1], ascending[i]
		assert.Less(t, FPString(lo), FPString(hi),
			"FPString(%v) must sort before FPString(%v)", lo, hi)
	}
}

// TestFPString_EqualValues tests that numerically equal floats encode
// identically regardless of how they were produced.
func TestFPString_EqualValues(t *testing.T) {
	assert.Equal(t, FPString(2), FPString(4.0/2.0))
	assert.Equal(t, FPString(0.1), FPString(1.0/10.0))
}

func TestFPStringLexical(t *testing.T) {
	fp, ok := FPStringLexical("5")
	require.True(t, ok)
	assert.Equal(t, FPString(5), fp)

	fp, ok = FPStringLexical("  -2.5e3 ")
	require.True(t, ok, "surrounding whitespace is tolerated")
	assert.Equal(t, FPString(-2500), fp)

	_, ok = FPStringLexical("not-a-number")
	assert.False(t, ok)

	_, ok = FPStringLexical("")
	assert.False(t, ok)
}

// TestFPStringLexical_IntegerForms tests that differently written forms
// of the same value agree, which the numeric range scans depend on.
func TestFPStringLexical_IntegerForms(t *testing.T) {
	a, ok := FPStringLexical("42")
	require.True(t, ok)
	b, ok := FPStringLexical("42.0")
	require.True(t, ok)
	c, ok := FPStringLexical("4.2e1")
	require.True(t, ok)
	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
}
