package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTypeAliases(t *testing.T) {
	assert.Equal(t, "NAME", NormalizeType("person"))
	assert.Equal(t, "SSN", NormalizeType(" us_ssn "))
	assert.Equal(t, "ADDRESS", NormalizeType("GPE"))
	assert.Equal(t, "CREDIT_CARD", NormalizeType("creditCardNumber"))
	assert.Equal(t, "MRN", NormalizeType("id"))
}

func TestNormalizeTypeIdempotent(t *testing.T) {
	for _, in := range []string{"person", "SSN", "unknown_type", " gpe "} {
		once := NormalizeType(in)
		twice := NormalizeType(once)
		assert.Equal(t, once, twice)
	}
}

func TestGetWeightDefault(t *testing.T) {
	assert.Equal(t, 1, GetWeight("TOTALLY_UNKNOWN"))
	assert.Equal(t, 10, GetWeight("SSN"))
}

func TestGetCategoryDefault(t *testing.T) {
	assert.Equal(t, CategoryOther, GetCategory("TOTALLY_UNKNOWN"))
	assert.Equal(t, CategoryHealthInfo, GetCategory("MRN"))
}
