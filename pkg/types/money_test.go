package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDollarsFromCents(t *testing.T) {
	assert.Equal(t, "5.00", FormatDollars(500))
	assert.Equal(t, "0.01", FormatDollars(1))
	assert.Equal(t, "0.00", FormatDollars(0))
	assert.Equal(t, "1234.56", FormatDollars(123456))
	assert.Equal(t, "-5.00", FormatDollars(-500))
}
