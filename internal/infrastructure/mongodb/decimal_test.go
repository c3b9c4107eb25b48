package mongodb

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimal128_RoundTrip(t *testing.T) {
	for _, s := range []string{"0", "850000", "1234.56", "-15.5"} {
		d := decimal.RequireFromString(s)
		back, err := fromDecimal128(toDecimal128(d))
		require.NoError(t, err)
		assert.True(t, d.Equal(back), "esperado %s, obtenido %s", d, back)
	}
}

func decimalFromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
