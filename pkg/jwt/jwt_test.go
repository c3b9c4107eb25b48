package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse(t *testing.T) {
	token, err := Generate("secreto", "u-1", RoleAdmin, "warehouse-api", 5)
	require.NoError(t, err)

	userID, role, err := Parse("secreto", token)

	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, RoleAdmin, role)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := Generate("secreto", "u-1", RoleVendedor, "warehouse-api", 5)
	require.NoError(t, err)

	_, _, err = Parse("otro", token)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	token, err := Generate("secreto", "u-1", RoleVendedor, "warehouse-api", -1)
	require.NoError(t, err)

	_, _, err = Parse("secreto", token)
	assert.Error(t, err)
}

func TestGenerate_SinSecreto(t *testing.T) {
	_, err := Generate("", "u-1", RoleAdmin, "x", 5)
	assert.Error(t, err)
}
