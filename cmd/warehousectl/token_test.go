package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-api/pkg/jwt"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestTokenCmd_GeneraTokenValido(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "cli-secret")

	tok, err := runCmd(t, "token", "--user", "u-42", "--role", "bodeguero")
	require.NoError(t, err)

	userID, role, err := jwt.Parse("cli-secret", tok)
	require.NoError(t, err)
	assert.Equal(t, "u-42", userID)
	assert.Equal(t, "bodeguero", role)
}

func TestTokenCmd_RolDesconocido(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "cli-secret")

	_, err := runCmd(t, "token", "--role", "root")
	assert.ErrorContains(t, err, "rol desconocido")
}

func TestTokenCmd_BloqueadoEnProduccion(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("JWT_SECRET", "cli-secret")

	_, err := runCmd(t, "token")
	assert.Error(t, err)
}
