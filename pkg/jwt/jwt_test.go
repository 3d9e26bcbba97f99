package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/inventario-ledger/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

func TestGenerateAndParse_ConservaUsuarioYRol(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u-1", "bodeguero", "inventario-ledger-test", 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, role, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, "bodeguero", role)
}

func TestParse_Rechaza(t *testing.T) {
	valid, err := pkgjwt.Generate(secret, "u-1", "admin", "", 60)
	require.NoError(t, err)
	expired, err := pkgjwt.Generate(secret, "u-1", "admin", "", -1)
	require.NoError(t, err)

	cases := []struct {
		name   string
		secret string
		token  string
	}{
		{"expirado", secret, expired},
		{"secret incorrecto", "otro-secret-completamente-distinto", valid},
		{"malformado", secret, "token.invalido.aqui"},
		{"secret vacío", "", valid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := pkgjwt.Parse(tc.secret, tc.token)
			assert.Error(t, err)
		})
	}
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "u-1", "admin", "", 60)
	assert.Error(t, err)
}
