package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pkgjwt "github.com/jhoicas/inventario-ledger/pkg/jwt"
)

const secret = "test-secret"

func TestGenerateParse_IdaYVuelta(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "user-1", "bodeguero", "inventario-ledger", 5)
	require.NoError(t, err)

	claims, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.ActorID())
	assert.Equal(t, "bodeguero", claims.Role)
	assert.Equal(t, "inventario-ledger", claims.Issuer)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "user-1", "admin", "x", 5)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret", tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "user-1", "admin", "x", -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(secret, tok)
	assert.Error(t, err)
}

func TestSecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "user-1", "admin", "x", 5)
	assert.Error(t, err)

	_, err = pkgjwt.Parse("", "abc")
	assert.Error(t, err)
}
