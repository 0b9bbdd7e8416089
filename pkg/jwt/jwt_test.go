package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/inventario-lotes/pkg/jwt"
)

func TestGenerateParse_IdaYVuelta(t *testing.T) {
	tok, err := pkgjwt.Generate("s3cret", "u-1", pkgjwt.RoleBodeguero, "inventario", 5)
	require.NoError(t, err)

	userID, role, err := pkgjwt.Parse("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, pkgjwt.RoleBodeguero, role)
}

func TestParse_Rechazos(t *testing.T) {
	tok, err := pkgjwt.Generate("s3cret", "u-1", pkgjwt.RoleAdmin, "inventario", 5)
	require.NoError(t, err)
	expired, err := pkgjwt.Generate("s3cret", "u-1", pkgjwt.RoleAdmin, "inventario", -1)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("otra", tok)
	assert.Error(t, err, "firma incorrecta")
	_, _, err = pkgjwt.Parse("s3cret", expired)
	assert.Error(t, err, "token expirado")
	_, _, err = pkgjwt.Parse("", tok)
	assert.Error(t, err, "secret vacío")

	_, err = pkgjwt.Generate("", "u-1", pkgjwt.RoleAdmin, "inventario", 5)
	assert.Error(t, err)
}
