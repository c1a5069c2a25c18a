package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/auth"
	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/testutil"
	"github.com/jhoicas/Almacen-api/pkg/jwt"
)

const testSecret = "secreto-de-pruebas-no-usar-en-produccion"

func newAuth(t *testing.T) *auth.AuthUseCase {
	t.Helper()
	mem := testutil.NewMemStore()
	return auth.NewAuthUseCase(mem.Users(), auth.JWTConfig{
		Secret:     testSecret,
		ExpMinutes: 60,
		Issuer:     "almacen-api-test",
	})
}

func TestRegisterUser_Basico(t *testing.T) {
	uc := newAuth(t)

	user, err := uc.RegisterUser(dto.RegisterRequest{
		Email:    "Ana@Almacen.Test",
		Password: "contraseña-larga",
		Name:     "Ana",
		Role:     entity.RoleBodeguero,
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@almacen.test", user.Email, "el email se normaliza a minúsculas")
	assert.Equal(t, entity.RoleBodeguero, user.Role)
	assert.Equal(t, "active", user.Status)
}

func TestRegisterUser_EmailDuplicado(t *testing.T) {
	uc := newAuth(t)

	req := dto.RegisterRequest{Email: "ana@almacen.test", Password: "contraseña-larga"}
	_, err := uc.RegisterUser(req)
	require.NoError(t, err)
	_, err = uc.RegisterUser(req)
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegisterUser_Validaciones(t *testing.T) {
	uc := newAuth(t)

	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "", Password: "contraseña-larga"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.RegisterUser(dto.RegisterRequest{Email: "ana@almacen.test", Password: "corta"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "password mínima de 8 caracteres")

	_, err = uc.RegisterUser(dto.RegisterRequest{
		Email: "ana@almacen.test", Password: "contraseña-larga", Role: "superusuario",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "rol desconocido")
}

func TestLogin_TokenConRolYEmail(t *testing.T) {
	uc := newAuth(t)

	_, err := uc.RegisterUser(dto.RegisterRequest{
		Email: "ana@almacen.test", Password: "contraseña-larga", Role: entity.RoleAdmin,
	})
	require.NoError(t, err)

	resp, err := uc.Login(dto.LoginRequest{Email: "ana@almacen.test", Password: "contraseña-larga"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	userID, email, role, err := jwt.Parse(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)
	assert.Equal(t, "ana@almacen.test", email, "el email del token es el actor del historial")
	assert.Equal(t, entity.RoleAdmin, role)
}

func TestLogin_Errores(t *testing.T) {
	uc := newAuth(t)

	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "ana@almacen.test", Password: "contraseña-larga"})
	require.NoError(t, err)

	_, err = uc.Login(dto.LoginRequest{Email: "nadie@almacen.test", Password: "contraseña-larga"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = uc.Login(dto.LoginRequest{Email: "ana@almacen.test", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
