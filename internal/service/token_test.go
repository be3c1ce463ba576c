package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	svc, _, _ := newSvc(t)

	token, err := svc.generateAccessToken(context.Background(), "u1@x.com", svc.now())
	require.NoError(t, err)

	id, err := svc.validateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "u1@x.com", id.Email)
	require.NotEmpty(t, id.TokenID)
}

// Токен действителен строго до exp: в момент exp он уже истёк.
func TestAccessToken_Expiry(t *testing.T) {
	t.Parallel()

	svc, _, _ := newSvc(t)
	issued := svc.now()

	token, err := svc.generateAccessToken(context.Background(), "u1@x.com", issued)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(time.Hour - time.Second) }
	_, err = svc.validateAccessToken(token)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(time.Hour) }
	_, err = svc.validateAccessToken(token)
	require.ErrorIs(t, err, ErrTokenExpired)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.validateAccessToken(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestAccessToken_WrongSecret(t *testing.T) {
	t.Parallel()

	svc, _, _ := newSvc(t)

	token, err := svc.generateAccessToken(context.Background(), "u1@x.com", svc.now())
	require.NoError(t, err)

	other, _, _ := newSvc(t)
	other.auth.JWTSecret = "another-secret"

	_, err = other.validateAccessToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessToken_WrongAudienceOrIssuer(t *testing.T) {
	t.Parallel()

	svc, _, _ := newSvc(t)

	token, err := svc.generateAccessToken(context.Background(), "u1@x.com", svc.now())
	require.NoError(t, err)

	other, _, _ := newSvc(t)
	other.auth.Audience = []string{"someone-else"}
	_, err = other.validateAccessToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	other.auth = testAuthCfg()
	other.auth.Issuer = "impostor"
	_, err = other.validateAccessToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessToken_AlgNone_Rejected(t *testing.T) {
	t.Parallel()

	svc, _, _ := newSvc(t)
	now := svc.now()

	claims := accessClaims{
		Email: "u1@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			Issuer:    svc.auth.Issuer,
			Audience:  jwt.ClaimStrings(svc.auth.Audience),
		},
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.validateAccessToken(unsigned)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessToken_MissingJTI_Rejected(t *testing.T) {
	t.Parallel()

	svc, _, _ := newSvc(t)
	now := svc.now()

	claims := accessClaims{
		Email: "u1@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			Issuer:    svc.auth.Issuer,
			Audience:  jwt.ClaimStrings(svc.auth.Audience),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(svc.auth.JWTSecret))
	require.NoError(t, err)

	_, err = svc.validateAccessToken(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessToken_Empty(t *testing.T) {
	t.Parallel()

	svc, _, _ := newSvc(t)

	_, err := svc.validateAccessToken("   ")
	require.ErrorIs(t, err, ErrInvalidToken)
}
