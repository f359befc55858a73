package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/dineflow/models"
	"gorm.io/gorm"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, expiresAt, err := tm.GenerateToken(7, "chef")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "chef", claims.Role)
}

func TestParseTokenRejects(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("another-secret", time.Hour)

	foreign, _, err := other.GenerateToken(1, "admin")
	require.NoError(t, err)
	_, err = tm.ParseToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &CustomClaims{
		UserID: 1,
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			Issuer:    "dineflow",
		},
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = tm.ParseToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenBlacklist(t *testing.T) {
	bl := NewTokenBlacklist()
	bl.Revoke("a", time.Now().Add(time.Hour))
	bl.Revoke("b", time.Now().Add(-time.Hour))

	assert.True(t, bl.IsRevoked("a"))
	assert.False(t, bl.IsRevoked("b"))
	assert.False(t, bl.IsRevoked("c"))

	assert.Equal(t, 1, bl.Sweep(time.Now()))
	assert.True(t, bl.IsRevoked("a"))
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		symbol string
		want   string
	}{
		{15000.5, "Rp", "Rp 15.000,50"},
		{0, "Rp", "Rp 0,00"},
		{1234567.891, "", "1.234.567,89"},
		{-79, "Rp", "Rp -79,00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(tt.amount, tt.symbol))
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("order 3: %w", models.ErrNotFound):        http.StatusNotFound,
		gorm.ErrRecordNotFound:                               http.StatusNotFound,
		fmt.Errorf("bad: %w", models.ErrValidation):          http.StatusBadRequest,
		models.ErrUnknownStatus:                              http.StatusBadRequest,
		fmt.Errorf("x: %w", models.ErrInvalidTransition):     http.StatusBadRequest,
		fmt.Errorf("order 3: %w", models.ErrVersionConflict): http.StatusConflict,
		gorm.ErrDuplicatedKey:                                http.StatusConflict,
		errors.New("connection reset"):                       http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusFor(err), err.Error())
	}
}
