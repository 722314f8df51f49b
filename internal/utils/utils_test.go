package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phoneshop_back_end/internal/models"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("Secret1!")
	require.NoError(t, err)
	assert.True(t, IsArgon2Hash(hash))

	ok, err := VerifyPassword("Secret1!", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("secret1!", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyPassword("x", "$2a$10$bcrypt")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, err = VerifyPassword("x", "$argon2id$v=19$m=abc$salt$key")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestNeedsRehash(t *testing.T) {
	current, err := HashPassword("Secret1!")
	require.NoError(t, err)
	assert.False(t, NeedsRehash(current))

	weaker := DefaultArgon2
	weaker.Memory = 8 * 1024
	old, err := weaker.Hash("Secret1!")
	require.NoError(t, err)
	assert.True(t, NeedsRehash(old))

	ok, err := VerifyPassword("Secret1!", old)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, NeedsRehash("$2a$10$bcrypt"))
}

func TestValidatePasswordStrength(t *testing.T) {
	cases := map[string]bool{
		"Secret1!":      true,
		"Aa1@aaaa":      true,
		"short1!A":      true,
		"Sh1!":          false,
		"nouppercase1!": false,
		"NOLOWER1!":     false,
		"NoDigits!!":    false,
		"NoSpecial12":   false,
		"Bad char1! ":   false,
		"Secret1#":      false,
	}
	for pw, valid := range cases {
		t.Run(pw, func(t *testing.T) {
			err := ValidatePasswordStrength(pw)
			if valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrWeakPassword)
			}
		})
	}
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := models.User{ID: "u-1", Email: "a@b.c", Role: models.RoleUser}

	token, exp, err := m.Generate(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
	assert.Equal(t, "USER", claims.Role)

	other := NewJWTManager("other", time.Hour)
	_, err = other.Parse(token)
	assert.Error(t, err)

	expired := NewJWTManager("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Generate(user)
	require.NoError(t, err)
	_, err = m.Parse(old)
	assert.Error(t, err)
}

func TestMoneyConversions(t *testing.T) {
	d := decimal.RequireFromString("1234.56")
	back := FromInfDec(ToInfDec(d))
	assert.True(t, d.Equal(back))
	assert.True(t, FromInfDec(nil).IsZero())
	assert.Equal(t, int64(123456), ToCents(d))
	assert.Equal(t, int64(1000), ToCents(decimal.NewFromInt(10)))
}

func TestPaginate(t *testing.T) {
	s := []int{1, 2, 3, 4, 5}

	items, pages := Paginate(s, Page{Number: 0, Size: 2})
	assert.Equal(t, []int{1, 2}, items)
	assert.Equal(t, 3, pages)

	items, _ = Paginate(s, Page{Number: 2, Size: 2})
	assert.Equal(t, []int{5}, items)

	items, _ = Paginate(s, Page{Number: 9, Size: 2})
	assert.Empty(t, items)

	items, pages = Paginate([]int{1, 2, 3}, ParsePage("9223372036854775807", "2"))
	assert.Empty(t, items)
	assert.Equal(t, 2, pages)

	items, _ = Paginate([]int{}, Page{Number: 0, Size: 2})
	assert.Empty(t, items)

	assert.Equal(t, Page{Number: 0, Size: DefaultPageSize}, ParsePage("-1", "abc"))
	assert.Equal(t, Page{Number: 3, Size: 20}, ParsePage("3", "20"))
}

func TestSepaQR(t *testing.T) {
	payload := SepaPayload("BE71096123456769", "GKCCBEBB", "PhoneShop", "ORDER-1", decimal.RequireFromString("19.9"))
	assert.True(t, strings.HasPrefix(payload, "BCD\n001\n1\nSCT\n"))
	assert.Contains(t, payload, "EUR19.90")

	png, err := GenerateSepaQR("BE71096123456769", "GKCCBEBB", "PhoneShop", "ORDER-1", decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}

func TestPasswordResetHTML(t *testing.T) {
	html, err := PasswordResetHTML("Alice", "http://front/reset-password?token=abc", 15)
	require.NoError(t, err)
	assert.Contains(t, html, "Alice")
	assert.Contains(t, html, "token=abc")
	assert.Contains(t, html, "15 minutes")
}
