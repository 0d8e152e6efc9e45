package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePhone(t *testing.T) {
	phone, err := SanitizePhone(" +20 100 123 4567 ")
	require.NoError(t, err)
	assert.Equal(t, "+201001234567", phone)

	phone, err = SanitizePhone("201001234567")
	require.NoError(t, err)
	assert.Equal(t, "+201001234567", phone, "a missing + prefix is added")

	_, err = SanitizePhone("")
	assert.Error(t, err)

	_, err = SanitizePhone("123")
	assert.Error(t, err, "too short")
}

func TestSanitizeEmail(t *testing.T) {
	email, err := SanitizeEmail("  Player@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "player@example.com", email)

	_, err = SanitizeEmail("not-an-email")
	assert.Error(t, err)
}

func TestSanitizeInputStripsScripts(t *testing.T) {
	out := SanitizeInput("hello <b>world</b>")
	assert.NotContains(t, out, "<b>")

	out = SanitizeInput("  padded  ")
	assert.Equal(t, "padded", out)
}

func TestIsEmailAddress(t *testing.T) {
	assert.True(t, IsEmailAddress("user@example.com"))
	assert.False(t, IsEmailAddress("+201001234567"))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "ah***@example.com", MaskEmail("ahmed@example.com"))
	assert.Equal(t, "a***@example.com", MaskEmail("ab@example.com"))
	assert.Equal(t, "no-at-sign", MaskEmail("no-at-sign"))
	assert.Equal(t, "***@example.com", MaskEmail("@example.com"))
}
