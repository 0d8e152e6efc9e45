package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTPLengths(t *testing.T) {
	for _, length := range []int{4, 6} {
		for i := 0; i < 1000; i++ {
			code, err := GenerateOTP(length)
			require.NoError(t, err)
			require.Len(t, code, length)
			for _, ch := range code {
				require.True(t, ch >= '0' && ch <= '9', "code %q contains a non-digit", code)
			}
		}
	}
}

func TestGenerateOTPRejectsOtherLengths(t *testing.T) {
	for _, length := range []int{0, 1, 3, 5, 7, 8, 10, -1} {
		_, err := GenerateOTP(length)
		assert.Error(t, err, "length %d must be rejected", length)
	}
}

func TestGenerateOTPVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateOTP(6)
		require.NoError(t, err)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 90, "100 six-digit codes should be nearly all distinct")
}
