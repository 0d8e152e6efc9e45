// utils/otp.go
package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTP generates a random numeric code of the requested length.
// Only 4 and 6 digit codes are supported; anything else is rejected.
func GenerateOTP(length int) (string, error) {
	if length != 4 && length != 6 {
		return "", fmt.Errorf("unsupported OTP length: %d", length)
	}

	const digits = "0123456789"
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		result[i] = digits[num.Int64()]
	}
	return string(result), nil
}
