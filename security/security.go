// Package security holds request hardening helpers shared by the HTTP
// middleware.
package security

// ValidateContentType ensures the request has an accepted content type
func ValidateContentType(contentType string) bool {
	validTypes := map[string]bool{
		"application/json":                  true,
		"application/x-www-form-urlencoded": true,
		"multipart/form-data":               true,
	}
	return validTypes[contentType]
}
