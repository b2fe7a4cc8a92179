// internal/domain/models/authmethods.go
package models

// Supported sign-in methods.
const (
	AuthMethodPassword = "password"
	AuthMethodGoogle   = "google"
)

// IsValidAuthMethod reports whether m names a supported sign-in method.
func IsValidAuthMethod(m string) bool {
	return m == AuthMethodPassword || m == AuthMethodGoogle
}
