package factory

import (
	fab "github.com/Goldziher/fabricator"
	"golang.org/x/crypto/bcrypt"
)

const DefaultPassword = "12345678"

// NewUser builds a user whose Password holds the bcrypt hash of
// DefaultPassword unless the caller overrides it.
func NewUser[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	hasPassword := false

	for _, data := range customData {
		if _, exists := data["Password"]; exists {
			hasPassword = true
			break
		}
	}

	if !hasPassword {
		encryptedPassword, _ := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)

		customData = append(customData, map[string]any{
			"Password": string(encryptedPassword),
		})
	}

	return instance.Build(customData...)
}
