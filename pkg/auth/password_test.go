package auth

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestPassword_HashAndCheck(t *testing.T) {
	RegisterTestingT(t)

	hash, err := HashPassword("secret123")

	Expect(err).NotTo(HaveOccurred())
	Expect(hash).NotTo(Equal("secret123"))
	Expect(CheckPassword(hash, "secret123")).To(Succeed())
	Expect(CheckPassword(hash, "secret124")).To(MatchError(ErrPasswordMismatch))
}

func TestPassword_MalformedHash(t *testing.T) {
	RegisterTestingT(t)

	err := CheckPassword("plain-text", "plain-text")

	Expect(err).To(HaveOccurred())
	Expect(err).NotTo(MatchError(ErrPasswordMismatch))
}
