package auth

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func TestJWT_RoundTrip(t *testing.T) {
	RegisterTestingT(t)

	issuer := NewJWT("secret", time.Hour)

	token, err := issuer.CreateToken(42)
	Expect(err).To(BeNil())

	userId, err := issuer.VerifyToken(token)
	Expect(err).To(BeNil())
	Expect(userId).To(Equal(42))
}

func TestJWT_RejectsForeignSignature(t *testing.T) {
	RegisterTestingT(t)

	token, _ := NewJWT("other", time.Hour).CreateToken(42)

	_, err := NewJWT("secret", time.Hour).VerifyToken(token)

	Expect(err).To(MatchError(ErrInvalidToken))
}

func TestJWT_RejectsExpiredToken(t *testing.T) {
	RegisterTestingT(t)

	issuer := &JWT{Secret: "secret", TTL: -time.Minute}
	token, _ := issuer.CreateToken(42)

	_, err := issuer.VerifyToken(token)

	Expect(err).To(MatchError(ErrInvalidToken))
}

func TestJWT_RejectsGarbage(t *testing.T) {
	RegisterTestingT(t)

	_, err := NewJWT("secret", time.Hour).VerifyToken("not-a-token")

	Expect(err).To(MatchError(ErrInvalidToken))
}

func TestNewJWT_DefaultTTL(t *testing.T) {
	RegisterTestingT(t)

	Expect(NewJWT("secret", 0).TTL).To(Equal(DefaultTTL))
}
