package realtime

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/lo"
)

// SubscribeClaims scope a browser's subscription to an explicit topic list.
type SubscribeClaims struct {
	Subscribe []string `json:"subscribe"`
	jwt.RegisteredClaims
}

func (c SubscribeClaims) AllowsTopic(topic string) bool {
	return lo.Contains(c.Subscribe, topic)
}

// TokenIssuer signs and validates the short-lived subscribe tokens embedded
// in rendered views.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

func (i *TokenIssuer) Issue(topics ...string) (string, error) {
	now := time.Now()

	claims := SubscribeClaims{
		Subscribe: topics,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "tombola",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(i.secret)
}

func (i *TokenIssuer) Verify(tokenString string) (*SubscribeClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SubscribeClaims{}, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SubscribeClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
