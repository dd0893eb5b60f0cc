package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// JoinTicket is the HS256 claim set minted by the matchmaking service when
// it pairs two players. Both players present a ticket carrying the same
// match token; the server trusts the ticket, not the connection.
type JoinTicket struct {
	MatchToken  string `json:"match"`
	Mode        string `json:"mode"`
	AccountRef  string `json:"account"`
	DisplayName string `json:"name"`
	CharacterID string `json:"character"`
	jwt.RegisteredClaims
}

var errInvalidTicket = errors.New("invalid join ticket")

// ParseTicket verifies signature and expiry and returns the claims.
func ParseTicket(secret, tokenString string) (*JoinTicket, error) {
	ticket := &JoinTicket{}
	token, err := jwt.ParseWithClaims(tokenString, ticket, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || ticket.MatchToken == "" || ticket.AccountRef == "" {
		return nil, errInvalidTicket
	}
	return ticket, nil
}

// MintTicket signs a join ticket. Used by the dev endpoint and tests; in
// production the matchmaking service holds the secret and mints its own.
func MintTicket(secret string, ttl time.Duration, ticket JoinTicket) (string, error) {
	ticket.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ticket)
	return token.SignedString([]byte(secret))
}
