package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	ownerSubject = "owner"
	tokenTTL     = 7 * 24 * time.Hour
)

var (
	ErrInvalidPassphrase = errors.New("invalid passphrase")
	ErrInvalidToken      = errors.New("invalid or expired token")
)

type Claims struct {
	jwt.RegisteredClaims
}

// Auth guards the API with an owner passphrase. With no passphrase
// configured every request is let through.
type Auth struct {
	secret []byte
	hash   []byte
}

func NewAuth(secret, passphrase string) (*Auth, error) {
	a := &Auth{secret: []byte(secret)}
	if passphrase == "" {
		return a, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	a.hash = hash
	return a, nil
}

func (a *Auth) Enabled() bool {
	return a.hash != nil
}

// Unlock exchanges the passphrase for a session token.
func (a *Auth) Unlock(passphrase string) (string, error) {
	if !a.Enabled() {
		return a.GenerateToken()
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(passphrase)); err != nil {
		return "", ErrInvalidPassphrase
	}
	return a.GenerateToken()
}

func (a *Auth) GenerateToken() (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerSubject,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)), // 7 days
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Auth) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithSubject(ownerSubject))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (a *Auth) Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !a.Enabled() {
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		// Extract token from "Bearer <token>"
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization format",
			})
		}

		if _, err := a.Verify(tokenString); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}
		return c.Next()
	}
}
