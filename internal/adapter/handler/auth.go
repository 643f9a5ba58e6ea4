package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Role string

const (
	RolePassenger Role = "passenger"
	RoleDriver    Role = "driver"
	RoleAdmin     Role = "admin"
)

const identityKey = "identity"

// Claims are the token claims the API trusts: the subject is the caller's id.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

type Identity struct {
	ID   uuid.UUID
	Role Role
}

// Authenticate verifies the HS256 bearer token and stores the caller's
// identity on the request context.
func Authenticate(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			id, err := parseToken(secret, raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(identityKey, id)
			return next(c)
		}
	}
}

// RequireRole lets through callers holding one of roles.
func RequireRole(roles ...Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := identityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
			}
			for _, r := range roles {
				if id.Role == r {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "role not allowed")
		}
	}
}

// IssueToken signs a token for id. Used by tests and local tooling.
func IssueToken(secret []byte, id Identity, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = id.ID.String()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: id.Role, RegisteredClaims: claims})
	return token.SignedString(secret)
}

func parseToken(secret []byte, raw string) (Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, err
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, errors.New("subject is not a uuid")
	}

	switch claims.Role {
	case RolePassenger, RoleDriver, RoleAdmin:
	default:
		return Identity{}, errors.New("unknown role")
	}

	return Identity{ID: id, Role: claims.Role}, nil
}

func identityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}

func caller(c echo.Context) uuid.UUID {
	id, _ := identityFrom(c)
	return id.ID
}
