package auth

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// contextKey is the echo context key the JWT middleware stores claims under.
const contextKey = "user"

// ErrNoClaims is returned when a handler runs without authenticated claims in
// its context, which means the route was wired outside the secured group.
var ErrNoClaims = errors.New("no authenticated claims in request context")

// CurrentClaims extracts the validated token claims placed in the request
// context by the JWT middleware.
func CurrentClaims(c echo.Context) (*Claims, error) {
	claims, ok := c.Get(contextKey).(*Claims)
	if !ok || claims == nil {
		return nil, ErrNoClaims
	}
	return claims, nil
}
