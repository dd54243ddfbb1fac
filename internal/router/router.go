package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"bookswap/internal/auth"
	"bookswap/internal/config"
	"bookswap/internal/handler"
)

// Register wires routes and middleware. Register, login, and browsing are
// public; everything else sits behind the JWT middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	authHandler *handler.AuthHandler,
	bookHandler *handler.BookHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/books", bookHandler.ListBooks)

	// Secured routes (require JWT authentication). ParseTokenFunc delegates
	// to the token service so middleware and services agree on claims.
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.Validate(token)
		},
	}))

	// Book routes
	secured.POST("/books", bookHandler.AddBook)
	secured.PUT("/books/:id", bookHandler.UpdateBook)
	secured.PUT("/books/:id/status", bookHandler.UpdateBookStatus)
	secured.DELETE("/books/:id", bookHandler.DeleteBook)
	secured.GET("/users/:id/books", bookHandler.GetUserBooks)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
