package handler

import (
	goerrors "errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"bookswap/internal/auth"
	"bookswap/internal/errors"
	"bookswap/internal/model"
	"bookswap/internal/service"
)

// BookHandler handles book listing endpoints.
type BookHandler struct {
	bookService service.BookService
	userService service.UserService
}

// NewBookHandler creates a new book handler.
func NewBookHandler(bookService service.BookService, userService service.UserService) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		userService: userService,
	}
}

// BookRequest represents a create or update payload for a listing.
type BookRequest struct {
	Title        string `json:"title" validate:"required"`
	Author       string `json:"author" validate:"required"`
	Subject      string `json:"subject" validate:"required"`
	Description  string `json:"description"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
}

// StatusUpdateRequest represents a status change payload.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// BookPage is a page of listings plus pagination metadata.
type BookPage struct {
	Content       []model.Book `json:"content"`
	Page          int          `json:"page"`
	Size          int          `json:"size"`
	TotalElements int64        `json:"total_elements"`
	TotalPages    int64        `json:"total_pages"`
}

func newBookPage(books []model.Book, page, size int, total int64) BookPage {
	totalPages := int64(0)
	if size > 0 {
		totalPages = (total + int64(size) - 1) / int64(size)
	}
	if books == nil {
		books = []model.Book{}
	}
	return BookPage{
		Content:       books,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}

// currentUser resolves the acting user from the validated token claims.
func (h *BookHandler) currentUser(c echo.Context) (*model.User, error) {
	claims, err := auth.CurrentClaims(c)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	user, err := h.userService.FindByEmail(c.Request().Context(), claims.Email())
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}
	return user, nil
}

func queryInt(c echo.Context, name string, def int) int {
	if v := c.QueryParam(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return def
}

// ListBooks godoc
// @Summary Browse book listings
// @Tags books
// @Produce json
// @Param page query int false "Page number (0-indexed)" default(0)
// @Param size query int false "Page size" default(10)
// @Param search query string false "Matches title or author, case-insensitive"
// @Param subject query string false "Exact subject match"
// @Success 200 {object} BookPage
// @Failure 500 {object} errors.ErrorResponse
// @Router /books [get]
func (h *BookHandler) ListBooks(c echo.Context) error {
	page := queryInt(c, "page", 0)
	size := queryInt(c, "size", 10)
	search := c.QueryParam("search")
	subject := c.QueryParam("subject")

	books, total, err := h.bookService.List(c.Request().Context(), search, subject, page, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to list books",
			Code:  "LIST_FAILED",
		})
	}

	return c.JSON(http.StatusOK, newBookPage(books, page, size, total))
}

// AddBook godoc
// @Summary List a new book
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BookRequest true "Book data"
// @Success 201 {object} model.Book
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /books [post]
func (h *BookHandler) AddBook(c echo.Context) error {
	var req BookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	owner, err := h.currentUser(c)
	if err != nil {
		return err
	}

	book := &model.Book{
		Title:        req.Title,
		Author:       req.Author,
		Subject:      req.Subject,
		Description:  req.Description,
		ContactEmail: req.ContactEmail,
		OwnerID:      owner.ID,
		Owner:        *owner,
	}

	created, err := h.bookService.Add(c.Request().Context(), book)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to create book",
			Code:  "CREATE_FAILED",
		})
	}

	return c.JSON(http.StatusCreated, created)
}

// UpdateBookStatus godoc
// @Summary Mark a book as borrowed or available
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param request body StatusUpdateRequest true "New status"
// @Success 200 {object} model.Book
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /books/{id}/status [put]
func (h *BookHandler) UpdateBookStatus(c echo.Context) error {
	bookID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	status, err := model.ParseStatus(req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: errors.ErrInvalidStatus.Error(),
			Code:  "INVALID_STATUS",
		})
	}

	actor, err := h.currentUser(c)
	if err != nil {
		return err
	}

	updated, err := h.bookService.UpdateStatus(c.Request().Context(), uint(bookID), status, actor)
	if err != nil {
		return bookMutationError(err)
	}

	return c.JSON(http.StatusOK, updated)
}

// GetUserBooks godoc
// @Summary Get listings owned by a user
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param page query int false "Page number (0-indexed)" default(0)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} BookPage
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/{id}/books [get]
func (h *BookHandler) GetUserBooks(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	actor, err := h.currentUser(c)
	if err != nil {
		return err
	}

	// Users may only list their own books.
	if actor.ID != uint(userID) {
		return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
			Error: "forbidden",
			Code:  "FORBIDDEN",
		})
	}

	page := queryInt(c, "page", 0)
	size := queryInt(c, "size", 20)

	books, total, err := h.bookService.ListByOwner(c.Request().Context(), actor.ID, page, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to list books",
			Code:  "LIST_FAILED",
		})
	}

	return c.JSON(http.StatusOK, newBookPage(books, page, size, total))
}

// UpdateBook godoc
// @Summary Update a book's details
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param request body BookRequest true "Book data"
// @Success 200 {object} model.Book
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /books/{id} [put]
func (h *BookHandler) UpdateBook(c echo.Context) error {
	bookID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req BookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor, err := h.currentUser(c)
	if err != nil {
		return err
	}

	fields := service.BookUpdate{
		Title:        req.Title,
		Author:       req.Author,
		Subject:      req.Subject,
		Description:  req.Description,
		ContactEmail: req.ContactEmail,
	}

	updated, err := h.bookService.Update(c.Request().Context(), uint(bookID), fields, actor)
	if err != nil {
		return bookMutationError(err)
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteBook godoc
// @Summary Delete a book listing
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /books/{id} [delete]
func (h *BookHandler) DeleteBook(c echo.Context) error {
	bookID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	actor, err := h.currentUser(c)
	if err != nil {
		return err
	}

	if err := h.bookService.Delete(c.Request().Context(), uint(bookID), actor); err != nil {
		return bookMutationError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "book deleted successfully",
	})
}

// bookMutationError translates mutation failures. Not-found and not-owner
// share a 403 so the response does not reveal whether the listing exists.
func bookMutationError(err error) error {
	if goerrors.Is(err, errors.ErrBookNotFound) || goerrors.Is(err, errors.ErrNotOwner) {
		return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
			Error: "forbidden",
			Code:  "FORBIDDEN",
		})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
		Error: "internal server error",
		Code:  "INTERNAL_ERROR",
	})
}
