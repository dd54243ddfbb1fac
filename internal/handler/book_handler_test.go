package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bookswap/internal/auth"
	"bookswap/internal/errors"
	"bookswap/internal/model"
	"bookswap/internal/service"
)

// MockBookService is a mock implementation of service.BookService.
type MockBookService struct {
	mock.Mock
}

func (m *MockBookService) Add(ctx context.Context, book *model.Book) (*model.Book, error) {
	args := m.Called(ctx, book)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockBookService) List(ctx context.Context, search, subject string, page, size int) ([]model.Book, int64, error) {
	args := m.Called(ctx, search, subject, page, size)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Book), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookService) ListByOwner(ctx context.Context, ownerID uint, page, size int) ([]model.Book, int64, error) {
	args := m.Called(ctx, ownerID, page, size)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Book), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookService) UpdateStatus(ctx context.Context, bookID uint, status model.Status, actor *model.User) (*model.Book, error) {
	args := m.Called(ctx, bookID, status, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockBookService) Update(ctx context.Context, bookID uint, fields service.BookUpdate, actor *model.User) (*model.Book, error) {
	args := m.Called(ctx, bookID, fields, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockBookService) Delete(ctx context.Context, bookID uint, actor *model.User) error {
	args := m.Called(ctx, bookID, actor)
	return args.Error(0)
}

// MockUserService is a mock implementation of service.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	args := m.Called(ctx, email, password, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) VerifyCredentials(ctx context.Context, email, password string) (*model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

// withClaims plants validated claims in the context the way the JWT
// middleware does on secured routes.
func withClaims(c echo.Context, email string, userID uint) {
	c.Set("user", &auth.Claims{
		UserID:           userID,
		RegisteredClaims: jwt.RegisteredClaims{Subject: email},
	})
}

func TestBookHandler_ListBooks_Defaults(t *testing.T) {
	books := new(MockBookService)
	books.On("List", mock.Anything, "", "", 0, 10).
		Return([]model.Book{{ID: 2, Title: "Go Basics"}, {ID: 1, Title: "History 101"}}, int64(2), nil)
	h := NewBookHandler(books, new(MockUserService))

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, h.ListBooks(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var page BookPage
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, 10, page.Size)
	assert.Equal(t, int64(2), page.TotalElements)
	assert.Equal(t, int64(1), page.TotalPages)
	assert.Len(t, page.Content, 2)
	books.AssertExpectations(t)
}

func TestBookHandler_ListBooks_ForwardsFilters(t *testing.T) {
	books := new(MockBookService)
	books.On("List", mock.Anything, "go", "CS", 2, 5).
		Return([]model.Book{}, int64(11), nil)
	h := NewBookHandler(books, new(MockUserService))

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/books?page=2&size=5&search=go&subject=CS", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, h.ListBooks(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var page BookPage
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(3), page.TotalPages)
	books.AssertExpectations(t)
}

func TestBookHandler_UpdateBookStatus_InvalidStatus(t *testing.T) {
	h := NewBookHandler(new(MockBookService), new(MockUserService))

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPut, "/api/books/1/status", strings.NewReader(`{"status":"LOST"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	withClaims(c, "ann@example.com", 1)

	err := h.UpdateBookStatus(c)

	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestBookHandler_UpdateBookStatus_ForeignListing(t *testing.T) {
	actor := &model.User{ID: 2, Email: "bob@example.com"}
	users := new(MockUserService)
	users.On("FindByEmail", mock.Anything, "bob@example.com").Return(actor, nil)
	books := new(MockBookService)
	books.On("UpdateStatus", mock.Anything, uint(1), model.StatusBorrowed, actor).
		Return(nil, errors.ErrNotOwner)
	h := NewBookHandler(books, users)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPut, "/api/books/1/status", strings.NewReader(`{"status":"borrowed"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	withClaims(c, "bob@example.com", 2)

	err := h.UpdateBookStatus(c)

	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
	books.AssertExpectations(t)
}

func TestBookHandler_GetUserBooks_OtherUserForbidden(t *testing.T) {
	actor := &model.User{ID: 2, Email: "bob@example.com"}
	users := new(MockUserService)
	users.On("FindByEmail", mock.Anything, "bob@example.com").Return(actor, nil)
	books := new(MockBookService)
	h := NewBookHandler(books, users)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/users/1/books", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	withClaims(c, "bob@example.com", 2)

	err := h.GetUserBooks(c)

	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
	books.AssertNotCalled(t, "ListByOwner", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookHandler_AddBook_SetsOwnerFromToken(t *testing.T) {
	actor := &model.User{ID: 7, Email: "ann@example.com", Name: "Ann"}
	users := new(MockUserService)
	users.On("FindByEmail", mock.Anything, "ann@example.com").Return(actor, nil)
	books := new(MockBookService)
	books.On("Add", mock.Anything, mock.MatchedBy(func(b *model.Book) bool {
		return b.OwnerID == actor.ID && b.Title == "Go Basics"
	})).Return(&model.Book{ID: 1, Title: "Go Basics", OwnerID: actor.ID, Status: model.StatusAvailable}, nil)
	h := NewBookHandler(books, users)

	e := newTestEcho()
	body := `{"title":"Go Basics","author":"R. Pike","subject":"CS","contact_email":"ann@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withClaims(c, "ann@example.com", 7)

	assert.NoError(t, h.AddBook(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created model.Book
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, model.StatusAvailable, created.Status)
	books.AssertExpectations(t)
	users.AssertExpectations(t)
}
