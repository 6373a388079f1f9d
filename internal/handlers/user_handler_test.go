package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/emprestafacil/emprestafacil-api/internal/repository"
	"github.com/emprestafacil/emprestafacil-api/internal/services"
)

type mockUserRepo struct {
	repository.UserRepository
	mockList func(ctx context.Context, query *repository.ListQuery) ([]repository.UserUsage, int64, error)
}

func (m *mockUserRepo) List(ctx context.Context, query *repository.ListQuery) ([]repository.UserUsage, int64, error) {
	return m.mockList(ctx, query)
}

func TestUserHandler_Index_QueryParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockRepo := &mockUserRepo{}
	userService := services.NewUserService(mockRepo)
	handler := NewUserHandler(userService)

	var captured *repository.ListQuery
	mockRepo.mockList = func(ctx context.Context, query *repository.ListQuery) ([]repository.UserUsage, int64, error) {
		captured = query
		return []repository.UserUsage{}, 0, nil
	}

	// Defaults
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/admin/users", nil)
	handler.Index(c)
	assert.Equal(t, 1, captured.Page)
	assert.Equal(t, 20, captured.PerPage)
	assert.Equal(t, "", captured.Filters["plan"])

	// Plan filter and search term pass through
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/admin/users?plan=pro&search_term=maria", nil)
	handler.Index(c)
	assert.Equal(t, "pro", captured.Filters["plan"])
	assert.Equal(t, "maria", captured.Search)

	// Sort parameter in field-direction format
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/admin/users?sort=created_at-desc", nil)
	handler.Index(c)
	assert.Equal(t, "created_at", captured.SortBy)
	assert.Equal(t, "desc", captured.SortDir)
}

func TestUserHandler_Index_MalformedPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockRepo := &mockUserRepo{}
	userService := services.NewUserService(mockRepo)
	handler := NewUserHandler(userService)

	var captured *repository.ListQuery
	mockRepo.mockList = func(ctx context.Context, query *repository.ListQuery) ([]repository.UserUsage, int64, error) {
		captured = query
		return []repository.UserUsage{}, 5, nil
	}

	// Non-numeric and out-of-range values fall back to the defaults
	// instead of reaching the repository (or the page-count division)
	// as zero.
	for _, raw := range []string{"per_page=abc", "per_page=0", "per_page=-3", "page=abc&per_page=abc"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest("GET", "/admin/users?"+raw, nil)

		assert.NotPanics(t, func() { handler.Index(c) }, raw)
		assert.Equal(t, http.StatusOK, w.Code, raw)
		assert.Equal(t, 1, captured.Page, raw)
		assert.Equal(t, 20, captured.PerPage, raw)
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, int64(0), totalPages(0, 20))
	assert.Equal(t, int64(1), totalPages(1, 20))
	assert.Equal(t, int64(1), totalPages(20, 20))
	assert.Equal(t, int64(2), totalPages(21, 20))
	assert.Equal(t, int64(0), totalPages(10, 0))
}
