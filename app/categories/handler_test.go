package categories

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/tabrima/storefront/models"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// --- Mock Repository ---

type MockCategoryRepo struct {
	Categories []models.Category
	CreateErr  error
	UpdateErr  error
	DeleteErr  error
	ListErr    error
	LastSaved  *models.Category
	LastDelete uint
}

func (m *MockCategoryRepo) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Categories, nil
}

func (m *MockCategoryRepo) GetCategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	for _, c := range m.Categories {
		if c.ID == id {
			category := c
			return &category, nil
		}
	}
	return nil, models.ErrCategoryNotFound
}

func (m *MockCategoryRepo) CreateCategory(ctx context.Context, cat *models.Category) error {
	m.LastSaved = cat
	if m.CreateErr == nil {
		cat.ID = 42
	}
	return m.CreateErr
}

func (m *MockCategoryRepo) UpdateCategory(ctx context.Context, cat *models.Category) error {
	m.LastSaved = cat
	return m.UpdateErr
}

func (m *MockCategoryRepo) DeleteCategory(ctx context.Context, id uint) error {
	m.LastDelete = id
	return m.DeleteErr
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var errResp map[string]string
	err := json.NewDecoder(rec.Body).Decode(&errResp)
	assert.NoError(t, err)
	return errResp["error"]
}

// --- Tests: GET /api/categories ---

func TestHandleGetAll(t *testing.T) {
	testCases := []struct {
		name               string
		mockRepoSetup      func() *MockCategoryRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "Success with multiple categories",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{
					Categories: []models.Category{
						{ID: 1, Name: "Cheveux", Icon: "bi-scissors"},
						{ID: 2, Name: "Parfums", Icon: "bi-wind"},
					},
				}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []CategoryResponse
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Len(t, resp, 2)
				assert.Equal(t, "Cheveux", resp[0].Name)
				assert.Equal(t, "bi-wind", resp[1].Icon)
			},
		},
		{
			name: "Success with empty list",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{
					Categories: []models.Category{},
				}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []CategoryResponse
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Len(t, resp, 0)
			},
		},
		{
			name: "Repository error",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{
					ListErr: errors.New("db down"),
				}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "failed to fetch categories", decodeError(t, rec))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			handler := NewCategoryHandler(mockRepo, discard)
			req := httptest.NewRequest("GET", "/api/categories", nil)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleGetAll(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}

// --- Tests: GET /api/categories/{id} ---

func TestHandleGet(t *testing.T) {
	repo := &MockCategoryRepo{Categories: []models.Category{{ID: 7, Name: "Accessoires", Icon: "bi-gem"}}}
	handler := NewCategoryHandler(repo, discard)

	testCases := []struct {
		name               string
		id                 string
		expectedStatusCode int
		expectedError      string
	}{
		{name: "Found", id: "7", expectedStatusCode: http.StatusOK},
		{name: "Not found", id: "8", expectedStatusCode: http.StatusNotFound, expectedError: "Category not found"},
		{name: "Invalid id", id: "abc", expectedStatusCode: http.StatusBadRequest, expectedError: "Invalid id"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := mux.SetURLVars(httptest.NewRequest("GET", "/api/categories/"+tc.id, nil), map[string]string{"id": tc.id})
			rec := httptest.NewRecorder()

			handler.HandleGet(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.expectedError != "" {
				assert.Equal(t, tc.expectedError, decodeError(t, rec))
				return
			}
			var resp CategoryResponse
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, "Accessoires", resp.Name)
		})
	}
}

// --- Tests: POST /api/admin/categories ---

func TestHandleCreate(t *testing.T) {
	testCases := []struct {
		name               string
		requestBody        string
		mockRepoSetup      func() *MockCategoryRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCall      func(t *testing.T, repo *MockCategoryRepo)
	}{
		{
			name:        "Success",
			requestBody: `{"name":"Soins Visage","description":"Crèmes et sérums","icon":"bi-person-hearts"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{}
			},
			expectedStatusCode: http.StatusCreated,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp CategoryResponse
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, uint(42), resp.ID)
				assert.Equal(t, "Soins Visage", resp.Name)
			},
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.NotNil(t, repo.LastSaved)
				assert.Equal(t, "Soins Visage", repo.LastSaved.Name)
				assert.Equal(t, "bi-person-hearts", repo.LastSaved.Icon)
			},
		},
		{
			name:        "Invalid JSON body",
			requestBody: `{invalid json`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{}
			},
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "Invalid JSON body", decodeError(t, rec))
			},
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.Nil(t, repo.LastSaved, "CreateCategory should not be called with invalid JSON")
			},
		},
		{
			name:        "Missing name",
			requestBody: `{"description":"Sans nom"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{}
			},
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "Missing name", decodeError(t, rec))
			},
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.Nil(t, repo.LastSaved, "CreateCategory should not be called with missing fields")
			},
		},
		{
			name:        "Duplicate name",
			requestBody: `{"name":"Parfums"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{CreateErr: models.ErrCategoryExists}
			},
			expectedStatusCode: http.StatusConflict,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "Category already exists", decodeError(t, rec))
			},
		},
		{
			name:        "Repository error on create",
			requestBody: `{"name":"Cheveux"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{CreateErr: errors.New("insert failed")}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "Failed to save category", decodeError(t, rec))
			},
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.NotNil(t, repo.LastSaved, "CreateCategory should have been called")
				assert.Equal(t, "Cheveux", repo.LastSaved.Name)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			handler := NewCategoryHandler(mockRepo, discard)
			req := httptest.NewRequest("POST", "/api/admin/categories", strings.NewReader(tc.requestBody))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			// Act
			handler.HandleCreate(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)

			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}

			if tc.checkRepoCall != nil {
				tc.checkRepoCall(t, mockRepo)
			}
		})
	}
}

// --- Tests: PUT and DELETE /api/admin/categories/{id} ---

func TestHandleUpdate(t *testing.T) {
	repo := &MockCategoryRepo{}
	handler := NewCategoryHandler(repo, discard)

	req := httptest.NewRequest("PUT", "/api/admin/categories/3", strings.NewReader(`{"name":"Parfums","icon":"bi-wind"}`))
	req = mux.SetURLVars(req, map[string]string{"id": "3"})
	rec := httptest.NewRecorder()

	handler.HandleUpdate(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(3), repo.LastSaved.ID)
	assert.Equal(t, "bi-wind", repo.LastSaved.Icon)

	repo.UpdateErr = models.ErrCategoryNotFound
	req = mux.SetURLVars(httptest.NewRequest("PUT", "/api/admin/categories/9", strings.NewReader(`{"name":"X"}`)), map[string]string{"id": "9"})
	rec = httptest.NewRecorder()
	handler.HandleUpdate(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleDelete(t *testing.T) {
	testCases := []struct {
		name               string
		deleteErr          error
		expectedStatusCode int
	}{
		{name: "Deleted", expectedStatusCode: http.StatusNoContent},
		{name: "In use", deleteErr: models.ErrCategoryInUse, expectedStatusCode: http.StatusConflict},
		{name: "Not found", deleteErr: models.ErrCategoryNotFound, expectedStatusCode: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &MockCategoryRepo{DeleteErr: tc.deleteErr}
			handler := NewCategoryHandler(repo, discard)
			req := mux.SetURLVars(httptest.NewRequest("DELETE", "/api/admin/categories/5", nil), map[string]string{"id": "5"})
			rec := httptest.NewRecorder()

			handler.HandleDelete(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.Equal(t, uint(5), repo.LastDelete)
		})
	}
}
