package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/dashboard"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination_DefaultsAndBounds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query    string
		wantPage int
		wantSize int
	}{
		{"", 1, 50},
		{"?page=3&page_size=10", 3, 10},
		{"?page=0&page_size=-5", 1, 50},
		{"?page=abc&page_size=xyz", 1, 50},
		{"?page_size=1000", 1, 200},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/admin/feedback/list"+tt.query, nil)

			page, size := ParsePagination(c, defaultPageSize, maxPageSize)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantSize, size)
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	got, p := Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, got)
	assert.Equal(t, Pagination{Page: 2, PageSize: 2, Total: 5, TotalPages: 3}, p)

	got, _ = Paginate(items, 3, 2)
	assert.Equal(t, []int{5}, got)

	got, p = Paginate(items, 9, 2)
	assert.Empty(t, got)
	assert.Equal(t, 3, p.TotalPages)

	got, p = Paginate([]int{}, 1, 50)
	assert.Empty(t, got)
	assert.Equal(t, 0, p.TotalPages)
}

func TestFiltersFromQuery_Trimmed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?status=%20neu%20&tier=2&priority=&category=bug", nil)

	assert.Equal(t, dashboard.Filters{Status: "neu", Tier: "2", Category: "bug"}, FiltersFromQuery(c))
}

func TestWritePaginated_BuildsStandardResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	WritePaginated(c, "items", []string{"a"}, Pagination{Page: 1, PageSize: 50, Total: 1, TotalPages: 1}, gin.H{"loaded": true})

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []interface{}{"a"}, body["items"])
	assert.Equal(t, true, body["loaded"])
	assert.Equal(t, float64(1), body["pagination"].(map[string]interface{})["total_pages"])
}
