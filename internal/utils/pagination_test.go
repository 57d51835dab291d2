package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ctxWithQuery(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", 1, 10},
		{"explicit", "page=3&limit=25", 3, 25},
		{"zero page falls back", "page=0", 1, 10},
		{"negative limit falls back", "limit=-5", 1, 10},
		{"non-numeric falls back", "page=abc&limit=xyz", 1, 10},
		{"limit capped", "limit=500", 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := ParsePagination(ctxWithQuery(tt.query), 10)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(101, 2, 50)
	assert.Equal(t, int64(101), p.Total)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, 3, p.TotalPages)

	p = NewPagination(100, 1, 50)
	assert.Equal(t, 2, p.TotalPages)

	p = NewPagination(0, 1, 50)
	assert.Equal(t, 0, p.TotalPages)
}
