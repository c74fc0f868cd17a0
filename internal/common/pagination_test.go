package common

import (
	"math"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name             string
		page, size       int
		wantPage, wantSz int
	}{
		{"defaults", 0, 0, DefaultPage, DefaultPageSize},
		{"negative", -3, -1, DefaultPage, DefaultPageSize},
		{"size capped", 2, 500, 2, MaxPageSize},
		{"page capped", math.MaxInt, 12, MaxPage, 12},
		{"in range", 5, 20, 5, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, size := NormalizePage(tt.page, tt.size)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantSz, size)
		})
	}
}

func TestPagination_OffsetStaysInRangeForHugePages(t *testing.T) {
	p := NewPagination(10, math.MaxInt, MaxPageSize)
	assert.Equal(t, MaxPage, p.CurrentPage)
	assert.GreaterOrEqual(t, p.Offset(), 0)
	assert.LessOrEqual(t, p.Offset(), math.MaxInt32)
	assert.Equal(t, 1, p.TotalPages)
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query            string
		wantPage, wantSz int
	}{
		{"", DefaultPage, DefaultPageSize},
		{"?page=abc&limit=xyz", DefaultPage, DefaultPageSize},
		{"?page=3&limit=24", 3, 24},
		{"?page=" + strconv.Itoa(math.MaxInt) + "&limit=100", MaxPage, MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/properties"+tt.query, nil)
			page, size := GetPaginationParams(c)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantSz, size)
		})
	}
}
