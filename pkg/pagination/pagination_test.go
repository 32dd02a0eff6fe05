package pagination_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/counsel/pkg/pagination"
	"github.com/JaimeStill/counsel/pkg/query"
)

var cfg = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

func TestConfigFinalize(t *testing.T) {
	c := pagination.Config{}
	require.NoError(t, c.Finalize(nil))
	assert.Equal(t, cfg, c)

	t.Setenv("TEST_PAGE_SIZE", "30")
	t.Setenv("TEST_MAX_PAGE_SIZE", "not-a-number")
	c = pagination.Config{}
	require.NoError(t, c.Finalize(&pagination.ConfigEnv{DefaultPageSize: "TEST_PAGE_SIZE", MaxPageSize: "TEST_MAX_PAGE_SIZE"}))
	assert.Equal(t, 30, c.DefaultPageSize)
	assert.Equal(t, 100, c.MaxPageSize)

	c = pagination.Config{DefaultPageSize: 50, MaxPageSize: 10}
	assert.ErrorContains(t, c.Finalize(nil), "cannot exceed")

	c = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
	c.Merge(&pagination.Config{MaxPageSize: 200})
	assert.Equal(t, pagination.Config{DefaultPageSize: 20, MaxPageSize: 200}, c)
}

func TestPageRequestFromQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		page     int
		pageSize int
		offset   int
	}{
		{"defaults", "", 1, 20, 0},
		{"explicit", "page=3&page_size=10", 3, 10, 20},
		{"clamped", "page=-2&page_size=500", 1, 100, 0},
		{"malformed", "page=two&page_size=x", 1, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			req := pagination.PageRequestFromQuery(values, cfg)
			assert.Equal(t, tt.page, req.Page)
			assert.Equal(t, tt.pageSize, req.PageSize)
			assert.Equal(t, tt.offset, req.Offset())
			assert.Nil(t, req.Search)
		})
	}
}

func TestPageRequestSearchAndSort(t *testing.T) {
	values := url.Values{"search": {"  indemnify "}, "sort": {"-risk,position"}}
	req := pagination.PageRequestFromQuery(values, cfg)

	require.NotNil(t, req.Search)
	assert.Equal(t, "indemnify", *req.Search)
	assert.Equal(t, []query.SortField{
		{Field: "risk", Descending: true},
		{Field: "position"},
	}, req.Sort)

	blank := pagination.PageRequestFromQuery(url.Values{"search": {"   "}}, cfg)
	assert.Nil(t, blank.Search)
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		page     int
		pages    int
		hasNext  bool
	}{
		{"empty", 0, 1, 1, false},
		{"exact", 40, 1, 2, true},
		{"remainder", 41, 3, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := pagination.NewPageResult[string](nil, tt.total, tt.page, 20)
			assert.Equal(t, tt.pages, r.TotalPages)
			assert.Equal(t, tt.hasNext, r.HasNext)
			assert.NotNil(t, r.Data)
		})
	}
}
