package offer

import (
	"net/http/httptest"
	"testing"
)

func TestPageMeta(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		page       int
		size       int
		totalPages int
		next       *int
		prev       *int
	}{
		{"empty", 0, 1, 20, 0, nil, nil},
		{"single partial page", 5, 1, 20, 1, nil, nil},
		{"exact fit", 40, 1, 20, 2, intp(2), nil},
		{"middle page", 50, 2, 20, 3, intp(3), intp(1)},
		{"last page", 50, 3, 20, 3, nil, intp(2)},
		{"ceil of partial", 41, 1, 20, 3, intp(2), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := pageMeta(tt.total, tt.page, tt.size)
			if m.TotalPages != tt.totalPages {
				t.Errorf("total_pages = %d, want %d", m.TotalPages, tt.totalPages)
			}
			if !intpEqual(m.NextPage, tt.next) {
				t.Errorf("next_page = %v, want %v", m.NextPage, tt.next)
			}
			if !intpEqual(m.PrevPage, tt.prev) {
				t.Errorf("prev_page = %v, want %v", m.PrevPage, tt.prev)
			}
		})
	}
}

func TestPageParams(t *testing.T) {
	tests := []struct {
		url  string
		page int
		size int
	}{
		{"/offers", 1, 20},
		{"/offers?page=3&page_size=5", 3, 5},
		{"/offers?page=0", 1, 20},
		{"/offers?page=-2&page_size=-1", 1, 20},
		{"/offers?page=abc", 1, 20},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.url, nil)
		p, size := pageParams(r)
		if p != tt.page || size != tt.size {
			t.Errorf("pageParams(%q) = (%d, %d), want (%d, %d)", tt.url, p, size, tt.page, tt.size)
		}
	}
}

func intp(v int) *int { return &v }

func intpEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
