package shared

import "testing"

func TestNormalizePagination(t *testing.T) {
	cases := []struct {
		page, pageSize         int
		wantPage, wantPageSize int
	}{
		{page: 0, pageSize: 0, wantPage: 1, wantPageSize: 20},
		{page: -3, pageSize: 500, wantPage: 1, wantPageSize: 100},
		{page: 2, pageSize: 15, wantPage: 2, wantPageSize: 15},
	}
	for _, tc := range cases {
		page, pageSize := NormalizePagination(tc.page, tc.pageSize)
		if page != tc.wantPage || pageSize != tc.wantPageSize {
			t.Fatalf("NormalizePagination(%d, %d) = %d, %d", tc.page, tc.pageSize, page, pageSize)
		}
	}
}

func TestBuildPagination(t *testing.T) {
	pagination := BuildPagination(2, 20, 41)
	if pagination.TotalPage != 3 {
		t.Fatalf("total page want 3 got %d", pagination.TotalPage)
	}
	if empty := BuildPagination(1, 20, 0); empty.TotalPage != 0 {
		t.Fatalf("empty result should have zero pages, got %d", empty.TotalPage)
	}
}
