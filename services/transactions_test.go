package services

import (
	"strings"
	"testing"
	"time"
)

func TestListParamsNormalize(t *testing.T) {
	tests := []struct {
		name   string
		in     ListParams
		page   int
		limit  int
		sortBy string
		order  string
	}{
		{"defaults", ListParams{}, 1, 10, "payment_time", "desc"},
		{"negative page", ListParams{Page: -3, Limit: 20}, 1, 20, "payment_time", "desc"},
		{"zero limit", ListParams{Page: 2}, 2, 10, "payment_time", "desc"},
		{"limit clamped", ListParams{Page: 1, Limit: 500}, 1, 100, "payment_time", "desc"},
		{"asc preserved", ListParams{Order: "asc"}, 1, 10, "payment_time", "asc"},
		{"unknown order becomes desc", ListParams{Order: "sideways"}, 1, 10, "payment_time", "desc"},
		{"sort key preserved", ListParams{SortBy: "status"}, 1, 10, "status", "desc"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.in.Normalize()
			if tc.in.Page != tc.page || tc.in.Limit != tc.limit ||
				tc.in.SortBy != tc.sortBy || tc.in.Order != tc.order {
				t.Errorf("Normalize() = page=%d limit=%d sortBy=%q order=%q, want page=%d limit=%d sortBy=%q order=%q",
					tc.in.Page, tc.in.Limit, tc.in.SortBy, tc.in.Order,
					tc.page, tc.limit, tc.sortBy, tc.order)
			}
		})
	}
}

func TestBuildWhere(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)

	t.Run("empty filter", func(t *testing.T) {
		clause, args := buildWhere(TransactionFilter{})
		if clause != "" {
			t.Errorf("clause = %q, want empty", clause)
		}
		if len(args) != 0 {
			t.Errorf("args = %v, want none", args)
		}
	})

	t.Run("status counts missing rows as pending", func(t *testing.T) {
		clause, args := buildWhere(TransactionFilter{Status: "pending"})
		if !strings.Contains(clause, "COALESCE(os.status, 'pending') = $1") {
			t.Errorf("clause = %q", clause)
		}
		if len(args) != 1 || args[0] != "pending" {
			t.Errorf("args = %v", args)
		}
	})

	t.Run("all filters combined", func(t *testing.T) {
		clause, args := buildWhere(TransactionFilter{
			Status:    "success",
			SchoolID:  "school-1",
			StartDate: &start,
			EndDate:   &end,
		})
		for _, want := range []string{
			"COALESCE(os.status, 'pending') = $1",
			"o.school_id = $2",
			"os.payment_time >= $3",
			"os.payment_time <= $4",
			" AND ",
		} {
			if !strings.Contains(clause, want) {
				t.Errorf("clause %q missing %q", clause, want)
			}
		}
		if len(args) != 4 {
			t.Errorf("args = %v, want 4 values", args)
		}
	})
}

func TestBuildOrderBy(t *testing.T) {
	tests := []struct {
		sortBy string
		order  string
		want   string
	}{
		{"payment_time", "desc", " ORDER BY os.payment_time DESC, o.id DESC"},
		{"payment_time", "asc", " ORDER BY os.payment_time ASC, o.id DESC"},
		{"status", "desc", " ORDER BY COALESCE(os.status, 'pending') DESC, o.id DESC"},
		{"order_amount", "asc", " ORDER BY os.order_amount ASC, o.id DESC"},
		{"drop table", "desc", " ORDER BY o.created_at DESC, o.id DESC"},
		{"", "desc", " ORDER BY o.created_at DESC, o.id DESC"},
	}

	for _, tc := range tests {
		if got := buildOrderBy(tc.sortBy, tc.order); got != tc.want {
			t.Errorf("buildOrderBy(%q, %q) = %q, want %q", tc.sortBy, tc.order, got, tc.want)
		}
	}
}

func TestSuccessRate(t *testing.T) {
	tests := []struct {
		successful int
		total      int
		want       float64
	}{
		{0, 0, 0},
		{0, 10, 0},
		{10, 10, 100},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{7, 8, 87.5},
	}

	for _, tc := range tests {
		if got := successRate(tc.successful, tc.total); got != tc.want {
			t.Errorf("successRate(%d, %d) = %v, want %v", tc.successful, tc.total, got, tc.want)
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int
		limit int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{250, 100, 3},
	}

	for _, tc := range tests {
		if got := totalPages(tc.total, tc.limit); got != tc.want {
			t.Errorf("totalPages(%d, %d) = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}
