package routes

import "testing"

func TestTableSegmentMatching(t *testing.T) {
	table, err := New(
		[]string{"/auth/login", "/auth/register", "/auth/refresh", "/health"},
		[]string{"/health", "/auth/refresh"},
	)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	cases := []struct {
		path   string
		public bool
	}{
		{"/auth/login", true},
		{"/auth/login/google", true},
		{"/auth/refresh", true},
		{"/health", true},
		{"/accounts", false},
		{"/transactions/42", false},
		// Substring of a public path inside a protected one must stay
		// protected.
		{"/accounts/auth/login-history", false},
		{"/auth/login-history", false},
		{"/auth", false},
	}
	for _, tc := range cases {
		if got := table.Public(tc.path); got != tc.public {
			t.Fatalf("Public(%q) = %v, want %v", tc.path, got, tc.public)
		}
	}

	if !table.IndicatorExempt("/health") {
		t.Fatalf("health should be indicator exempt")
	}
	if table.IndicatorExempt("/accounts") {
		t.Fatalf("accounts should drive the indicator")
	}
}

func TestTableRejectsUnrootedPath(t *testing.T) {
	if _, err := New([]string{"auth/login"}, nil); err == nil {
		t.Fatalf("expected error for unrooted path")
	}
	if _, err := New(nil, []string{"/"}); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestTableCounts(t *testing.T) {
	table, err := New([]string{"/a", "/b"}, []string{"/c"})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if table.PublicCount() != 2 || table.ExemptCount() != 1 {
		t.Fatalf("unexpected counts: %d public, %d exempt", table.PublicCount(), table.ExemptCount())
	}
}
