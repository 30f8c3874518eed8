package identity

import "testing"

func TestRotatingIssuesDistinctCookies(t *testing.T) {
	p := NewRotating()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ident := p.NewIdentity()
		if len(ident.Cookie) != 32 {
			t.Fatalf("cookie length = %d, want 32", len(ident.Cookie))
		}
		if ident.UserAgent == "" {
			t.Fatalf("user agent empty")
		}
		if seen[ident.Cookie] {
			t.Fatalf("cookie %q issued twice", ident.Cookie)
		}
		seen[ident.Cookie] = true
	}
}

func TestRotatingHonorsUserAgentOverride(t *testing.T) {
	p := &Rotating{UserAgent: "test-agent/1.0"}
	if got := p.NewIdentity().UserAgent; got != "test-agent/1.0" {
		t.Fatalf("UserAgent = %q, want override", got)
	}
}

func TestStaticIsStable(t *testing.T) {
	p := NewStatic()
	first := p.NewIdentity()
	for i := 0; i < 10; i++ {
		if got := p.NewIdentity(); got != first {
			t.Fatalf("identity changed: %+v vs %+v", got, first)
		}
	}
}
