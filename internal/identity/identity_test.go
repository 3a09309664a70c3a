package identity

import (
	"testing"

	"cquiz-service/internal/domain"
)

func TestDerivePassword(t *testing.T) {
	cases := []struct {
		roll string
		want string
		ok   bool
	}{
		{"STU101", "ST01", true},
		{"TCH001", "TC01", true},
		{"ABCD", "ABCD", true},
		{"ABC", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := DerivePassword(c.roll)
		if ok != c.ok || got != c.want {
			t.Fatalf("DerivePassword(%q) = (%q, %v), want (%q, %v)", c.roll, got, ok, c.want, c.ok)
		}
	}
}

func TestDerivePasswordDeterministic(t *testing.T) {
	first, _ := DerivePassword("STU102")
	second, _ := DerivePassword("STU102")
	if first != second {
		t.Fatalf("expected deterministic derivation, got %q then %q", first, second)
	}
}

func TestDirectoryLookup(t *testing.T) {
	dir := DefaultDirectory()

	u, ok := dir.Lookup("STU101")
	if !ok {
		t.Fatalf("expected STU101 in roster")
	}
	if u.Role != domain.RoleStudent {
		t.Fatalf("expected student role, got %s", u.Role)
	}

	if _, ok := dir.Lookup("NOPE01"); ok {
		t.Fatalf("expected unknown roll to miss")
	}
}

func TestDirectoryIgnoresDuplicates(t *testing.T) {
	dir := NewDirectory([]domain.User{
		{Roll: "TCH001", Role: domain.RoleTeacher},
		{Roll: "TCH001", Role: domain.RoleStudent},
	})
	if len(dir.Users()) != 1 {
		t.Fatalf("expected single entry, got %d", len(dir.Users()))
	}
	u, _ := dir.Lookup("TCH001")
	if u.Role != domain.RoleTeacher {
		t.Fatalf("expected first entry to win, got %s", u.Role)
	}
}
