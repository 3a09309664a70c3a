// Package identity holds the fixed user roster and the derived-password
// scheme. The roster is immutable for the lifetime of the process.
package identity

import "cquiz-service/internal/domain"

// Directory is a read-only lookup over the known users.
type Directory struct {
	byRoll map[string]domain.User
	order  []domain.User
}

// NewDirectory builds a directory from an explicit roster.
func NewDirectory(users []domain.User) *Directory {
	d := &Directory{
		byRoll: make(map[string]domain.User, len(users)),
		order:  make([]domain.User, 0, len(users)),
	}
	for _, u := range users {
		if _, ok := d.byRoll[u.Roll]; ok {
			continue
		}
		d.byRoll[u.Roll] = u
		d.order = append(d.order, u)
	}
	return d
}

// DefaultDirectory returns the built-in roster.
func DefaultDirectory() *Directory {
	return NewDirectory([]domain.User{
		{Roll: "TCH001", Role: domain.RoleTeacher},
		{Roll: "TCH002", Role: domain.RoleTeacher},
		{Roll: "STU101", Role: domain.RoleStudent},
		{Roll: "STU102", Role: domain.RoleStudent},
		{Roll: "STU103", Role: domain.RoleStudent},
	})
}

// Lookup finds a user by exact roll match.
func (d *Directory) Lookup(roll string) (domain.User, bool) {
	u, ok := d.byRoll[roll]
	return u, ok
}

// Users returns a copy of the roster in insertion order.
func (d *Directory) Users() []domain.User {
	out := make([]domain.User, len(d.order))
	copy(out, d.order)
	return out
}

// DerivePassword computes the expected password for a roll: the first two
// characters concatenated with the last two. Rolls shorter than four
// characters have no valid password.
func DerivePassword(roll string) (string, bool) {
	if len(roll) < 4 {
		return "", false
	}
	return roll[:2] + roll[len(roll)-2:], true
}
