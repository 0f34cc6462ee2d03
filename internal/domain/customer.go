package domain

import "time"

// Membership is the customer's loyalty tier.
type Membership string

const (
	MembershipBronze Membership = "bronze"
	MembershipSilver Membership = "silver"
	MembershipGold   Membership = "gold"
)

// Customer links an authenticated principal (user id) to store data.
// Exactly one customer exists per principal; it is created lazily on first
// access with default profile fields.
type Customer struct {
	ID         int64
	UserID     int64
	Phone      string
	BirthDate  *time.Time
	Membership Membership
}

// ValidMembership reports whether m is one of the known tiers.
func ValidMembership(m Membership) bool {
	switch m {
	case MembershipBronze, MembershipSilver, MembershipGold:
		return true
	}
	return false
}
