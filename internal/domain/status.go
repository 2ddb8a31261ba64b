package domain

// Participant statuses. A participant row moves registered -> attended or
// registered -> cancelled; attended is terminal for the registration cycle.
const (
	StatusRegistered = "registered"
	StatusAttended   = "attended"
	StatusCancelled  = "cancelled"
)

// Event types.
const (
	EventTypeOnline  = "online"
	EventTypeOffline = "offline"
)

// Caller roles, as asserted by the external session provider.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// ValidEventType reports whether t is a known event type.
func ValidEventType(t string) bool {
	return t == EventTypeOnline || t == EventTypeOffline
}
