package models

// Identity is the caller a request acts for, resolved from a verified token
// or, when enabled, from the User-Id / User-Role headers.
type Identity struct {
	UserID   string
	Role     Role
	Verified bool
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanManage reports whether the caller may delete a listing owned by ownerID.
func (i Identity) CanManage(ownerID string) bool {
	return i.IsAdmin() || (i.UserID != "" && i.UserID == ownerID)
}
