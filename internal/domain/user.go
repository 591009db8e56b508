package domain

import "strings"

// User is the account entity. UserName and Email are always stored lower-cased.
type User struct {
	ID             string
	UserName       string
	Email          string
	DisplayName    string
	PasswordHash   string
	Locale         string
	Title          string
	Active         bool // email confirmed
	Enabled        bool // administratively allowed to authenticate
	PrimaryGroupID int64
	GroupIDs       []int64
}

// InGroup reports whether u is a member of group id, primary group included.
func (u User) InGroup(id int64) bool {
	if u.PrimaryGroupID == id {
		return true
	}
	for _, g := range u.GroupIDs {
		if g == id {
			return true
		}
	}
	return false
}

// AddGroup adds id to the memberships if it is not there yet.
func (u *User) AddGroup(id int64) {
	for _, g := range u.GroupIDs {
		if g == id {
			return
		}
	}
	u.GroupIDs = append(u.GroupIDs, id)
}

// Export is the public view of the user used as message parameters.
func (u User) Export() map[string]string {
	return map[string]string{
		"user_name":    u.UserName,
		"display_name": u.DisplayName,
		"title":        u.Title,
	}
}

// Group is a permission group. At most one group is the default primary group.
type Group struct {
	ID               int64
	Name             string
	IsDefault        bool
	IsDefaultPrimary bool
	NewUserTitle     string
}

// NormalizeIdentifier lower-cases and trims a user name or email before
// lookups and uniqueness checks.
func NormalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
