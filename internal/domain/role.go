package domain

import "strings"

const DefaultRoleDescription = "base"

type Role struct {
	RoleID      int    `gorm:"primaryKey;autoIncrement;column:role_id" json:"role_id"`
	Name        string `gorm:"size:128;uniqueIndex;not null;column:name" json:"name"`
	Description string `gorm:"not null;column:description" json:"description"`
	Level       int    `gorm:"not null;default:0;column:level" json:"-"`
}

func (Role) TableName() string { return "roles" }

// FoldedName is the case-insensitive form of Name. Role creation does
// NOT use it for the uniqueness lookup; see RoleRepo.GetByNameFold.
func (r Role) FoldedName() string { return strings.ToLower(r.Name) }

// UserRole is the explicit join row between users and roles. Rows only
// appear or disappear as a side effect of relationship edits.
type UserRole struct {
	UserID string `gorm:"primaryKey;column:user_id"`
	RoleID int    `gorm:"primaryKey;column:role_id"`
}

func (UserRole) TableName() string { return "user_role" }
