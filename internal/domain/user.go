package domain

// User is the lean relational record behind an identity-provider
// subject. The provider owns credentials and claims; this row only
// exists so roles can be attached relationally.
type User struct {
	UserID        string `gorm:"primaryKey;column:user_id" json:"user_id"`
	Email         string `gorm:"size:128;uniqueIndex;not null;column:email" json:"email"`
	Username      string `gorm:"size:128;not null;default:Anonymous;column:username" json:"username"`
	EmailVerified bool   `gorm:"not null;default:false;column:email_verified" json:"email_verified"`

	Roles []Role `gorm:"many2many:user_role;foreignKey:UserID;joinForeignKey:UserID;References:RoleID;joinReferences:RoleID" json:"roles,omitempty"`
}

func (User) TableName() string { return "users" }
