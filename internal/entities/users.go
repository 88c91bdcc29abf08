package entities

// UserRole is the access tier attached to a user account.
type UserRole string

const (
	UserRoleReader UserRole = "reader"
	UserRoleAdmin  UserRole = "admin"
)

// User is a registered reader or administrator.
// The password is stored only as a salted bcrypt hash.
type User struct {
	ID           uint     `gorm:"primaryKey;column:user_id" json:"user_id"`
	Email        string   `gorm:"uniqueIndex;size:255" json:"email"`
	HashPassword string   `gorm:"column:hash_password;size:100" json:"-"`
	Role         UserRole `gorm:"size:20;default:'reader'" json:"role"`
	Age          int      `json:"age"`
}

func (User) TableName() string {
	return "users"
}
