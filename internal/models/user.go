package models

import (
	"github.com/golang-jwt/jwt/v4"
)

// Role controls what a user may do. Students submit claims, staff and
// admins review them.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

type User struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email" gorm:"uniqueIndex"`
	Role        Role   `json:"role" gorm:"size:20;default:'student'"`
	CreatedAt   int64  `json:"created_at" gorm:"autoCreateTime"`
}

// UserCompact is the public shape embedded in expanded claims and
// conversations.
type UserCompact struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, DisplayName: u.DisplayName, Role: u.Role}
}

// Actor is the caller identity resolved once at the HTTP boundary and
// passed explicitly into every service call. It is never re-derived
// mid-operation.
type Actor struct {
	ID   uint `json:"id"`
	Role Role `json:"role"`
}

// Elevated reports whether the actor may review claims.
func (a Actor) Elevated() bool {
	return a.Role == RoleStaff || a.Role == RoleAdmin
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
