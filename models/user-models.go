package models

import (
	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	gorm.Model
	Username string `json:"username" gorm:"not null;uniqueIndex"`
	Email    string `json:"email" gorm:"not null;uniqueIndex"`
	Password string `json:"-" gorm:"not null"`
	Role     string `json:"role" gorm:"not null;default:'customer'"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
