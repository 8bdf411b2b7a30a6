package models

import "gorm.io/gorm"

// User is the account record. gorm.Model.CreatedAt doubles as the join date.
type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null" json:"-"`
	FullName     string
	IsActive     bool `gorm:"default:true;index"`
}

// DisplayName is the full name when set, otherwise the username.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
