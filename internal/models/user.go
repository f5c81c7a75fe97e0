package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string   `gorm:"uniqueIndex;not null"`
	Email        string   `gorm:"uniqueIndex;not null"`
	Password     string   `gorm:"not null" json:"-"`
	Name         string   `gorm:"not null"`
	Role         string   `gorm:"default:'user'"`
	Status       string   `gorm:"default:'active'"`
	TokenVersion int      `gorm:"default:1"`
	Account      *Account `gorm:"foreignKey:UserID"`
}
