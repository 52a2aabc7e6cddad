package types

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username   string    `gorm:"size:20;uniqueIndex;not null;column:username" json:"username"`
	Email      string    `gorm:"size:120;uniqueIndex;not null;column:email" json:"email"`
	Password   string    `gorm:"size:60;not null;column:password" json:"-"`
	Avatar     string    `gorm:"size:120;not null;default:'default.jpg';column:avatar" json:"avatar"`
	IsAdmin    bool      `gorm:"not null;default:false;column:is_admin" json:"is_admin"`
	DateJoined time.Time `gorm:"not null;column:date_joined" json:"date_joined"`
}

func (User) TableName() string { return "user" }
