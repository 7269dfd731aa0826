package model

import "time"

// Author is the local record of a user signed in through an external provider.
type Author struct {
	ID         string    `json:"id" gorm:"type:char(24);primaryKey"`
	ProviderID string    `json:"providerId" gorm:"index"`
	Name       string    `json:"name" gorm:"not null"`
	Username   string    `json:"username" gorm:"uniqueIndex;not null"`
	Email      string    `json:"email" gorm:"uniqueIndex;not null"`
	Provider   string    `json:"provider" gorm:"not null"`
	Image      string    `json:"image"`
	Bio        string    `json:"bio"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
