package models

import "time"

// CartBlob is one persisted cart slot. Payload holds the serialized cart
// state exactly as the cart package wrote it.
type CartBlob struct {
	StorageKey string    `gorm:"column:storage_key;type:text;primaryKey"`
	Payload    string    `gorm:"column:payload;type:text;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartBlob) TableName() string {
	return "cart_blobs"
}
