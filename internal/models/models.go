package models

import (
	"time"
)

type User struct {
	ID                uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Email             string    `gorm:"uniqueIndex;not null"      json:"email"`
	PasswordHash      string    `gorm:"not null"                  json:"-"`
	FullName          string    `json:"full_name"`
	Plan              string    `gorm:"not null;default:starter"  json:"plan"`
	SKULimit          int       `gorm:"not null;default:25"       json:"sku_limit"`
	StripeCustomerID  string    `json:"-"`
	PasswordChangedAt time.Time `gorm:"not null;autoCreateTime"   json:"-"`
	CreatedAt         time.Time `gorm:"autoCreateTime"            json:"created_at"`
}

type EbayStore struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint      `gorm:"index;not null"           json:"user_id"`
	StoreName    string    `json:"store_name"`
	EbayUsername string    `json:"ebay_username"`
	CreatedAt    time.Time `gorm:"autoCreateTime"           json:"created_at"`
}

// SupplierVault holds one supplier login per store. EncryptedPassword only
// ever contains a vault cipher token, never plaintext: every write goes
// through vault.Encrypt and every read through vault.Decrypt.
type SupplierVault struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            uint      `gorm:"index;not null"           json:"user_id"`
	EbayStoreID       uint      `gorm:"index;not null"           json:"ebay_store_id"`
	SupplierName      string    `gorm:"not null"                 json:"supplier_name"`
	Username          string    `json:"username"`
	EncryptedPassword string    `gorm:"type:text"                json:"-"`
	CreatedAt         time.Time `gorm:"autoCreateTime"           json:"created_at"`
}

type Product struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"   json:"id"`
	UserID       uint       `gorm:"index;not null"             json:"user_id"`
	EbayStoreID  uint       `gorm:"index;not null"             json:"ebay_store_id"`
	SourceURL    string     `gorm:"type:text"                  json:"source_url"`
	SourceSKU    string     `json:"source_sku"`
	EbayItemID   string     `json:"ebay_item_id"`
	Title        string     `json:"title"`
	Status       string     `gorm:"not null;default:draft"     json:"status"`
	SourceCost   float64    `json:"source_cost"`
	TargetPrice  float64    `json:"target_price"`
	LastSyncedAt *time.Time `json:"last_synced_at"`
}

type Order struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	UserID             uint      `gorm:"index;not null"            json:"user_id"`
	ProductID          uint      `gorm:"index;not null"            json:"product_id"`
	EbayOrderID        string    `gorm:"index;not null"            json:"ebay_order_id"`
	BuyerName          string    `json:"buyer_name"`
	Status             string    `gorm:"not null;default:detected" json:"status"`
	TotalPaidByBuyer   float64   `json:"total_paid_by_buyer"`
	ActualSupplierCost float64   `json:"actual_supplier_cost"`
	ErrorLog           string    `gorm:"type:text"                 json:"error_log"`
	CreatedAt          time.Time `gorm:"autoCreateTime"            json:"created_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"          json:"id"`
	Token     string `gorm:"unique;not null"     json:"token"`
	UserID    uint   `gorm:"index;not null"      json:"user_id"`
	ExpiresAt int64  `gorm:"not null"            json:"expires_at"`
	Revoked   bool   `gorm:"default:false"       json:"revoked"`
}
