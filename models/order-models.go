package models

import (
	"gorm.io/gorm"
)

type PurchasedProduct struct {
	ProductName string `json:"productname" validate:"required"`
	Type        string `json:"type" validate:"required"`
}

type Order struct {
	gorm.Model
	OrderCode         string             `json:"orderCode" gorm:"not null;index"`
	Username          string             `json:"username" gorm:"not null"`
	Phone             string             `json:"phone" gorm:"not null"`
	Address           string             `json:"address" gorm:"not null"`
	ShippingMethod    string             `json:"shippingMethod" gorm:"not null"`
	Quantity          float64            `json:"quantity" gorm:"not null"`
	Unit              string             `json:"unit" gorm:"not null"`
	PurchasedProducts []PurchasedProduct `json:"purchasedProducts" gorm:"serializer:json;not null"`
	IsCancelled       bool               `json:"isCancelled" gorm:"not null;default:false"`
}
