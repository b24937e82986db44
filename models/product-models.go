package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID                   primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	ProductName          LocalizedText      `json:"productname" bson:"productname"`
	ProductDescription   LocalizedText      `json:"productDescription" bson:"productDescription"`
	Type                 LocalizedText      `json:"type" bson:"type"`
	ProductAmount        float64            `json:"productamount" bson:"productamount"`
	ProductPrice         float64            `json:"productPrice" bson:"productPrice"`
	DiscountPrice        float64            `json:"discountPrice,omitempty" bson:"discountPrice,omitempty"`
	Stock                int                `json:"stock" bson:"stock"`
	ProductImage         string             `json:"productImage" bson:"productImage"`
	ProductDetailsImages []ImageRef         `json:"productDetailsImages" bson:"productDetailsImages"`
	CreatedAt            time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ProductView is a product rendered in one language.
type ProductView struct {
	ID                   string           `json:"_id"`
	ProductName          string           `json:"productname"`
	ProductDescription   string           `json:"productDescription"`
	Type                 string           `json:"type"`
	ProductAmount        float64          `json:"productamount"`
	ProductPrice         float64          `json:"productPrice"`
	DiscountPrice        float64          `json:"discountPrice,omitempty"`
	Stock                int              `json:"stock"`
	ProductImage         string           `json:"productImage"`
	ProductDetailsImages []LocalizedImage `json:"productDetailsImages"`
	CreatedAt            time.Time        `json:"createdAt"`
	UpdatedAt            time.Time        `json:"updatedAt"`
}

func (p *Product) Localize(lang string) ProductView {
	return ProductView{
		ID:                   p.ID.Hex(),
		ProductName:          p.ProductName.Pick(lang),
		ProductDescription:   p.ProductDescription.Pick(lang),
		Type:                 p.Type.Pick(lang),
		ProductAmount:        p.ProductAmount,
		ProductPrice:         p.ProductPrice,
		DiscountPrice:        p.DiscountPrice,
		Stock:                p.Stock,
		ProductImage:         p.ProductImage,
		ProductDetailsImages: localizeImages(p.ProductDetailsImages, lang),
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}
