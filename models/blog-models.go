package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Blog struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	BlogTitle  LocalizedText      `json:"blogTitle" bson:"blogTitle"`
	BlogInfo   LocalizedText      `json:"blogInfo" bson:"blogInfo"`
	BlogImage  string             `json:"blogImage,omitempty" bson:"blogImage,omitempty"`
	BlogImages []ImageRef         `json:"blogImages" bson:"blogImages"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type BlogView struct {
	ID         string           `json:"_id"`
	BlogTitle  string           `json:"blogTitle"`
	BlogInfo   string           `json:"blogInfo"`
	BlogImage  string           `json:"blogImage,omitempty"`
	BlogImages []LocalizedImage `json:"blogImages"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

func (b *Blog) Localize(lang string) BlogView {
	return BlogView{
		ID:         b.ID.Hex(),
		BlogTitle:  b.BlogTitle.Pick(lang),
		BlogInfo:   b.BlogInfo.Pick(lang),
		BlogImage:  b.BlogImage,
		BlogImages: localizeImages(b.BlogImages, lang),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}
