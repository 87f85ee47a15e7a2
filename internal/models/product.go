package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PriceOption is a named priced variant of a product (e.g. size tier).
type PriceOption struct {
	Label string  `bson:"label" json:"label"`
	Price float64 `bson:"price" json:"price"`
}

type Product struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug             string             `bson:"slug" json:"slug"`
	Name             string             `bson:"name" json:"name"`
	Description      string             `bson:"description,omitempty" json:"description,omitempty"`
	Category         StringList         `bson:"category" json:"category"`
	ImageURL         string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	PriceOptions     []PriceOption      `bson:"priceOptions" json:"priceOptions"`
	Flavors          StringList         `bson:"flavors,omitempty" json:"flavors,omitempty"`
	IsCustomizable   bool               `bson:"isCustomizable" json:"isCustomizable"`
	CustomizationFee float64            `bson:"customizationFee,omitempty" json:"customizationFee,omitempty"`
	IsAvailable      bool               `bson:"isAvailable" json:"isAvailable"`
	IsFeatured       bool               `bson:"isFeatured" json:"isFeatured"`
	IsDeleted        bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt        *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}
