package handlers

import (
	"context"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type priceOptionRequest struct {
	Label string  `json:"label" binding:"required"`
	Price float64 `json:"price" binding:"required"`
}

type productCreateRequest struct {
	Name             string               `json:"name" binding:"required"`
	Slug             string               `json:"slug"`
	Description      string               `json:"description"`
	Category         []string             `json:"category"`
	ImageURL         string               `json:"imageUrl"`
	PriceOptions     []priceOptionRequest `json:"priceOptions" binding:"required"`
	Flavors          []string             `json:"flavors"`
	IsCustomizable   *bool                `json:"isCustomizable"`
	CustomizationFee float64              `json:"customizationFee"`
	IsAvailable      *bool                `json:"isAvailable"`
	IsFeatured       *bool                `json:"isFeatured"`
}

type productUpdateRequest struct {
	Name             *string              `json:"name"`
	Slug             *string              `json:"slug"`
	Description      *string              `json:"description"`
	Category         []string             `json:"category"`
	ImageURL         *string              `json:"imageUrl"`
	PriceOptions     []priceOptionRequest `json:"priceOptions"`
	Flavors          []string             `json:"flavors"`
	IsCustomizable   *bool                `json:"isCustomizable"`
	CustomizationFee *float64             `json:"customizationFee"`
	IsAvailable      *bool                `json:"isAvailable"`
	IsFeatured       *bool                `json:"isFeatured"`
}

func toPriceOptions(reqs []priceOptionRequest) []models.PriceOption {
	out := make([]models.PriceOption, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, models.PriceOption{
			Label: strings.TrimSpace(r.Label),
			Price: r.Price,
		})
	}
	return out
}

/* =======================
   LIST
======================= */

func GetAllProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := parsePaginationParams(
			c.Query("page"),
			c.Query("limit"),
		)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		filter := bson.M{
			"isDeleted": bson.M{"$ne": true},
		}

		if category := strings.TrimSpace(c.Query("category")); category != "" {
			filter["category"] = bson.M{"$in": []string{category}}
		}

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["$or"] = []bson.M{
				{"name": bson.M{"$regex": search, "$options": "i"}},
				{"slug": bson.M{"$regex": search, "$options": "i"}},
				{"description": bson.M{"$regex": search, "$options": "i"}},
			}
		}

		if isAvailable := strings.TrimSpace(c.Query("isAvailable")); isAvailable != "" {
			filter["isAvailable"] = strings.EqualFold(isAvailable, "true")
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("products").CountDocuments(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		totalPages := int64(0)
		if total > 0 {
			totalPages = int64(math.Ceil(float64(total) / float64(limit)))
		}

		opts := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("products").Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": products,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages,
			},
		})
	}
}

/* =======================
   CREATE
======================= */

func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}

		priceOptions := toPriceOptions(req.PriceOptions)
		if err := validatePriceOptions(priceOptions); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		slug := strings.TrimSpace(req.Slug)
		if slug == "" {
			slug = slugify(name)
		}
		if slug == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slug could not be derived from name"})
			return
		}

		isCustomizable := false
		if req.IsCustomizable != nil {
			isCustomizable = *req.IsCustomizable
		}
		if req.CustomizationFee < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "customizationFee must be zero or greater"})
			return
		}

		isAvailable := true
		if req.IsAvailable != nil {
			isAvailable = *req.IsAvailable
		}
		isFeatured := false
		if req.IsFeatured != nil {
			isFeatured = *req.IsFeatured
		}

		now := time.Now()
		product := models.Product{
			Slug:             slug,
			Name:             name,
			Description:      strings.TrimSpace(req.Description),
			Category:         models.StringList(normalizeCategories(req.Category)),
			ImageURL:         strings.TrimSpace(req.ImageURL),
			PriceOptions:     priceOptions,
			Flavors:          models.StringList(normalizeCategories(req.Flavors)),
			IsCustomizable:   isCustomizable,
			CustomizationFee: req.CustomizationFee,
			IsAvailable:      isAvailable,
			IsFeatured:       isFeatured,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "product slug already exists"})
				return
			}
			log.Println("CreateProduct insert error:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		product.ID = res.InsertedID.(primitive.ObjectID)
		c.JSON(http.StatusCreated, product)
	}
}

/* =======================
   UPDATE
======================= */

func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req productUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
				return
			}
			update["name"] = name
		}

		if req.Slug != nil {
			slug := slugify(*req.Slug)
			if slug == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "slug cannot be empty"})
				return
			}
			update["slug"] = slug
		}

		if req.Description != nil {
			update["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Category != nil {
			update["category"] = models.StringList(normalizeCategories(req.Category))
		}
		if req.ImageURL != nil {
			update["imageUrl"] = strings.TrimSpace(*req.ImageURL)
		}
		if req.PriceOptions != nil {
			priceOptions := toPriceOptions(req.PriceOptions)
			if err := validatePriceOptions(priceOptions); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			update["priceOptions"] = priceOptions
		}
		if req.Flavors != nil {
			update["flavors"] = models.StringList(normalizeCategories(req.Flavors))
		}
		if req.IsCustomizable != nil {
			update["isCustomizable"] = *req.IsCustomizable
		}
		if req.CustomizationFee != nil {
			if *req.CustomizationFee < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "customizationFee must be zero or greater"})
				return
			}
			update["customizationFee"] = *req.CustomizationFee
		}
		if req.IsAvailable != nil {
			update["isAvailable"] = *req.IsAvailable
		}
		if req.IsFeatured != nil {
			update["isFeatured"] = *req.IsFeatured
		}

		if len(update) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}
		update["updatedAt"] = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Product
		err = db.Collection("products").
			FindOneAndUpdate(
				ctx,
				bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}},
				bson.M{"$set": update},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&updated)

		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "product slug already exists"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

/* =======================
   DELETE (soft)
======================= */

func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		result, err := db.Collection("products").UpdateOne(
			ctx,
			bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}},
			bson.M{"$set": bson.M{
				"isDeleted":   true,
				"isAvailable": false,
				"deletedAt":   now,
				"updatedAt":   now,
			}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if result.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}

		c.Status(http.StatusNoContent)
	}
}
