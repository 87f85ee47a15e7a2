package handlers

import (
	"context"
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

type postCreateRequest struct {
	Title       string   `json:"title" binding:"required"`
	Slug        string   `json:"slug"`
	Excerpt     string   `json:"excerpt"`
	Content     string   `json:"content" binding:"required"`
	CoverImage  string   `json:"coverImage"`
	Tags        []string `json:"tags"`
	IsPublished *bool    `json:"isPublished"`
}

type postUpdateRequest struct {
	Title       *string  `json:"title"`
	Slug        *string  `json:"slug"`
	Excerpt     *string  `json:"excerpt"`
	Content     *string  `json:"content"`
	CoverImage  *string  `json:"coverImage"`
	Tags        []string `json:"tags"`
	IsPublished *bool    `json:"isPublished"`
}

func GetAllPosts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		filter := bson.M{}
		if v := strings.TrimSpace(c.Query("isPublished")); v != "" {
			filter["isPublished"] = v == "true"
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("posts").CountDocuments(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("posts").Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		posts := make([]models.Post, 0)
		if err := cursor.All(ctx, &posts); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": posts,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		})
	}
}

func CreatePost(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req postCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		title := strings.TrimSpace(req.Title)
		slug := strings.TrimSpace(req.Slug)
		if slug == "" {
			slug = slugify(title)
		}
		if slug == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slug could not be derived from title"})
			return
		}

		isPublished := false
		if req.IsPublished != nil {
			isPublished = *req.IsPublished
		}

		now := time.Now()
		post := models.Post{
			Slug:        slug,
			Title:       title,
			Excerpt:     strings.TrimSpace(req.Excerpt),
			Content:     req.Content,
			CoverImage:  strings.TrimSpace(req.CoverImage),
			Tags:        models.StringList(normalizeCategories(req.Tags)),
			IsPublished: isPublished,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if isPublished {
			post.PublishedAt = &now
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("posts").InsertOne(ctx, post)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "post slug already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		post.ID = res.InsertedID.(primitive.ObjectID)
		c.JSON(http.StatusCreated, post)
	}
}

func UpdatePost(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req postUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{}

		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "title cannot be empty"})
				return
			}
			update["title"] = title
		}
		if req.Slug != nil {
			slug := slugify(*req.Slug)
			if slug == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "slug cannot be empty"})
				return
			}
			update["slug"] = slug
		}
		if req.Excerpt != nil {
			update["excerpt"] = strings.TrimSpace(*req.Excerpt)
		}
		if req.Content != nil {
			update["content"] = *req.Content
		}
		if req.CoverImage != nil {
			update["coverImage"] = strings.TrimSpace(*req.CoverImage)
		}
		if req.Tags != nil {
			update["tags"] = models.StringList(normalizeCategories(req.Tags))
		}
		if req.IsPublished != nil {
			update["isPublished"] = *req.IsPublished
		}

		if len(update) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}
		update["updatedAt"] = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Post
		err = db.Collection("posts").
			FindOneAndUpdate(
				ctx,
				bson.M{"_id": id},
				bson.M{"$set": update},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&updated)

		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "post slug already exists"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		// publishedAt is stamped the first time a post goes live.
		if updated.IsPublished && updated.PublishedAt == nil {
			now := time.Now()
			_, _ = db.Collection("posts").UpdateByID(ctx, id, bson.M{
				"$set": bson.M{"publishedAt": now},
			})
			updated.PublishedAt = &now
		}

		c.JSON(http.StatusOK, updated)
	}
}

func DeletePost(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("posts").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if result.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}

		c.Status(http.StatusNoContent)
	}
}
