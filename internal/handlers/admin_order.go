package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type adminOrderUpdateRequest struct {
	Status           *string `json:"status"`
	PaymentStatus    *string `json:"paymentStatus"`
	PaymentMethod    *string `json:"paymentMethod"`
	PaymentReference *string `json:"paymentReference"`
	AdminNotes       *string `json:"adminNotes"`
}

/*
GET /admin/api/orders
- status / paymentStatus filters, newest first
*/
func ListOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		filter := bson.M{}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			filter["status"] = status
		}
		if paymentStatus := strings.TrimSpace(c.Query("paymentStatus")); paymentStatus != "" {
			filter["paymentStatus"] = paymentStatus
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("orders").Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": orders,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		})
	}
}

/*
PATCH /admin/api/orders/:orderNumber
- forward-only status transitions; cancelled allowed from any non-terminal
  state; confirmedAt/completedAt/cancelledAt stamped only on first entry
*/
func UpdateOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/orders"
		defer handlePanic(c, route)

		var req adminOrderUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		orderNumber := c.Param("orderNumber")

		var order models.Order
		err := db.Collection("orders").FindOne(ctx, bson.M{"orderNumber": orderNumber}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		update := bson.M{}
		now := time.Now()

		if req.Status != nil {
			status := strings.TrimSpace(*req.Status)
			if !canTransitionStatus(order.Status, status) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "invalid status transition",
					"from":  order.Status,
					"to":    status,
				})
				return
			}
			update["status"] = status

			switch status {
			case models.OrderStatusConfirmed:
				if order.ConfirmedAt == nil {
					update["confirmedAt"] = now
				}
			case models.OrderStatusCompleted:
				if order.CompletedAt == nil {
					update["completedAt"] = now
				}
			case models.OrderStatusCancelled:
				if order.CancelledAt == nil {
					update["cancelledAt"] = now
				}
			}
		}

		if req.PaymentStatus != nil {
			paymentStatus := strings.TrimSpace(*req.PaymentStatus)
			if !validPaymentStatus(paymentStatus) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment status"})
				return
			}
			update["paymentStatus"] = paymentStatus
		}

		if req.PaymentMethod != nil {
			update["paymentMethod"] = strings.TrimSpace(*req.PaymentMethod)
		}
		if req.PaymentReference != nil {
			update["paymentReference"] = strings.TrimSpace(*req.PaymentReference)
		}
		if req.AdminNotes != nil {
			update["adminNotes"] = strings.TrimSpace(*req.AdminNotes)
		}

		if len(update) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}
		update["updatedAt"] = now

		var updated models.Order
		err = db.Collection("orders").
			FindOneAndUpdate(
				ctx,
				bson.M{"orderNumber": orderNumber},
				bson.M{"$set": update},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&updated)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ORDER] [INFO] order updated by admin:", orderNumber)
		c.JSON(http.StatusOK, updated)
	}
}

/*
DELETE /admin/api/orders/:orderNumber
*/
func DeleteOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("orders").DeleteOne(ctx, bson.M{
			"orderNumber": c.Param("orderNumber"),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if result.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}
