package handlers

import (
	"context"
	"errors"
	"log"
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

/* =========================
   REQUEST DTOs
========================= */

type createOrderItemRequest struct {
	ProductID     string   `json:"productId" binding:"required"`
	PriceOption   string   `json:"priceOption" binding:"required"`
	Quantity      int      `json:"quantity" binding:"required"`
	Flavors       []string `json:"flavors"`
	Customization string   `json:"customization"`
}

type deliveryAddressRequest struct {
	Street string `json:"street"`
	Area   string `json:"area"`
	City   string `json:"city"`
	Note   string `json:"note"`
}

type createOrderRequest struct {
	Items           []createOrderItemRequest `json:"items" binding:"required"`
	DeliveryMethod  string                   `json:"deliveryMethod" binding:"required"`
	DeliveryAddress *deliveryAddressRequest  `json:"deliveryAddress"`
	EventDate       time.Time                `json:"eventDate" binding:"required"`
	Phone           string                   `json:"phone" binding:"required"`
}

/* =========================
   CREATE ORDER
========================= */

// Attempts to insert before giving up on order-number collisions.
const orderNumberAttempts = 3

func CreateOrder(db *mongo.Database, deliveryFee float64) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		order, err := buildOrderFromRequest(req, deliveryFee)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		order.UserID = userID

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := priceOrderItems(ctx, db, &order); err != nil {
			var notFoundErr productNotFoundError
			if errors.As(err, &notFoundErr) {
				c.JSON(http.StatusNotFound, gin.H{
					"error":     "product not found",
					"productId": notFoundErr.ProductID.Hex(),
				})
				return
			}
			var unavailableErr productUnavailableError
			if errors.As(err, &unavailableErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "product is not available",
					"productId": unavailableErr.ProductID.Hex(),
				})
				return
			}
			var optionErr priceOptionError
			if errors.As(err, &optionErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "unknown price option",
					"productId": optionErr.ProductID.Hex(),
					"option":    optionErr.Label,
				})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		order.Subtotal, order.TotalAmount = computeOrderTotals(order.Items, order.DeliveryMethod, deliveryFee)
		if order.DeliveryMethod == models.DeliveryMethodDelivery {
			order.DeliveryFee = deliveryFee
		}

		inserted := false
		for attempt := 0; attempt < orderNumberAttempts && !inserted; attempt++ {
			order.OrderNumber = generateOrderNumber(time.Now())
			_, err = db.Collection("orders").InsertOne(ctx, order)
			if err == nil {
				inserted = true
				break
			}
			if !mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			log.Printf("[%s] order number collision, retrying: %s", route, order.OrderNumber)
		}
		if !inserted {
			respondWithError(c, http.StatusInternalServerError, route, "could not allocate order number")
			return
		}

		log.Println("[ORDER] [INFO] order created:", order.OrderNumber, "user:", userID.Hex())
		c.JSON(http.StatusCreated, gin.H{
			"orderNumber": order.OrderNumber,
			"subtotal":    order.Subtotal,
			"deliveryFee": order.DeliveryFee,
			"totalAmount": order.TotalAmount,
			"status":      order.Status,
			"message":     "order created",
		})
	}
}

// buildOrderFromRequest validates the request shape. Prices are not trusted
// from the client; priceOrderItems fills them in from the product store.
func buildOrderFromRequest(req createOrderRequest, deliveryFee float64) (models.Order, error) {
	if len(req.Items) == 0 {
		return models.Order{}, errors.New("at least one item is required")
	}

	method := strings.ToLower(strings.TrimSpace(req.DeliveryMethod))
	if method != models.DeliveryMethodPickup && method != models.DeliveryMethodDelivery {
		return models.Order{}, errors.New("deliveryMethod must be pickup or delivery")
	}

	var address *models.DeliveryAddress
	if method == models.DeliveryMethodDelivery {
		if req.DeliveryAddress == nil ||
			strings.TrimSpace(req.DeliveryAddress.Street) == "" ||
			strings.TrimSpace(req.DeliveryAddress.Area) == "" {
			return models.Order{}, errors.New("delivery orders require an address with street and area")
		}
		address = &models.DeliveryAddress{
			Street: strings.TrimSpace(req.DeliveryAddress.Street),
			Area:   strings.TrimSpace(req.DeliveryAddress.Area),
			City:   strings.TrimSpace(req.DeliveryAddress.City),
			Note:   strings.TrimSpace(req.DeliveryAddress.Note),
		}
	}

	if strings.TrimSpace(req.Phone) == "" {
		return models.Order{}, errors.New("phone is required")
	}

	now := time.Now()
	if err := validateEventDate(req.EventDate, now); err != nil {
		return models.Order{}, err
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return models.Order{}, errors.New("invalid productId")
		}
		if item.Quantity <= 0 {
			return models.Order{}, errors.New("quantity must be greater than zero")
		}
		if strings.TrimSpace(item.PriceOption) == "" {
			return models.Order{}, errors.New("priceOption is required")
		}

		items = append(items, models.OrderItem{
			ProductID:     productID,
			PriceOption:   models.PriceOption{Label: strings.TrimSpace(item.PriceOption)},
			Quantity:      item.Quantity,
			Flavors:       models.StringList(item.Flavors),
			Customization: strings.TrimSpace(item.Customization),
		})
	}

	return models.Order{
		Items:           items,
		DeliveryMethod:  method,
		DeliveryAddress: address,
		EventDate:       req.EventDate,
		Phone:           strings.TrimSpace(req.Phone),
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// priceOrderItems resolves each item against the product store and computes
// line totals from the stored prices.
func priceOrderItems(ctx context.Context, db *mongo.Database, order *models.Order) error {
	for i := range order.Items {
		item := &order.Items[i]

		var product models.Product
		err := db.Collection("products").FindOne(ctx, bson.M{
			"_id":       item.ProductID,
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			return productNotFoundError{ProductID: item.ProductID}
		}
		if err != nil {
			return err
		}

		if !product.IsAvailable {
			return productUnavailableError{ProductID: item.ProductID}
		}

		option, ok := findPriceOption(product, item.PriceOption.Label)
		if !ok {
			return priceOptionError{ProductID: item.ProductID, Label: item.PriceOption.Label}
		}

		if !product.IsCustomizable {
			item.Customization = ""
		}
		item.AdditionalCost = customizationCost(product, item.Customization)
		item.Name = product.Name
		item.PriceOption = option
		item.ItemTotal = computeItemTotal(option.Price, item.Quantity, item.AdditionalCost)
	}
	return nil
}

/* =========================
   READ / CANCEL
========================= */

func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := bson.M{"userId": userID}
		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

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

// GetOrder returns a single order by number. Only the owner or an admin may
// read it.
func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err := db.Collection("orders").FindOne(ctx, bson.M{
			"orderNumber": c.Param("orderNumber"),
		}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if order.UserID != userID && !isAdminRequest(c) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

// CancelOrder lets a customer cancel their own order, but only while it is
// still pending.
func CancelOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err := db.Collection("orders").FindOne(ctx, bson.M{
			"orderNumber": c.Param("orderNumber"),
		}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if order.UserID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		now := time.Now()
		res, err := db.Collection("orders").UpdateOne(ctx,
			bson.M{
				"orderNumber": order.OrderNumber,
				"status":      models.OrderStatusPending,
			},
			bson.M{"$set": bson.M{
				"status":      models.OrderStatusCancelled,
				"cancelledAt": now,
				"updatedAt":   now,
			}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "only pending orders can be cancelled"})
			return
		}

		log.Println("[ORDER] [INFO] order cancelled by customer:", order.OrderNumber)
		c.JSON(http.StatusOK, gin.H{"message": "order cancelled"})
	}
}

/* =========================
   DOMAIN ERRORS
========================= */

type productNotFoundError struct {
	ProductID primitive.ObjectID
}

func (e productNotFoundError) Error() string {
	return "product not found"
}

type productUnavailableError struct {
	ProductID primitive.ObjectID
}

func (e productUnavailableError) Error() string {
	return "product is not available"
}

type priceOptionError struct {
	ProductID primitive.ObjectID
	Label     string
}

func (e priceOptionError) Error() string {
	return "unknown price option"
}
