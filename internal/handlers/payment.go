package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
	"backend/internal/paystack"
)

// PaymentGateway is the slice of the Paystack client the payment handlers
// need; tests substitute a stub.
type PaymentGateway interface {
	InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeData, error)
	VerifyTransaction(ctx context.Context, reference string) (*paystack.Transaction, error)
}

// orderUpdater is the slice of the orders collection reconciliation needs.
// *mongo.Collection satisfies it; tests substitute an in-memory fake.
type orderUpdater interface {
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type initializePaymentRequest struct {
	OrderNumber string `json:"orderNumber" binding:"required"`
}

/* =========================
   INITIALIZE
========================= */

// InitializePayment asks the gateway for a hosted checkout session for an
// existing order and stores the issued reference on it. Order status is not
// touched here; only verification changes it.
func InitializePayment(db *mongo.Database, gateway PaymentGateway, currency, callbackURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payments/initialize"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req initializePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		var order models.Order
		err := db.Collection("orders").FindOne(ctx, bson.M{"orderNumber": req.OrderNumber}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if order.UserID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		if order.PaymentStatus == models.PaymentStatusPaid {
			c.JSON(http.StatusConflict, gin.H{"error": "order is already paid"})
			return
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		reference := buildPaymentReference(order.OrderNumber, time.Now())
		data, err := gateway.InitializeTransaction(ctx, paystack.InitializeRequest{
			Email:       user.Email,
			Amount:      koboAmount(order.TotalAmount),
			Currency:    currency,
			Reference:   reference,
			CallbackURL: callbackURL,
			Metadata: paystack.Metadata{
				OrderNumber: order.OrderNumber,
				UserID:      userID.Hex(),
			},
		})
		if err != nil {
			log.Println("[PAYMENT] [ERROR] initialize failed:", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable"})
			return
		}

		// A re-initialized payment overwrites any prior reference; the
		// latest attempt is the one verification correlates against.
		_, err = db.Collection("orders").UpdateOne(ctx,
			bson.M{"orderNumber": order.OrderNumber},
			bson.M{"$set": bson.M{
				"paymentReference": data.Reference,
				"updatedAt":        time.Now(),
			}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[PAYMENT] [INFO] payment initialized:", data.Reference)
		c.JSON(http.StatusOK, gin.H{
			"authorizationUrl": data.AuthorizationURL,
			"accessCode":       data.AccessCode,
			"reference":        data.Reference,
		})
	}
}

/* =========================
   VERIFY (user callback)
========================= */

var errAmountMismatch = errors.New("paid amount does not match order total")

// VerifyPayment is the user-redirect entry point: the authenticated caller
// returns from the hosted checkout with a reference, and the gateway is
// re-queried before any state changes.
func VerifyPayment(db *mongo.Database, gateway PaymentGateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /payments/verify"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		reference := c.Param("reference")

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		tx, err := gateway.VerifyTransaction(ctx, reference)
		if err != nil {
			log.Println("[PAYMENT] [ERROR] verify failed:", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable"})
			return
		}

		orderNumber := tx.Metadata.OrderNumber
		if orderNumber == "" {
			orderNumber = orderNumberFromReference(reference)
		}

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"orderNumber": orderNumber}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if order.UserID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		outcome, err := reconcilePayment(ctx, db.Collection("orders"), order, tx, reference)
		if err == errAmountMismatch {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orderNumber":   orderNumber,
			"paymentStatus": outcome.PaymentStatus,
			"alreadyPaid":   outcome.AlreadyPaid,
		})
	}
}

/* =========================
   WEBHOOK
========================= */

type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string            `json:"reference"`
		Amount    int64             `json:"amount"`
		Status    string            `json:"status"`
		Metadata  paystack.Metadata `json:"metadata"`
	} `json:"data"`
}

// PaystackWebhook is the asynchronous entry point. The HMAC signature over
// the raw body is the only integrity check; after it passes, processing
// errors are logged and acknowledged so the gateway does not retry forever.
func PaystackWebhook(db *mongo.Database, webhookKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payments/webhook"
		defer handlePanic(c, route)

		if webhookKey == "" {
			log.Println("[WEBHOOK] [ERROR] webhook key not configured")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "webhook not configured"})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		signature := c.GetHeader("x-paystack-signature")
		if !paystack.ValidSignature(body, signature, webhookKey) {
			log.Println("[WEBHOOK] [ERROR] signature mismatch")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}

		var event webhookEvent
		if err := json.Unmarshal(body, &event); err != nil {
			log.Println("[WEBHOOK] [ERROR] malformed event:", err)
			c.Status(http.StatusOK)
			return
		}

		switch event.Event {
		case "charge.success", "charge.failed":
		default:
			// Acknowledged but ignored.
			c.Status(http.StatusOK)
			return
		}

		orderNumber := event.Data.Metadata.OrderNumber
		if orderNumber == "" {
			orderNumber = orderNumberFromReference(event.Data.Reference)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"orderNumber": orderNumber}).Decode(&order)
		if err != nil {
			log.Println("[WEBHOOK] [ERROR] order lookup failed:", orderNumber, err)
			c.Status(http.StatusOK)
			return
		}

		tx := &paystack.Transaction{
			Status:    "failed",
			Reference: event.Data.Reference,
			Amount:    event.Data.Amount,
			Metadata:  event.Data.Metadata,
		}
		if event.Event == "charge.success" {
			tx.Status = "success"
		}

		if _, err := reconcilePayment(ctx, db.Collection("orders"), order, tx, event.Data.Reference); err != nil {
			// Swallowed: signature was valid, so the gateway gets a 200
			// and the failure is left to the logs.
			log.Println("[WEBHOOK] [ERROR] reconcile failed:", orderNumber, err)
		}

		c.Status(http.StatusOK)
	}
}

/* =========================
   RECONCILIATION
========================= */

type reconcileOutcome struct {
	PaymentStatus string
	AlreadyPaid   bool
}

// reconcilePayment applies a gateway-reported outcome to an order at most
// once. Idempotency is an atomic conditional update: the filter excludes
// already-paid orders, and zero matched documents is the no-op signal. The
// callback and webhook may race on the same reference; whichever loses the
// race matches nothing.
func reconcilePayment(ctx context.Context, orders orderUpdater, order models.Order, tx *paystack.Transaction, reference string) (reconcileOutcome, error) {
	now := time.Now()

	if tx.Status != "success" {
		// A late failure must never downgrade a successful payment.
		_, err := orders.UpdateOne(ctx,
			bson.M{
				"orderNumber":   order.OrderNumber,
				"paymentStatus": bson.M{"$ne": models.PaymentStatusPaid},
			},
			bson.M{"$set": bson.M{
				"paymentStatus":    models.PaymentStatusFailed,
				"paymentReference": reference,
				"updatedAt":        now,
			}},
		)
		if err != nil {
			return reconcileOutcome{}, err
		}
		status := models.PaymentStatusFailed
		if order.PaymentStatus == models.PaymentStatusPaid {
			status = models.PaymentStatusPaid
		}
		log.Println("[PAYMENT] [INFO] payment failed:", order.OrderNumber)
		return reconcileOutcome{PaymentStatus: status}, nil
	}

	if order.PaymentStatus == models.PaymentStatusPaid {
		return reconcileOutcome{PaymentStatus: models.PaymentStatusPaid, AlreadyPaid: true}, nil
	}

	paidAmount := float64(tx.Amount) / 100
	if !amountsMatch(paidAmount, order.TotalAmount) {
		log.Printf("[PAYMENT] [ERROR] amount mismatch for %s: paid %.2f, expected %.2f",
			order.OrderNumber, paidAmount, order.TotalAmount)
		return reconcileOutcome{}, errAmountMismatch
	}

	res, err := orders.UpdateOne(ctx,
		bson.M{
			"orderNumber":   order.OrderNumber,
			"paymentStatus": bson.M{"$ne": models.PaymentStatusPaid},
		},
		bson.M{"$set": bson.M{
			"paymentStatus":    models.PaymentStatusPaid,
			"paymentMethod":    "card",
			"paymentReference": reference,
			"updatedAt":        now,
		}},
	)
	if err != nil {
		return reconcileOutcome{}, err
	}
	if res.MatchedCount == 0 {
		// Lost the race to a concurrent verification.
		return reconcileOutcome{PaymentStatus: models.PaymentStatusPaid, AlreadyPaid: true}, nil
	}

	// Payment success confirms the order, but only from pending: a cancelled
	// order stays cancelled and an admin-advanced order is not pulled back.
	// The unset-timestamp filter stamps confirmedAt exactly once.
	_, err = orders.UpdateOne(ctx,
		bson.M{
			"orderNumber": order.OrderNumber,
			"status":      models.OrderStatusPending,
			"confirmedAt": bson.M{"$exists": false},
		},
		bson.M{"$set": bson.M{
			"status":      models.OrderStatusConfirmed,
			"confirmedAt": now,
			"updatedAt":   now,
		}},
	)
	if err != nil {
		return reconcileOutcome{}, err
	}

	log.Println("[PAYMENT] [INFO] payment verified:", order.OrderNumber)
	return reconcileOutcome{PaymentStatus: models.PaymentStatusPaid}, nil
}
