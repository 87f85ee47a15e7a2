package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
	"backend/internal/paystack"
)

// fakeOrderStore holds a single order document and evaluates the conditional
// filters reconcilePayment issues against it.
type fakeOrderStore struct {
	orderNumber      string
	status           string
	paymentStatus    string
	paymentMethod    string
	paymentReference string
	confirmedAt      *time.Time

	confirmedAtWrites int
	applied           int
}

func (f *fakeOrderStore) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	if !f.matches(filter.(bson.M)) {
		return &mongo.UpdateResult{}, nil
	}

	f.applied++
	for key, value := range update.(bson.M)["$set"].(bson.M) {
		switch key {
		case "status":
			f.status = value.(string)
		case "paymentStatus":
			f.paymentStatus = value.(string)
		case "paymentMethod":
			f.paymentMethod = value.(string)
		case "paymentReference":
			f.paymentReference = value.(string)
		case "confirmedAt":
			t := value.(time.Time)
			f.confirmedAt = &t
			f.confirmedAtWrites++
		}
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (f *fakeOrderStore) matches(filter bson.M) bool {
	for key, value := range filter {
		switch key {
		case "orderNumber":
			if value != f.orderNumber {
				return false
			}
		case "status":
			if value != f.status {
				return false
			}
		case "paymentStatus":
			cond, ok := value.(bson.M)
			if !ok {
				if value != f.paymentStatus {
					return false
				}
				continue
			}
			if ne, ok := cond["$ne"]; ok && f.paymentStatus == ne {
				return false
			}
		case "confirmedAt":
			if exists, ok := value.(bson.M)["$exists"].(bool); ok {
				if exists != (f.confirmedAt != nil) {
					return false
				}
			}
		}
	}
	return true
}

func (f *fakeOrderStore) snapshot() models.Order {
	return models.Order{
		OrderNumber:   f.orderNumber,
		Status:        f.status,
		PaymentStatus: f.paymentStatus,
		TotalAmount:   25250,
		ConfirmedAt:   f.confirmedAt,
	}
}

func pendingStore() *fakeOrderStore {
	return &fakeOrderStore{
		orderNumber:   "LD-20250601-123456789",
		status:        models.OrderStatusPending,
		paymentStatus: models.PaymentStatusPending,
	}
}

func successTx(store *fakeOrderStore) *paystack.Transaction {
	return &paystack.Transaction{
		Status:    "success",
		Reference: store.orderNumber + "-1700000000000",
		Amount:    2525000,
	}
}

func TestReconcileSuccessConfirmsPendingOrder(t *testing.T) {
	store := pendingStore()
	tx := successTx(store)

	outcome, err := reconcilePayment(context.Background(), store, store.snapshot(), tx, tx.Reference)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPaid, outcome.PaymentStatus)
	assert.False(t, outcome.AlreadyPaid)
	assert.Equal(t, models.PaymentStatusPaid, store.paymentStatus)
	assert.Equal(t, models.OrderStatusConfirmed, store.status)
	assert.Equal(t, "card", store.paymentMethod)
	assert.Equal(t, tx.Reference, store.paymentReference)
	require.NotNil(t, store.confirmedAt)
	assert.Equal(t, 1, store.confirmedAtWrites)
}

func TestReconcileSecondDeliveryIsNoOp(t *testing.T) {
	store := pendingStore()
	tx := successTx(store)

	// The callback and webhook each reconcile the same reference; the second
	// caller decoded the order before the first finished, so it still sees
	// a pending payment.
	stale := store.snapshot()

	_, err := reconcilePayment(context.Background(), store, store.snapshot(), tx, tx.Reference)
	require.NoError(t, err)

	outcome, err := reconcilePayment(context.Background(), store, stale, tx, tx.Reference)
	require.NoError(t, err)

	assert.True(t, outcome.AlreadyPaid)
	assert.Equal(t, models.PaymentStatusPaid, outcome.PaymentStatus)
	assert.Equal(t, 1, store.confirmedAtWrites)
}

func TestReconcileAmountMismatchLeavesOrderUntouched(t *testing.T) {
	store := pendingStore()
	tx := successTx(store)
	tx.Amount = 2525000 - 500

	_, err := reconcilePayment(context.Background(), store, store.snapshot(), tx, tx.Reference)
	assert.ErrorIs(t, err, errAmountMismatch)

	assert.Equal(t, models.PaymentStatusPending, store.paymentStatus)
	assert.Equal(t, models.OrderStatusPending, store.status)
	assert.Equal(t, 0, store.applied)
}

func TestReconcileLateFailureNeverDowngradesPaid(t *testing.T) {
	store := pendingStore()
	tx := successTx(store)

	_, err := reconcilePayment(context.Background(), store, store.snapshot(), tx, tx.Reference)
	require.NoError(t, err)

	failed := &paystack.Transaction{
		Status:    "failed",
		Reference: tx.Reference,
		Amount:    tx.Amount,
	}
	outcome, err := reconcilePayment(context.Background(), store, store.snapshot(), failed, failed.Reference)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPaid, outcome.PaymentStatus)
	assert.Equal(t, models.PaymentStatusPaid, store.paymentStatus)
	assert.Equal(t, models.OrderStatusConfirmed, store.status)
}

func TestReconcileDoesNotConfirmCancelledOrder(t *testing.T) {
	store := pendingStore()
	tx := successTx(store)

	// Customer cancelled before the gateway reported; cancellation stamps
	// cancelledAt only, so confirmedAt is still unset.
	store.status = models.OrderStatusCancelled

	_, err := reconcilePayment(context.Background(), store, store.snapshot(), tx, tx.Reference)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPaid, store.paymentStatus)
	assert.Equal(t, models.OrderStatusCancelled, store.status)
	assert.Nil(t, store.confirmedAt)
}

func TestReconcileDoesNotRegressAdvancedOrder(t *testing.T) {
	store := pendingStore()
	tx := successTx(store)

	// An admin already moved the order forward without a confirmedAt stamp.
	store.status = models.OrderStatusInProgress

	_, err := reconcilePayment(context.Background(), store, store.snapshot(), tx, tx.Reference)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPaid, store.paymentStatus)
	assert.Equal(t, models.OrderStatusInProgress, store.status)
	assert.Nil(t, store.confirmedAt)
}
