package handlers

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"

	"backend/internal/models"
)

// Orders must be placed at least this far ahead of the event.
const minEventLead = 48 * time.Hour

// Gateway amounts within this distance of the stored total are considered
// equal, absorbing minor-unit rounding.
const amountTolerance = 0.01

func computeItemTotal(unitPrice float64, quantity int, additionalCost float64) float64 {
	return unitPrice*float64(quantity) + additionalCost
}

// computeOrderTotals derives subtotal and totalAmount from the already-priced
// items. The delivery fee applies only to delivery orders.
func computeOrderTotals(items []models.OrderItem, deliveryMethod string, deliveryFee float64) (subtotal, total float64) {
	for _, item := range items {
		subtotal += item.ItemTotal
	}
	if deliveryMethod != models.DeliveryMethodDelivery {
		deliveryFee = 0
	}
	return subtotal, subtotal + deliveryFee
}

// customizationCost is the product's surcharge for a non-empty customization
// request. The client never supplies the amount.
func customizationCost(product models.Product, customization string) float64 {
	if !product.IsCustomizable || customization == "" {
		return 0
	}
	return product.CustomizationFee
}

func findPriceOption(product models.Product, label string) (models.PriceOption, bool) {
	for _, opt := range product.PriceOptions {
		if strings.EqualFold(opt.Label, label) {
			return opt, true
		}
	}
	return models.PriceOption{}, false
}

// validateEventDate accepts event dates exactly at and beyond the 48-hour
// boundary.
func validateEventDate(eventDate, now time.Time) error {
	if eventDate.Sub(now) < minEventLead {
		return fmt.Errorf("event date must be at least 48 hours from now")
	}
	return nil
}

// generateOrderNumber builds LD-<YYYYMMDD>-<9 random digits>. Uniqueness is
// enforced by the orderNumber index; callers retry on duplicate key.
func generateOrderNumber(now time.Time) string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Fall back to the clock; the unique index still catches collisions.
		binary.BigEndian.PutUint64(buf[:], uint64(now.UnixNano()))
	}
	suffix := binary.BigEndian.Uint64(buf[:]) % 1_000_000_000
	return fmt.Sprintf("LD-%s-%09d", now.Format("20060102"), suffix)
}

// buildPaymentReference ties a payment attempt to its order. The trailing
// millisecond timestamp keeps retried attempts distinct.
func buildPaymentReference(orderNumber string, now time.Time) string {
	return fmt.Sprintf("%s-%d", orderNumber, now.UnixMilli())
}

// orderNumberFromReference strips the trailing timestamp segment from a
// payment reference. Used only when the gateway metadata carries no order
// number.
func orderNumberFromReference(reference string) string {
	idx := strings.LastIndex(reference, "-")
	if idx <= 0 {
		return reference
	}
	return reference[:idx]
}

// koboAmount converts a major-unit total to the gateway's minor units.
func koboAmount(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func amountsMatch(paid, expected float64) bool {
	return math.Abs(paid-expected) <= amountTolerance
}

var orderStatusRank = map[string]int{
	models.OrderStatusPending:        0,
	models.OrderStatusConfirmed:      1,
	models.OrderStatusInProgress:     2,
	models.OrderStatusReady:          3,
	models.OrderStatusOutForDelivery: 4,
	models.OrderStatusCompleted:      5,
}

// canTransitionStatus enforces the forward-only order lifecycle. Cancelled is
// reachable from any non-terminal status and is itself terminal.
func canTransitionStatus(from, to string) bool {
	if from == to {
		return false
	}
	if from == models.OrderStatusCompleted || from == models.OrderStatusCancelled {
		return false
	}
	if to == models.OrderStatusCancelled {
		return true
	}
	fromRank, ok := orderStatusRank[from]
	if !ok {
		return false
	}
	toRank, ok := orderStatusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

func validPaymentStatus(status string) bool {
	switch status {
	case models.PaymentStatusPending,
		models.PaymentStatusPartial,
		models.PaymentStatusPaid,
		models.PaymentStatusRefunded,
		models.PaymentStatusFailed:
		return true
	}
	return false
}
