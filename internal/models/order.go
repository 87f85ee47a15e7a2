package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses, in lifecycle order. Cancelled is reachable from any
// non-terminal status.
const (
	OrderStatusPending        = "pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusInProgress     = "in-progress"
	OrderStatusReady          = "ready"
	OrderStatusOutForDelivery = "out-for-delivery"
	OrderStatusCompleted      = "completed"
	OrderStatusCancelled      = "cancelled"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPartial  = "partial"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusFailed   = "failed"
)

const (
	DeliveryMethodPickup   = "pickup"
	DeliveryMethodDelivery = "delivery"
)

// OrderItem is a single line of an order. ItemTotal is always recomputed
// server-side from the product's stored price option.
type OrderItem struct {
	ProductID      primitive.ObjectID `bson:"productId" json:"productId"`
	Name           string             `bson:"name" json:"name"`
	PriceOption    PriceOption        `bson:"priceOption" json:"priceOption"`
	Quantity       int                `bson:"quantity" json:"quantity"`
	Flavors        StringList         `bson:"flavors,omitempty" json:"flavors,omitempty"`
	Customization  string             `bson:"customization,omitempty" json:"customization,omitempty"`
	AdditionalCost float64            `bson:"additionalCost,omitempty" json:"additionalCost,omitempty"`
	ItemTotal      float64            `bson:"itemTotal" json:"itemTotal"`
}

// DeliveryAddress is required when the delivery method is "delivery".
type DeliveryAddress struct {
	Street string `bson:"street" json:"street"`
	Area   string `bson:"area" json:"area"`
	City   string `bson:"city,omitempty" json:"city,omitempty"`
	Note   string `bson:"note,omitempty" json:"note,omitempty"`
}

// Order defines the persisted order document.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber     string             `bson:"orderNumber" json:"orderNumber"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	Subtotal        float64            `bson:"subtotal" json:"subtotal"`
	DeliveryFee     float64            `bson:"deliveryFee" json:"deliveryFee"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	DeliveryMethod  string             `bson:"deliveryMethod" json:"deliveryMethod"`
	DeliveryAddress *DeliveryAddress   `bson:"deliveryAddress,omitempty" json:"deliveryAddress,omitempty"`
	EventDate       time.Time          `bson:"eventDate" json:"eventDate"`
	Phone           string             `bson:"phone" json:"phone"`

	Status           string `bson:"status" json:"status"`
	PaymentStatus    string `bson:"paymentStatus" json:"paymentStatus"`
	PaymentMethod    string `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
	PaymentReference string `bson:"paymentReference,omitempty" json:"paymentReference,omitempty"`
	AdminNotes       string `bson:"adminNotes,omitempty" json:"adminNotes,omitempty"`

	// Stamped at most once, the first time the matching status is reached.
	ConfirmedAt *time.Time `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
