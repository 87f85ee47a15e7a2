package handlers

import (
	"regexp"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func TestComputeOrderTotalsDeliveryAddsFee(t *testing.T) {
	items := []models.OrderItem{
		{
			ProductID:   primitive.NewObjectID(),
			PriceOption: models.PriceOption{Label: "Medium", Price: 100},
			Quantity:    2,
			ItemTotal:   computeItemTotal(100, 2, 0),
		},
	}

	subtotal, total := computeOrderTotals(items, models.DeliveryMethodDelivery, 50)
	if subtotal != 200 {
		t.Fatalf("expected subtotal 200, got %v", subtotal)
	}
	if total != 250 {
		t.Fatalf("expected total 250, got %v", total)
	}
}

func TestComputeOrderTotalsPickupSkipsFee(t *testing.T) {
	items := []models.OrderItem{
		{ItemTotal: 120},
		{ItemTotal: 80},
	}

	subtotal, total := computeOrderTotals(items, models.DeliveryMethodPickup, 50)
	if subtotal != 200 || total != 200 {
		t.Fatalf("expected pickup totals 200/200, got %v/%v", subtotal, total)
	}
}

func TestComputeItemTotalIncludesCustomizationCost(t *testing.T) {
	if got := computeItemTotal(75, 3, 20); got != 245 {
		t.Fatalf("expected 245, got %v", got)
	}
}

func TestValidateEventDateBoundary(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := validateEventDate(now.Add(48*time.Hour), now); err != nil {
		t.Fatalf("expected exactly 48h to be accepted, got %v", err)
	}
	if err := validateEventDate(now.Add(72*time.Hour), now); err != nil {
		t.Fatalf("expected 72h to be accepted, got %v", err)
	}
	if err := validateEventDate(now.Add(48*time.Hour-time.Minute), now); err == nil {
		t.Fatal("expected just-under-48h to be rejected")
	}
}

func TestGenerateOrderNumberFormat(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^LD-20250601-\d{9}$`)

	for i := 0; i < 10; i++ {
		number := generateOrderNumber(now)
		if !pattern.MatchString(number) {
			t.Fatalf("unexpected order number format: %s", number)
		}
	}
}

func TestPaymentReferenceRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	orderNumber := "LD-20250601-123456789"

	reference := buildPaymentReference(orderNumber, now)
	if got := orderNumberFromReference(reference); got != orderNumber {
		t.Fatalf("expected %s, got %s", orderNumber, got)
	}
}

func TestOrderNumberFromReferenceWithoutSuffix(t *testing.T) {
	if got := orderNumberFromReference("plainreference"); got != "plainreference" {
		t.Fatalf("expected reference returned unchanged, got %s", got)
	}
}

func TestAmountsMatchTolerance(t *testing.T) {
	if !amountsMatch(250, 250) {
		t.Fatal("expected exact amounts to match")
	}
	if !amountsMatch(250.01, 250) {
		t.Fatal("expected 0.01 difference to be within tolerance")
	}
	if amountsMatch(250.02, 250) {
		t.Fatal("expected 0.02 difference to be rejected")
	}
}

func TestKoboAmount(t *testing.T) {
	if got := koboAmount(250); got != 25000 {
		t.Fatalf("expected 25000, got %d", got)
	}
	if got := koboAmount(99.99); got != 9999 {
		t.Fatalf("expected 9999, got %d", got)
	}
}

func TestCanTransitionStatus(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{models.OrderStatusPending, models.OrderStatusConfirmed, true},
		{models.OrderStatusConfirmed, models.OrderStatusInProgress, true},
		{models.OrderStatusReady, models.OrderStatusOutForDelivery, true},
		{models.OrderStatusPending, models.OrderStatusCompleted, true},
		{models.OrderStatusConfirmed, models.OrderStatusPending, false},
		{models.OrderStatusCompleted, models.OrderStatusCancelled, false},
		{models.OrderStatusCancelled, models.OrderStatusPending, false},
		{models.OrderStatusInProgress, models.OrderStatusCancelled, true},
		{models.OrderStatusPending, models.OrderStatusPending, false},
		{models.OrderStatusPending, "unknown", false},
	}

	for _, tt := range tests {
		if got := canTransitionStatus(tt.from, tt.to); got != tt.want {
			t.Fatalf("canTransitionStatus(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCustomizationCost(t *testing.T) {
	product := models.Product{IsCustomizable: true, CustomizationFee: 25}

	if got := customizationCost(product, "happy birthday topper"); got != 25 {
		t.Fatalf("expected fee 25, got %v", got)
	}
	if got := customizationCost(product, ""); got != 0 {
		t.Fatalf("expected no fee without a request, got %v", got)
	}

	plain := models.Product{IsCustomizable: false, CustomizationFee: 25}
	if got := customizationCost(plain, "message"); got != 0 {
		t.Fatalf("expected no fee for non-customizable product, got %v", got)
	}
}

func TestFindPriceOptionIsCaseInsensitive(t *testing.T) {
	product := models.Product{
		PriceOptions: []models.PriceOption{
			{Label: "Small", Price: 50},
			{Label: "Large", Price: 120},
		},
	}

	option, ok := findPriceOption(product, "large")
	if !ok {
		t.Fatal("expected option to be found")
	}
	if option.Price != 120 {
		t.Fatalf("expected price 120, got %v", option.Price)
	}

	if _, ok := findPriceOption(product, "Jumbo"); ok {
		t.Fatal("expected unknown option to be reported missing")
	}
}

func TestBuildOrderFromRequestValidation(t *testing.T) {
	validItem := createOrderItemRequest{
		ProductID:   primitive.NewObjectID().Hex(),
		PriceOption: "Medium",
		Quantity:    1,
	}
	eventDate := time.Now().Add(96 * time.Hour)

	base := createOrderRequest{
		Items:          []createOrderItemRequest{validItem},
		DeliveryMethod: "pickup",
		EventDate:      eventDate,
		Phone:          "08030000000",
	}

	if _, err := buildOrderFromRequest(base, 50); err != nil {
		t.Fatalf("expected valid pickup order, got %v", err)
	}

	noItems := base
	noItems.Items = nil
	if _, err := buildOrderFromRequest(noItems, 50); err == nil {
		t.Fatal("expected empty items to be rejected")
	}

	delivery := base
	delivery.DeliveryMethod = "delivery"
	if _, err := buildOrderFromRequest(delivery, 50); err == nil {
		t.Fatal("expected delivery without address to be rejected")
	}

	delivery.DeliveryAddress = &deliveryAddressRequest{Street: "12 Allen Ave", Area: "Ikeja"}
	order, err := buildOrderFromRequest(delivery, 50)
	if err != nil {
		t.Fatalf("expected delivery with address to be accepted, got %v", err)
	}
	if order.Status != models.OrderStatusPending || order.PaymentStatus != models.PaymentStatusPending {
		t.Fatalf("expected pending/pending, got %s/%s", order.Status, order.PaymentStatus)
	}

	stale := base
	stale.EventDate = time.Now().Add(24 * time.Hour)
	if _, err := buildOrderFromRequest(stale, 50); err == nil {
		t.Fatal("expected event date under 48h to be rejected")
	}

	badQty := base
	badQty.Items = []createOrderItemRequest{{
		ProductID:   primitive.NewObjectID().Hex(),
		PriceOption: "Medium",
		Quantity:    0,
	}}
	if _, err := buildOrderFromRequest(badQty, 50); err == nil {
		t.Fatal("expected zero quantity to be rejected")
	}
}
