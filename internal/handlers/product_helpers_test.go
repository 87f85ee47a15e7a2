package handlers

import (
	"testing"

	"backend/internal/models"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Red Velvet Cake", "red-velvet-cake"},
		{"  Chin Chin!  ", "chin-chin"},
		{"6\" Round (Vanilla)", "6-round-vanilla"},
		{"---", ""},
	}

	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Fatalf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidatePriceOptions(t *testing.T) {
	if err := validatePriceOptions(nil); err == nil {
		t.Fatal("expected empty options to be rejected")
	}

	if err := validatePriceOptions([]models.PriceOption{{Label: "Small", Price: 0}}); err == nil {
		t.Fatal("expected zero price to be rejected")
	}

	if err := validatePriceOptions([]models.PriceOption{
		{Label: "Small", Price: 50},
		{Label: "small", Price: 60},
	}); err == nil {
		t.Fatal("expected duplicate labels to be rejected")
	}

	if err := validatePriceOptions([]models.PriceOption{
		{Label: "Small", Price: 50},
		{Label: "Large", Price: 120},
	}); err != nil {
		t.Fatalf("expected valid options to pass, got %v", err)
	}
}

func TestNormalizeCategories(t *testing.T) {
	got := normalizeCategories([]string{" Cakes ", "cakes", "", "Pastries"})
	if len(got) != 2 || got[0] != "Cakes" || got[1] != "Pastries" {
		t.Fatalf("unexpected normalized categories: %v", got)
	}
}
