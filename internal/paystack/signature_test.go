package paystack

import "testing"

func TestValidSignatureAcceptsMatchingHMAC(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"LD-20250601-123456789-1748779200000"}}`)
	secret := "sk_test_webhook"

	signature := SignBody(body, secret)
	if !ValidSignature(body, signature, secret) {
		t.Fatal("expected a matching signature to be accepted")
	}
}

func TestValidSignatureRejectsTamperedBody(t *testing.T) {
	secret := "sk_test_webhook"
	signature := SignBody([]byte(`{"amount":25000}`), secret)

	if ValidSignature([]byte(`{"amount":1}`), signature, secret) {
		t.Fatal("expected a tampered body to be rejected")
	}
}

func TestValidSignatureRejectsWrongSecret(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)
	signature := SignBody(body, "sk_test_a")

	if ValidSignature(body, signature, "sk_test_b") {
		t.Fatal("expected a signature keyed by another secret to be rejected")
	}
}

func TestValidSignatureRejectsGarbage(t *testing.T) {
	body := []byte(`{}`)

	if ValidSignature(body, "", "secret") {
		t.Fatal("expected empty signature to be rejected")
	}
	if ValidSignature(body, "not-hex", "secret") {
		t.Fatal("expected non-hex signature to be rejected")
	}
	if ValidSignature(body, SignBody(body, "secret"), "") {
		t.Fatal("expected missing secret to be rejected")
	}
}
