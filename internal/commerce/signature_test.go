package commerce

import "testing"

func TestVerifySignatureRoundTrip(t *testing.T) {
	body := []byte(`{"id":820982911946154508,"total_price":"133.33"}`)
	secret := "brand-secret"

	sig := ComputeSignature(secret, body)
	if sig == "" {
		t.Fatal("expected non-empty signature")
	}
	if !VerifySignature(secret, body, sig) {
		t.Fatal("expected signature to verify")
	}
}

func TestVerifySignatureRejectsTamperedBody(t *testing.T) {
	secret := "brand-secret"
	sig := ComputeSignature(secret, []byte(`{"total_price":"10.00"}`))

	if VerifySignature(secret, []byte(`{"total_price":"99.00"}`), sig) {
		t.Fatal("expected tampered body to fail verification")
	}
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	body := []byte(`{"id":1}`)
	sig := ComputeSignature("secret-a", body)

	if VerifySignature("secret-b", body, sig) {
		t.Fatal("expected wrong secret to fail verification")
	}
}

func TestVerifySignatureEmptyInputs(t *testing.T) {
	body := []byte(`{}`)
	if VerifySignature("", body, ComputeSignature("", body)) {
		t.Fatal("expected empty secret to fail verification")
	}
	if VerifySignature("secret", body, "") {
		t.Fatal("expected empty signature to fail verification")
	}
}
