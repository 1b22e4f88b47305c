package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func testSecrets() map[string]string {
	return map[string]string{
		"shopify":    "shopify-secret",
		"meta":       "meta-secret",
		"google":     "google-secret",
		"hubspot":    "hubspot-secret",
		"salesforce": "salesforce-secret",
	}
}

func TestVerifyAcceptsCorrectSignaturePerProvider(t *testing.T) {
	t.Parallel()

	body := []byte(`{"id":"evt-1","type":"order.created","amount":1200}`)
	verifier := NewVerifier(testSecrets())

	for _, key := range Keys() {
		p, ok := Lookup(key)
		if !ok {
			t.Fatalf("provider %s not registered", key)
		}
		header := Sign(p.Scheme, testSecrets()[key], body)
		result := verifier.Verify(key, body, header)
		if !result.Verified {
			t.Fatalf("expected %s signature to verify", key)
		}
		if result.Scheme != p.Scheme {
			t.Fatalf("unexpected scheme for %s: got=%s want=%s", key, result.Scheme, p.Scheme)
		}
	}
}

func TestVerifyRejectsSingleBitMutations(t *testing.T) {
	t.Parallel()

	body := []byte(`{"id":"evt-2","type":"refund.created"}`)
	verifier := NewVerifier(testSecrets())

	for _, key := range Keys() {
		p, _ := Lookup(key)
		header := Sign(p.Scheme, testSecrets()[key], body)

		for i := range body {
			for bit := 0; bit < 8; bit++ {
				mutated := append([]byte(nil), body...)
				mutated[i] ^= 1 << bit
				if verifier.Verify(key, mutated, header).Verified {
					t.Fatalf("%s: body mutation at byte=%d bit=%d verified", key, i, bit)
				}
			}
		}

		for i := 0; i < len(header); i++ {
			for bit := 0; bit < 8; bit++ {
				mutated := []byte(header)
				mutated[i] ^= 1 << bit
				if verifier.Verify(key, body, string(mutated)).Verified {
					t.Fatalf("%s: signature mutation at byte=%d bit=%d verified (%q)", key, i, bit, mutated)
				}
			}
		}
	}
}

func TestVerifyFailsClosedWithoutSecret(t *testing.T) {
	t.Parallel()

	body := []byte(`{}`)
	header := Sign(SchemeBase64HMACSHA256, "", body)
	result := NewVerifier(nil).Verify("shopify", body, header)
	if result.Verified {
		t.Fatal("expected verification to fail without configured secret")
	}
	if result.Scheme != SchemeBase64HMACSHA256 {
		t.Fatalf("unexpected scheme: got=%s want=%s", result.Scheme, SchemeBase64HMACSHA256)
	}
}

func TestVerifyUnknownProvider(t *testing.T) {
	t.Parallel()

	if NewVerifier(testSecrets()).Verify("stripe", []byte(`{}`), "abc").Verified {
		t.Fatal("expected unknown provider to fail verification")
	}
}

func TestShopifySchemeIsBase64OfRawBody(t *testing.T) {
	t.Parallel()

	body := []byte("raw body, not re-encoded JSON")
	mac := hmac.New(sha256.New, []byte("shopify-secret"))
	_, _ = mac.Write(body)
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if got := Sign(SchemeBase64HMACSHA256, "shopify-secret", body); got != want {
		t.Fatalf("unexpected shopify signature: got=%s want=%s", got, want)
	}
	if !NewVerifier(testSecrets()).Verify("shopify", body, want).Verified {
		t.Fatal("expected hand-computed shopify signature to verify")
	}
}

func TestPrefixedSchemeRequiresPrefix(t *testing.T) {
	t.Parallel()

	body := []byte(`{"event":"lead"}`)
	header := Sign(SchemePrefixedHexHMACSHA256, "meta-secret", body)
	if header[:7] != "sha256=" {
		t.Fatalf("expected sha256= prefix, got %q", header)
	}
	verifier := NewVerifier(testSecrets())
	if verifier.Verify("meta", body, header[7:]).Verified {
		t.Fatal("expected bare hex to be rejected for prefixed scheme")
	}
}

func TestInFamily(t *testing.T) {
	t.Parallel()

	if _, ok := InFamily("meta", FamilyConversions); !ok {
		t.Fatal("expected meta in conversions family")
	}
	if _, ok := InFamily("hubspot", FamilyConversions); ok {
		t.Fatal("expected hubspot outside conversions family")
	}
	p, _ := Lookup("hubspot")
	candidates := p.SourceIDCandidates()
	if candidates[0] != "x-hubspot-event-id" || candidates[len(candidates)-1] != "x-idempotency-key" {
		t.Fatalf("unexpected candidate order: %v", candidates)
	}
}
