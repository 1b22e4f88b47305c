package signature

import "strings"

// Family groups providers under one webhook endpoint.
type Family string

const (
	FamilyConversions Family = "conversions"
	FamilyCRM         Family = "crm"
	FamilyCommerce    Family = "shopify"
)

// Provider describes how one provider signs and identifies deliveries.
type Provider struct {
	Key       string
	Family    Family
	Header    string
	Scheme    Scheme
	SecretEnv string
	// SourceIDHeaders are tried in order; the first non-empty value wins.
	SourceIDHeaders []string
}

var genericSourceIDHeaders = []string{"x-event-id", "idempotency-key", "x-idempotency-key"}

var providers = map[string]Provider{
	"shopify": {
		Key:             "shopify",
		Family:          FamilyCommerce,
		Header:          "x-shopify-hmac-sha256",
		Scheme:          SchemeBase64HMACSHA256,
		SecretEnv:       "WEBHOOK_SECRET_SHOPIFY",
		SourceIDHeaders: []string{"x-shopify-webhook-id", "x-shopify-event-id"},
	},
	"meta": {
		Key:             "meta",
		Family:          FamilyConversions,
		Header:          "x-hub-signature-256",
		Scheme:          SchemePrefixedHexHMACSHA256,
		SecretEnv:       "WEBHOOK_SECRET_META",
		SourceIDHeaders: []string{"x-meta-event-id", "x-fb-event-id"},
	},
	"google": {
		Key:             "google",
		Family:          FamilyConversions,
		Header:          "x-goog-signature",
		Scheme:          SchemePrefixedHexHMACSHA256,
		SecretEnv:       "WEBHOOK_SECRET_GOOGLE",
		SourceIDHeaders: []string{"x-goog-event-id", "x-goog-message-id"},
	},
	"hubspot": {
		Key:             "hubspot",
		Family:          FamilyCRM,
		Header:          "x-hubspot-signature",
		Scheme:          SchemeHexHMACSHA256,
		SecretEnv:       "WEBHOOK_SECRET_HUBSPOT",
		SourceIDHeaders: []string{"x-hubspot-event-id", "x-hubspot-request-id"},
	},
	"salesforce": {
		Key:             "salesforce",
		Family:          FamilyCRM,
		Header:          "x-salesforce-signature",
		Scheme:          SchemeHexHMACSHA256,
		SecretEnv:       "WEBHOOK_SECRET_SALESFORCE",
		SourceIDHeaders: []string{"x-salesforce-event-id", "x-sfdc-event-id"},
	},
}

// CommerceTopics are the Shopify topics accepted by the commerce endpoint.
var CommerceTopics = map[string]struct{}{
	"orders":   {},
	"refunds":  {},
	"products": {},
}

// Lookup returns the provider definition for key.
func Lookup(key string) (Provider, bool) {
	p, ok := providers[strings.ToLower(strings.TrimSpace(key))]
	return p, ok
}

// Keys lists every known provider key.
func Keys() []string {
	return []string{"shopify", "meta", "google", "hubspot", "salesforce"}
}

// InFamily reports whether provider key belongs to family.
func InFamily(key string, family Family) (Provider, bool) {
	p, ok := Lookup(key)
	if !ok || p.Family != family {
		return Provider{}, false
	}
	return p, true
}

// SourceIDCandidates returns provider-specific id headers followed by the generic ones.
func (p Provider) SourceIDCandidates() []string {
	out := make([]string, 0, len(p.SourceIDHeaders)+len(genericSourceIDHeaders))
	out = append(out, p.SourceIDHeaders...)
	return append(out, genericSourceIDHeaders...)
}
