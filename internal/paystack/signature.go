package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"

	"github.com/anchorfit/storefront/pkg/errors"
)

// SignatureHeader carries the hex HMAC-SHA512 of the raw request body
const SignatureHeader = "x-paystack-signature"

// Sign returns the signature Paystack would send for body
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks header against the HMAC of the exact bytes received
func VerifySignature(secret string, body []byte, header string) error {
	header = strings.TrimSpace(header)
	if header == "" {
		return &errors.ErrInvalidSignature{Reason: "missing signature"}
	}

	got, err := hex.DecodeString(strings.ToLower(header))
	if err != nil {
		return &errors.ErrInvalidSignature{Reason: "malformed signature"}
	}

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return &errors.ErrInvalidSignature{Reason: "signature mismatch"}
	}
	return nil
}
