// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package twofactor implements the TOTP second authentication factor:
// secret generation, provisioning URIs for authenticator enrollment, QR
// code rendering, and code verification with the standard 6-digit, 30
// second, one-step-skew parameters.
package twofactor

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

// GenerateSecret returns a new random base32 TOTP secret.
func GenerateSecret() (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		// Issuer and AccountName are placeholders here; the provisioning
		// URI shown to the user is built separately from the stored secret.
		Issuer:      "inkwell",
		AccountName: "inkwell",
	})
	if err != nil {
		return "", fmt.Errorf("totp generate: %w", err)
	}
	return key.Secret(), nil
}

// ProvisioningURI builds the deterministic otpauth:// URI an authenticator
// app scans during setup.
func ProvisioningURI(secret, account, issuer string) string {
	return fmt.Sprintf(
		"otpauth://totp/%s:%s?secret=%s&issuer=%s&algorithm=SHA1&digits=6&period=30",
		url.PathEscape(issuer), url.PathEscape(account), secret, url.QueryEscape(issuer),
	)
}

// Verify checks a submitted 6-digit code against the stored secret at the
// current time. A nil or empty secret fails closed.
func Verify(secret *string, code string) bool {
	return VerifyAt(secret, code, time.Now())
}

// VerifyAt is Verify with an explicit timestamp. The code is accepted
// within one 30-second step before or after t.
func VerifyAt(secret *string, code string, t time.Time) bool {
	if secret == nil || *secret == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, *secret, t, totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return ok
}

// QRCodeBase64 renders the provisioning URI as a base64-encoded PNG for
// inline display on the setup page.
func QRCodeBase64(uri string) (string, error) {
	png, err := qrcode.Encode(uri, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("qr encode: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
