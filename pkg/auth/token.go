package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/youmark/pkcs8"
)

// expiryBuffer is the safety margin before a token's exp claim at which it
// is proactively treated as expired, so a token never dies mid-request.
const expiryBuffer = 5 * time.Minute

// signToken builds and signs the warehouse keypair JWT: issuer and subject
// are "{principal}.SNOWFLAKE", exp is lifetime from issuance, jti is a
// random UUID.
func signToken(key *rsa.PrivateKey, principal string, now time.Time, lifetime time.Duration) (string, error) {
	qualified := principal + ".SNOWFLAKE"
	claims := jwt.MapClaims{
		"iss": qualified,
		"sub": qualified,
		"iat": now.Unix(),
		"exp": now.Add(lifetime).Unix(),
		"jti": uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// isExpired decodes the token's exp claim without verifying the signature
// and reports the token expired when exp is missing, unparsable, or within
// the expiry buffer of now.
func isExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}

	return now.Add(expiryBuffer).After(exp.Time)
}

// LoadPrivateKey reads an RSA private key from a PEM file. Encrypted PKCS#8
// keys are decrypted with the passphrase.
func LoadPrivateKey(path, passphrase string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}

	if passphrase != "" {
		key, err := pkcs8.ParsePKCS8PrivateKeyRSA(block.Bytes, []byte(passphrase))
		if err != nil {
			return nil, fmt.Errorf("decrypt private key: %w", err)
		}
		return key, nil
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("unsupported key type %T, want RSA", key)
		}
		return rsaKey, nil
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}
