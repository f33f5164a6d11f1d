package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// pairingCodeAlphabet avoids characters that read ambiguously on a small
// screen (0/O, 1/I/L).
const pairingCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const pairingCodeLength = 6

// GenerateAuthToken returns a 64-character hex token used as a device's
// long-lived credential.
func GenerateAuthToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate auth token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GeneratePairingCode returns a 6-character code for manual entry. Codes are
// stored uppercase; lookups normalize user input the same way.
func GeneratePairingCode() (string, error) {
	out := make([]byte, pairingCodeLength)
	max := big.NewInt(int64(len(pairingCodeAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate pairing code: %w", err)
		}
		out[i] = pairingCodeAlphabet[n.Int64()]
	}
	return string(out), nil
}

// GeneratePairingToken returns the opaque token embedded in pairing QR codes.
func GeneratePairingToken() string {
	return uuid.NewString()
}

// GeneratePIN returns a 4-digit admin PIN, zero-padded.
func GeneratePIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate pin: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
