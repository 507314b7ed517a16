package event

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainEvent = "canvasreplay/event/v1"
	DomainLog   = "canvasreplay/log/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00}) // separator prevents domain/data boundary ambiguity
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash computes the content-addressed identity of a single event.
func Hash(e Event) (string, error) {
	canonical, err := MarshalCanonical(e)
	if err != nil {
		return "", fmt.Errorf("hash event: %w", err)
	}
	return hashWithDomain(DomainEvent, canonical), nil
}

// Digest identifies an ordered sequence of events. Two logs have the same
// digest exactly when they hold the same events in the same order.
func Digest(events []Event) (string, error) {
	if events == nil {
		events = []Event{}
	}
	canonical, err := MarshalCanonical(events)
	if err != nil {
		return "", fmt.Errorf("digest log: %w", err)
	}
	return hashWithDomain(DomainLog, canonical), nil
}

// MustDigest is like Digest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustDigest(events []Event) string {
	d, err := Digest(events)
	if err != nil {
		panic(err)
	}
	return d
}
