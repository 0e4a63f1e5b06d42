// Package types provides shared value objects and type definitions
// used across multiple modules (Shared Kernel pattern).
package types

import (
	"strings"

	"github.com/google/uuid"
)

const maxBotOrderIDLength = 128

// BotOrderID is the order id assigned by the bot platform. It is the saga's
// idempotency key and the ecommerce order's external order id.
type BotOrderID struct {
	value string
}

func ParseBotOrderID(s string) (BotOrderID, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxBotOrderIDLength {
		return BotOrderID{}, ErrInvalidID
	}
	return BotOrderID{value: s}, nil
}

func (id BotOrderID) String() string { return id.value }
func (id BotOrderID) IsZero() bool   { return id.value == "" }

// TrackingID identifies one saga run's tracking record.
type TrackingID struct {
	value string
}

func NewTrackingID() TrackingID {
	return TrackingID{value: uuid.New().String()}
}

func ParseTrackingID(s string) (TrackingID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return TrackingID{}, ErrInvalidID
	}
	return TrackingID{value: s}, nil
}

func (id TrackingID) String() string { return id.value }
func (id TrackingID) IsZero() bool   { return id.value == "" }
