package domain

import (
	"errors"
	"strings"
)

// ErrInvalidSlotID reports a slot identifier that does not split into
// exactly three non-empty underscore-separated parts.
var ErrInvalidSlotID = errors.New("invalid slot id")

// SlotRef is the decoded form of a slot identifier:
// "<serviceId>_<YYYY-MM-DD>_<HH:MM>". Date and time shape are validated
// separately by the booking pipeline so their errors stay distinguishable
// from a malformed identifier.
type SlotRef struct {
	ServiceID string
	Date      string
	StartTime string
}

func EncodeSlotID(serviceID, date, startTime string) string {
	return serviceID + "_" + date + "_" + startTime
}

func DecodeSlotID(slotID string) (SlotRef, error) {
	parts := strings.Split(slotID, "_")
	if len(parts) != 3 {
		return SlotRef{}, ErrInvalidSlotID
	}
	for _, p := range parts {
		if p == "" {
			return SlotRef{}, ErrInvalidSlotID
		}
	}
	return SlotRef{ServiceID: parts[0], Date: parts[1], StartTime: parts[2]}, nil
}
