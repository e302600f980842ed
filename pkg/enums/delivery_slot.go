package enums

import "fmt"

// DeliverySlot is one of the time-window labels a customer can pick for delivery.
type DeliverySlot string

const (
	DeliverySlotEarlyMorning DeliverySlot = "08:00-10:00"
	DeliverySlotLateMorning  DeliverySlot = "10:00-12:00"
	DeliverySlotLunch        DeliverySlot = "12:00-14:00"
	DeliverySlotAfternoon    DeliverySlot = "14:00-16:00"
	DeliverySlotEvening      DeliverySlot = "16:00-18:00"
)

var validDeliverySlots = []DeliverySlot{
	DeliverySlotEarlyMorning,
	DeliverySlotLateMorning,
	DeliverySlotLunch,
	DeliverySlotAfternoon,
	DeliverySlotEvening,
}

// DeliverySlots returns the default slot labels in display order.
func DeliverySlots() []DeliverySlot {
	out := make([]DeliverySlot, len(validDeliverySlots))
	copy(out, validDeliverySlots)
	return out
}

// String implements fmt.Stringer.
func (s DeliverySlot) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DeliverySlot.
func (s DeliverySlot) IsValid() bool {
	for _, candidate := range validDeliverySlots {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDeliverySlot converts raw input into a DeliverySlot.
func ParseDeliverySlot(value string) (DeliverySlot, error) {
	for _, candidate := range validDeliverySlots {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery slot %q", value)
}
