package domain

// DeliveryMode tells how goods reach the customer.
type DeliveryMode string

const (
	// DeliveryModePickup means the customer collects the order at a pickup point.
	DeliveryModePickup DeliveryMode = "pickup"

	// DeliveryModeDelivery means the order is shipped to the address.
	DeliveryModeDelivery DeliveryMode = "delivery"
)

// DeliveryModes returns every accepted mode.
func DeliveryModes() []DeliveryMode {
	return []DeliveryMode{DeliveryModePickup, DeliveryModeDelivery}
}

// IsValid reports whether m is one of the accepted modes.
func (m DeliveryMode) IsValid() bool {
	return m == DeliveryModePickup || m == DeliveryModeDelivery
}

func (m DeliveryMode) String() string {
	return string(m)
}
