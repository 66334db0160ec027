package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// DeliveryAddress is the drop-off location captured at checkout. Stored
// as a jsonb column; coordinates are optional since the address text is
// what couriers are handed.
type DeliveryAddress struct {
	Text      string   `json:"text"`
	Latitude  *float64 `json:"lat,omitempty"`
	Longitude *float64 `json:"lng,omitempty"`
}

func (a DeliveryAddress) IsZero() bool {
	return strings.TrimSpace(a.Text) == "" && a.Latitude == nil && a.Longitude == nil
}

// Value marshals the address for the jsonb column.
func (a DeliveryAddress) Value() (driver.Value, error) {
	if strings.TrimSpace(a.Text) == "" {
		return nil, fmt.Errorf("delivery address: missing text")
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("delivery address: marshal: %w", err)
	}
	return string(raw), nil
}

// Scan decodes the jsonb column back into the address.
func (a *DeliveryAddress) Scan(value interface{}) error {
	if value == nil {
		*a = DeliveryAddress{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("delivery address: unsupported scan type %T", value)
	}

	if len(raw) == 0 {
		*a = DeliveryAddress{}
		return nil
	}
	if err := json.Unmarshal(raw, a); err != nil {
		return fmt.Errorf("delivery address: unmarshal: %w", err)
	}
	return nil
}
