package types

import (
	"testing"
)

func TestDeliveryAddressRoundTrip(t *testing.T) {
	lat, lng := 12.9716, 77.5946
	addr := DeliveryAddress{Text: "221B Baker Street", Latitude: &lat, Longitude: &lng}

	value, err := addr.Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded DeliveryAddress
	if err := decoded.Scan(value); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.Text != addr.Text {
		t.Fatalf("text mismatch: %q", decoded.Text)
	}
	if decoded.Latitude == nil || *decoded.Latitude != lat {
		t.Fatalf("latitude mismatch: %v", decoded.Latitude)
	}
}

func TestDeliveryAddressValueRequiresText(t *testing.T) {
	addr := DeliveryAddress{Text: "   "}
	if _, err := addr.Value(); err == nil {
		t.Fatal("expected error for blank address text")
	}
}

func TestDeliveryAddressScanNil(t *testing.T) {
	addr := DeliveryAddress{Text: "stale"}
	if err := addr.Scan(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !addr.IsZero() {
		t.Fatalf("expected zero address, got %+v", addr)
	}
}
