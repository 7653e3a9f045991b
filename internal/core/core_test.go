package core

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// Test zero values of core structs
func TestStructZeroValues(t *testing.T) {
	t.Run("IPHeader", func(t *testing.T) {
		var ip IPHeader
		if ip.Version != 0 {
			t.Errorf("expected Version=0, got %d", ip.Version)
		}
		if ip.SrcIP.IsValid() {
			t.Errorf("expected invalid SrcIP, got %v", ip.SrcIP)
		}
	})

	t.Run("Frame", func(t *testing.T) {
		var f Frame
		if f.Direction != DirectionReceived {
			t.Errorf("expected zero Direction to be received, got %v", f.Direction)
		}
		if f.Variant != VariantIPv4 {
			t.Errorf("expected zero Variant to be ipv4, got %v", f.Variant)
		}
	})

	t.Run("OutputPacket", func(t *testing.T) {
		var out OutputPacket
		if out.Labels != nil {
			t.Errorf("expected Labels=nil, got %v", out.Labels)
		}
		if out.Err != nil {
			t.Errorf("expected Err=nil, got %v", out.Err)
		}
	})
}

func TestDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
		ok   bool
	}{
		{"received", DirectionReceived, true},
		{"rx", DirectionReceived, true},
		{"sent", DirectionSent, true},
		{"tx", DirectionSent, true},
		{"sideways", DirectionReceived, false},
	}
	for _, tt := range tests {
		got, ok := ParseDirection(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseDirection(%q) = %v,%v want %v,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	if DirectionSent.String() != "sent" || DirectionReceived.String() != "received" {
		t.Errorf("unexpected direction names %q %q", DirectionSent, DirectionReceived)
	}
	if Direction(9).String() != "unknown" {
		t.Errorf("expected unknown for out-of-range direction")
	}
}

func TestVariantString(t *testing.T) {
	expected := map[Variant]string{
		VariantIPv4:         "ipv4",
		VariantUncompressed: "uncompressed",
		VariantCompressed:   "compressed",
		Variant(42):         "unknown",
	}
	for v, name := range expected {
		if v.String() != name {
			t.Errorf("expected %q, got %q", name, v.String())
		}
	}
}

// Test sentinel errors
func TestSentinelErrors(t *testing.T) {
	t.Run("ErrorMessages", func(t *testing.T) {
		tests := []struct {
			err     error
			message string
		}{
			{ErrHeaderTooShort, "vjtap: header too short"},
			{ErrSlotOutOfRange, "vjtap: slot id out of range"},
			{ErrChecksumInvalid, "vjtap: ip header checksum invalid"},
			{ErrInvalidLength, "vjtap: invalid payload length"},
			{ErrStillDesynchronized, "vjtap: link direction desynchronized"},
			{ErrMalformed, "vjtap: malformed compressed packet"},
			{ErrConfigInvalid, "vjtap: invalid configuration"},
		}

		for _, tt := range tests {
			if tt.err.Error() != tt.message {
				t.Errorf("expected error message %q, got %q", tt.message, tt.err.Error())
			}
		}
	})

	t.Run("ErrorWrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("%w: slot 7 >= capacity 4", ErrSlotOutOfRange)
		if !errors.Is(wrapped, ErrSlotOutOfRange) {
			t.Error("errors.Is failed for wrapped error")
		}
	})
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		kind string
	}{
		{nil, "ok"},
		{ErrHeaderTooShort, "header_too_short"},
		{fmt.Errorf("%w: slot 9", ErrSlotOutOfRange), "slot_out_of_range"},
		{ErrChecksumInvalid, "checksum_invalid"},
		{ErrInvalidLength, "invalid_length"},
		{ErrStillDesynchronized, "desynchronized"},
		{ErrMalformed, "malformed"},
		{ErrUnsupportedProto, "unsupported_proto"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.kind {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.kind)
		}
	}
}

func TestRawPacket(t *testing.T) {
	now := time.Now()
	raw := RawPacket{
		Data:       []byte{0x01, 0x02, 0x03},
		Timestamp:  now,
		CaptureLen: 3,
		OrigLen:    100,
		Index:      1,
	}

	if len(raw.Data) != 3 {
		t.Errorf("expected Data length 3, got %d", len(raw.Data))
	}
	if raw.Timestamp != now {
		t.Errorf("timestamp mismatch")
	}
	if raw.OrigLen != 100 {
		t.Errorf("expected OrigLen=100, got %d", raw.OrigLen)
	}
}

func TestLabels(t *testing.T) {
	labels := make(Labels)
	labels[LabelVJSlot] = "3"
	labels[LabelVJVariant] = VariantCompressed.String()

	if labels[LabelVJSlot] != "3" {
		t.Errorf("expected 3, got %s", labels[LabelVJSlot])
	}

	var nilLabels Labels
	if val := nilLabels[LabelVJSlot]; val != "" {
		t.Errorf("expected empty string from nil map, got %s", val)
	}
}
