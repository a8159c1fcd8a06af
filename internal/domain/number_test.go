package domain

import (
	"encoding/json"
	"testing"
)

func TestWholeNumber_UnmarshalJSON(t *testing.T) {
	accepted := []struct {
		in   string
		want WholeNumber
	}{
		{in: `5`, want: 5},
		{in: `5.0`, want: 5},
		{in: `-3`, want: -3},
		{in: `1e2`, want: 100},
		{in: `0`, want: 0},
	}
	for _, tt := range accepted {
		t.Run("accepts "+tt.in, func(t *testing.T) {
			var n WholeNumber
			if err := json.Unmarshal([]byte(tt.in), &n); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n != tt.want {
				t.Errorf("expected %d, got %d", tt.want, n)
			}
		})
	}

	for _, in := range []string{`1.5`, `"5"`, `true`, `1e300`} {
		t.Run("rejects "+in, func(t *testing.T) {
			var n WholeNumber
			if err := json.Unmarshal([]byte(in), &n); err == nil {
				t.Errorf("expected error, got %d", n)
			}
		})
	}

	t.Run("null leaves pointer unset", func(t *testing.T) {
		var entry ItemEntry
		if err := json.Unmarshal([]byte(`{"item_id":null,"quantity":2}`), &entry); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry.ItemID != nil || entry.Quantity != 2 {
			t.Errorf("unexpected entry: %+v", entry)
		}
	})
}
