package credentials

import (
	"context"
	"testing"
)

func TestAuthorization(t *testing.T) {
	t.Run("returns forwarded value", func(t *testing.T) {
		ctx := WithAuthorization(context.Background(), "Bearer abc")
		if got := Authorization(ctx); got != "Bearer abc" {
			t.Errorf("expected 'Bearer abc', got %q", got)
		}
	})

	t.Run("empty when never set", func(t *testing.T) {
		if got := Authorization(context.Background()); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})

	t.Run("inner value wins", func(t *testing.T) {
		ctx := WithAuthorization(context.Background(), "Bearer outer")
		ctx = WithAuthorization(ctx, "")
		if got := Authorization(ctx); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})
}
