package supervisor

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestShutdownClosesInReverseOrder(t *testing.T) {
	s := New(zap.NewNop(), time.Second)

	var order []string
	s.Register("first", func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	s.Register("second", func(ctx context.Context) error {
		order = append(order, "second")
		return nil
	})
	s.Register("third", func(ctx context.Context) error {
		order = append(order, "third")
		return nil
	})

	s.Shutdown()

	want := []string{"third", "second", "first"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestShutdownContinuesPastErrors(t *testing.T) {
	s := New(zap.NewNop(), time.Second)

	closedSecond := false
	s.Register("failing", func(ctx context.Context) error {
		return context.DeadlineExceeded
	})
	s.Register("ok", func(ctx context.Context) error {
		closedSecond = true
		return nil
	})

	s.Shutdown()

	if !closedSecond {
		t.Error("expected second resource to still be closed after first errors")
	}
}
