package broker

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestConnectGivesUpAfterBudget(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// port 0 never accepts connections, so every dial attempt fails
	// immediately and the retry budget below should expire quickly.
	_, err := Connect(ctx, "guest", "guest", "127.0.0.1", "0", 500*time.Millisecond, zap.NewNop())
	if !errors.Is(err, ErrConnect) && !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Connect() error = %v, want ErrConnect or context deadline", err)
	}
}
