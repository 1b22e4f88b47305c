package replay

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func TestRedisStoreIntegration(t *testing.T) {
	addr := strings.TrimSpace(os.Getenv("WEBHOOKD_TEST_REDIS_ADDR"))
	if addr == "" {
		t.Skip("WEBHOOKD_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping redis: %v", err)
	}

	guard := NewGuard(NewRedisStore(client), time.Second)
	key := "test:" + uuid.NewString()

	first, err := guard.Register(ctx, key, 0)
	if err != nil {
		t.Fatalf("register first: %v", err)
	}
	if first.Duplicate {
		t.Fatal("expected first registration not to be a duplicate")
	}
	second, err := guard.Register(ctx, key, 0)
	if err != nil {
		t.Fatalf("register second: %v", err)
	}
	if !second.Duplicate {
		t.Fatal("expected duplicate from shared store")
	}
	if second.ExpiresAt.After(first.ExpiresAt.Add(50 * time.Millisecond)) {
		t.Fatalf("duplicate must not extend expiry: first=%s second=%s", first.ExpiresAt, second.ExpiresAt)
	}

	time.Sleep(1100 * time.Millisecond)
	third, err := guard.Register(ctx, key, 0)
	if err != nil {
		t.Fatalf("register third: %v", err)
	}
	if third.Duplicate {
		t.Fatal("expected key to expire in redis")
	}
}
