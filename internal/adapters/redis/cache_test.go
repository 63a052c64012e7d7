package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "resto_reviews/internal/adapters/redis"
)

func TestCache_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	type view struct {
		Names []string `json:"names"`
	}

	var missed view
	ok, err := c.Get(ctx, "names:restaurants", &missed)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected a miss on empty cache")
	}

	want := view{Names: []string{"A (X)", "B"}}
	if err := c.Set(ctx, "names:restaurants", want, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got view
	ok, err = c.Get(ctx, "names:restaurants", &got)
	if err != nil || !ok {
		t.Fatalf("get after set: ok=%v err=%v", ok, err)
	}
	if len(got.Names) != 2 || got.Names[0] != "A (X)" {
		t.Fatalf("unexpected value: %+v", got)
	}

	if err := c.Del(ctx, "names:restaurants"); err != nil {
		t.Fatalf("del: %v", err)
	}
	ok, _ = c.Get(ctx, "names:restaurants", &got)
	if ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestCache_TTLExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 1); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Second)

	var got string
	ok, _ := c.Get(ctx, "k", &got)
	if ok {
		t.Fatalf("expected expired key")
	}
}
