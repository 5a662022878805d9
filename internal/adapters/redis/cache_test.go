package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "stayloft/internal/adapters/redis"
	"stayloft/internal/domain"
)

func newTestCache(t *testing.T) *redisad.Cache {
	t.Helper()
	srv := miniredis.RunT(t)
	return redisad.New(srv.Addr(), "", 0)
}

func TestCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	in := domain.ApartmentView{
		Apartment: domain.Apartment{ID: "a1", Title: "Loft", PricePerNight: 120.50, Amenities: []string{"wifi"}},
		HostName:  "Hana",
	}
	if err := cache.Set(ctx, "apartment:a1", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out domain.ApartmentView
	ok, err := cache.Get(ctx, "apartment:a1", &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if out.Title != "Loft" || out.HostName != "Hana" || out.PricePerNight != 120.50 {
		t.Fatalf("round trip mangled value: %+v", out)
	}
}

func TestCacheMissAndDel(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	var out domain.ApartmentView
	ok, err := cache.Get(ctx, "apartment:absent", &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected a miss for an absent key")
	}

	if err := cache.Set(ctx, "k", "v", 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := cache.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	var s string
	if ok, _ := cache.Get(ctx, "k", &s); ok {
		t.Fatal("expected key to be gone after Del")
	}
}
