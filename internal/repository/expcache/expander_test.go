package expcache

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestExpand_CacheMiss(t *testing.T) {
	inner := &mockExpander{terms: []string{"policy", "claim"}}
	ce, ms, counter := newTestCachedExpander(t, inner)

	var stored []byte
	var storedTTL time.Duration
	ms.setFn = func(_ context.Context, key string, value []byte, ttl time.Duration) error {
		if !strings.HasPrefix(key, cacheKeyPrefix) {
			t.Errorf("unexpected key %q", key)
		}
		stored, storedTTL = value, ttl
		return nil
	}

	terms, err := ce.Expand(context.Background(), "seguro")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(terms, []string{"policy", "claim"}) {
		t.Errorf("terms = %v", terms)
	}
	if string(stored) != `["policy","claim"]` || storedTTL != time.Hour {
		t.Errorf("stored %s with ttl %v", stored, storedTTL)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss = %v", got)
	}
}

func TestExpand_CacheHit(t *testing.T) {
	inner := &mockExpander{terms: []string{"unused"}}
	ce, ms, counter := newTestCachedExpander(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte(`["cached"]`), nil
	}

	terms, err := ce.Expand(context.Background(), "seguro")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(terms, []string{"cached"}) {
		t.Errorf("terms = %v", terms)
	}
	if inner.calls != 0 {
		t.Error("inner expander must not be called on a hit")
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 1 {
		t.Errorf("hit = %v", got)
	}
}

func TestExpand_EmptyExpansionIsCached(t *testing.T) {
	inner := &mockExpander{}
	ce, ms, _ := newTestCachedExpander(t, inner)

	var stored []byte
	ms.setFn = func(_ context.Context, _ string, value []byte, _ time.Duration) error {
		stored = value
		return nil
	}
	if _, err := ce.Expand(context.Background(), "zzz"); err != nil {
		t.Fatal(err)
	}
	if string(stored) != "[]" {
		t.Errorf("stored = %s", stored)
	}
}

func TestExpand_CorruptEntryFallsThrough(t *testing.T) {
	inner := &mockExpander{terms: []string{"fresh"}}
	ce, ms, _ := newTestCachedExpander(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte("{broken"), nil
	}
	terms, err := ce.Expand(context.Background(), "q")
	if err != nil || len(terms) != 1 || terms[0] != "fresh" {
		t.Errorf("terms = %v, err = %v", terms, err)
	}
}

func TestExpand_InnerError(t *testing.T) {
	inner := &mockExpander{err: errors.New("provider down")}
	ce, ms, _ := newTestCachedExpander(t, inner)

	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		t.Error("errors must not be cached")
		return nil
	}
	if _, err := ce.Expand(context.Background(), "q"); err == nil {
		t.Fatal("expected error from inner expander")
	}
}

func TestExpand_StoreErrorsAreNotFatal(t *testing.T) {
	inner := &mockExpander{terms: []string{"a"}}
	ce, ms, _ := newTestCachedExpander(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return nil, errors.New("conn reset") }
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error { return errors.New("conn reset") }

	if _, err := ce.Expand(context.Background(), "q"); err != nil {
		t.Errorf("store failures must not fail expansion: %v", err)
	}
}
