package mongo

import (
	"context"
	"testing"
	"time"
)

func TestObjectID(t *testing.T) {
	if _, err := ObjectID("6553f1c2a4b5c6d7e8f90123"); err != nil {
		t.Fatalf("valid hex rejected: %v", err)
	}
	if _, err := ObjectID("not-an-id"); err != ErrInvalidObjectID {
		t.Fatalf("expected ErrInvalidObjectID, got %v", err)
	}
	if _, err := ObjectIDs([]string{"6553f1c2a4b5c6d7e8f90123", "bad"}); err == nil {
		t.Fatal("expected error for mixed ids")
	}
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Fatal("expected a deadline")
	}
}

func TestNow(t *testing.T) {
	if Now().Nanosecond()%int(time.Millisecond) != 0 {
		t.Error("Now should be truncated to milliseconds")
	}
}
