package client

import (
	"context"
	"testing"
)

func TestRegisterAndCancel(t *testing.T) {
	reg := newCancelRegistry()

	ctx, cancel := reg.register(context.Background(), "k")
	defer cancel()

	if !reg.contains("k") {
		t.Fatal("handle should be registered")
	}
	if !reg.cancel("k") {
		t.Fatal("cancel should report success")
	}
	if ctx.Err() == nil {
		t.Error("registered context should be cancelled")
	}
	if reg.contains("k") {
		t.Error("handle should be removed after cancel")
	}
	if reg.cancel("k") {
		t.Error("second cancel should report absence")
	}
}

func TestClearRemovesWithoutCancelling(t *testing.T) {
	reg := newCancelRegistry()

	ctx, cancel := reg.register(context.Background(), "k")
	defer cancel()

	reg.clear("k")
	if reg.contains("k") {
		t.Error("handle should be removed after clear")
	}
	if ctx.Err() != nil {
		t.Error("clear must not cancel the context")
	}
}

func TestRegisterReplacesExistingHandle(t *testing.T) {
	reg := newCancelRegistry()

	first, cancel1 := reg.register(context.Background(), "k")
	defer cancel1()
	second, cancel2 := reg.register(context.Background(), "k")
	defer cancel2()

	if !reg.cancel("k") {
		t.Fatal("cancel should find the replacement handle")
	}
	if second.Err() == nil {
		t.Error("the latest registration should be cancelled")
	}
	if first.Err() != nil {
		t.Error("the replaced registration's context must stay intact")
	}
}
