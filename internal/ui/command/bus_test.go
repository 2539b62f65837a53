package command

import (
	"context"
	"errors"
	"testing"
)

func TestExecuteRunsHandlerAndAssignsID(t *testing.T) {
	bus := New()
	cmd := bus.Execute(Request{Label: "apply", Handler: func(ctx context.Context) (string, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Fatalf("expected handler context to carry a deadline")
		}
		return "done", nil
	}})
	msg := cmd()
	res, ok := msg.(Result)
	if !ok {
		t.Fatalf("expected Result, got %T", msg)
	}
	if res.ID == "" || res.Label != "apply" || res.Info != "done" || res.Err != nil {
		t.Fatalf("unexpected result %#v", res)
	}
}

func TestExecutePropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	res := New().Execute(Request{ID: "fixed", Handler: func(context.Context) (string, error) {
		return "", boom
	}})().(Result)
	if res.ID != "fixed" || !errors.Is(res.Err, boom) {
		t.Fatalf("unexpected result %#v", res)
	}
}

func TestExecuteSkipsNilHandler(t *testing.T) {
	if msg := New().Execute(Request{Label: "noop"})(); msg != nil {
		t.Fatalf("expected nil message, got %#v", msg)
	}
}
