package fetch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestResult_ZeroValueIsLoading(t *testing.T) {
	var r Result[int]
	if r.State != Loading || r.Done() || r.OK() || r.Message() != "" {
		t.Fatalf("unexpected zero result: %+v", r)
	}
}

func TestLoad_Success(t *testing.T) {
	r := Load(context.Background(), func(context.Context) (string, error) {
		return "ok", nil
	})
	if !r.OK() || r.Data != "ok" || r.Err != nil || r.Message() != "" {
		t.Fatalf("unexpected result: %+v", r)
	}
}

func TestLoad_FailureKeepsNoData(t *testing.T) {
	r := Load(context.Background(), func(context.Context) ([]int, error) {
		return []int{1}, errors.New("Access denied")
	})
	if r.State != Failure || r.Data != nil {
		t.Fatalf("unexpected result: %+v", r)
	}
	if r.Message() != "Access denied" {
		t.Fatalf("unexpected message: %q", r.Message())
	}
}

func TestResult_CancelledMessage(t *testing.T) {
	r := Failed[int](context.Canceled)
	if r.Message() != "Request cancelled" {
		t.Fatalf("unexpected message: %q", r.Message())
	}
}

func TestState_String(t *testing.T) {
	if Loading.String() != "loading" || Success.String() != "success" || Failure.String() != "failure" {
		t.Fatalf("unexpected state names")
	}
}

func TestGroup_IndependentLoads(t *testing.T) {
	var (
		g       Group
		slow    Result[int]
		failing Result[string]
		fast    Result[bool]
		started atomic.Int32
	)
	ctx := context.Background()

	Into(ctx, &g, &slow, func(context.Context) (int, error) {
		started.Add(1)
		time.Sleep(20 * time.Millisecond)
		return 42, nil
	})
	Into(ctx, &g, &failing, func(context.Context) (string, error) {
		started.Add(1)
		return "", errors.New("boom")
	})
	Into(ctx, &g, &fast, func(context.Context) (bool, error) {
		started.Add(1)
		return true, nil
	})
	g.Wait()

	if started.Load() != 3 {
		t.Fatalf("expected all loads to run, got %d", started.Load())
	}
	if !slow.OK() || slow.Data != 42 {
		t.Fatalf("unexpected slow result: %+v", slow)
	}
	if failing.State != Failure || failing.Message() != "boom" {
		t.Fatalf("unexpected failing result: %+v", failing)
	}
	if !fast.OK() || !fast.Data {
		t.Fatalf("unexpected fast result: %+v", fast)
	}
}
