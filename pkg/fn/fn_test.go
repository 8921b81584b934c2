package fn

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

func TestMap(t *testing.T) {
	got := Map([]int{1, 2, 3}, func(i int) string { return strconv.Itoa(i * 2) })
	want := []string{"2", "4", "6"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Map = %v, want %v", got, want)
		}
	}
}

func TestFilter(t *testing.T) {
	got := Filter([]int{1, 2, 3, 4}, func(i int) bool { return i%2 == 0 })
	if len(got) != 2 || got[0] != 2 || got[1] != 4 {
		t.Errorf("Filter = %v", got)
	}
}

func TestFilterMap(t *testing.T) {
	got := FilterMap([]string{"1", "x", "3"}, func(s string) (int, bool) {
		v, err := strconv.Atoi(s)
		return v, err == nil
	})
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("FilterMap = %v", got)
	}
}

func TestPick(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	got := Pick(items, []int{2, 0, 9, -1})
	if len(got) != 2 || got[0] != "c" || got[1] != "a" {
		t.Errorf("Pick = %v", got)
	}
}

func TestUniqueBy(t *testing.T) {
	type item struct{ key, val string }
	items := []item{{"a", "1"}, {"b", "2"}, {"a", "3"}}
	got := UniqueBy(items, func(i item) string { return i.key })
	if len(got) != 2 || got[0].val != "1" || got[1].val != "2" {
		t.Errorf("UniqueBy = %v", got)
	}
}

func TestResult(t *testing.T) {
	ok := Ok(42)
	if !ok.IsOk() || ok.IsErr() {
		t.Error("Ok should be ok")
	}
	if v, _ := ok.Unwrap(); v != 42 {
		t.Errorf("Unwrap = %v", v)
	}

	e := Err[int](errors.New("boom"))
	if e.IsOk() {
		t.Error("Err should not be ok")
	}
	if e.UnwrapOr(7) != 7 {
		t.Error("UnwrapOr should fall back")
	}

	if FromPair(1, nil).IsErr() {
		t.Error("FromPair with nil error should be ok")
	}
	if FromPair(0, errors.New("x")).IsOk() {
		t.Error("FromPair with error should be err")
	}
}

func TestCollect(t *testing.T) {
	all := Collect([]Result[int]{Ok(1), Ok(2)})
	vals, err := all.Unwrap()
	if err != nil || len(vals) != 2 {
		t.Fatalf("Collect ok case: %v %v", vals, err)
	}

	bad := Collect([]Result[int]{Ok(1), Errf[int]("fail %d", 2)})
	if bad.IsOk() {
		t.Fatal("Collect should propagate first error")
	}
}

func TestParMap_PreservesOrder(t *testing.T) {
	items := []int{5, 4, 3, 2, 1}
	got := ParMap(items, 2, func(i int) int { return i * 10 })
	for idx, v := range got {
		if v != items[idx]*10 {
			t.Fatalf("order not preserved: %v", got)
		}
	}
}

func TestParMapResult(t *testing.T) {
	results := ParMapResult([]int{1, 2}, 0, func(i int) Result[int] {
		if i == 2 {
			return Err[int](errors.New("two"))
		}
		return Ok(i)
	})
	if results[0].IsErr() || results[1].IsOk() {
		t.Errorf("unexpected results: %v", results)
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	var calls atomic.Int32
	opts := RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond}

	r := Retry(context.Background(), opts, func(context.Context) Result[string] {
		if calls.Add(1) < 3 {
			return Err[string](errors.New("transient"))
		}
		return Ok("done")
	})
	if v, err := r.Unwrap(); err != nil || v != "done" {
		t.Fatalf("Retry = %v, %v", v, err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestRetry_Exhausted(t *testing.T) {
	opts := RetryOpts{MaxAttempts: 2, InitialWait: time.Millisecond, MaxWait: time.Millisecond}
	r := Retry(context.Background(), opts, func(context.Context) Result[int] {
		return Err[int](errors.New("always"))
	})
	if r.IsOk() {
		t.Fatal("expected error after exhausting attempts")
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := RetryOpts{MaxAttempts: 5, InitialWait: time.Minute, MaxWait: time.Minute}
	r := Retry(ctx, opts, func(context.Context) Result[int] {
		return Err[int](errors.New("transient"))
	})
	_, err := r.Unwrap()
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
