package async

import (
	"errors"
	"fmt"
	"testing"
)

func TestFuture_WriteOnce(t *testing.T) {
	f := NewFuture[int]()
	calls := 0
	f.OnComplete(func(v int, err error) {
		calls++
		if v != 1 || err != nil {
			t.Errorf("callback got (%v, %v), want (1, nil)", v, err)
		}
	})

	f.Resolve(1)
	f.Resolve(2)
	f.Reject(errors.New("late"))

	if calls != 1 {
		t.Errorf("callback ran %d times, want 1", calls)
	}
	if v, err := f.Result(); v != 1 || err != nil {
		t.Errorf("Result() = (%v, %v), want (1, nil)", v, err)
	}
}

func TestFuture_OnCompleteAfterSettle(t *testing.T) {
	f := Resolved("ok")
	got := ""
	f.OnComplete(func(v string, _ error) { got = v })
	if got != "ok" {
		t.Errorf("late callback got %q, want %q", got, "ok")
	}
}

func TestThen(t *testing.T) {
	src := NewFuture[int]()
	out := Then(src, func(v int) (string, error) { return fmt.Sprint(v * 2), nil })
	if out.Done() {
		t.Fatal("mapped future settled before source")
	}
	src.Resolve(21)
	if v, err := out.Result(); v != "42" || err != nil {
		t.Errorf("Then() = (%q, %v), want (\"42\", nil)", v, err)
	}

	boom := errors.New("boom")
	called := false
	rej := Then(Rejected[int](boom), func(int) (int, error) { called = true; return 0, nil })
	if called {
		t.Error("map function ran on rejection")
	}
	if _, err := rej.Result(); !errors.Is(err, boom) {
		t.Errorf("rejection not propagated: %v", err)
	}
}

func TestWrapErr(t *testing.T) {
	boom := errors.New("boom")
	f := WrapErr(Rejected[int](boom), func(err error) error { return fmt.Errorf("stage: %w", err) })
	_, err := f.Result()
	if !errors.Is(err, boom) || err.Error() != "stage: boom" {
		t.Errorf("WrapErr() error = %v", err)
	}

	ok := WrapErr(Resolved(3), func(err error) error { t.Error("wrap called on success"); return err })
	if v, _ := ok.Result(); v != 3 {
		t.Errorf("WrapErr() value = %v, want 3", v)
	}
}

func TestBoth(t *testing.T) {
	tests := []struct {
		name    string
		order   string // which future settles first
		errA    error
		errB    error
		wantErr bool
	}{
		{name: "a then b", order: "ab"},
		{name: "b then a", order: "ba"},
		{name: "a fails", order: "ab", errA: errors.New("a"), wantErr: true},
		{name: "b fails first", order: "ba", errB: errors.New("b"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewFuture[int]()
			b := NewFuture[string]()
			out := Both(a, b)

			settleA := func() {
				if tt.errA != nil {
					a.Reject(tt.errA)
				} else {
					a.Resolve(7)
				}
			}
			settleB := func() {
				if tt.errB != nil {
					b.Reject(tt.errB)
				} else {
					b.Resolve("x")
				}
			}

			if tt.order == "ab" {
				settleA()
				if !tt.wantErr && out.Done() {
					t.Fatal("joined future settled with only one input")
				}
				settleB()
			} else {
				settleB()
				if !tt.wantErr && out.Done() {
					t.Fatal("joined future settled with only one input")
				}
				settleA()
			}

			if !out.Done() {
				t.Fatal("joined future did not settle")
			}
			v, err := out.Result()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil || v.First != 7 || v.Second != "x" {
				t.Errorf("Both() = (%+v, %v)", v, err)
			}
		})
	}
}
