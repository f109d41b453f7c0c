package async

import "testing"

func TestEvent_RaiseAndRemove(t *testing.T) {
	var e Event[int]
	var got []int

	removeA := e.AddListener(func(v int) { got = append(got, v) })
	e.AddListener(func(v int) { got = append(got, v*10) })

	if e.NumberOfListeners() != 2 {
		t.Fatalf("NumberOfListeners() = %d, want 2", e.NumberOfListeners())
	}

	e.Raise(1)
	removeA()
	removeA() // removing twice is harmless
	e.Raise(2)

	want := []int{1, 10, 20}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if e.NumberOfListeners() != 1 {
		t.Errorf("NumberOfListeners() = %d, want 1", e.NumberOfListeners())
	}
}
