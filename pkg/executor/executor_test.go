package executor

import (
	"sync"
	"testing"
	"time"
)

func TestDirectRunsInline(t *testing.T) {
	ran := false
	if err := (Direct{}).Execute(func() { ran = true }); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !ran {
		t.Error("Direct.Execute did not run the function")
	}
}

func TestFuncAdapter(t *testing.T) {
	var got func()
	f := Func(func(fn func()) error {
		got = fn
		return nil
	})

	if err := f.Execute(func() {}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got == nil {
		t.Error("Func adapter did not forward the function")
	}
}

func TestSerialPreservesOrder(t *testing.T) {
	s := NewSerial()
	defer s.Close()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		n := i
		if err := s.Execute(func() {
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			wg.Done()
		}); err != nil {
			t.Fatalf("Execute(%d): %v", n, err)
		}
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i, n := range order {
		if n != i {
			t.Fatalf("order[%d] = %d, want %d", i, n, i)
		}
	}
}

func TestSerialCloseDrainsQueue(t *testing.T) {
	s := NewSerial()

	var mu sync.Mutex
	ran := 0
	for i := 0; i < 10; i++ {
		if err := s.Execute(func() {
			mu.Lock()
			ran++
			mu.Unlock()
			time.Sleep(time.Millisecond)
		}); err != nil {
			t.Fatalf("Execute: %v", err)
		}
	}

	s.Close() // blocks until queued work drains

	mu.Lock()
	defer mu.Unlock()
	if ran != 10 {
		t.Errorf("ran = %d after Close, want 10", ran)
	}
}

func TestSerialExecuteAfterClose(t *testing.T) {
	s := NewSerial()
	s.Close()

	if err := s.Execute(func() {}); err != ErrClosed {
		t.Errorf("Execute after Close = %v, want ErrClosed", err)
	}
}

func TestSerialCloseIsIdempotent(t *testing.T) {
	s := NewSerial()
	s.Close()
	s.Close() // must not panic or block
}

func TestSerialLen(t *testing.T) {
	s := NewSerial()
	defer s.Close()

	block := make(chan struct{})
	started := make(chan struct{})
	_ = s.Execute(func() {
		close(started)
		<-block
	})
	<-started

	_ = s.Execute(func() {})
	_ = s.Execute(func() {})

	if n := s.Len(); n != 2 {
		t.Errorf("Len() = %d, want 2", n)
	}
	close(block)
}
