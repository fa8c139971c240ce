package identity

import "testing"

// stackScope records Enter/Exit pairing for assertions.
type stackScope struct {
	next    Token
	entered []Token
	exited  []Token
}

func (s *stackScope) Enter() Token {
	s.next++
	s.entered = append(s.entered, s.next)
	return s.next
}

func (s *stackScope) Exit(tok Token) {
	s.exited = append(s.exited, tok)
}

func TestDuringBalancesEnterExit(t *testing.T) {
	s := &stackScope{}

	ran := false
	During(s, func() { ran = true })

	if !ran {
		t.Error("During did not run the function")
	}
	if len(s.entered) != 1 || len(s.exited) != 1 {
		t.Fatalf("enter/exit counts = %d/%d, want 1/1", len(s.entered), len(s.exited))
	}
	if s.exited[0] != s.entered[0] {
		t.Errorf("Exit token %d != Enter token %d", s.exited[0], s.entered[0])
	}
}

func TestDuringExitsOnPanic(t *testing.T) {
	s := &stackScope{}

	func() {
		defer func() { _ = recover() }()
		During(s, func() { panic("observer blew up") })
	}()

	if len(s.exited) != 1 {
		t.Errorf("exit count = %d after panic, want 1", len(s.exited))
	}
}

func TestNoopScope(t *testing.T) {
	var s NoopScope
	tok := s.Enter()
	s.Exit(tok) // must not panic
	if tok != 0 {
		t.Errorf("NoopScope token = %d, want 0", tok)
	}
}
