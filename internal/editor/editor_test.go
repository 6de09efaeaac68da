package editor

import (
	"errors"
	"reflect"
	"testing"
)

func TestResolvePrecedence(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	if got := (&Editor{}).Resolve(); !reflect.DeepEqual(got, []string{"vi"}) {
		t.Errorf("default: want [vi], got %v", got)
	}

	t.Setenv("EDITOR", "nano")
	if got := (&Editor{}).Resolve(); !reflect.DeepEqual(got, []string{"nano"}) {
		t.Errorf("EDITOR: want [nano], got %v", got)
	}

	t.Setenv("VISUAL", "code -w")
	if got := (&Editor{}).Resolve(); !reflect.DeepEqual(got, []string{"code", "-w"}) {
		t.Errorf("VISUAL: want [code -w], got %v", got)
	}

	if got := (&Editor{Command: "hx"}).Resolve(); !reflect.DeepEqual(got, []string{"hx"}) {
		t.Errorf("Command: want [hx], got %v", got)
	}
}

func TestOpenPassesPath(t *testing.T) {
	var gotName string
	var gotArgs []string
	e := &Editor{Command: "code -w", Runner: func(name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}}
	if err := e.Open("/tmp/2024-03-05"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if gotName != "code" || !reflect.DeepEqual(gotArgs, []string{"-w", "/tmp/2024-03-05"}) {
		t.Errorf("unexpected invocation %s %v", gotName, gotArgs)
	}
}

func TestOpenWrapsFailure(t *testing.T) {
	boom := errors.New("exit status 1")
	e := &Editor{Command: "vi", Runner: func(string, ...string) error { return boom }}
	if err := e.Open("x"); !errors.Is(err, boom) {
		t.Errorf("want wrapped error, got %v", err)
	}
}
