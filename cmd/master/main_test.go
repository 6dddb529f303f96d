package main

import (
	"reflect"
	"testing"

	"github.com/dimfu/mrwordrank/master"
)

func TestNewRunner(t *testing.T) {
	r, err := newRunner("ssh", ".", 0, "ssh -o BatchMode=yes {host} worker -root /shared", "")
	if err != nil {
		t.Fatal(err)
	}
	cmd, ok := r.(*master.CommandRunner)
	if !ok {
		t.Fatalf("ssh runner is %T", r)
	}
	want := []string{"ssh", "-o", "BatchMode=yes", "{host}", "worker", "-root", "/shared"}
	if !reflect.DeepEqual(cmd.Argv, want) {
		t.Fatalf("argv = %v", cmd.Argv)
	}

	r, err = newRunner("rpc", ".", 9100, "", "")
	if err != nil || r.(*master.RPCRunner).Port != 9100 {
		t.Fatalf("rpc runner = %#v, %v", r, err)
	}
	if _, err := newRunner("local", t.TempDir(), 0, "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := newRunner("local", ".", 0, "", "/does/not/exist"); err == nil {
		t.Fatalf("missing stopword file accepted")
	}
	if _, err := newRunner("telnet", ".", 0, "", ""); err == nil {
		t.Fatalf("unknown runner accepted")
	}
	if _, err := newRunner("ssh", ".", 0, "  ", ""); err == nil {
		t.Fatalf("empty ssh command accepted")
	}
}
