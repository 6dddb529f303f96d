package worker

import (
	"context"
	"io"
	"log"
	"os"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/dimfu/mrwordrank/shared"
)

func testEngine(t *testing.T) *Engine {
	e := NewEngine(t.TempDir())
	e.PingDelay = time.Millisecond
	e.Logger = log.New(io.Discard, "", 0)
	return e
}

func writeSplit(t *testing.T, e *Engine, id string, lines ...string) {
	if err := shared.WriteLines(shared.Resolve(e.Root, id), lines); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, e *Engine, id string) []string {
	lines, err := shared.ReadLines(shared.Resolve(e.Root, id))
	if err != nil {
		t.Fatal(err)
	}
	return lines
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"Le chat, mange!", []string{"le", "chat", "mange"}},
		{"abc123def", []string{"abc", "def"}},
		{"l'été à Noël", []string{"l", "été", "à", "noël"}},
		{"  \t42 ", nil},
	}
	for _, tt := range tests {
		got := Tokenize(tt.line)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("Tokenize(%q) = %v; expected %v", tt.line, got, tt.want)
		}
	}
}

func TestWordsFilters(t *testing.T) {
	e := testEngine(t)
	got := e.Words("Le chien x mange aussi, à l'école")
	want := []string{"chien", "mange", "aussi", "école"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Words = %v; expected %v", got, want)
	}

	e.Stopwords = NewStopwords([]string{"AUSSI"})
	got = e.Words("le chien mange aussi")
	want = []string{"le", "chien", "mange"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Words with custom stopwords = %v; expected %v", got, want)
	}
}

func TestMap(t *testing.T) {
	e := testEngine(t)
	writeSplit(t, e, "run/S0", "le chat mange", "le chien mange")

	out, err := e.Run(context.Background(), shared.MapTask("run/S0"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"chat:run/UM0", "mange:run/UM0", "chien:run/UM0", "mange:run/UM0"}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("Map output = %v; expected %v", out, want)
	}
	records := readFile(t, e, "run/UM0")
	if !reflect.DeepEqual(records, []string{"chat: 1", "mange: 1", "chien: 1", "mange: 1"}) {
		t.Fatalf("UM0 = %v", records)
	}
}

func TestMapNothingSurvives(t *testing.T) {
	e := testEngine(t)
	writeSplit(t, e, "run/S4", "le la les 12 a")

	out, err := e.Map("run/S4")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("Map output = %v", out)
	}
	if _, err := os.Stat(shared.Resolve(e.Root, "run/UM4")); !os.IsNotExist(err) {
		t.Fatalf("UM4 written for an empty split: %v", err)
	}
}

func TestShuffleReduce(t *testing.T) {
	e := testEngine(t)
	writeSplit(t, e, "run/UM0", "chat: 1", "Mange: 1", "chien: 1")
	writeSplit(t, e, "run/UM1", "mange : 1", "mange:2")
	writeSplit(t, e, "run/UM2", "mange: 1")

	task := shared.ShuffleReduceTask("mange", "run/RM0", []string{"run/UM0", "run/UM1"})
	out, err := e.Run(context.Background(), task)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out, []string{"mange:4"}) {
		t.Fatalf("output = %v", out)
	}
	if got := readFile(t, e, "run/RM0"); !reflect.DeepEqual(got, []string{"mange:4"}) {
		t.Fatalf("RM0 = %v", got)
	}
	shuffle := readFile(t, e, "run/SM0")
	sort.Strings(shuffle)
	if !reflect.DeepEqual(shuffle, []string{"mange: 1", "mange: 1", "mange: 2"}) {
		t.Fatalf("SM0 = %v", shuffle)
	}

	// same inputs, same files
	if _, err := e.Run(context.Background(), task); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, e, "run/RM0"); !reflect.DeepEqual(got, []string{"mange:4"}) {
		t.Fatalf("RM0 after rerun = %v", got)
	}
	if got := readFile(t, e, "run/SM0"); len(got) != 3 {
		t.Fatalf("SM0 after rerun = %v", got)
	}
}

func TestShuffleReduceNoMatch(t *testing.T) {
	e := testEngine(t)
	writeSplit(t, e, "run/UM0", "chat: 1")

	out, err := e.ShuffleReduce("chien", "run/RM5", []string{"run/UM0"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out, []string{"chien:0"}) {
		t.Fatalf("output = %v", out)
	}
	if _, err := os.Stat(shared.Resolve(e.Root, "run/SM5")); !os.IsNotExist(err) {
		t.Fatalf("SM5 written without matches")
	}
	if got := readFile(t, e, "run/RM5"); !reflect.DeepEqual(got, []string{"chien:0"}) {
		t.Fatalf("RM5 = %v", got)
	}
}

func TestShuffleReduceMalformed(t *testing.T) {
	e := testEngine(t)
	writeSplit(t, e, "run/UM0", "chat: 1", "chat", "chat: one", "chat: 1")

	out, err := e.ShuffleReduce("chat", "run/RM0", []string{"run/UM0"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out, []string{"chat:2"}) {
		t.Fatalf("output = %v", out)
	}

	if _, err := e.ShuffleReduce("chat", "run/RM1", []string{"run/UM9"}); err == nil {
		t.Fatalf("missing map file did not fail the task")
	}
}

func TestPing(t *testing.T) {
	e := testEngine(t)
	out, err := e.Run(context.Background(), shared.PingTask())
	if err != nil || !reflect.DeepEqual(out, []string{shared.OK}) {
		t.Fatalf("Ping = %v, %v", out, err)
	}

	e.PingDelay = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := e.Ping(ctx); err == nil {
		t.Fatalf("Ping ignored cancellation")
	}
}

func TestRunRejectsBadTask(t *testing.T) {
	e := testEngine(t)
	if _, err := e.Run(context.Background(), shared.Task{Kind: shared.TASK_MAP}); err == nil {
		t.Fatalf("MAP without split accepted")
	}
}
