// Package worker runs the tasks a master hands to a host: the liveness
// probe, tokenize-and-count over one split, and the per-key shuffle/reduce.
//
// All file identifiers are resolved against Root, the local mount point of
// the namespace shared by every host. A shuffle/reduce reads UMx files
// regardless of which host produced them, so a run is only correct when all
// hosts see the same Root.
package worker

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dimfu/mrwordrank/shared"
)

const PING_DELAY = 10 * time.Second

type Engine struct {
	Root      string
	Stopwords map[string]struct{}
	PingDelay time.Duration
	Logger    *log.Logger
}

func NewEngine(root string) *Engine {
	return &Engine{
		Root:      root,
		Stopwords: DefaultStopwords(),
		PingDelay: PING_DELAY,
		Logger:    log.Default(),
	}
}

// Run executes one task and returns its result lines.
func (e *Engine) Run(ctx context.Context, t shared.Task) ([]string, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	switch t.Kind {
	case shared.TASK_PING:
		return e.Ping(ctx)
	case shared.TASK_MAP:
		return e.Map(t.Params[0])
	default:
		return e.ShuffleReduce(t.Params[0], t.Params[1], t.Params[2:])
	}
}

func (e *Engine) Ping(ctx context.Context) ([]string, error) {
	timer := time.NewTimer(e.PingDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return []string{shared.OK}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Tokenize returns the lowercased maximal runs of letters in line. Anything
// that is not a letter separates tokens.
func Tokenize(line string) []string {
	fields := strings.FieldsFunc(line, func(c rune) bool {
		return !unicode.IsLetter(c)
	})
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}

// Words returns the tokens of line that survive filtering: longer than one
// letter and not a stopword.
func (e *Engine) Words(line string) []string {
	var words []string
	for _, w := range Tokenize(line) {
		if utf8.RuneCountInString(w) <= 1 {
			continue
		}
		if _, stop := e.Stopwords[w]; stop {
			continue
		}
		words = append(words, w)
	}
	return words
}

// Map counts the words of a split. One "word: 1" record per occurrence goes
// to the split's UMx file and one "word:UMx" line per occurrence is
// returned. Nothing is written when no word survives.
func (e *Engine) Map(split string) ([]string, error) {
	mapFile, err := shared.MapFileName(split)
	if err != nil {
		return nil, err
	}
	lines, err := shared.ReadLines(shared.Resolve(e.Root, split))
	if err != nil {
		return nil, err
	}

	var records, out []string
	for _, line := range lines {
		for _, w := range e.Words(line) {
			records = append(records, shared.Occurrence(w))
			out = append(out, w+":"+mapFile)
		}
	}
	if len(records) == 0 {
		return nil, nil
	}
	if err := shared.WriteLines(shared.Resolve(e.Root, mapFile), records); err != nil {
		return nil, err
	}
	return out, nil
}

// ShuffleReduce gathers the records of key from mapFiles into the shuffle
// file and writes "key:total" to reduceFile. Both files are replaced, so a
// rerun produces the same content.
//
// A malformed record (no separator, non numeric count) is logged and
// skipped; the rest of its file still counts. A map file that cannot be
// read fails the task.
func (e *Engine) ShuffleReduce(key, reduceFile string, mapFiles []string) ([]string, error) {
	shuffleFile, err := shared.ShuffleName(reduceFile)
	if err != nil {
		return nil, err
	}

	var (
		count   int
		matched []string
	)
	for _, mapFile := range mapFiles {
		lines, err := shared.ReadLines(shared.Resolve(e.Root, mapFile))
		if err != nil {
			return nil, fmt.Errorf("shuffle %s: %w", key, err)
		}
		for i, line := range lines {
			word, n, err := shared.ParseCount(line)
			if err != nil {
				e.Logger.Printf("[Reducer] %s:%d skipped: %v", mapFile, i+1, err)
				continue
			}
			if !strings.EqualFold(word, key) {
				continue
			}
			count += n
			matched = append(matched, shared.Record(key, n))
		}
	}

	if len(matched) > 0 {
		if err := shared.WriteLines(shared.Resolve(e.Root, shuffleFile), matched); err != nil {
			return nil, err
		}
	}
	result := shared.FormatCount(key, count)
	if err := shared.WriteLines(shared.Resolve(e.Root, reduceFile), []string{result}); err != nil {
		return nil, err
	}
	return []string{result}, nil
}
