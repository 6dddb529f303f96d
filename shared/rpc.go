package shared

import (
	"errors"
	"fmt"
	"strings"
)

type TaskKind string

const (
	TASK_PING           TaskKind = "PING"
	TASK_MAP            TaskKind = "MAP"
	TASK_SHUFFLE_REDUCE TaskKind = "SHUFFLE_REDUCE"
)

// OK is the only output of a successful ping.
const OK = "OK"

// WORKER_PORT is where a worker started with -serve listens by default.
const WORKER_PORT = 9000

var ErrBadTask = errors.New("bad task")

// Task is one unit of work for a worker: a kind plus its positional
// parameters, exactly as they would appear on a remote command line.
type Task struct {
	Kind   TaskKind
	Params []string
}

func PingTask() Task {
	return Task{Kind: TASK_PING}
}

func MapTask(split string) Task {
	return Task{Kind: TASK_MAP, Params: []string{split}}
}

// ShuffleReduceTask builds SHUFFLE_REDUCE <key> <RMx> <UMx>...
func ShuffleReduceTask(key, reduceFile string, mapFiles []string) Task {
	params := make([]string, 0, len(mapFiles)+2)
	params = append(params, key, reduceFile)
	params = append(params, mapFiles...)
	return Task{Kind: TASK_SHUFFLE_REDUCE, Params: params}
}

func ParseTaskKind(s string) (TaskKind, error) {
	switch k := TaskKind(strings.ToUpper(s)); k {
	case TASK_PING, TASK_MAP, TASK_SHUFFLE_REDUCE:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrBadTask, s)
}

func (t Task) Validate() error {
	switch t.Kind {
	case TASK_PING:
		return nil
	case TASK_MAP:
		if len(t.Params) != 1 {
			return fmt.Errorf("%w: usage MAP <Sx>", ErrBadTask)
		}
	case TASK_SHUFFLE_REDUCE:
		if len(t.Params) < 3 {
			return fmt.Errorf("%w: usage SHUFFLE_REDUCE <key> <RMx> <UMx>...", ErrBadTask)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrBadTask, t.Kind)
	}
	return nil
}

// Argv returns the task as command line arguments.
func (t Task) Argv() []string {
	return append([]string{string(t.Kind)}, t.Params...)
}

func (t Task) String() string {
	return strings.Join(t.Argv(), " ")
}

type Args struct {
	Kind   TaskKind
	Params []string
}

type Reply struct {
	Lines []string
}

func (a *Args) Task() Task {
	return Task{Kind: a.Kind, Params: a.Params}
}

func NewArgs(t Task) *Args {
	return &Args{Kind: t.Kind, Params: t.Params}
}
