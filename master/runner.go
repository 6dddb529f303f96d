package master

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/dimfu/mrwordrank/shared"
	"github.com/dimfu/mrwordrank/worker"
)

const DIAL_TIMEOUT = 5 * time.Second

var ErrUnreachable = errors.New("host unreachable")

// RPCRunner calls Worker.Run on a worker started with -serve.
type RPCRunner struct {
	Port        int // used when a host has no port of its own
	DialTimeout time.Duration
}

func (r *RPCRunner) addr(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	port := r.Port
	if port == 0 {
		port = shared.WORKER_PORT
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func (r *RPCRunner) Run(ctx context.Context, host string, t shared.Task) ([]string, error) {
	timeout := r.DialTimeout
	if timeout == 0 {
		timeout = DIAL_TIMEOUT
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", r.addr(host))
	if err != nil {
		return nil, fmt.Errorf("error on dialing: %w", err)
	}
	client := rpc.NewClient(conn)
	defer client.Close()

	var reply shared.Reply
	call := client.Go("Worker.Run", shared.NewArgs(t), &reply, make(chan *rpc.Call, 1))
	select {
	case <-call.Done:
		if call.Error != nil {
			return nil, call.Error
		}
		return reply.Lines, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CommandRunner runs the worker binary through a remote shell. Argv is the
// command prefix, "{host}" in any element is replaced by the host, and the
// task is appended as arguments, e.g.
//
//	ssh -o BatchMode=yes {host} worker -root /shared
type CommandRunner struct {
	Argv []string
}

func (r *CommandRunner) Run(ctx context.Context, host string, t shared.Task) ([]string, error) {
	if len(r.Argv) == 0 {
		return nil, errors.New("empty command")
	}
	argv := make([]string, 0, len(r.Argv)+len(t.Params)+1)
	for _, a := range r.Argv {
		argv = append(argv, strings.ReplaceAll(a, "{host}", host))
	}
	argv = append(argv, t.Argv()...)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}

	var lines []string
	s := bufio.NewScanner(&stdout)
	for s.Scan() {
		if l := strings.TrimRight(s.Text(), "\r"); l != "" {
			lines = append(lines, l)
		}
	}
	return lines, s.Err()
}

// LocalRunner runs every task in process, whatever the host. Hosts listed
// in Down behave as unreachable.
type LocalRunner struct {
	Engine *worker.Engine
	Down   map[string]bool
}

func (r *LocalRunner) Run(ctx context.Context, host string, t shared.Task) ([]string, error) {
	if r.Down[host] {
		return nil, fmt.Errorf("%w: %s", ErrUnreachable, host)
	}
	return r.Engine.Run(ctx, t)
}
