package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/dimfu/mrwordrank/master"
	"github.com/dimfu/mrwordrank/worker"
)

const PORT = ":8080"

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <hosts-file> <host-status-file> <input-file> <output-file> [<split-size>]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	var (
		root, runnerKind, sshCmd, stopwords, serve string
		port, tasksPerHost                         int
		clean                                      bool
	)
	flag.StringVar(&root, "root", ".", "Shared directory for intermediate files, mounted at the same path on every worker")
	flag.StringVar(&runnerKind, "runner", "rpc", "How tasks reach workers: rpc, ssh or local")
	flag.IntVar(&port, "port", 0, "Worker RPC port for hosts listed without one")
	flag.StringVar(&sshCmd, "ssh", "ssh -o BatchMode=yes {host} worker", "Command prefix for the ssh runner")
	flag.IntVar(&tasksPerHost, "tasks-per-host", master.TASKS_PER_HOST, "Concurrent tasks per host in a batch")
	timeout := flag.Duration("timeout", 0, "Per task timeout (0 waits forever)")
	flag.StringVar(&stopwords, "stopwords", "", "Stopword file for the local runner")
	flag.StringVar(&serve, "serve", "", "Keep serving the result over HTTP on this address, e.g. "+PORT)
	flag.BoolVar(&clean, "clean", false, "Remove intermediate files after the run")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 4 {
		usage()
		os.Exit(2)
	}
	cfg := master.DefaultConfig()
	cfg.HostsFile = flag.Arg(0)
	cfg.StatusFile = flag.Arg(1)
	cfg.InputFile = flag.Arg(2)
	cfg.OutputFile = flag.Arg(3)
	cfg.Root = root
	cfg.TasksPerHost = tasksPerHost
	cfg.TaskTimeout = *timeout
	cfg.Clean = clean
	if flag.NArg() > 4 {
		n, err := strconv.Atoi(flag.Arg(4))
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid split size %q\n", flag.Arg(4))
			os.Exit(2)
		}
		cfg.SplitSize = n
	}

	runner, err := newRunner(runnerKind, root, port, sshCmd, stopwords)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	m, err := master.New(cfg, runner, log.Default())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := m.Run(ctx)
	if errors.Is(err, master.ErrNoReachableHosts) {
		fmt.Fprintln(os.Stderr, "No reachable slave hosts")
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}

	if serve != "" {
		if err := runServer(ctx, serve, newStatus(report)); err != nil {
			log.Fatal(err)
		}
	}
}

func newRunner(kind, root string, port int, sshCmd, stopwords string) (master.Runner, error) {
	switch kind {
	case "rpc":
		return &master.RPCRunner{Port: port}, nil
	case "ssh":
		argv := strings.Fields(sshCmd)
		if len(argv) == 0 {
			return nil, errors.New("empty -ssh command")
		}
		return &master.CommandRunner{Argv: argv}, nil
	case "local":
		engine := worker.NewEngine(root)
		if stopwords != "" {
			set, err := worker.LoadStopwords(stopwords)
			if err != nil {
				return nil, fmt.Errorf("failed to load stopwords: %w", err)
			}
			engine.Stopwords = set
		}
		return &master.LocalRunner{Engine: engine}, nil
	}
	return nil, fmt.Errorf("unknown runner %q", kind)
}

func runServer(ctx context.Context, addr string, s *status) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("error while listening to port %s: %v", addr, err)
	}
	srv := &http.Server{Handler: s.Routes()}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	log.Printf("Serving results on %v", l.Addr())
	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
