package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/dimfu/mrwordrank/shared"
	"github.com/dimfu/mrwordrank/worker"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  %s [flags] PING|MAP <Sx>|SHUFFLE_REDUCE <key> <RMx> <UMx>...\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s -serve [flags]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	var (
		port      int
		serve     bool
		root      string
		stopwords string
	)
	flag.IntVar(&port, "p", shared.WORKER_PORT, "Provide port number")
	flag.BoolVar(&serve, "serve", false, "Answer tasks over RPC instead of running one")
	flag.StringVar(&root, "root", ".", "Shared directory holding intermediate files")
	flag.StringVar(&stopwords, "stopwords", "", "File with one stopword per line (default: built-in French list)")
	pingDelay := flag.Duration("ping-delay", worker.PING_DELAY, "Simulated latency of PING")
	flag.Usage = usage
	flag.Parse()

	engine := worker.NewEngine(root)
	engine.PingDelay = *pingDelay
	if stopwords != "" {
		set, err := worker.LoadStopwords(stopwords)
		if err != nil {
			log.Fatalf("failed to load stopwords: %v", err)
		}
		engine.Stopwords = set
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serve {
		if err := runServer(ctx, engine, port); err != nil {
			log.Fatal(err)
		}
		return
	}

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}
	kind, err := shared.ParseTaskKind(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	lines, err := engine.Run(ctx, shared.Task{Kind: kind, Params: flag.Args()[1:]})
	if err != nil {
		log.Fatal(err)
	}
	for _, l := range lines {
		fmt.Println(l)
	}
}

func runServer(ctx context.Context, engine *worker.Engine, port int) error {
	var l net.Listener
	for {
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			if errors.Is(err, syscall.EADDRINUSE) {
				fmt.Printf("Port %d in use, trying next...\n", port)
				port++
				continue
			}
			return err
		}
		l = listener
		break
	}

	hostname, _ := os.Hostname()
	w := worker.NewWorker(fmt.Sprintf("%s:%d", hostname, port), engine)
	log.Printf("Accepting connections on %v", l.Addr())
	if err := worker.Serve(ctx, l, w); err != nil {
		return err
	}
	log.Printf("received shutdown after %d tasks", w.Tasks())
	return nil
}
