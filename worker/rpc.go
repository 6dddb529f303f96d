package worker

import (
	"context"
	"errors"
	"log"
	"net"
	"net/rpc"
	"sync/atomic"

	"github.com/dimfu/mrwordrank/shared"
)

// Worker exposes an Engine over net/rpc as "Worker.Health" and
// "Worker.Run".
type Worker struct {
	Addr   string
	engine *Engine
	nTasks atomic.Int64
}

func NewWorker(addr string, e *Engine) *Worker {
	return &Worker{Addr: addr, engine: e}
}

func (w *Worker) Health(args *shared.Args, reply *string) error {
	*reply = shared.OK
	return nil
}

func (w *Worker) Run(args *shared.Args, reply *shared.Reply) error {
	t := args.Task()
	w.engine.Logger.Printf("[%v] Running %v", w.Addr, t)
	lines, err := w.engine.Run(context.Background(), t)
	if err != nil {
		w.engine.Logger.Printf("[%v] %v failed: %v", w.Addr, t.Kind, err)
		return err
	}
	w.nTasks.Add(1)
	reply.Lines = lines
	return nil
}

// Tasks returns how many tasks completed successfully.
func (w *Worker) Tasks() int64 {
	return w.nTasks.Load()
}

// Serve answers RPCs on l until ctx is done or l is closed.
func Serve(ctx context.Context, l net.Listener, w *Worker) error {
	server := rpc.NewServer()
	if err := server.Register(w); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		l.Close()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("Accept error: %v\n", err)
			continue
		}
		go server.ServeConn(conn)
	}
}
