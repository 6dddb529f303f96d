package master

import (
	"context"
	"fmt"

	"github.com/dimfu/mrwordrank/shared"
)

type assignment struct {
	host string
	task shared.Task
}

// plan cuts tasks into batches of len(hosts)*perHost. Inside a batch the
// hosts are taken round-robin, once per slot.
func plan(tasks []shared.Task, hosts []string, perHost int) [][]assignment {
	size := len(hosts) * perHost
	if size == 0 {
		return nil
	}
	var batches [][]assignment
	for start := 0; start < len(tasks); start += size {
		end := min(start+size, len(tasks))
		batch := make([]assignment, 0, end-start)
		for i, t := range tasks[start:end] {
			batch = append(batch, assignment{host: hosts[i%len(hosts)], task: t})
		}
		batches = append(batches, batch)
	}
	return batches
}

type result struct {
	host  string
	task  shared.Task
	lines []string
}

// runBatches submits each batch whole and waits for all of it before the
// next one starts. Only tasks that produced a result are returned.
func (m *Master) runBatches(ctx context.Context, name string, tasks []shared.Task, hosts []string) ([]result, error) {
	var (
		results       []result
		success, fail int
	)
	for n, batch := range plan(tasks, hosts, m.cfg.TasksPerHost) {
		handles := make([]*Handle, 0, len(batch))
		for _, a := range batch {
			handles = append(handles, m.exec.Submit(ctx, a.host, a.task))
		}
		err := AwaitAll(ctx, handles)
		if err == nil {
			// tasks cut short by cancellation are not failures
			err = ctx.Err()
		}
		if err != nil {
			return nil, fmt.Errorf("%s batch %d: %w", name, n, err)
		}
		for _, h := range handles {
			lines, ok := h.Await(ctx)
			if !ok {
				fail++
				continue
			}
			success++
			results = append(results, result{host: h.Host, task: h.Task, lines: lines})
		}
	}
	m.logger.Printf("[%s] Success: %d, Failed: %d", name, success, fail)
	return results, nil
}
