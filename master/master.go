// Package master drives a word ranking run over a set of worker hosts:
//
//	PROBE -> SPLIT -> MAP -> SHUFFLE_REDUCE -> ASSEMBLE
//
// Phases never overlap. Inside MAP and SHUFFLE_REDUCE tasks go out in
// batches of hosts x TasksPerHost and every batch is fully drained before
// the next one is submitted. Splits map to UMx files and keys to RMx/SMx
// files one to one, so no two tasks of a batch write the same file.
package master

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dimfu/mrwordrank/shared"
)

var ErrNoReachableHosts = errors.New("no reachable slave hosts")

type Master struct {
	cfg    Config
	exec   *Executor
	logger *log.Logger
	runID  string
}

type HostStatus struct {
	Host      string
	Reachable bool
}

type Entry struct {
	Word  string
	Count int
}

type Phase struct {
	Name string
	Took time.Duration
}

type Report struct {
	RunID   string
	Hosts   []HostStatus
	Entries []Entry
	Phases  []Phase
}

func (r *Report) Reachable() []string {
	var hosts []string
	for _, h := range r.Hosts {
		if h.Reachable {
			hosts = append(hosts, h.Host)
		}
	}
	return hosts
}

// Top returns at most n entries from the head of the ranking.
func (r *Report) Top(n int) []Entry {
	return r.Entries[:min(n, len(r.Entries))]
}

func New(cfg Config, r Runner, logger *log.Logger) (*Master, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Master{
		cfg:    cfg,
		exec:   NewExecutor(r, cfg.TaskTimeout, logger),
		logger: logger,
		runID:  uuid.NewString(),
	}, nil
}

func (m *Master) RunID() string {
	return m.runID
}

func (m *Master) timed(report *Report, name string, f func() error) error {
	start := time.Now()
	err := f()
	took := time.Since(start)
	report.Phases = append(report.Phases, Phase{Name: name, Took: took})
	m.logger.Printf("%s time: %v", name, took)
	return err
}

// Run executes the whole pipeline. The report is returned even on error,
// holding whatever phases completed.
func (m *Master) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: m.runID}
	m.logger.Printf("Starting run %s", m.runID)

	err := m.timed(report, "Pinging", func() error {
		hosts, err := LoadHosts(m.cfg.HostsFile)
		if err != nil {
			return err
		}
		report.Hosts, err = m.Probe(ctx, hosts)
		if err != nil {
			return err
		}
		return WriteStatus(m.cfg.StatusFile, report.Hosts)
	})
	if err != nil {
		return report, err
	}
	reachable := report.Reachable()
	if len(reachable) == 0 {
		return report, ErrNoReachableHosts
	}

	var splits []string
	err = m.timed(report, "Splitting", func() (err error) {
		splits, err = SplitInput(m.cfg.Root, m.runID, m.cfg.InputFile, m.cfg.SplitSize)
		m.logger.Printf("%d splits", len(splits))
		return err
	})
	if err != nil {
		return report, err
	}

	var index *KeyIndex
	err = m.timed(report, "Mapping", func() (err error) {
		index, err = m.MapSplits(ctx, splits, reachable)
		return err
	})
	if err != nil {
		return report, err
	}

	err = m.timed(report, "Shuffle/reduce", func() (err error) {
		report.Entries, err = m.ShuffleReduce(ctx, index, reachable)
		return err
	})
	if err != nil {
		return report, err
	}

	err = m.timed(report, "Assembling", func() error {
		Rank(report.Entries)
		return WriteReport(m.cfg.OutputFile, report.Entries)
	})
	if err != nil {
		return report, err
	}
	m.logger.Printf("Top %d: %v", TOP_N, FormatEntries(report.Top(TOP_N)))

	if m.cfg.Clean {
		if err := os.RemoveAll(shared.Resolve(m.cfg.Root, m.runID)); err != nil {
			m.logger.Printf("failed to remove intermediate files: %v", err)
		}
	}
	return report, nil
}

// Probe pings every host at once. A host is reachable when its ping
// answers OK.
func (m *Master) Probe(ctx context.Context, hosts []string) ([]HostStatus, error) {
	handles := make([]*Handle, 0, len(hosts))
	for _, h := range hosts {
		handles = append(handles, m.exec.Submit(ctx, h, shared.PingTask()))
	}
	err := AwaitAll(ctx, handles)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("probe: %w", err)
	}

	status := make([]HostStatus, 0, len(hosts))
	for _, h := range handles {
		lines, ok := h.Await(ctx)
		up := ok && len(lines) > 0 && lines[0] == shared.OK
		m.logger.Printf("[Probe] %s: %v", h.Host, up)
		status = append(status, HostStatus{Host: h.Host, Reachable: up})
	}
	return status, nil
}

// MapSplits runs one map task per split and indexes the reported words.
func (m *Master) MapSplits(ctx context.Context, splits, hosts []string) (*KeyIndex, error) {
	tasks := make([]shared.Task, 0, len(splits))
	for _, s := range splits {
		tasks = append(tasks, shared.MapTask(s))
	}
	results, err := m.runBatches(ctx, "Mapper", tasks, hosts)
	if err != nil {
		return nil, err
	}

	index := NewKeyIndex()
	for _, r := range results {
		for _, line := range r.lines {
			if err := index.Add(r.host, line); err != nil {
				m.logger.Printf("[Mapper] %s: %v", r.host, err)
			}
		}
	}
	return index, nil
}

// ShuffleReduce runs one task per indexed key, numbering reduce files in
// key order, and collects the reported counts.
func (m *Master) ShuffleReduce(ctx context.Context, index *KeyIndex, hosts []string) ([]Entry, error) {
	keys := index.Keys()
	tasks := make([]shared.Task, 0, len(keys))
	for i, key := range keys {
		tasks = append(tasks, shared.ShuffleReduceTask(key, shared.ReduceName(m.runID, i), index.FilesOf(key)))
	}
	results, err := m.runBatches(ctx, "Reducer", tasks, hosts)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, r := range results {
		for _, line := range r.lines {
			word, n, err := shared.ParseCount(line)
			if err != nil {
				m.logger.Printf("[Reducer] %s: %v", r.host, err)
				continue
			}
			entries = append(entries, Entry{Word: word, Count: n})
		}
	}
	return entries, nil
}

// Rank orders entries by count, highest first, then by word.
func Rank(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Word < entries[j].Word
	})
}

func FormatEntries(entries []Entry) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, shared.FormatCount(e.Word, e.Count))
	}
	return lines
}

func WriteReport(p string, entries []Entry) error {
	return shared.WriteLines(p, FormatEntries(entries))
}

// LoadHosts reads the candidate hosts, skipping blank lines and repeats.
func LoadHosts(p string) ([]string, error) {
	lines, err := shared.ReadLines(p)
	if err != nil {
		return nil, fmt.Errorf("failed to load hosts: %w", err)
	}
	seen := make(map[string]bool, len(lines))
	var hosts []string
	for _, l := range lines {
		h := strings.TrimSpace(l)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		hosts = append(hosts, h)
	}
	return hosts, nil
}

func WriteStatus(p string, hosts []HostStatus) error {
	lines := make([]string, 0, len(hosts))
	for _, h := range hosts {
		lines = append(lines, h.Host+": "+strconv.FormatBool(h.Reachable))
	}
	return shared.WriteLines(p, lines)
}
