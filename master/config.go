package master

import (
	"errors"
	"fmt"
	"time"
)

const (
	TASKS_PER_HOST = 1
	SPLIT_SIZE     = 1
	TOP_N          = 50
)

var ErrConfig = errors.New("invalid configuration")

type Config struct {
	HostsFile  string // candidate hosts, one per line
	StatusFile string // reachability report, "host: true|false"
	InputFile  string // corpus
	OutputFile string // final "word:count" report

	// Root is the local mount of the namespace shared with every worker.
	// Intermediate files of a run live under Root/<run id>.
	Root string

	SplitSize    int           // non blank lines per split
	TasksPerHost int           // concurrent tasks per host within a batch
	TaskTimeout  time.Duration // zero waits forever
	Clean        bool          // remove intermediate files after the run
}

func DefaultConfig() Config {
	return Config{
		Root:         ".",
		SplitSize:    SPLIT_SIZE,
		TasksPerHost: TASKS_PER_HOST,
	}
}

func (c *Config) Validate() error {
	switch {
	case c.HostsFile == "":
		return fmt.Errorf("%w: missing hosts file", ErrConfig)
	case c.StatusFile == "":
		return fmt.Errorf("%w: missing status file", ErrConfig)
	case c.InputFile == "":
		return fmt.Errorf("%w: missing input file", ErrConfig)
	case c.OutputFile == "":
		return fmt.Errorf("%w: missing output file", ErrConfig)
	case c.SplitSize < 1:
		return fmt.Errorf("%w: split size must be positive, got %d", ErrConfig, c.SplitSize)
	case c.TasksPerHost < 1:
		return fmt.Errorf("%w: tasks per host must be positive, got %d", ErrConfig, c.TasksPerHost)
	case c.TaskTimeout < 0:
		return fmt.Errorf("%w: negative task timeout", ErrConfig)
	}
	if c.Root == "" {
		c.Root = "."
	}
	return nil
}
