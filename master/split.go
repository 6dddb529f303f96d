package master

import (
	"strings"

	"github.com/dimfu/mrwordrank/shared"
)

// SplitInput cuts the non blank lines of input into chunks of at most size
// lines, in order, and writes them as S0..Sn-1 under run. It returns the
// split identifiers. An input without any non blank line yields no split.
func SplitInput(root, run, input string, size int) ([]string, error) {
	lines, err := shared.ReadLines(input)
	if err != nil {
		return nil, err
	}

	var (
		splits []string
		chunk  []string
	)
	flush := func() error {
		id := shared.SplitName(run, len(splits))
		if err := shared.WriteLines(shared.Resolve(root, id), chunk); err != nil {
			return err
		}
		splits = append(splits, id)
		chunk = chunk[:0]
		return nil
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		chunk = append(chunk, line)
		if len(chunk) >= size {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if len(chunk) > 0 {
		if err := flush(); err != nil {
			return nil, err
		}
	}
	return splits, nil
}
