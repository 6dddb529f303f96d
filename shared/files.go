package shared

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// File identifiers are slash separated paths relative to the shared root
// that every host mounts. Base names carry the file kind:
//
//	S<n>   split n of the corpus
//	UM<n>  unsorted map output of split n
//	RM<i>  reduce output of the i-th scheduled key
//	SM<i>  shuffle output of the i-th scheduled key
const (
	SPLIT_PREFIX   = "S"
	MAP_PREFIX     = "UM"
	REDUCE_PREFIX  = "RM"
	SHUFFLE_PREFIX = "SM"
)

var ErrMissingSeparator = errors.New("missing separator")

func SplitName(run string, n int) string {
	return path.Join(run, fmt.Sprintf("%s%d", SPLIT_PREFIX, n))
}

func ReduceName(run string, i int) string {
	return path.Join(run, fmt.Sprintf("%s%d", REDUCE_PREFIX, i))
}

// MapFileName derives the UMx identifier from its split: S3 -> UM3.
func MapFileName(split string) (string, error) {
	dir, base := path.Split(split)
	if !strings.HasPrefix(base, SPLIT_PREFIX) {
		return "", fmt.Errorf("%q is not a split file", split)
	}
	if _, err := strconv.Atoi(base[len(SPLIT_PREFIX):]); err != nil {
		return "", fmt.Errorf("%q is not a split file", split)
	}
	return dir + MAP_PREFIX + base[len(SPLIT_PREFIX):], nil
}

// SplitOf is the inverse of MapFileName: UM3 -> S3.
func SplitOf(mapFile string) (string, error) {
	dir, base := path.Split(mapFile)
	if !strings.HasPrefix(base, MAP_PREFIX) {
		return "", fmt.Errorf("%q is not a map file", mapFile)
	}
	return dir + SPLIT_PREFIX + base[len(MAP_PREFIX):], nil
}

// ShuffleName derives the SMx identifier from its RMx: RM7 -> SM7.
func ShuffleName(reduceFile string) (string, error) {
	dir, base := path.Split(reduceFile)
	if !strings.HasPrefix(base, REDUCE_PREFIX) {
		return "", fmt.Errorf("%q is not a reduce file", reduceFile)
	}
	return dir + SHUFFLE_PREFIX + base[len(REDUCE_PREFIX):], nil
}

// Resolve maps a file identifier onto the local view of the shared root.
func Resolve(root, id string) string {
	return filepath.Join(root, filepath.FromSlash(id))
}

// ParseRecord splits a "key: value" line on its first colon and trims both
// halves.
func ParseRecord(line string) (key, value string, err error) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", "", fmt.Errorf("%w in %q", ErrMissingSeparator, line)
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), nil
}

// ParseCount parses a "word:count" record.
func ParseCount(line string) (string, int, error) {
	key, value, err := ParseRecord(line)
	if err != nil {
		return "", 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return "", 0, fmt.Errorf("bad count in %q: %w", line, err)
	}
	return key, n, nil
}

func FormatCount(key string, n int) string {
	return key + ":" + strconv.Itoa(n)
}

// Record formats a "key: n" line as found in UMx and SMx files.
func Record(key string, n int) string {
	return key + ": " + strconv.Itoa(n)
}

// Occurrence is the record written once per token occurrence in a UMx file.
func Occurrence(key string) string {
	return Record(key, 1)
}

func ReadLines(p string) ([]string, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return lines, nil
}

// WriteLines replaces p with lines, one per line. The content is written to
// a temp file first and renamed into place.
func WriteLines(p string, lines []string) error {
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(p)+".tmp-*")
	if err != nil {
		return err
	}
	tmp.Chmod(0o644)
	w := bufio.NewWriter(tmp)
	for _, l := range lines {
		w.WriteString(l)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename failed: %w", err)
	}
	return nil
}
