package master

import (
	"fmt"
	"sort"

	"github.com/dimfu/mrwordrank/shared"
)

// KeyIndex records, for one run, which UMx files hold each word and which
// host produced each UMx file.
type KeyIndex struct {
	Files     map[string]map[string]struct{}
	Producers map[string]string
}

func NewKeyIndex() *KeyIndex {
	return &KeyIndex{
		Files:     make(map[string]map[string]struct{}),
		Producers: make(map[string]string),
	}
}

// Add records one "word:UMx" line reported by a map task on host.
func (k *KeyIndex) Add(host, line string) error {
	word, mapFile, err := shared.ParseRecord(line)
	if err != nil {
		return err
	}
	if word == "" || mapFile == "" {
		return fmt.Errorf("empty field in %q", line)
	}
	files, ok := k.Files[word]
	if !ok {
		files = make(map[string]struct{})
		k.Files[word] = files
	}
	files[mapFile] = struct{}{}
	k.Producers[mapFile] = host
	return nil
}

// Keys returns the indexed words in lexicographic order.
func (k *KeyIndex) Keys() []string {
	keys := make([]string, 0, len(k.Files))
	for w := range k.Files {
		keys = append(keys, w)
	}
	sort.Strings(keys)
	return keys
}

func (k *KeyIndex) FilesOf(word string) []string {
	files := make([]string, 0, len(k.Files[word]))
	for f := range k.Files[word] {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}
