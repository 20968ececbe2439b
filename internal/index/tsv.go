package index

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/edsrzf/mmap-go"
)

// ErrMalformedRow is returned for a TSV row that is not
// "token<TAB>doc:freq ...".
var ErrMalformedRow = errors.New("index: malformed row")

// ReadTSV loads an index from rows of "token<TAB>doc:freq doc:freq".
// Frequencies are validated and then dropped; document ids are added to docs.
func ReadTSV(r io.Reader, docs *DocTable) (*InvertedIndex, error) {
	ix := New(docs)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		row := sc.Text()
		if strings.TrimSpace(row) == "" {
			continue
		}
		token, postings, ok := strings.Cut(row, "\t")
		if !ok || token == "" {
			return nil, fmt.Errorf("%w: line %d: missing tab", ErrMalformedRow, line)
		}
		for _, entry := range strings.Fields(postings) {
			sep := strings.LastIndexByte(entry, ':')
			if sep <= 0 {
				return nil, fmt.Errorf("%w: line %d: posting %q", ErrMalformedRow, line, entry)
			}
			if _, err := strconv.ParseUint(entry[sep+1:], 10, 32); err != nil {
				return nil, fmt.Errorf("%w: line %d: frequency in %q", ErrMalformedRow, line, entry)
			}
			ix.Add(token, entry[:sep])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ix, nil
}

// OpenTSV maps the file at path and loads it with ReadTSV.
func OpenTSV(path string, docs *DocTable) (*InvertedIndex, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() == 0 {
		return New(docs), nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap index %s: %w", path, err)
	}
	defer data.Unmap()

	ix, err := ReadTSV(bytes.NewReader(data), docs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ix, nil
}
