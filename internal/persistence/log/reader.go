package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"gridwar.gg/internal/matchlog"
)

type Reader struct {
	f      *os.File
	dec    *zstd.Decoder
	sc     *bufio.Scanner
	header Header
}

// Open reads the header of a match log file and positions the reader at
// the first round entry.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 1<<20), 64<<20)
	r := &Reader{f: f, dec: dec, sc: sc}
	if !sc.Scan() {
		r.Close()
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("match log %s: empty file", path)
	}
	if err := json.Unmarshal(sc.Bytes(), &r.header); err != nil {
		r.Close()
		return nil, fmt.Errorf("match log %s: bad header: %w", path, err)
	}
	if r.header.Version != FormatVersion {
		r.Close()
		return nil, fmt.Errorf("match log %s: unsupported version %d", path, r.header.Version)
	}
	return r, nil
}

func (r *Reader) Header() Header { return r.header }

// Next returns the next round entry, or io.EOF.
func (r *Reader) Next() (matchlog.RoundEntry, error) {
	var entry matchlog.RoundEntry
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return entry, err
		}
		return entry, io.EOF
	}
	if err := json.Unmarshal(r.sc.Bytes(), &entry); err != nil {
		return entry, err
	}
	return entry, nil
}

func (r *Reader) Close() error {
	r.dec.Close()
	return r.f.Close()
}
