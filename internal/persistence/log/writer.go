// Package log persists match logs as zstd-compressed JSONL: one header
// line describing the match, then one line per finalized round. The
// format is append-only and ordered, matching the in-memory log exactly.
package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"gridwar.gg/internal/matchlog"
)

// Header is the first line of every match log file.
type Header struct {
	Version      int    `json:"version"`
	MatchID      string `json:"match_id"`
	Map          string `json:"map"`
	Ruleset      string `json:"ruleset"`
	RulesetDigest string `json:"ruleset_digest"`
	Seed         int64  `json:"seed"`
}

const FormatVersion = 1

type Writer struct {
	f      *os.File
	enc    *zstd.Encoder
	w      *bufio.Writer
	closed bool
}

// Create opens a new match log file and writes its header.
func Create(path string, hdr Header) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w := &Writer{f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}
	hdr.Version = FormatVersion
	if err := w.writeLine(hdr); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

// WriteRound appends one finalized round entry.
func (w *Writer) WriteRound(entry matchlog.RoundEntry) error {
	return w.writeLine(entry)
}

func (w *Writer) writeLine(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	var first error
	if err := w.w.Flush(); err != nil {
		first = err
	}
	if err := w.enc.Close(); err != nil && first == nil {
		first = err
	}
	if err := w.f.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
