package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// maxLineBytes bounds a single stored conversation; lines beyond it are
// skipped on load rather than parsed.
const maxLineBytes = 8 * 1024 * 1024

// Writer appends conversations to a JSON Lines file. Every Append is flushed
// through to stable storage before it returns, so a crash between two appends
// leaves all prior lines intact. Single writer only.
type Writer struct {
	file *os.File
}

// NewWriter creates (or truncates) the transcript file at path.
func NewWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Writer{file: file}, nil
}

// Append serializes the conversation as a single JSON line and syncs the file.
func (w *Writer) Append(conv Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	if _, err := w.file.Write(append(data, '\n')); err != nil {
		return err
	}
	return w.file.Sync()
}

// Close releases the underlying file handle.
func (w *Writer) Close() error {
	return w.file.Close()
}

// Load reads every parseable conversation from a JSON Lines file. Lines that
// fail to parse, and lines over maxLineBytes, are skipped; an interrupted
// fetch run may leave a truncated final line behind.
func Load(path string) ([]Conversation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var conversations []Conversation
	reader := bufio.NewReaderSize(file, 64*1024)
	for {
		line, readErr := reader.ReadBytes('\n')
		if len(line) > 0 && len(line) <= maxLineBytes {
			var conv Conversation
			if err := json.Unmarshal(line, &conv); err == nil {
				conversations = append(conversations, conv)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("reading %s: %w", path, readErr)
		}
	}
	return conversations, nil
}

// Rewrite replaces the transcript file with the given conversations. The new
// content lands in a temporary file first and is renamed over the original, so
// readers never observe a half-written file.
func Rewrite(path string, conversations []Conversation) error {
	tmp := path + ".part"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}
	writer := bufio.NewWriter(file)
	for _, conv := range conversations {
		data, err := json.Marshal(conv)
		if err != nil {
			file.Close()
			os.Remove(tmp)
			return err
		}
		writer.Write(data)
		writer.WriteByte('\n')
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
