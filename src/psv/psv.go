// Package psv reads and writes the pipe separated flat files exchanged with the loader.
//
// A file is a header line of field names followed by one line per record. Fields are
// separated by '|' and lines end with '\n'. Nil values are written as empty fields and
// every value reads back as a string.
package psv

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ogri-la/wowhead-scraper-go/src/types"
)

const (
	Delimiter  = "|"
	Terminator = "\n"
	Extension  = ".psv"
)

// ErrFileNotFound is returned when reading a file that was never written.
// It wraps fs.ErrNotExist.
var ErrFileNotFound = fmt.Errorf("flat file not found: %w", fs.ErrNotExist)

// the delimiter and terminator can't be quoted, values containing them are flattened
var fieldReplacer = strings.NewReplacer(Delimiter, "/", "\r\n", " ", "\n", " ", "\r", " ")

func encodeLine(fields []string) string {
	return strings.Join(fields, Delimiter) + Terminator
}

func encodeRecord(header []string, record types.Record) string {
	fields := make([]string, len(header))
	for i, name := range header {
		fields[i] = fieldReplacer.Replace(record.String(name))
	}
	return encodeLine(fields)
}

func encode(header []string, records []types.Record, withHeader bool) string {
	var b strings.Builder
	if withHeader {
		b.WriteString(encodeLine(header))
	}
	for _, record := range records {
		b.WriteString(encodeRecord(header, record))
	}
	return b.String()
}

// Write replaces the file at path with header and records.
// The file is written to a temporary sibling first and renamed into place, a failed write
// leaves any previous file untouched.
func Write(path string, header []string, records []types.Record) error {
	if len(header) == 0 {
		return fmt.Errorf("failed to write '%s': empty header", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(encode(header, records, true)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace '%s': %w", path, err)
	}
	return nil
}

// Append adds records to the end of the file at path without a header line.
// The file must already exist.
func Append(path string, header []string, records []types.Record) error {
	if len(records) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("failed to open '%s': %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(encode(header, records, false)); err != nil {
		return fmt.Errorf("failed to append to '%s': %w", path, err)
	}
	return nil
}

// Read parses the file at path. The first line is the header unless one is supplied,
// in which case every line is a record.
func Read(path string, header ...string) ([]types.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to open '%s': %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	lineNum := 0
	if len(header) == 0 {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("failed to read '%s': %w", path, err)
			}
			return nil, fmt.Errorf("failed to read '%s': missing header", path)
		}
		lineNum++
		header = strings.Split(scanner.Text(), Delimiter)
	}

	records := []types.Record{}
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, Delimiter)
		if len(fields) != len(header) {
			return nil, fmt.Errorf("failed to read '%s': line %d has %d fields, header has %d", path, lineNum, len(fields), len(header))
		}
		record := make(types.Record, len(header))
		for i, name := range header {
			record[name] = fields[i]
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read '%s': %w", path, err)
	}
	return records, nil
}

// ReadHeader returns just the header line of the file at path
func ReadHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to open '%s': %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, fmt.Errorf("failed to read '%s': missing header", path)
	}
	return strings.Split(scanner.Text(), Delimiter), nil
}

// Store is a directory of flat files, one per entity
type Store struct {
	Dir string
}

// NewStore creates a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Path returns the file path for an entity
func (s *Store) Path(entity types.Entity) string {
	return filepath.Join(s.Dir, string(entity)+Extension)
}

func (s *Store) Write(entity types.Entity, header []string, records []types.Record) error {
	return Write(s.Path(entity), header, records)
}

func (s *Store) Append(entity types.Entity, header []string, records []types.Record) error {
	return Append(s.Path(entity), header, records)
}

func (s *Store) Read(entity types.Entity) ([]types.Record, error) {
	return Read(s.Path(entity))
}

func (s *Store) Exists(entity types.Entity) bool {
	_, err := os.Stat(s.Path(entity))
	return err == nil
}

// Clear removes every flat file in the store directory and returns how many were removed
func (s *Store) Clear() (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.Dir, "*"+Extension))
	if err != nil {
		return 0, fmt.Errorf("failed to list flat files: %w", err)
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			return 0, fmt.Errorf("failed to remove '%s': %w", path, err)
		}
	}
	return len(matches), nil
}
