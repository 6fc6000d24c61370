package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	traceExt    = ".json"
	overrideExt = ".overrides.jsonl"
)

// FileStore keeps one indented JSON file per decision and a JSON lines file
// with its overrides next to it.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("audit directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create audit directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Append(_ context.Context, t Trace) error {
	if err := validateID(t.DecisionID); err != nil {
		return err
	}
	t.Overrides = nil

	f, err := os.OpenFile(s.tracePath(t.DecisionID), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, t.DecisionID)
		}
		return fmt.Errorf("create trace %s: %w", t.DecisionID, err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	err = enc.Encode(t)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// A partial file would block retries and fail every Load.
		_ = os.Remove(f.Name())
		return fmt.Errorf("write trace %s: %w", t.DecisionID, err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context, id string) (Trace, error) {
	if err := validateID(id); err != nil {
		return Trace{}, err
	}

	data, err := os.ReadFile(s.tracePath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Trace{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Trace{}, fmt.Errorf("read trace %s: %w", id, err)
	}

	var t Trace
	if err := json.Unmarshal(data, &t); err != nil {
		return Trace{}, fmt.Errorf("decode trace %s: %w", id, err)
	}

	overrides, err := s.readOverrides(id)
	if err != nil {
		return Trace{}, err
	}
	t.Overrides = overrides

	return t, nil
}

func (s *FileStore) AppendOverride(_ context.Context, o Override) error {
	if err := validateID(o.DecisionID); err != nil {
		return err
	}
	if _, err := os.Stat(s.tracePath(o.DecisionID)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, o.DecisionID)
		}
		return fmt.Errorf("stat trace %s: %w", o.DecisionID, err)
	}

	line, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode override: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.overridePath(o.DecisionID), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o640)
	if err != nil {
		return fmt.Errorf("open overrides %s: %w", o.DecisionID, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write override %s: %w", o.DecisionID, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) readOverrides(id string) ([]Override, error) {
	f, err := os.Open(s.overridePath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open overrides %s: %w", id, err)
	}
	defer f.Close()

	var out []Override
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var o Override
		if err := json.Unmarshal(scanner.Bytes(), &o); err != nil {
			return nil, fmt.Errorf("decode override for %s: %w", id, err)
		}
		out = append(out, o)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read overrides %s: %w", id, err)
	}
	return out, nil
}

func (s *FileStore) tracePath(id string) string {
	return filepath.Join(s.dir, id+traceExt)
}

func (s *FileStore) overridePath(id string) string {
	return filepath.Join(s.dir, id+overrideExt)
}
