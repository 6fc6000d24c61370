package skills

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoSkillColumn is returned when a tabular catalog has no recognizable skill column.
var ErrNoSkillColumn = errors.New("could not infer skill column")

// columnKeys lists the accepted skill column names, in priority order, after
// lowercasing and removing spaces and underscores.
//
//nolint:gochecknoglobals
var columnKeys = []string{
	"skill",
	"skills",
	"skillname",
	"allskills",
	"technology",
	"technologies",
	"jobskills",
	"requiredskills",
}

// Catalog is the read-only vocabulary of known skills.
type Catalog struct {
	names []string
}

// NewCatalog lowercases, trims and deduplicates the entries.
func NewCatalog(entries []string) *Catalog {
	seen := make(map[string]struct{}, len(entries))
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := strings.ToLower(strings.TrimSpace(entry))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return &Catalog{names: names}
}

// Names returns a copy of the catalog entries in lexical order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.names...)
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

func (c *Catalog) Contains(name string) bool {
	if c == nil {
		return false
	}
	i := sort.SearchStrings(c.names, name)
	return i < len(c.names) && c.names[i] == name
}

// Merge returns a catalog holding the entries of both catalogs.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	return NewCatalog(append(c.Names(), other.Names()...))
}

// LoadCatalog reads a catalog file. The format is chosen by extension:
// .json (array of strings or objects), .csv (header row with a skill column)
// and anything else as one skill per line. Entries are normalized.
func LoadCatalog(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %q: %w", path, err)
	}
	defer file.Close()

	var raw []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		raw, err = readJSONCatalog(file)
	case ".csv":
		raw, err = readCSVCatalog(file)
	default:
		raw, err = readLineCatalog(file)
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog %q: %w", path, err)
	}

	return NewCatalog(NormalizeAll(raw)), nil
}

func readLineCatalog(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}

func readJSONCatalog(r io.Reader) ([]string, error) {
	var items []any
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}

	var out []string
	for i, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			keys := make([]string, 0, len(v))
			for key := range v {
				keys = append(keys, key)
			}
			column, ok := inferColumn(keys)
			if !ok {
				return nil, fmt.Errorf("item %d: %w (available keys: %s)", i, ErrNoSkillColumn, strings.Join(keys, ", "))
			}
			out = append(out, flattenValue(v[column])...)
		default:
			return nil, fmt.Errorf("item %d: unsupported catalog entry of type %T", i, item)
		}
	}
	return out, nil
}

func readCSVCatalog(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	column, ok := inferColumn(header)
	if !ok {
		return nil, fmt.Errorf("%w (available columns: %s)", ErrNoSkillColumn, strings.Join(header, ", "))
	}
	idx := -1
	for i, name := range header {
		if name == column {
			idx = i
			break
		}
	}

	var out []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if idx >= len(record) {
			continue
		}
		out = append(out, splitList(record[idx])...)
	}
	return out, nil
}

// inferColumn picks the first known skill column among names, comparing them
// case-insensitively and ignoring spaces and underscores.
func inferColumn(names []string) (string, bool) {
	byKey := make(map[string]string, len(names))
	for _, name := range names {
		key := strings.ToLower(name)
		key = strings.ReplaceAll(key, " ", "")
		key = strings.ReplaceAll(key, "_", "")
		if _, ok := byKey[key]; !ok {
			byKey[key] = name
		}
	}
	for _, key := range columnKeys {
		if name, ok := byKey[key]; ok {
			return name, true
		}
	}
	return "", false
}

func flattenValue(v any) []string {
	switch value := v.(type) {
	case string:
		return splitList(value)
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
