// Package storage handles profile snapshots in JSONL and the SQLite query index.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/capesgraph/authormerge/internal/author"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (4MB per line).
// Prolific authors carry long production lists and name histories.
const MaxJSONLLineCapacity = 4 * 1024 * 1024

// ReadProfiles reads all profiles from a JSONL file. A missing file yields no profiles.
func ReadProfiles(path string) ([]*author.Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening profiles file: %w", err)
	}
	defer f.Close()

	var profiles []*author.Profile
	scanner := bufio.NewScanner(f)
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var p author.Profile
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if p.Attributes == nil {
			p.Attributes = author.Attributes{}
		}
		profiles = append(profiles, &p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading profiles file: %w", err)
	}

	return profiles, nil
}

// WriteProfiles writes all profiles of t to a JSONL file, replacing existing content.
func WriteProfiles(path string, t *author.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating profiles file: %w", err)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, p := range t.Profiles() {
		if err := enc.Encode(p); err != nil {
			f.Close()
			return fmt.Errorf("encoding profile %d: %w", p.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing profiles: %w", err)
	}
	return f.Close()
}

// LoadTable reads a profile snapshot back into a table.
func LoadTable(path string) (*author.Table, error) {
	profiles, err := ReadProfiles(path)
	if err != nil {
		return nil, err
	}
	return author.NewTable(profiles...), nil
}
