package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/capesgraph/authormerge/internal/production"
)

// FlexibleInt can unmarshal from either a string or a number JSON value.
// Replacement tables written by different tools disagree on which.
type FlexibleInt int

func (f *FlexibleInt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n, err := parseInt(s)
		if err != nil {
			return err
		}
		*f = FlexibleInt(n)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		v, err := parseInt(n.String())
		if err != nil {
			return err
		}
		*f = FlexibleInt(v)
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleInt", string(data))
}

// ParseReplacements parses a JSON object mapping old production IDs to new
// ones. Keys are strings, since JSON has no integer keys.
func ParseReplacements(data []byte) (production.Replacements, error) {
	if strings.TrimSpace(string(data)) == "" {
		return production.Replacements{}, nil
	}
	var raw map[string]FlexibleInt
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing replacement table: %w", err)
	}
	out := make(production.Replacements, len(raw))
	for k, v := range raw {
		from, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("parsing replacement table: key %q is not an integer", k)
		}
		out[from] = int(v)
	}
	return out, nil
}

// ReadReplacements reads a replacement table.
func ReadReplacements(r io.Reader) (production.Replacements, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading replacement table: %w", err)
	}
	return ParseReplacements(data)
}

// ReadReplacementsFile reads the replacement table at path. An empty path
// yields an empty table.
func ReadReplacementsFile(path string) (production.Replacements, error) {
	if path == "" {
		return production.Replacements{}, nil
	}
	return openWith(path, ReadReplacements)
}
