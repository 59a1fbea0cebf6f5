package attr

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON writes the map as a JSON object in insertion order.
func (m *FreqMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", m.counts[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of counts, keeping key order.
func (m *FreqMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: frequency map must be a JSON object", ErrWrongShape)
	}
	*m = FreqMap{counts: make(map[string]int)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)
		var n json.Number
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrBadCount, key, err)
		}
		c, err := n.Int64()
		if err != nil {
			return fmt.Errorf("%w: %q=%s", ErrBadCount, key, n)
		}
		if err := m.Add(key, int(c)); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

// MarshalJSON encodes the tag through the JSON type: string for a scalar,
// object for a frequency mapping, array for a list, null when absent.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindAbsent:
		return []byte("null"), nil
	case KindScalar:
		return json.Marshal(v.scalar)
	case KindFrequency:
		return v.freq.MarshalJSON()
	case KindList:
		return json.Marshal(v.list)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, v.kind)
	}
}

// UnmarshalJSON reverses MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty JSON value", ErrWrongShape)
	}
	switch data[0] {
	case 'n':
		*v = Absent()
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Scalar(s)
	case '{':
		m := NewFreqMap()
		if err := m.UnmarshalJSON(data); err != nil {
			return err
		}
		*v = Frequency(m)
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*v = List(items...)
	default:
		return fmt.Errorf("%w: unexpected JSON %s", ErrWrongShape, data)
	}
	return nil
}
