package attr

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValueJSON_KeepsTagAndOrder(t *testing.T) {
	in := map[string]Value{
		"freq":   Frequency(FreqMapOf("Z", 1, "A", 2)),
		"scalar": Scalar("UFMG"),
		"list":   List("Silva, Ana", "Ana Silva"),
		"absent": Absent(),
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"absent":null,"freq":{"Z":1,"A":2},"list":["Silva, Ana","Ana Silva"],"scalar":"UFMG"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	var out map[string]Value
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	m, ok := out["freq"].AsFrequency()
	if !ok || m.Keys()[0] != "Z" || m.Count("A") != 2 {
		t.Errorf("freq = %v", out["freq"])
	}
	if out["absent"].Kind() != KindAbsent || out["list"].Kind() != KindList {
		t.Errorf("kinds = %v, %v", out["absent"].Kind(), out["list"].Kind())
	}
}

func TestValueJSON_RejectsBadCounts(t *testing.T) {
	for _, in := range []string{`{"A": -1}`, `{"A": 1.5}`, `{"A": "x"}`, `12`} {
		var v Value
		err := json.Unmarshal([]byte(in), &v)
		if err == nil {
			t.Errorf("Unmarshal(%s) should fail", in)
			continue
		}
		if !errors.Is(err, ErrBadCount) && !errors.Is(err, ErrNegativeCount) && !errors.Is(err, ErrWrongShape) {
			t.Errorf("Unmarshal(%s) error = %v", in, err)
		}
	}
}
