package ot

import (
	"bytes"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestDeltaSetIndexMapEncoding(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	m := NewDeltaSetIndexMap([]VarIndex{{0, 0}, {0, 5}, {1, 2}})
	size, innerBits := m.EntryFormat()
	if size != 1 || innerBits != 3 {
		t.Errorf("expected entry format (1 byte, 3 inner bits), have (%d, %d)", size, innerBits)
	}
	b := m.Encode()
	expected := []byte{0, 2, 0, 3, 0, 5, 10}
	if !bytes.Equal(b, expected) {
		t.Fatalf("expected encoding %v, have %v", expected, b)
	}
	ec := &errorCollector{}
	decoded, err := parseDeltaSetIndexMap(T("HVAR"), b, 0, 0, ec)
	if err != nil {
		t.Fatal(err)
	}
	for i, e := range m.Entries() {
		if decoded.Lookup(i) != e {
			t.Errorf("entry %d: expected %v, have %v", i, e, decoded.Lookup(i))
		}
	}
}

func TestDeltaSetIndexMapWideEntries(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	m := NewDeltaSetIndexMap([]VarIndex{{3, 0}, {300, 40000}})
	size, innerBits := m.EntryFormat()
	if size != 4 || innerBits != 16 {
		t.Errorf("expected entry format (4 bytes, 16 inner bits), have (%d, %d)", size, innerBits)
	}
	decoded, err := parseDeltaSetIndexMap(T("VVAR"), m.Encode(), 0, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Lookup(1) != (VarIndex{300, 40000}) {
		t.Errorf("wide entry not preserved: %v", decoded.Lookup(1))
	}
}

func TestDeltaSetIndexMapLookup(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	var identity *DeltaSetIndexMap
	if vi := identity.Lookup(7); vi != (VarIndex{0, 7}) {
		t.Errorf("expected nil map to be the identity, have %v", vi)
	}
	m := NewDeltaSetIndexMap([]VarIndex{{0, 1}, {2, 3}})
	if vi := m.Lookup(1000); vi != (VarIndex{2, 3}) {
		t.Errorf("expected items beyond the map to use the last entry, have %v", vi)
	}
	if !NewDeltaSetIndexMap([]VarIndex{{0, 0}, {0, 1}}).IsIdentity() || m.IsIdentity() {
		t.Errorf("identity detection broken")
	}
	trimmed := NewDeltaSetIndexMap([]VarIndex{{0, 1}, {0, 2}, {0, 2}, {0, 2}}).Trimmed()
	if trimmed.Len() != 2 || trimmed.Lookup(3) != (VarIndex{0, 2}) {
		t.Errorf("expected trimmed map of length 2, have %v", trimmed.Entries())
	}
}

func TestDeltaSetIndexMapMalformed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	ec := &errorCollector{}
	m, err := parseDeltaSetIndexMap(T("HVAR"), []byte{0, 0, 0, 0}, 0, 0, ec)
	if m != nil || err != nil {
		t.Errorf("expected empty map to be treated as identity")
	}
	if len(ec.warnings) != 1 {
		t.Errorf("expected a warning for an empty map, have %d", len(ec.warnings))
	}
	if _, err = parseDeltaSetIndexMap(T("HVAR"), []byte{0, 0x31, 0, 10, 1, 2}, 0, 0, ec); err == nil {
		t.Errorf("expected truncated map to fail")
	}
	if _, err = parseDeltaSetIndexMap(T("HVAR"), []byte{7, 0, 0, 1, 0}, 0, 0, ec); err == nil {
		t.Errorf("expected unknown format to fail")
	}
	if len(ec.errors) != 2 || ec.errors[0].Severity != SeverityMinor {
		t.Errorf("expected 2 minor errors, have %v", ec.errors)
	}
}
