package ot

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestFontErrorFormat(t *testing.T) {
	var tests = []struct {
		err      FontError
		expected string
	}{
		{FontError{T("HVAR"), "AdvanceMap", "entry size 5", SeverityCritical, 1234},
			"[CRITICAL] HVAR/AdvanceMap at offset 1234: entry size 5"},
		{FontError{T("MVAR"), "ValueRecords", "record size 6", SeverityMajor, 0},
			"[MAJOR] MVAR/ValueRecords: record size 6"},
		{FontError{T("avar"), "SegmentMaps", "map of axis 1 not monotonic", SeverityMinor, 40},
			"[MINOR] avar/SegmentMaps at offset 40: map of axis 1 not monotonic"},
		{FontError{T("fvar"), "Header", "?", ErrorSeverity(7), 0},
			"[UNKNOWN] fvar/Header: ?"},
	}
	for _, tt := range tests {
		test.String(t, tt.err.Error(), tt.expected)
	}
	test.String(t, FontWarning{T("VVAR"), "size mismatch", 5678}.String(),
		"[WARNING] VVAR at offset 5678: size mismatch")
	test.String(t, FontWarning{T("MVAR"), "unsorted records", 0}.String(),
		"[WARNING] MVAR: unsorted records")
}

func TestErrorCollector(t *testing.T) {
	ec := &errorCollector{}
	test.That(t, !ec.hasErrors(), "fresh collector has errors")
	ec.addError(T("avar"), "SegmentMaps", "dropped", SeverityMinor, 100)
	ec.addError(T("HVAR"), "ItemVariationStore", "dropped", SeverityMajor, 300)
	test.That(t, ec.hasErrors())
	test.T(t, len(ec.criticalErrors()), 0)
	err := ec.addError(T("head"), "Directory", "truncated", SeverityCritical, 12)
	test.T(t, len(ec.errors), 3)
	test.T(t, ec.criticalErrors(), []FontError{err})
	ec.addWarning(T("MVAR"), "unsorted records", 400)
	test.T(t, len(ec.warnings), 1)
}

func TestNilErrorCollector(t *testing.T) {
	var ec *errorCollector
	err := ec.addError(T("MVAR"), "Header", "dropped", SeverityMajor, 0)
	ec.addWarning(T("MVAR"), "dropped", 0)
	test.That(t, !ec.hasErrors(), "nil collector collects errors")
	test.T(t, len(ec.criticalErrors()), 0)
	test.String(t, err.Error(), "[MAJOR] MVAR/Header: dropped")
}

func TestFontErrorAccessors(t *testing.T) {
	otf := &Font{
		parseErrors: []FontError{
			{Table: T("avar"), Severity: SeverityMinor},
			{Table: T("fvar"), Severity: SeverityCritical},
			{Table: T("HVAR"), Severity: SeverityMajor},
		},
		parseWarnings: []FontWarning{{Table: T("VVAR")}},
	}
	test.T(t, len(otf.Errors()), 3)
	test.T(t, len(otf.Warnings()), 1)
	crit := otf.CriticalErrors()
	test.T(t, len(crit), 1)
	test.T(t, crit[0].Table, T("fvar"))
	test.That(t, otf.HasCriticalErrors())
	//
	empty := &Font{}
	test.T(t, len(empty.Errors()), 0)
	test.T(t, len(empty.Warnings()), 0)
	test.That(t, !empty.HasCriticalErrors())
}
