package engine_test

import (
	"strings"
	"testing"
	"time"

	"careload/internal/engine"
)

func sampleReport() *engine.LoadReport {
	start := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	return engine.AssembleReport(
		map[string]*engine.EntityLoadStats{
			"patients": {
				EntityName:      "patients",
				SourceRowCount:  10,
				CleanedRowCount: 9,
				LoadedRowCount:  9,
				BatchCount:      1,
				AttemptsTotal:   1,
				Warnings:        []string{"patients: dropped row 5 with null primary key"},
			},
			"encounters": {
				EntityName:      "encounters",
				SourceRowCount:  30,
				CleanedRowCount: 30,
				LoadedRowCount:  30,
				BatchCount:      1,
				AttemptsTotal:   2,
			},
		},
		[]engine.Violation{
			{Relationship: "encounters_patient", ChildEntity: "encounters", ChildField: "patient_id",
				ParentEntity: "patients", ParentField: "id"},
		},
		start, start.Add(90*time.Second), nil,
	)
}

func TestReportClean(t *testing.T) {
	r := sampleReport()
	if !r.Clean() {
		t.Error("report with only warnings should be clean")
	}

	r.EntityStats["patients"].Errors = []string{"batch 1 write failed"}
	if r.Clean() {
		t.Error("entity errors should make the report not clean")
	}

	r = sampleReport()
	r.Violations[0].OrphanedCount = 3
	if r.Clean() {
		t.Error("orphaned rows should make the report not clean")
	}

	r = sampleReport()
	r.OverallErrors = []string{"target schema unavailable"}
	if r.Clean() {
		t.Error("overall errors should make the report not clean")
	}
}

func TestReportTotalLoaded(t *testing.T) {
	if got := sampleReport().TotalLoaded(); got != 39 {
		t.Errorf("expected 39 total rows, got %d", got)
	}
}

func TestReportMarkdown(t *testing.T) {
	md := sampleReport().Markdown()

	for _, want := range []string{
		"# Clinical Data Loading Report",
		"**Total Rows Loaded**: 39",
		"**Status**: CLEAN",
		"| patients | 10 | 9 | 9 | 1 | 1 | 0 | 1 | ",
		"| encounters_patient | encounters.patient_id | patients.id | 0 | 0 |",
		"dropped row 5",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}

	// Entities render alphabetically regardless of map order.
	if strings.Index(md, "| encounters |") > strings.Index(md, "| patients |") {
		t.Error("entity rows should be sorted by name")
	}
}
