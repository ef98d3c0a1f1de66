package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"docsema/internal/diag"
	"docsema/internal/source"
)

func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	bag := paramTypoBag(fs)

	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
		IncludeFixes:     true,
		IncludePreviews:  true,
	})
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 1 || output.Warnings != 1 || output.Errors != 0 {
		t.Fatalf("unexpected counters: %+v", output)
	}

	d := output.Diagnostics[0]
	if d.Severity != "WARNING" || d.Code != "REF1001" {
		t.Errorf("severity/code = %s/%s", d.Severity, d.Code)
	}
	if d.Title != diag.RefParamNotFound.Title() {
		t.Errorf("title = %q", d.Title)
	}
	loc := d.Location
	if loc.File != "doc.dact" || loc.StartByte != 11 || loc.EndByte != 14 {
		t.Errorf("location = %+v", loc)
	}
	if loc.StartLine != 2 || loc.StartCol != 8 || loc.EndLine != 2 || loc.EndCol != 11 {
		t.Errorf("positions = %+v", loc)
	}
	if len(d.Notes) != 1 || d.Notes[0].Message != "declared here" {
		t.Errorf("notes = %+v", d.Notes)
	}
	if len(d.Fixes) != 1 || len(d.Fixes[0].Edits) != 1 {
		t.Fatalf("fixes = %+v", d.Fixes)
	}
	edit := d.Fixes[0].Edits[0]
	if edit.OldText != "cnt" || edit.NewText != "count" {
		t.Errorf("edit = %+v", edit)
	}
	if len(edit.AfterLines) != 1 || edit.AfterLines[0] != "\\param count x" {
		t.Errorf("after lines = %q", edit.AfterLines)
	}
}

func TestJSONMaxAndFiltering(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.dact", []byte("abc\n"))
	bag := diag.NewBag(0)
	for range 3 {
		bag.Add(diag.New(diag.SevError, diag.ScrUnknownAction, source.Span{File: fileID, Start: 0, End: 3}, "unknown action 'abc'").
			WithNote(source.Span{File: fileID}, "note"))
	}

	output := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 2})
	if output.Count != 2 || output.Errors != 2 {
		t.Fatalf("expected 2 diagnostics, got %+v", output)
	}
	for _, d := range output.Diagnostics {
		if d.Notes != nil {
			t.Errorf("notes should be omitted: %+v", d.Notes)
		}
		if d.Location.StartLine != 0 {
			t.Errorf("positions should be omitted: %+v", d.Location)
		}
	}
}

func TestSarif(t *testing.T) {
	fs := source.NewFileSetWithBase("/work")
	fileID := fs.AddVirtual("/work/docs/doc.dact", []byte(prettySource))
	bag := diag.NewBag(0)
	span := source.Span{File: fileID, Start: 11, End: 14}
	bag.Add(diag.New(diag.SevWarning, diag.RefParamNotFound, span, "parameter 'cnt' not found").
		WithFix("replace", diag.FixEdit{Span: span, NewText: "count"}))
	bag.Add(diag.New(diag.SevError, diag.ScrUnknownAction, source.Span{File: fileID, Start: 17, End: 22}, "unknown action 'three'"))

	var buf bytes.Buffer
	err := Sarif(&buf, bag, fs, SarifRunMeta{ToolName: "docsema", ToolVersion: "1.0", InvocationArgs: []string{"check"}})
	if err != nil {
		t.Fatalf("Sarif: %v", err)
	}

	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("unexpected log header: %+v", log)
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "docsema" || len(run.Tool.Driver.Rules) != 2 {
		t.Fatalf("driver = %+v", run.Tool.Driver)
	}
	if run.Tool.Driver.Rules[0].ID != "REF1001" || run.Tool.Driver.Rules[1].ID != "SCR4002" {
		t.Errorf("rules not sorted: %+v", run.Tool.Driver.Rules)
	}
	if len(run.Results) != 2 {
		t.Fatalf("results = %d", len(run.Results))
	}
	first := run.Results[0]
	if first.Level != "warning" || first.RuleID != "REF1001" {
		t.Errorf("first result = %+v", first)
	}
	phys := first.Locations[0].PhysicalLocation
	if phys.ArtifactLocation.URI != "docs/doc.dact" {
		t.Errorf("uri = %q", phys.ArtifactLocation.URI)
	}
	if phys.Region.StartLine != 2 || phys.Region.StartColumn != 8 || phys.Region.CharLength != 3 {
		t.Errorf("region = %+v", phys.Region)
	}
	if len(first.Fixes) != 1 || first.Fixes[0].ArtifactChanges[0].Replacements[0].InsertedContent.Text != "count" {
		t.Errorf("fixes = %+v", first.Fixes)
	}
	if run.Results[1].Level != "error" {
		t.Errorf("second level = %s", run.Results[1].Level)
	}
	if len(run.Invocations) != 1 || run.Invocations[0].ExecutionSuccessful {
		t.Errorf("invocations = %+v", run.Invocations)
	}
}
