package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kozaktomas/reverse-prompt/internal/pipeline"
	"github.com/kozaktomas/reverse-prompt/internal/taxonomy"
)

func newAuditResult() *AuditResult {
	result := &AuditResult{
		Distributions: make(map[string]map[string]int),
		Prompts:       make(map[string]string),
	}
	for _, spec := range taxonomy.Categories() {
		result.Distributions[string(spec.Name)] = make(map[string]int)
	}
	return result
}

func testPipelineResult() *pipeline.Result {
	return &pipeline.Result{
		Prompt: "A white female in a office setting, under natural light conditions, with one person in frame.",
		Tags: pipeline.TagSet{
			taxonomy.Race:     "white",
			taxonomy.Gender:   "female",
			taxonomy.Setting:  "office",
			taxonomy.Lighting: "natural light",
			taxonomy.People:   "one person",
		},
		FaceFound:       true,
		DemographicUsed: true,
	}
}

func TestAuditResult_RecordRun(t *testing.T) {
	result := newAuditResult()

	result.recordRun("a.jpg", testPipelineResult(), nil)

	if result.Described != 1 {
		t.Errorf("expected 1 described, got %d", result.Described)
	}
	if result.FacesFound != 1 || result.Demographic != 1 {
		t.Errorf("expected face and demographic counts of 1, got %d and %d",
			result.FacesFound, result.Demographic)
	}
	if result.Distributions["race"]["white"] != 1 {
		t.Errorf("expected race tally for 'white', got %v", result.Distributions["race"])
	}
	if result.Prompts["a.jpg"] == "" {
		t.Error("expected prompt recorded for a.jpg")
	}
}

func TestAuditResult_RecordRun_SaveFailureCountedSeparately(t *testing.T) {
	result := newAuditResult()

	result.recordRun("a.jpg", testPipelineResult(), errors.New("database down"))

	if result.SaveFailed != 1 {
		t.Errorf("expected 1 save failure, got %d", result.SaveFailed)
	}
	if result.Failed != 0 {
		t.Errorf("storage failure must not count as a pipeline failure, got %d", result.Failed)
	}
	if result.Described != 1 {
		t.Errorf("a described image stays described on save failure, got %d", result.Described)
	}
	if result.Distributions["setting"]["office"] != 1 {
		t.Errorf("expected tags tallied despite save failure, got %v", result.Distributions["setting"])
	}
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.JPG", "a.png", "notes.txt", "c.jpeg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("failed to create subdirectory: %v", err)
	}

	images, err := listImages(dir)
	if err != nil {
		t.Fatalf("listImages failed: %v", err)
	}

	if len(images) != 3 {
		t.Fatalf("expected 3 images, got %d: %v", len(images), images)
	}
	want := []string{"a.png", "b.JPG", "c.jpeg"}
	for i, name := range want {
		if filepath.Base(images[i]) != name {
			t.Errorf("expected image %d to be %s, got %s", i, name, filepath.Base(images[i]))
		}
	}
}

func TestListImages_MissingDirectory(t *testing.T) {
	if _, err := listImages("/nonexistent/path"); err == nil {
		t.Error("expected an error for a missing directory")
	}
}
