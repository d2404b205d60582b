package tagging

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tagwise/tagwise/ai/provider"
	"github.com/tagwise/tagwise/vault"
)

type doerFunc func(req *http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// tagsDoer answers every request with an OpenAI-style completion whose
// content is a tag JSON object listing the given new tags.
func tagsDoer(newTags ...string) doerFunc {
	return func(*http.Request) (*http.Response, error) {
		quoted := make([]string, len(newTags))
		for i, t := range newTags {
			quoted[i] = fmt.Sprintf("%q", t)
		}
		content := fmt.Sprintf(`{\"matchedTags\":[],\"newTags\":[%s]}`,
			strings.ReplaceAll(strings.Join(quoted, ","), `"`, `\"`))
		body := fmt.Sprintf(`{"choices":[{"message":{"content":"%s"}}]}`, content)
		return &http.Response{
			StatusCode: 200,
			Status:     "200 OK",
			Body:       io.NopCloser(strings.NewReader(body)),
		}, nil
	}
}

func errorDoer() doerFunc {
	return func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: 503,
			Status:     "503 Service Unavailable",
			Body:       io.NopCloser(strings.NewReader(`{"error":{"message":"overloaded"}}`)),
		}, nil
	}
}

func writeNote(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestOrchestrator(t *testing.T, root string, doer provider.Doer) *Orchestrator {
	t.Helper()
	adapter, err := provider.New("openai", provider.Config{APIKey: "test-key"})
	if err != nil {
		t.Fatal(err)
	}
	v, err := vault.New(root)
	if err != nil {
		t.Fatal(err)
	}
	return New(adapter, provider.NewClient(doer), v, Options{MaxTags: 5})
}

func TestMergeTags(t *testing.T) {
	merged, added := MergeTags([]string{"a", "b"}, []string{"b", "c"})
	if !reflect.DeepEqual(merged, []string{"a", "b", "c"}) {
		t.Errorf("merged = %v, want [a b c]", merged)
	}
	if !reflect.DeepEqual(added, []string{"c"}) {
		t.Errorf("added = %v, want [c]", added)
	}
}

func TestMergeTags_CaseSensitive(t *testing.T) {
	merged, added := MergeTags([]string{"Go"}, []string{"go"})
	if !reflect.DeepEqual(merged, []string{"Go", "go"}) {
		t.Errorf("merged = %v, want [Go go]", merged)
	}
	if !reflect.DeepEqual(added, []string{"go"}) {
		t.Errorf("added = %v, want [go]", added)
	}
}

func TestMergeTags_Idempotent(t *testing.T) {
	merged, added := MergeTags([]string{"a", "b", "c"}, []string{"b", "c"})
	if !reflect.DeepEqual(merged, []string{"a", "b", "c"}) {
		t.Errorf("merged = %v, want unchanged", merged)
	}
	if len(added) != 0 {
		t.Errorf("added = %v, want empty", added)
	}

	// Duplicates inside incoming collapse too.
	merged, added = MergeTags(nil, []string{"x", "x", "y"})
	if !reflect.DeepEqual(merged, []string{"x", "y"}) {
		t.Errorf("merged = %v, want [x y]", merged)
	}
	if !reflect.DeepEqual(added, []string{"x", "y"}) {
		t.Errorf("added = %v, want [x y]", added)
	}
}

func TestTagNote(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "note.md", "---\ntags:\n  - existing\ntitle: Test\n---\nSome note body.\n")

	orch := newTestOrchestrator(t, root, tagsDoer("alpha", "beta"))
	res, err := orch.TagNote(context.Background(), "note.md")
	if err != nil {
		t.Fatalf("TagNote() error = %v", err)
	}

	if res.State != StateFrontmatterUpdated {
		t.Errorf("State = %v, want %v", res.State, StateFrontmatterUpdated)
	}
	if !reflect.DeepEqual(res.Tags, []string{"existing", "alpha", "beta"}) {
		t.Errorf("Tags = %v, want existing first", res.Tags)
	}
	if !reflect.DeepEqual(res.Added, []string{"alpha", "beta"}) {
		t.Errorf("Added = %v", res.Added)
	}

	// The file on disk reflects the merge and keeps the other keys.
	v, _ := vault.New(root)
	note, err := v.Read("note.md")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(note.Tags(), []string{"existing", "alpha", "beta"}) {
		t.Errorf("persisted tags = %v", note.Tags())
	}
	if note.Frontmatter["title"] != "Test" {
		t.Errorf("title = %v, other frontmatter keys must survive", note.Frontmatter["title"])
	}
	if !strings.Contains(note.Body, "Some note body.") {
		t.Error("body must survive the rewrite")
	}
}

func TestTagNote_NoFrontmatter(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "bare.md", "Just a body, no frontmatter.\n")

	orch := newTestOrchestrator(t, root, tagsDoer("fresh"))
	res, err := orch.TagNote(context.Background(), "bare.md")
	if err != nil {
		t.Fatalf("TagNote() error = %v", err)
	}
	if !reflect.DeepEqual(res.Tags, []string{"fresh"}) {
		t.Errorf("Tags = %v, want [fresh]", res.Tags)
	}

	v, _ := vault.New(root)
	note, _ := v.Read("bare.md")
	if !reflect.DeepEqual(note.Tags(), []string{"fresh"}) {
		t.Errorf("persisted tags = %v, frontmatter block should be created", note.Tags())
	}
}

func TestTagNote_MissingNote(t *testing.T) {
	orch := newTestOrchestrator(t, t.TempDir(), tagsDoer("x"))
	res, err := orch.TagNote(context.Background(), "missing.md")
	if err == nil {
		t.Fatal("TagNote() on a missing note should fail")
	}
	if res.State != StateFailed {
		t.Errorf("State = %v, want %v", res.State, StateFailed)
	}
	if res.LastState != StateIdle {
		t.Errorf("LastState = %v, want %v", res.LastState, StateIdle)
	}
}

func TestTagNote_ProviderFailure(t *testing.T) {
	root := t.TempDir()
	original := "---\ntags:\n  - keep\n---\nbody\n"
	writeNote(t, root, "note.md", original)

	orch := newTestOrchestrator(t, root, errorDoer())
	res, err := orch.TagNote(context.Background(), "note.md")
	if err == nil {
		t.Fatal("TagNote() should surface the provider error")
	}
	if res.State != StateFailed || res.LastState != StateRequestSent {
		t.Errorf("State = %v, LastState = %v", res.State, res.LastState)
	}
	if !strings.Contains(err.Error(), "overloaded") {
		t.Errorf("error = %v, want the provider message", err)
	}

	// The note must be left untouched.
	data, _ := os.ReadFile(filepath.Join(root, "note.md"))
	if string(data) != original {
		t.Error("a failed request must not modify the note")
	}
}

func TestTagNote_EmptyExtractionStillSucceeds(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "note.md", "---\ntags:\n  - keep\n---\nbody\n")

	// Parseable response with zero tags: a success with nothing added.
	doer := doerFunc(func(*http.Request) (*http.Response, error) {
		body := `{"choices":[{"message":{"content":"{\"matchedTags\":[],\"newTags\":[]}"}}]}`
		return &http.Response{
			StatusCode: 200,
			Status:     "200 OK",
			Body:       io.NopCloser(strings.NewReader(body)),
		}, nil
	})
	orch := newTestOrchestrator(t, root, doer)
	res, err := orch.TagNote(context.Background(), "note.md")
	if err != nil {
		t.Fatalf("TagNote() error = %v", err)
	}
	if res.State != StateFrontmatterUpdated {
		t.Errorf("State = %v", res.State)
	}
	if len(res.Added) != 0 {
		t.Errorf("Added = %v, want empty", res.Added)
	}
	if !reflect.DeepEqual(res.Tags, []string{"keep"}) {
		t.Errorf("Tags = %v, want [keep]", res.Tags)
	}
}

func TestTagBatch_PartialFailure(t *testing.T) {
	root := t.TempDir()
	for i := 1; i <= 5; i++ {
		writeNote(t, root, fmt.Sprintf("%02d.md", i), "body\n")
	}

	// Third request fails; the batch keeps going.
	calls := 0
	good := tagsDoer("tag")
	bad := errorDoer()
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		if calls == 3 {
			return bad(req)
		}
		return good(req)
	})

	orch := newTestOrchestrator(t, root, doer)
	report, err := orch.TagBatch(context.Background(), vault.Filter{})
	if err != nil {
		t.Fatalf("TagBatch() error = %v", err)
	}

	if report.Processed != 5 {
		t.Errorf("Processed = %d, want 5", report.Processed)
	}
	if report.Failed != 1 {
		t.Errorf("Failed = %d, want 1", report.Failed)
	}
	if len(report.Results) != 5 {
		t.Fatalf("len(Results) = %d, want 5", len(report.Results))
	}
	if report.RunID == "" {
		t.Error("RunID should be set")
	}
	if report.Provider != "openai" {
		t.Errorf("Provider = %q", report.Provider)
	}

	// Order matches the lexical walk order, and only the third failed.
	for i, res := range report.Results {
		wantPath := fmt.Sprintf("%02d.md", i+1)
		if res.Path != wantPath {
			t.Errorf("Results[%d].Path = %q, want %q", i, res.Path, wantPath)
		}
		if i == 2 {
			if res.State != StateFailed {
				t.Errorf("Results[2].State = %v, want failed", res.State)
			}
		} else if res.State != StateFrontmatterUpdated {
			t.Errorf("Results[%d].State = %v, want updated", i, res.State)
		}
	}

	// The four successful notes got their tags written.
	v, _ := vault.New(root)
	for _, rel := range []string{"01.md", "02.md", "04.md", "05.md"} {
		note, err := v.Read(rel)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(note.Tags(), []string{"tag"}) {
			t.Errorf("%s tags = %v, want [tag]", rel, note.Tags())
		}
	}
}

type fakeRecorder struct {
	report *BatchReport
}

func (r *fakeRecorder) RecordRun(_ context.Context, report *BatchReport) error {
	r.report = report
	return nil
}

func TestTagBatch_Recorder(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "a.md", "body\n")

	orch := newTestOrchestrator(t, root, tagsDoer("x"))
	rec := &fakeRecorder{}
	orch.SetRecorder(rec)

	report, err := orch.TagBatch(context.Background(), vault.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if rec.report != report {
		t.Error("recorder should receive the batch report")
	}
}

func TestTagBatch_EmptyFilter(t *testing.T) {
	orch := newTestOrchestrator(t, t.TempDir(), tagsDoer("x"))
	report, err := orch.TagBatch(context.Background(), vault.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if report.Processed != 0 || report.Failed != 0 || len(report.Results) != 0 {
		t.Errorf("empty vault report = %+v", report)
	}
}
