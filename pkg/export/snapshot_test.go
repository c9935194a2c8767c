package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/lineweave/pkg/model"
	"github.com/vanderheijden86/lineweave/pkg/store"
	"github.com/vanderheijden86/lineweave/pkg/testutil"
)

func snapshotFixture() SnapshotOptions {
	nodes := testutil.Nodes(3)
	doc := testutil.Doc(nodes, testutil.Edges(nodes[0].ID, nodes[2].ID, nodes[1].ID, nodes[2].ID))
	projects := make(map[string]model.Project)
	for _, p := range testutil.Projects(3) {
		projects[p.ID] = p
	}
	stats := store.ComputeStats(doc.Nodes, doc.Edges)
	return SnapshotOptions{
		Title:    "Essay lineage",
		Doc:      doc,
		Projects: projects,
		Stats:    &stats,
	}
}

func TestSaveSnapshotSVG(t *testing.T) {
	opts := snapshotFixture()
	opts.Path = filepath.Join(t.TempDir(), "out", "lineage.svg")

	if err := SaveSnapshot(opts); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(opts.Path)
	if err != nil {
		t.Fatal(err)
	}
	body := string(raw)
	if !strings.Contains(body, "<svg") {
		t.Error("output is not SVG")
	}
	for _, label := range []string{"Project A", "Project B", "Project C", "Essay lineage"} {
		if !strings.Contains(body, label) {
			t.Errorf("missing %q", label)
		}
	}
	if strings.Contains(body, "contains a cycle") {
		t.Error("acyclic graph flagged as cyclic")
	}
}

func TestSaveSnapshotPNG(t *testing.T) {
	opts := snapshotFixture()
	opts.Path = filepath.Join(t.TempDir(), "lineage.png")

	if err := SaveSnapshot(opts); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(opts.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(raw, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestSaveSnapshotFormatInference(t *testing.T) {
	opts := snapshotFixture()
	dir := t.TempDir()

	// No extension gets the default.
	opts.Path = filepath.Join(dir, "snapshot")
	if err := SaveSnapshot(opts); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "snapshot.svg")); err != nil {
		t.Errorf("default extension not applied: %v", err)
	}

	// Explicit format overrides the extension.
	opts.Path = filepath.Join(dir, "weird.svg")
	opts.Format = "png"
	if err := SaveSnapshot(opts); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(opts.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(raw, []byte("\x89PNG")) {
		t.Error("Format field ignored")
	}

	opts.Format = "pdf"
	if err := SaveSnapshot(opts); err == nil {
		t.Error("unsupported format accepted")
	}
}

func TestSaveSnapshotRejectsEmptyGraph(t *testing.T) {
	err := SaveSnapshot(SnapshotOptions{Path: filepath.Join(t.TempDir(), "x.svg")})
	if err == nil {
		t.Error("empty graph exported")
	}
}

func TestSnapshotCycleWarning(t *testing.T) {
	opts := snapshotFixture()
	nodes := testutil.Nodes(2)
	opts.Doc = testutil.Doc(nodes, testutil.Edges(nodes[0].ID, nodes[1].ID, nodes[1].ID, nodes[0].ID))
	stats := store.ComputeStats(opts.Doc.Nodes, opts.Doc.Edges)
	opts.Stats = &stats

	var buf bytes.Buffer
	if err := renderSVGToWriter(&buf, buildScene(opts)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "contains a cycle") {
		t.Error("cycle warning missing")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 24); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncate("aaaaaaaaaaaa", 8); got != "aaaaa..." {
		t.Errorf("got %q", got)
	}
	if got := truncate("abc", 2); got != "ab" {
		t.Errorf("got %q", got)
	}
}
