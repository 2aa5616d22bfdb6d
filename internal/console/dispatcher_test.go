package console

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/bft-labs/ptflview/pkg/catalog"
	"github.com/bft-labs/ptflview/pkg/render"
	"github.com/bft-labs/ptflview/pkg/scan"
)

type fakePreviewer struct {
	calls    []string
	opened   []string
	startErr error
	err      error
}

func (p *fakePreviewer) EnsureStarted(context.Context) error {
	p.calls = append(p.calls, "start")
	return p.startErr
}

func (p *fakePreviewer) OpenImage(_ context.Context, path string) error {
	p.calls = append(p.calls, "open")
	if p.err != nil {
		return p.err
	}
	p.opened = append(p.opened, path)
	return nil
}

type fakeWatcher struct {
	added   []string
	removed []string
	queue   []string
}

func (w *fakeWatcher) Add(path string) error {
	w.added = append(w.added, path)
	return nil
}

func (w *fakeWatcher) Remove(path string) error {
	for _, p := range w.added {
		if p == path {
			w.removed = append(w.removed, path)
			return nil
		}
	}
	return errors.New("not watched")
}

func (w *fakeWatcher) Drain() []string {
	q := w.queue
	w.queue = nil
	return q
}

type harness struct {
	t     *testing.T
	dir   string
	out   bytes.Buffer
	store *catalog.Store
	d     *Dispatcher
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{t: t, dir: t.TempDir(), store: catalog.New()}
	settings := DefaultSettings()
	settings.OutDir = filepath.Join(h.dir, "out")
	settings.TempDir = filepath.Join(h.dir, "tmp")
	settings.Workers = 2
	h.d = New(h.store, settings, &h.out, opts...)
	return h
}

func (h *harness) file(name, content string) string {
	h.t.Helper()
	path := filepath.Join(h.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		h.t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func (h *harness) run(input string) string {
	h.t.Helper()
	h.out.Reset()
	if err := h.d.Run(context.Background(), strings.NewReader(input)); err != nil {
		h.t.Fatalf("Run() error = %v", err)
	}
	return h.out.String()
}

func (h *harness) outFile(name string) string {
	h.t.Helper()
	data, err := os.ReadFile(filepath.Join(h.dir, "out", name))
	if err != nil {
		h.t.Fatalf("read output %s: %v", name, err)
	}
	return string(data)
}

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

const exampleScan = "2\n0.0, 1.0\n1.5708, 2.0\n"

func TestRun_LoadListShow(t *testing.T) {
	h := newHarness(t)
	a := h.file("a.ptfl", exampleScan)

	out := h.run("load " + a + "\nlist\nshow a.ptfl 0\nshow a.ptfl 9\nexit\n")
	assertContains(t, out,
		"Read 1 from "+a+".",
		"Currently 1 entries.",
		"a.ptfl:0\t2 samples",
		"a.ptfl:0: 2 samples, 2 returns",
		"a.ptfl:9: not found",
	)
}

func TestRun_EndOfInputExits(t *testing.T) {
	h := newHarness(t)
	out := h.run("list\n")
	assertContains(t, out, "catalog is empty")
}

func TestRun_LoadErrorKeepsGoing(t *testing.T) {
	h := newHarness(t)
	bad := h.file("bad.ptfl", "1\n0,1\n3\n0,1\n")
	good := h.file("good.ptfl", "1\n5,5\n")

	out := h.run("load " + bad + " " + good + "\nlist\n")
	assertContains(t, out,
		"Read 1 from "+bad+" before the error.",
		"error: "+bad+":4:",
		"Read 1 from "+good+".",
		"bad.ptfl:0\t1 samples",
		"good.ptfl:0\t1 samples",
	)
	if h.store.Len() != 2 {
		t.Errorf("catalog has %d entries, want 2", h.store.Len())
	}
}

func TestRun_Combine(t *testing.T) {
	h := newHarness(t)
	a := h.file("a.ptfl", exampleScan)
	b := h.file("b.ptfl", "2\n0.5,1\n3,0\n")

	out := h.run("load " + a + " " + b + "\ncombine m 0\na.ptfl 0\nb.ptfl 0\n\nshow m 0\n")
	assertContains(t, out, "Combined 2 entries into m:0 (4 samples).", "m:0: 4 samples, 3 returns")

	merged, _ := h.store.Get(scan.Key{Label: "m", Seq: 0})
	want := []float64{0, 0.5, 1.5708, 3}
	var got []float64
	for _, s := range merged.Samples {
		got = append(got, s.Angle)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("merged angles = %v, want %v", got, want)
	}
}

func TestRun_CombineErrors(t *testing.T) {
	h := newHarness(t)
	a := h.file("a.ptfl", exampleScan)
	h.run("load " + a + "\n")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"existing target", "combine a.ptfl 0\na.ptfl 0\n\n", "error: catalog: key already exists"},
		{"missing source", "combine m 0\nghost 1\n\n", "error: catalog: not found: ghost:1"},
		{"malformed source", "combine m 0\nonly-label\n\n", "usage: combine"},
		{"missing target seq", "combine m\n", "usage: combine"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := h.run(tt.input + "list\n")
			assertContains(t, out, tt.want)
			if h.store.Len() != 1 {
				t.Errorf("catalog has %d entries, want 1", h.store.Len())
			}
		})
	}
}

func TestRun_SubPromptLinesAreNotCommands(t *testing.T) {
	h := newHarness(t)
	out := h.run("combine m 0\nexit\n\nlist\n")
	assertContains(t, out, "catalog is empty")
}

func TestOutput_SVGExample(t *testing.T) {
	h := newHarness(t)
	a := h.file("a.ptfl", exampleScan)

	out := h.run("load " + a + "\noutput --svg --scale 500 --clip 1 a.ptfl 0 90\n")
	assertContains(t, out, "Wrote "+filepath.Join(h.dir, "out", "a.ptfl-0.svg")+".")

	svg := h.outFile("a.ptfl-0.svg")
	assertContains(t, svg,
		`width="1000" height="1000"`,
		`<g id="outline">`,
		`<g id="signal">`,
		`<g id="markers">`,
	)
	if n := strings.Count(svg, "<path "); n != 3 {
		t.Errorf("path elements = %d, want 3", n)
	}
}

func TestOutput_PNG(t *testing.T) {
	h := newHarness(t)
	a := h.file("a.ptfl", exampleScan)

	h.run("load " + a + "\noutput --scale 50 a.ptfl 0\n")
	img, err := png.Decode(strings.NewReader(h.outFile("a.ptfl-0.png")))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if img.Bounds().Dx() != 200 {
		t.Errorf("width = %d, want 200", img.Bounds().Dx())
	}
}

func TestOutput_Wildcard(t *testing.T) {
	h := newHarness(t)
	a := h.file("a.ptfl", exampleScan+"\n1\n2,2\n")
	b := h.file("b.ptfl", "1\n1,1\n")

	out := h.run("load " + a + " " + b + "\noutput --svg a.ptfl *\n")
	assertContains(t, out, "Rendered 2 of 2 entries")
	h.outFile("a.ptfl-0.svg")
	h.outFile("a.ptfl-1.svg")
	if _, err := os.Stat(filepath.Join(h.dir, "out", "b.ptfl-0.svg")); err == nil {
		t.Error("b.ptfl rendered by a.ptfl pattern")
	}

	out = h.run("output --svg nothing *\n")
	assertContains(t, out, `error: catalog: not found: no entries match "nothing"`)
}

func TestOutput_WildcardLiteralLabel(t *testing.T) {
	h := newHarness(t)
	a := h.file("scan[1].ptfl", exampleScan)

	out := h.run("load " + a + "\noutput --svg scan[1].ptfl *\n")
	assertContains(t, out, "Rendered 1 of 1 entries")
	h.outFile("scan[1].ptfl-0.svg")
}

func TestOutput_CombinedFile(t *testing.T) {
	h := newHarness(t)
	a := h.file("a.ptfl", exampleScan)
	b := h.file("b.ptfl", "1\n1,1\n")

	out := h.run("load " + a + " " + b + "\noutput --svg both.svg\na.ptfl 0\nb.ptfl 0 200\n\n")
	assertContains(t, out, "Wrote 2 entries to "+filepath.Join(h.dir, "out", "both.svg")+".")

	svg := h.outFile("both.svg")
	if n := strings.Count(svg, "<path "); n != 6 {
		t.Errorf("path elements = %d, want 6", n)
	}
	// Outline paths start at the first sample: (0,1) for a, (1,1) for b.
	first := strings.Index(svg, `d="M3000 2000 `)
	second := strings.Index(svg, `d="M2540.3023 `)
	if first < 0 || second < first {
		t.Errorf("layers out of order: a at %d, b at %d", first, second)
	}

	out = h.run("output both.svg\nghost 0\n\n")
	assertContains(t, out, "error: catalog: not found: ghost:0")
}

func TestOutput_Usage(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name  string
		input string
		wants []string
	}{
		{"both formats", "output --png --svg a 0", []string{"mutually exclusive", "usage: output"}},
		{"help", "output --help", []string{"usage: output", "--scale"}},
		{"too many args", "output a 0 1 2", []string{"usage: output"}},
		{"bad hue", "output a 0 400", []string{"within 0..360"}},
		{"bad scale", "output --scale 0 a 0", []string{"render: invalid parameters"}},
		{"unknown flag", "output --jpeg a 0", []string{"unknown flag: --jpeg"}},
		{"unknown command", "frobnicate", []string{`unknown command "frobnicate"`, "Commands:"}},
		{"show args", "show a", []string{"usage: show LABEL SEQ"}},
		{"bad seq", "show a x", []string{"usage: show"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := h.run(tt.input + "\n")
			assertContains(t, out, tt.wants...)
		})
	}
}

func TestTev(t *testing.T) {
	p := &fakePreviewer{}
	h := newHarness(t, WithPreviewer(p))
	a := h.file("a.ptfl", exampleScan)

	out := h.run("load " + a + "\ntev a.ptfl 0\n")
	assertContains(t, out, "Opened a.ptfl:0 in previewer.")
	if len(p.opened) != 1 {
		t.Fatalf("opened = %v", p.opened)
	}
	path := p.opened[0]
	if !filepath.IsAbs(path) || filepath.Dir(path) != filepath.Join(h.dir, "tmp") {
		t.Errorf("opened path = %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("rendered file missing: %v", err)
	}
	if want := []string{"start", "open"}; !reflect.DeepEqual(p.calls, want) {
		t.Errorf("previewer calls = %v, want %v", p.calls, want)
	}

	p.err = errors.New("previewer: send failed")
	out = h.run("tev a.ptfl 0\ntev ghost 0\n")
	assertContains(t, out, "error: previewer: send failed", "error: catalog: not found: ghost:0")
}

func TestTev_StartFailureSkipsRender(t *testing.T) {
	p := &fakePreviewer{startErr: errors.New("previewer: no IPC address announced")}
	h := newHarness(t, WithPreviewer(p))
	a := h.file("a.ptfl", exampleScan)

	out := h.run("load " + a + "\ntev a.ptfl 0\n")
	assertContains(t, out, "error: previewer: no IPC address announced")
	if want := []string{"start"}; !reflect.DeepEqual(p.calls, want) {
		t.Errorf("previewer calls = %v, want %v", p.calls, want)
	}
	if _, err := os.Stat(filepath.Join(h.dir, "tmp", "ptflview-a.ptfl-0.png")); !os.IsNotExist(err) {
		t.Errorf("image rendered although the previewer did not start: %v", err)
	}
}

func TestUnavailableCommands(t *testing.T) {
	h := newHarness(t)
	out := h.run("tev a 0\nwatch a\nunwatch a\n")
	if n := strings.Count(out, ErrUnavailable.Error()); n != 3 {
		t.Errorf("unavailable errors = %d, want 3:\n%s", n, out)
	}
}

func TestWatch_Reload(t *testing.T) {
	w := &fakeWatcher{}
	h := newHarness(t, WithWatcher(w))
	a := h.file("a.ptfl", exampleScan)

	out := h.run("load " + a + "\nwatch " + a + "\n")
	assertContains(t, out, "Watching "+a+".")
	if !reflect.DeepEqual(w.added, []string{a}) {
		t.Fatalf("added = %v", w.added)
	}

	h.file("a.ptfl", "3\n0,1\n1,1\n2,1\n\n1\n0,0\n")
	w.queue = []string{a}
	out = h.run("list\nunwatch " + a + "\n")
	assertContains(t, out,
		a+" changed, reloading",
		"Read 2 from "+a+".",
		"a.ptfl:0\t3 samples",
		"a.ptfl:1\t1 samples",
		"Stopped watching "+a+".",
	)
	if keys := h.store.Keys(); keys[0] != (scan.Key{Label: "a.ptfl", Seq: 0}) {
		t.Errorf("reloaded entry moved: %v", keys)
	}
}

func TestRenderAll(t *testing.T) {
	h := newHarness(t)
	a := h.file("a.ptfl", exampleScan+"\n1\n2,2\n")
	if _, err := h.d.Load(a); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	res := h.d.RenderAll(context.Background(), render.Vector{})
	if err := res.Err(); err != nil {
		t.Fatalf("RenderAll() error = %v", err)
	}
	if len(res.Written()) != 2 {
		t.Errorf("written = %v, want 2 files", res.Written())
	}
}

func TestAssignHues(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	tests := []struct {
		name     string
		explicit []*float64
		want     []float64
	}{
		{"none given", []*float64{nil, nil, nil}, []float64{0, 120, 240}},
		{"all given", []*float64{f(10), f(20)}, []float64{10, 20}},
		{"mixed", []*float64{nil, f(200), nil}, []float64{0, 200, 180}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := assignHues(tt.explicit); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("assignHues() = %v, want %v", got, tt.want)
			}
		})
	}
}
