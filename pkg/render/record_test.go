package render

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/bft-labs/ptflview/pkg/scan"
	"github.com/gogpu/gg/recording"
)

func TestRecord(t *testing.T) {
	set, err := Build(exampleEntry(), Params{Scale: 100, Clip: 2}, 200, 50)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	rec, err := Record(set, PNG)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if rec.Width() != 400 || rec.Height() != 400 {
		t.Errorf("canvas = %dx%d, want 400x400", rec.Width(), rec.Height())
	}
	if want := []LayerKind{Outline, Signal, Markers}; !reflect.DeepEqual(rec.Groups, want) {
		t.Errorf("Groups = %v, want %v", rec.Groups, want)
	}

	cmds := rec.Commands()
	if _, ok := cmds[0].(recording.FillRectCommand); !ok {
		t.Fatalf("first command = %T, want the background FillRectCommand", cmds[0])
	}

	var (
		alphas []float64
		widths []float64
		saves  int
	)
	for _, c := range cmds {
		switch c := c.(type) {
		case recording.SaveCommand:
			saves++
		case recording.StrokePathCommand:
			brush, ok := rec.Resources().GetBrush(c.Brush).(recording.SolidBrush)
			if !ok {
				t.Fatalf("stroke brush is %T, want SolidBrush", rec.Resources().GetBrush(c.Brush))
			}
			alphas = append(alphas, brush.Color.A)
			widths = append(widths, c.Stroke.Width)
			if c.Stroke.Join != recording.LineJoinRound {
				t.Errorf("stroke join = %v, want round", c.Stroke.Join)
			}
		}
	}
	if saves != 3 {
		t.Errorf("saves = %d, want one per layer kind", saves)
	}
	if want := []float64{0.3, 0.6, 0.8}; !reflect.DeepEqual(alphas, want) {
		t.Errorf("stroke alphas = %v, want %v", alphas, want)
	}
	if len(widths) != 3 {
		t.Fatalf("strokes = %d, want 3", len(widths))
	}
	want := []float64{100 * OutlineWidth, 100 * SignalRasterWidth, 100 * MarkerWidth}
	for i := range want {
		if math.Abs(widths[i]-want[i]) > 1e-9 {
			t.Errorf("stroke width[%d] = %v, want %v", i, widths[i], want[i])
		}
	}
}

func TestRecord_SkipsEmptyKinds(t *testing.T) {
	entry := scan.Entry{Samples: []scan.Sample{{Angle: 0, Range: 0}, {Angle: 1, Range: 0}}}
	set, err := Build(entry, DefaultParams(), 0, 50)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	rec, err := Record(set, SVG)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if want := []LayerKind{Outline}; !reflect.DeepEqual(rec.Groups, want) {
		t.Errorf("Groups = %v, want %v", rec.Groups, want)
	}
}

func TestRecord_CombinedSetsShareGroups(t *testing.T) {
	a, _ := Build(exampleEntry(), DefaultParams(), 0, 50)
	b, _ := Build(exampleEntry(), DefaultParams(), 180, 50)
	rec, err := Record(Combine(a, b), SVG)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if len(rec.Groups) != 3 {
		t.Fatalf("Groups = %v, want three", rec.Groups)
	}

	var strokes int
	for _, c := range rec.Commands() {
		if _, ok := c.(recording.StrokePathCommand); ok {
			strokes++
		}
	}
	if strokes != 6 {
		t.Errorf("strokes = %d, want two per layer kind", strokes)
	}
}

func TestRecord_InvalidParams(t *testing.T) {
	set := LayerSet{Params: Params{Scale: 0, Clip: 1}}
	if _, err := Record(set, PNG); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("Record() error = %v, want ErrInvalidParams", err)
	}
}
