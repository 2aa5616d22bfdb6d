package render

import (
	"errors"
	"math"
	"testing"

	"github.com/bft-labs/ptflview/pkg/scan"
)

const eps = 1e-3

func near(a, b Point) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}

func exampleEntry() scan.Entry {
	return scan.Entry{
		Key:     scan.Key{Label: "a.ptfl", Seq: 0},
		Samples: []scan.Sample{{Angle: 0, Range: 1}, {Angle: 1.5708, Range: 2}},
	}
}

func TestParams_Project(t *testing.T) {
	p := Params{Scale: 100, Clip: 2}
	tests := []struct {
		sample scan.Sample
		want   Point
	}{
		{scan.Sample{Angle: 0, Range: 1}, Point{300, 200}},
		{scan.Sample{Angle: 1.5708, Range: 2}, Point{200, 400}},
		{scan.Sample{Angle: 2, Range: 0}, Point{200, 200}},
		{scan.Sample{Angle: math.Pi, Range: 2}, Point{0, 200}},
	}
	for _, tt := range tests {
		if got := p.Project(tt.sample); !near(got, tt.want) {
			t.Errorf("Project(%v) = %v, want %v", tt.sample, got, tt.want)
		}
	}
	if p.Size() != 400 {
		t.Errorf("Size() = %v, want 400", p.Size())
	}
}

func TestParams_ProjectDistinct(t *testing.T) {
	p := Params{Scale: 1000, Clip: 2}
	samples := []scan.Sample{
		{Angle: 0, Range: 1},
		{Angle: 0, Range: 1.5},
		{Angle: 0.1, Range: 1},
		{Angle: math.Pi / 2, Range: 1},
		{Angle: math.Pi, Range: 1},
	}
	seen := map[[2]int]scan.Sample{}
	for _, s := range samples {
		pt := p.Project(s)
		px := [2]int{int(math.Round(pt.X)), int(math.Round(pt.Y))}
		if prev, ok := seen[px]; ok {
			t.Errorf("samples %v and %v map to the same pixel %v", prev, s, px)
		}
		seen[px] = s
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"defaults", DefaultParams(), false},
		{"zero scale", Params{Scale: 0, Clip: 1}, true},
		{"negative clip", Params{Scale: 1, Clip: -1}, true},
		{"nan scale", Params{Scale: math.NaN(), Clip: 1}, true},
		{"inf clip", Params{Scale: 1, Clip: math.Inf(1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidParams) {
				t.Errorf("error %v is not ErrInvalidParams", err)
			}
		})
	}
}
