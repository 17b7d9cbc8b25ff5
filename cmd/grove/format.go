package main

import (
	"fmt"
	"io"

	"github.com/phanxgames/grove"
)

type worldReport struct {
	Preset    string        `json:"preset"`
	Seed      int64         `json:"seed"`
	Batches   int           `json:"batches"`
	Instances int           `json:"instances"`
	Fields    []fieldReport `json:"fields"`
	Frame     *frameReport  `json:"frame,omitempty"`
}

type fieldReport struct {
	Category  string         `json:"category"`
	Target    int            `json:"target"`
	Accepted  int            `json:"accepted"`
	Attempts  int            `json:"attempts"`
	Near      int            `json:"near"`
	Batches   int            `json:"batches"`
	Instances int            `json:"instances"`
	Shortfall int            `json:"shortfall"`
	Rejected  map[string]int `json:"rejected"`
}

type frameReport struct {
	Frame             uint64         `json:"frame"`
	Generation        uint64         `json:"generation"`
	Cameras           int            `json:"cameras"`
	VisibleBatches    int            `json:"visible_batches"`
	DrawnInstances    int            `json:"drawn_instances"`
	DrawCalls         int            `json:"draw_calls"`
	Culled            map[string]int `json:"culled"`
	VisibleByCategory map[string]int `json:"visible_by_category"`
}

func newWorldReport(w *grove.World) worldReport {
	rep := worldReport{
		Preset: w.Preset.Name,
		Seed:   w.Preset.Seed,
	}
	for _, b := range w.Hub().Batches() {
		rep.Batches++
		rep.Instances += b.Count()
	}
	for _, f := range w.Fields() {
		s := f.Stats()
		fr := fieldReport{
			Category:  f.Engine.Config.Category.String(),
			Target:    s.Target,
			Accepted:  s.Accepted,
			Attempts:  s.Attempts,
			Near:      s.Near,
			Batches:   len(f.Batches()),
			Instances: f.Instances(),
			Shortfall: s.Shortfall(),
			Rejected:  map[string]int{},
		}
		for r := grove.RejectSpacing; r <= grove.RejectExcluded; r++ {
			if n := s.RejectedBy(r); n > 0 {
				fr.Rejected[r.String()] = n
			}
		}
		rep.Fields = append(rep.Fields, fr)
	}
	return rep
}

func newFrameReport(s grove.FrameStats) *frameReport {
	return &frameReport{
		Frame:          s.Frame,
		Generation:     s.Generation,
		Cameras:        s.Cameras,
		VisibleBatches: s.VisibleBatches,
		DrawnInstances: s.DrawnInstances,
		DrawCalls:      s.DrawCalls,
		Culled: map[string]int{
			"frustum":  s.CulledByFrustum,
			"distance": s.CulledByDistance,
			"facing":   s.CulledByFacing,
			"missing":  s.SkippedMissing,
		},
		VisibleByCategory: s.VisibleByCategory.Map(),
	}
}

func printWorldReport(out io.Writer, r worldReport) {
	fmt.Fprintf(out, "World %q (seed %d): %d batches, %d instances\n\n", r.Preset, r.Seed, r.Batches, r.Instances)
	fmt.Fprintf(out, "  %-18s %8s %8s %8s %6s %8s %10s\n",
		"CATEGORY", "TARGET", "PLACED", "ATTEMPTS", "NEAR", "BATCHES", "INSTANCES")
	for _, f := range r.Fields {
		fmt.Fprintf(out, "  %-18s %8d %8d %8d %6d %8d %10d\n",
			f.Category, f.Target, f.Accepted, f.Attempts, f.Near, f.Batches, f.Instances)
	}
	fmt.Fprintln(out)
}

func printFrameReport(out io.Writer, f *frameReport) {
	fmt.Fprintf(out, "Frame %d (generation %d, %d cameras)\n", f.Frame, f.Generation, f.Cameras)
	fmt.Fprintf(out, "  visible batches: %d\n", f.VisibleBatches)
	fmt.Fprintf(out, "  drawn instances: %d\n", f.DrawnInstances)
	fmt.Fprintf(out, "  draw calls:      %d\n", f.DrawCalls)
	fmt.Fprintf(out, "  culled:          frustum %d, distance %d, facing %d, missing %d\n",
		f.Culled["frustum"], f.Culled["distance"], f.Culled["facing"], f.Culled["missing"])
	for _, c := range grove.Categories() {
		if n, ok := f.VisibleByCategory[c.String()]; ok {
			fmt.Fprintf(out, "    %-18s %d\n", c, n)
		}
	}
}

func printValidPreset(out io.Writer, p *grove.Preset, configs []grove.ScatterConfig) {
	fmt.Fprintf(out, "Preset %q is valid\n", p.Name)
	fmt.Fprintf(out, "  area: %gx%g at (%g, %g, %g)\n",
		p.Area.Size[0], p.Area.Size[1], p.Area.Origin[0], p.Area.Origin[1], p.Area.Origin[2])
	for _, c := range configs {
		fmt.Fprintf(out, "  %-18s count %d, spacing %g\n", c.Category, c.Count, c.MinSpacing)
	}
}
