package main

import (
	"io"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/phanxgames/grove"
	"github.com/segmentio/encoding/json"
)

// loadPreset reads path, or returns the default preset when path is empty.
func loadPreset(path string) (grove.Preset, error) {
	if path == "" {
		return grove.DefaultPreset(), nil
	}
	p, err := grove.LoadPreset(path)
	if err != nil {
		return grove.Preset{}, errors.New("loading preset failed").
			WithTag("file_name", path).
			Wrap(err)
	}
	return p, nil
}

// buildWorld loads a preset and generates it with placeholder meshes.
func buildWorld(path string, wf worldFlags) (*grove.World, error) {
	p, err := loadPreset(path)
	if err != nil {
		return nil, err
	}
	if wf.seed != 0 {
		p.Seed = wf.seed
	}

	res := grove.NewResources()
	w, err := grove.NewWorld(p, grove.WorldEnv{
		Resources: res,
		Meshes:    grove.RegisterPlaceholderMeshes(res, &p),
	})
	if err != nil {
		return nil, errors.New("creating world failed").Wrap(err)
	}
	w.Parallel = wf.parallel
	w.SetDebugMode(wf.debug)

	if err := w.Generate(); err != nil {
		return nil, errors.New("generating world failed").
			WithTag("preset", p.Name).
			WithTag("seed", p.Seed).
			Wrap(err)
	}
	logs.WithTag("preset", p.Name).
		WithTag("seed", p.Seed).
		WithTag("batches", len(w.Hub().Batches())).
		Debug("world generated")
	return w, nil
}

func runGenerate(out io.Writer, path string, wf worldFlags) error {
	w, err := buildWorld(path, wf)
	if err != nil {
		return err
	}
	rep := newWorldReport(w)
	printWorldReport(out, rep)
	for _, f := range rep.Fields {
		if f.Shortfall > 0 {
			logs.WithTag("category", f.Category).
				WithTag("shortfall", f.Shortfall).
				Warn("category placed fewer objects than requested")
		}
	}
	return nil
}

func runStats(out io.Writer, path string, wf worldFlags, frames int, asJSON bool) error {
	if frames < 1 {
		return errors.New("frames must be at least 1").WithTag("frames", frames)
	}
	w, err := buildWorld(path, wf)
	if err != nil {
		return err
	}

	cam := overviewCamera(&w.Preset)
	var stats grove.FrameStats
	for range frames {
		stats = w.Hub().DrawFrame([]*grove.Camera{cam}, nil)
	}

	rep := newWorldReport(w)
	rep.Frame = newFrameReport(stats)
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	printWorldReport(out, rep)
	printFrameReport(out, rep.Frame)
	return nil
}

func runValidate(out io.Writer, path string) error {
	p, err := loadPreset(path)
	if err != nil {
		return err
	}
	configs := p.ScatterConfigs()
	printValidPreset(out, &p, configs)
	return nil
}

func runDefaults(out io.Writer) error {
	p := grove.DefaultPreset()
	data, err := p.Marshal()
	if err != nil {
		return errors.New("encoding default preset failed").Wrap(err)
	}
	_, err = out.Write(data)
	return err
}

// overviewCamera looks at the area center from above its southern edge.
func overviewCamera(p *grove.Preset) *grove.Camera {
	center := p.Center()
	cam := grove.NewCamera("overview", 16.0/9.0)
	cam.Position = center.Add(mgl32.Vec3{0, p.Area.Size[1] * 0.35, -p.Area.Size[1] * 0.6})
	cam.LookAt(center)
	return cam
}
