package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml"

	"fuzzyme/internal/braid"
)

type inputConfig struct {
	BraidAngle          float64 `toml:"braid_angle"`
	YarnWidth           float64 `toml:"yarn_width"`
	RadiusDiameterRatio float64 `toml:"radius_diameter_ratio"`
	EdgeRadius          float64 `toml:"edge_radius"`
	AspectRatio         float64 `toml:"aspect_ratio"`
	PlyNum              float64 `toml:"plies"`
	PatchNum            float64 `toml:"patches"`
}

func loadInputs(path string) (braid.Inputs, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return braid.Inputs{}, err
	}
	var cfg inputConfig
	if err := toml.NewDecoder(bytes.NewReader(raw)).Strict(true).Decode(&cfg); err != nil {
		return braid.Inputs{}, fmt.Errorf("%s: %w", path, err)
	}
	return braid.Inputs{
		BraidAngle:          cfg.BraidAngle,
		YarnWidth:           cfg.YarnWidth,
		RadiusDiameterRatio: cfg.RadiusDiameterRatio,
		EdgeRadius:          cfg.EdgeRadius,
		AspectRatio:         cfg.AspectRatio,
		PlyNum:              cfg.PlyNum,
		PatchNum:            cfg.PatchNum,
	}, nil
}

type profileConfig struct {
	BraidingAngle  []float64              `toml:"braiding_angle"`
	Circumferences []float64              `toml:"circumferences"`
	SegmentLengths []float64              `toml:"segment_lengths"`
	MinRadius      []float64              `toml:"min_radius"`
	PathRadii      []float64              `toml:"path_radii"`
	Aspect         []float64              `toml:"aspect"`
	Plies          []float64              `toml:"plies"`
	Patches        []float64              `toml:"patches"`
	Seeds          map[string][][]float64 `toml:"seeds"`
}

func loadProfile(path string) (braid.Profile, braid.Seeds, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return braid.Profile{}, nil, err
	}
	var cfg profileConfig
	if err := toml.NewDecoder(bytes.NewReader(raw)).Strict(true).Decode(&cfg); err != nil {
		return braid.Profile{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	prof := braid.Profile{
		BraidingAngle:  cfg.BraidingAngle,
		Circumferences: cfg.Circumferences,
		SegmentLengths: cfg.SegmentLengths,
		MinRadius:      cfg.MinRadius,
		PathRadii:      cfg.PathRadii,
		Aspect:         cfg.Aspect,
		Plies:          cfg.Plies,
		Patches:        cfg.Patches,
	}
	return prof, braid.Seeds(cfg.Seeds), nil
}
