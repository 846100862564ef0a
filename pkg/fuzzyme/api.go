// Package fuzzyme is the public entry point to the braiding
// manufacturing-effort model: evaluation, sensitivities, profile
// scoring, and persistence of pipeline definitions and evaluations.
package fuzzyme

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fuzzyme/internal/braid"
	"fuzzyme/internal/logbase"
	"fuzzyme/internal/model"
	"fuzzyme/internal/pipeline"
	"fuzzyme/internal/storage"
)

const defaultDBPath = "fuzzyme.db"

type Options struct {
	StoreKind string
	DBPath    string

	// Tolerance overrides the forward-difference step. Zero keeps the
	// model default.
	Tolerance float64
}

type Client struct {
	store storage.Store
	model *braid.Model
	log   *zap.Logger
}

type EvaluateRequest struct {
	Inputs braid.Inputs

	// Record persists the evaluation under PipelineID.
	Record     bool
	PipelineID string
}

type EvaluateSummary struct {
	ID           string
	Value        float64
	Extrapolated bool
	Rule         string
	Variable     string
	Label        string
	Sentence     string
	Hint         string
}

type ProfileSummary struct {
	Value    float64
	Sections []EvaluateSummary
}

func New(opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	m, err := braid.New()
	if err != nil {
		return nil, err
	}
	if opts.Tolerance != 0 {
		m.Tolerance = opts.Tolerance
	}
	return &Client{
		store: store,
		model: m,
		log:   logbase.L(),
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func summarize(ev braid.Evaluation) EvaluateSummary {
	return EvaluateSummary{
		Value:        ev.Value,
		Extrapolated: ev.Extrapolated,
		Rule:         ev.Reason.Rule,
		Variable:     ev.Reason.Variable,
		Label:        ev.Reason.Label,
		Sentence:     ev.Reason.Sentence,
		Hint:         ev.Hint,
	}
}

// Evaluate scores one design point, optionally recording the result.
func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) (EvaluateSummary, error) {
	ev, err := c.model.Evaluate(req.Inputs)
	if err != nil {
		return EvaluateSummary{}, err
	}
	out := summarize(ev)
	c.log.Info("evaluated design point",
		zap.Float64("value", out.Value),
		zap.Bool("extrapolated", out.Extrapolated),
		zap.String("rule", out.Rule),
	)
	if req.Record {
		out.ID = uuid.NewString()
		rec := model.EvaluationRecord{
			VersionedRecord: storage.Stamp(),
			ID:              out.ID,
			PipelineID:      req.PipelineID,
			Inputs:          inputsMap(req.Inputs),
			Value:           out.Value,
			Rule:            out.Rule,
			Variable:        out.Variable,
			Label:           out.Label,
			CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339),
		}
		if err := c.store.SaveEvaluation(ctx, rec); err != nil {
			return EvaluateSummary{}, err
		}
	}
	return out, nil
}

// Sensitivity scores a design point and returns forward-difference
// gradients over all seven inputs, in input order.
func (c *Client) Sensitivity(_ context.Context, inputs braid.Inputs) (EvaluateSummary, []pipeline.Gradient, error) {
	ev, grads, err := c.model.Sensitivity(inputs)
	if err != nil {
		return EvaluateSummary{}, nil, err
	}
	return summarize(ev), grads, nil
}

// EvaluateProfile scores a braided component along its path.
func (c *Client) EvaluateProfile(_ context.Context, p braid.Profile) (ProfileSummary, error) {
	res, err := c.model.EvaluateProfile(p)
	if err != nil {
		return ProfileSummary{}, err
	}
	out := ProfileSummary{Value: res.Value, Sections: make([]EvaluateSummary, len(res.Sections))}
	for i, sec := range res.Sections {
		out.Sections[i] = summarize(sec)
	}
	c.log.Info("evaluated profile",
		zap.Float64("value", out.Value),
		zap.Int("sections", len(out.Sections)),
	)
	return out, nil
}

// ProfileSensitivity differentiates the profile score through the given
// seed rows, one gradient entry per design variable.
func (c *Client) ProfileSensitivity(_ context.Context, p braid.Profile, seeds braid.Seeds) (ProfileSummary, []float64, error) {
	res, sens, err := c.model.ProfileSensitivity(p, seeds)
	if err != nil {
		return ProfileSummary{}, nil, err
	}
	out := ProfileSummary{Value: res.Value, Sections: make([]EvaluateSummary, len(res.Sections))}
	for i, sec := range res.Sections {
		out.Sections[i] = summarize(sec)
	}
	return out, sens, nil
}

// SavePipeline persists the model's pipeline definition and returns the
// assigned id.
func (c *Client) SavePipeline(ctx context.Context, id, name string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	def := c.model.Extrapolator().Def()
	def.VersionedRecord = storage.Stamp()
	def.ID = id
	if name != "" {
		def.Name = name
	}
	if err := c.store.SavePipeline(ctx, def); err != nil {
		return "", err
	}
	c.log.Info("saved pipeline", zap.String("id", id), zap.String("name", def.Name))
	return id, nil
}

// LoadPipeline fetches a stored pipeline definition and verifies it
// still assembles into a working evaluator.
func (c *Client) LoadPipeline(ctx context.Context, id string) (model.PipelineDef, bool, error) {
	def, ok, err := c.store.GetPipeline(ctx, id)
	if err != nil || !ok {
		return model.PipelineDef{}, ok, err
	}
	if _, err := pipeline.FromDef(def); err != nil {
		return model.PipelineDef{}, false, err
	}
	return def, true, nil
}

// Evaluations lists the evaluations recorded under a pipeline id.
func (c *Client) Evaluations(ctx context.Context, pipelineID string) ([]model.EvaluationRecord, error) {
	return c.store.ListEvaluations(ctx, pipelineID)
}

func inputsMap(in braid.Inputs) map[string]float64 {
	return map[string]float64{
		"BraidAngle":          in.BraidAngle,
		"YarnWidth":           in.YarnWidth,
		"RadiusDiameterRatio": in.RadiusDiameterRatio,
		"EdgeRadius":          in.EdgeRadius,
		"AspectRatio":         in.AspectRatio,
		"PlyNum":              in.PlyNum,
		"PatchNum":            in.PatchNum,
	}
}
