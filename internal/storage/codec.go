package storage

import (
	"encoding/json"
	"errors"

	"fuzzyme/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Stamp fills in the versions a record is written with.
func Stamp() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
	}
}

func EncodePipeline(def model.PipelineDef) ([]byte, error) {
	return json.Marshal(def)
}

func DecodePipeline(data []byte) (model.PipelineDef, error) {
	var def model.PipelineDef
	if err := json.Unmarshal(data, &def); err != nil {
		return model.PipelineDef{}, err
	}
	if err := checkVersion(def.VersionedRecord); err != nil {
		return model.PipelineDef{}, err
	}
	return def, nil
}

func EncodeEvaluation(rec model.EvaluationRecord) ([]byte, error) {
	return json.Marshal(rec)
}

func DecodeEvaluation(data []byte) (model.EvaluationRecord, error) {
	var rec model.EvaluationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.EvaluationRecord{}, err
	}
	if err := checkVersion(rec.VersionedRecord); err != nil {
		return model.EvaluationRecord{}, err
	}
	return rec, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
