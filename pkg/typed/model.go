// Package typed decodes the opaque payload of a dataset into a caller-defined type.
package typed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/lintas/pkg/core"
)

// Record is a typed view of a dataset: the known fields plus the payload
// decoded into T.
type Record[T any] struct {
	core.Dataset
	Data  T        // decoded payload
	Saver Saver[T] // Active Record reference
}

// Saver avoids coupling Record to a concrete Repository or Service.
type Saver[T any] interface {
	Put(ctx context.Context, rec *Record[T]) (string, error)
}

// Save persists the record through the attached saver.
func (r *Record[T]) Save(ctx context.Context) (string, error) {
	if r.Saver == nil {
		return "", fmt.Errorf("record is detached (missing Saver)")
	}
	return r.Saver.Put(ctx, r)
}

// toCore encodes Data as the payload. Data fully replaces any payload already
// on the embedded dataset.
func toCore[T any](rec *Record[T]) (core.Dataset, error) {
	raw, err := json.Marshal(rec.Data)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("failed to marshal typed payload: %w", err)
	}
	var payload core.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return core.Dataset{}, fmt.Errorf("failed to convert typed payload to map: %w", err)
	}

	d := rec.Dataset
	d.Payload = payload
	return d, nil
}

func fromCore[T any](d core.Dataset, saver Saver[T]) (*Record[T], error) {
	raw, err := json.Marshal(d.Payload)
	if err != nil {
		return nil, fmt.Errorf("payload marshal failed: %w", err)
	}
	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal to target type failed: %w", err)
	}
	return &Record[T]{Dataset: d, Data: data, Saver: saver}, nil
}

func fromCoreList[T any](ds []core.Dataset, saver Saver[T]) ([]*Record[T], error) {
	out := make([]*Record[T], 0, len(ds))
	for _, d := range ds {
		rec, err := fromCore(d, saver)
		if err != nil {
			return nil, fmt.Errorf("failed to process dataset %s: %w", d.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
