package checklist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/idilsaglam/packlist/internal/model"
	"github.com/idilsaglam/packlist/internal/store"
)

// EncodeSnapshot serializes the packed history. An empty history is "[]".
func EncodeSnapshot(snap model.Snapshot) (string, error) {
	if snap == nil {
		snap = model.Snapshot{}
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("json marshal: %w", err)
	}
	return string(b), nil
}

// DecodeSnapshot parses a stored snapshot. Missing fields take their zero
// value, so snapshots written without weights decode with weight 0.
func DecodeSnapshot(raw string) (model.Snapshot, error) {
	if raw == "" {
		return model.Snapshot{}, nil
	}
	var snap model.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if snap == nil {
		snap = model.Snapshot{}
	}
	for i := range snap {
		if snap[i].Weight < 0 {
			snap[i].Weight = 0
		}
		snap[i].WeightInput = FormatNumber(snap[i].Weight)
	}
	return snap, nil
}

// ReadSnapshot fetches and decodes the packed history from s.
// A missing key yields an empty snapshot.
func ReadSnapshot(ctx context.Context, s store.Store) (model.Snapshot, error) {
	raw, ok, err := s.Get(ctx, store.PackedHistoryKey)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", store.PackedHistoryKey, err)
	}
	if !ok {
		return model.Snapshot{}, nil
	}
	return DecodeSnapshot(raw)
}

// WriteSnapshot encodes snap and overwrites the stored packed history.
func WriteSnapshot(ctx context.Context, s store.Store, snap model.Snapshot) error {
	raw, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := s.Set(ctx, store.PackedHistoryKey, raw); err != nil {
		return fmt.Errorf("set %s: %w", store.PackedHistoryKey, err)
	}
	return nil
}
