package service

import (
	"bitwise74/dashboard-api/internal/model"
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// SnapshotStore keeps exported dashboard snapshots in object storage
type SnapshotStore interface {
	PutSnapshot(ctx context.Context, key string, body []byte) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type snapshot struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Layout     model.JSONDoc `json:"layout"`
	Items      model.JSONDoc `json:"items"`
	NextID     int           `json:"nextId"`
	ExportedAt int64         `json:"exportedAt"`
}

// SnapshotPrefix is the key prefix under which every snapshot of a dashboard lives
func SnapshotPrefix(owner, id string) string {
	return fmt.Sprintf("dashboards/%s/%s/", owner, id)
}

// ExportSnapshot uploads the current state of d and returns the object key
func ExportSnapshot(ctx context.Context, store SnapshotStore, d *model.Dashboard, now time.Time) (string, error) {
	body, err := json.Marshal(snapshot{
		ID:         d.ID,
		Name:       d.Name,
		Layout:     d.Layout,
		Items:      d.Items,
		NextID:     d.NextID,
		ExportedAt: now.Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot, %w", err)
	}

	key := fmt.Sprintf("%s%d.json", SnapshotPrefix(d.Owner, d.ID), now.Unix())

	if err := store.PutSnapshot(ctx, key, body); err != nil {
		return "", err
	}

	return key, nil
}
