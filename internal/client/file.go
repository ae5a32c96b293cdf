package client

import (
	"context"

	"github.com/tormodhaugland/lastimport/internal/model"
)

// FileClient serves a snapshot exported to disk. It is read-only.
type FileClient struct {
	Path string
}

func (c FileClient) FetchLatestImport(ctx context.Context) (*model.StockImportSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := model.LoadSnapshot(c.Path)
	if err != nil {
		return nil, &TransportError{Op: "read snapshot file", Err: err}
	}
	return s, nil
}

func (c FileClient) TriggerImport(ctx context.Context) error {
	return ErrTriggerUnsupported
}
