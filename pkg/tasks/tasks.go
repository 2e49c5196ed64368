package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TypePurgeBlob  = "blob:purge"
	TypeSweepBlobs = "blobs:sweep"
)

type PurgeBlobTaskPayload struct {
	BlobID int64
}

func NewPurgeBlobTask(blobID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(PurgeBlobTaskPayload{BlobID: blobID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePurgeBlob, payload), nil
}

func NewSweepBlobsTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeSweepBlobs, nil), nil
}
