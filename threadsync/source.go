// Package threadsync keeps an open complaint thread fresh for the console.
package threadsync

import (
	"context"
	"errors"
	"log"
	"time"

	"elsahm-admin/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Snapshot is the authoritative state of a complaint at one moment.
type Snapshot struct {
	Complaint models.Complaint
	At        time.Time
}

// ChangeSource delivers snapshots of one complaint until ctx is cancelled.
// The first snapshot is the current state. The channel is closed when the
// source stops; cancelling ctx must release every goroutine and timer.
type ChangeSource interface {
	Changes(ctx context.Context, complaintID string) (<-chan Snapshot, error)
}

// Fetcher reads one complaint.
type Fetcher interface {
	Get(ctx context.Context, id string) (*models.Complaint, error)
}

func send(ctx context.Context, out chan<- Snapshot, snap Snapshot) bool {
	select {
	case out <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}

// PollingSource re-fetches the complaint every Interval.
type PollingSource struct {
	Fetcher  Fetcher
	Interval time.Duration
}

func (p *PollingSource) Changes(ctx context.Context, complaintID string) (<-chan Snapshot, error) {
	initial, err := p.Fetcher.Get(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	out := make(chan Snapshot, 1)
	out <- Snapshot{Complaint: *initial, At: time.Now()}

	go func() {
		defer close(out)

		ticker := time.NewTicker(p.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				complaint, err := p.Fetcher.Get(ctx, complaintID)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Printf("Polling complaint %s failed: %v", complaintID, err)
					continue
				}
				if !send(ctx, out, Snapshot{Complaint: *complaint, At: time.Now()}) {
					return
				}
			}
		}
	}()

	return out, nil
}

// StreamSource follows a mongo change stream on the complaints collection.
// It needs a replica set; use FallbackSource to poll elsewhere.
type StreamSource struct {
	Collection *mongo.Collection
	Fetcher    Fetcher
}

type changeEvent struct {
	OperationType string            `bson:"operationType"`
	FullDocument  *models.Complaint `bson:"fullDocument"`
}

func (s *StreamSource) Changes(ctx context.Context, complaintID string) (<-chan Snapshot, error) {
	oid, err := primitive.ObjectIDFromHex(complaintID)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: oid}}}},
	}
	stream, err := s.Collection.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, err
	}

	// read after the stream is open so no change falls between the two
	initial, err := s.Fetcher.Get(ctx, complaintID)
	if err != nil {
		_ = stream.Close(context.Background())
		return nil, err
	}

	out := make(chan Snapshot, 1)
	out <- Snapshot{Complaint: *initial, At: time.Now()}

	go func() {
		defer close(out)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var ev changeEvent
			if err := stream.Decode(&ev); err != nil {
				log.Printf("Decoding change for complaint %s failed: %v", complaintID, err)
				continue
			}
			if ev.OperationType == "delete" {
				return
			}
			if ev.FullDocument == nil {
				continue
			}
			if !send(ctx, out, Snapshot{Complaint: *ev.FullDocument, At: time.Now()}) {
				return
			}
		}
		if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Change stream for complaint %s stopped: %v", complaintID, err)
		}
	}()

	return out, nil
}

// FallbackSource uses Primary and falls back to Secondary when Primary
// cannot start.
type FallbackSource struct {
	Primary   ChangeSource
	Secondary ChangeSource
}

func (f *FallbackSource) Changes(ctx context.Context, complaintID string) (<-chan Snapshot, error) {
	ch, err := f.Primary.Changes(ctx, complaintID)
	if err == nil {
		return ch, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	log.Printf("Live changes unavailable for complaint %s, polling instead: %v", complaintID, err)
	return f.Secondary.Changes(ctx, complaintID)
}
