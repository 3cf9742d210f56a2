package storage

import (
	"context"
	"fmt"

	"mailfacts/internal/identity"

	"github.com/qdrant/go-client/qdrant"
)

// CollectionMessages is the qdrant collection holding message body embeddings
const CollectionMessages = "emails"

// VectorPayload is the filterable metadata stored next to each embedding
type VectorPayload struct {
	MessageID int64
	Subject   string
	Sender    string
	Folder    string
}

// ScoredMessage is one vector search hit; MessageID points back at the
// relational row for hydration
type ScoredMessage struct {
	MessageID int64
	Score     float32
	Subject   string
	Folder    string
}

// VectorStore wraps the qdrant client. Vector records are a derived,
// rebuildable projection of the relational store, never a source of truth.
type VectorStore struct {
	client *qdrant.Client
	dim    uint64
}

// NewVectorStore connects to qdrant and ensures the messages collection exists
func NewVectorStore(ctx context.Context, host string, port int, dim uint64) (*VectorStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{Host: host, Port: port})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	store := &VectorStore{client: client, dim: dim}
	if err := store.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (v *VectorStore) ensureCollection(ctx context.Context) error {
	exists, err := v.client.CollectionExists(ctx, CollectionMessages)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = v.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: CollectionMessages,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     v.dim,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// UpsertMessageVector writes the embedding for a message at its stable
// identity. Reprocessing the same logical message always overwrites the same
// point instead of creating a duplicate.
func (v *VectorStore) UpsertMessageVector(ctx context.Context, storeID, entryID string, vector []float32, payload VectorPayload) error {
	pointID := identity.StableVectorID(storeID, entryID)

	_, err := v.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: CollectionMessages,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewIDNum(pointID),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"message_id": payload.MessageID,
					"subject":    payload.Subject,
					"sender":     payload.Sender,
					"folder":     payload.Folder,
				}),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert vector: %w", err)
	}
	return nil
}

// Search runs a similarity query, optionally restricted to one folder
func (v *VectorStore) Search(ctx context.Context, vector []float32, folder string, limit uint64) ([]ScoredMessage, error) {
	query := &qdrant.QueryPoints{
		CollectionName: CollectionMessages,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if folder != "" {
		query.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("folder", folder)},
		}
	}

	points, err := v.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]ScoredMessage, 0, len(points))
	for _, p := range points {
		hit := ScoredMessage{Score: p.GetScore()}
		if payload := p.GetPayload(); payload != nil {
			hit.MessageID = payload["message_id"].GetIntegerValue()
			hit.Subject = payload["subject"].GetStringValue()
			hit.Folder = payload["folder"].GetStringValue()
		}
		results = append(results, hit)
	}
	return results, nil
}

// Close releases the underlying grpc connection
func (v *VectorStore) Close() error {
	return v.client.Close()
}
