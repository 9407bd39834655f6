// Package qdrant provides a PrecedentIndex implementation using Qdrant.
package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/ersonp/sarcheck/internal/domain/entities"
	"github.com/ersonp/sarcheck/internal/infrastructure/config"
)

const (
	payloadCaseID    = "case_id"
	payloadNarrative = "narrative"
	payloadCreatedAt = "created_at"
)

// Repository implements ports.PrecedentIndex and ports.CollectionManager using Qdrant.
type Repository struct {
	client     pb.CollectionsClient
	points     pb.PointsClient
	collection string
	conn       *grpc.ClientConn
}

// NewRepository creates a new Qdrant repository.
func NewRepository(cfg config.QdrantConfig) (*Repository, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if cfg.APIKey != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return &Repository{
		client:     pb.NewCollectionsClient(conn),
		points:     pb.NewPointsClient(conn),
		collection: cfg.Collection,
		conn:       conn,
	}, nil
}

func apiKeyInterceptor(key string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", key)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// EnsureCollection creates the collection if it doesn't exist.
func (r *Repository) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	_, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err == nil {
		return nil
	}

	_, err = r.client.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	return nil
}

// DeleteCollection removes the collection and every indexed precedent.
func (r *Repository) DeleteCollection(ctx context.Context) error {
	_, err := r.client.Delete(ctx, &pb.DeleteCollection{
		CollectionName: r.collection,
	})
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// Save stores a precedent with its embedding.
func (r *Repository) Save(ctx context.Context, precedent entities.Precedent) error {
	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Wait:           pb.PtrOf(true),
		Points:         []*pb.PointStruct{precedentToPoint(precedent)},
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	return nil
}

// Search returns the precedents closest to embedding, best first.
func (r *Repository) Search(ctx context.Context, embedding []float32, limit int) ([]entities.Precedent, error) {
	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	return scoredPointsToPrecedents(resp.Result), nil
}

// DeleteByCase removes every precedent indexed for a case.
func (r *Repository) DeleteByCase(ctx context.Context, caseID string) error {
	_, err := r.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collection,
		Wait:           pb.PtrOf(true),
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: caseFilter(caseID),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting points by case: %w", err)
	}

	return nil
}

// Count returns the number of indexed precedents.
func (r *Repository) Count(ctx context.Context) (uint64, error) {
	resp, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err != nil {
		return 0, fmt.Errorf("getting collection info: %w", err)
	}

	if resp.Result.PointsCount == nil {
		return 0, nil
	}

	return *resp.Result.PointsCount, nil
}

func caseFilter(caseID string) *pb.Filter {
	return &pb.Filter{
		Must: []*pb.Condition{
			{
				ConditionOneOf: &pb.Condition_Field{
					Field: &pb.FieldCondition{
						Key: payloadCaseID,
						Match: &pb.Match{
							MatchValue: &pb.Match_Keyword{
								Keyword: caseID,
							},
						},
					},
				},
			},
		},
	}
}

// precedentToPoint converts a Precedent to a Qdrant point.
func precedentToPoint(p entities.Precedent) *pb.PointStruct {
	pointID := p.ID
	if pointID == "" {
		pointID = uuid.New().String()
	}

	return &pb.PointStruct{
		Id: &pb.PointId{
			PointIdOptions: &pb.PointId_Uuid{
				Uuid: pointID,
			},
		},
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{
					Data: p.Embedding,
				},
			},
		},
		Payload: map[string]*pb.Value{
			payloadCaseID:    {Kind: &pb.Value_StringValue{StringValue: p.CaseID}},
			payloadNarrative: {Kind: &pb.Value_StringValue{StringValue: p.Narrative}},
			payloadCreatedAt: {Kind: &pb.Value_StringValue{StringValue: p.CreatedAt.UTC().Format(time.RFC3339)}},
		},
	}
}

// scoredPointsToPrecedents converts scored points to precedents.
func scoredPointsToPrecedents(points []*pb.ScoredPoint) []entities.Precedent {
	precedents := make([]entities.Precedent, 0, len(points))

	for _, point := range points {
		payload := point.Payload
		p := entities.Precedent{
			ID:        point.GetId().GetUuid(),
			CaseID:    getStringValue(payload, payloadCaseID),
			Narrative: getStringValue(payload, payloadNarrative),
			Score:     point.GetScore(),
		}
		if created, err := time.Parse(time.RFC3339, getStringValue(payload, payloadCreatedAt)); err == nil {
			p.CreatedAt = created
		}
		precedents = append(precedents, p)
	}

	return precedents
}

// Helper functions for payload extraction.
func getStringValue(payload map[string]*pb.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
