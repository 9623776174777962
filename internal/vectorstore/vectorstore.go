// Package vectorstore is the semantic-search sink for analysed articles,
// talking to Qdrant over gRPC. Grounded on
// WessleyAI-wessley-mvp/engine/semantic/store.go's VectorStore (New,
// EnsureCollection, Upsert, Search) — the one place in this repo gRPC is
// genuinely wired, since a real generated Qdrant client ships in the
// example pack, unlike the fabricated-stub gateway/trade-executor gRPC
// this repo deliberately avoids (see internal/gateway and
// internal/tradeexec). The cmd/ binaries configure it through QDRANT_ADDR
// and QDRANT_COLLECTION; no WEAVIATE_* variable is read.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// pointNamespace is a fixed namespace for deriving deterministic point
// UUIDs from article IDs via UUIDv5.
var pointNamespace = uuid.MustParse("6f2ad0b4-6f1e-4c6a-9c9d-5e6c6a9d7b2e")

// Record is one embedded article ready to upsert.
type Record struct {
	ArticleID string
	Embedding []float32
	Title     string
	StockCode string
	Content   string
}

// SearchResult is one k-NN hit.
type SearchResult struct {
	ArticleID string
	Score     float32
	Title     string
	StockCode string
	Content   string
}

// Store owns the Qdrant gRPC connection and the one collection this
// pipeline writes to.
type Store struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// New dials addr (host:port) and targets collection.
func New(addr, collection string) (*Store, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: dial qdrant %s: %w", addr, err)
	}
	return &Store{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// Close closes the underlying gRPC connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// EnsureCollection creates the collection with the given embedding
// dimensionality if it does not already exist.
func (s *Store) EnsureCollection(ctx context.Context, dims int) error {
	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("vectorstore: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == s.collection {
			return nil
		}
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("vectorstore: create collection %s: %w", s.collection, err)
	}
	return nil
}

// Upsert stores records, keyed on a deterministic UUID derived from
// ArticleID so re-ingesting the same article overwrites its point rather
// than duplicating it.
func (s *Store) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: pointUUID(r.ArticleID)}},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: r.Embedding}},
			},
			Payload: map[string]*pb.Value{
				"article_id": {Kind: &pb.Value_StringValue{StringValue: r.ArticleID}},
				"title":      {Kind: &pb.Value_StringValue{StringValue: r.Title}},
				"stock_code": {Kind: &pb.Value_StringValue{StringValue: r.StockCode}},
				"content":    {Kind: &pb.Value_StringValue{StringValue: r.Content}},
			},
		}
	}

	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("vectorstore: upsert %d points: %w", len(records), err)
	}
	return nil
}

// Search performs k-NN similarity search against embedding.
func (s *Store) Search(ctx context.Context, embedding []float32, topK int) ([]SearchResult, error) {
	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         embedding,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: search: %w", err)
	}

	results := make([]SearchResult, len(resp.GetResult()))
	for i, r := range resp.GetResult() {
		payload := r.GetPayload()
		results[i] = SearchResult{
			ArticleID: payload["article_id"].GetStringValue(),
			Score:     r.GetScore(),
			Title:     payload["title"].GetStringValue(),
			StockCode: payload["stock_code"].GetStringValue(),
			Content:   payload["content"].GetStringValue(),
		}
	}
	return results, nil
}

// pointUUID derives a stable UUIDv5 from an article ID so Qdrant point IDs
// are deterministic across re-ingestion.
func pointUUID(articleID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(articleID)).String()
}
