package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"alfredoptarigan/talent-screener/internal/logger"
)

const (
	defaultQdrantPort = 6334 // gRPC
	defaultVectorSize = 768  // text-embedding-004

	payloadDocType = "doc_type"
	payloadSource  = "source"
	payloadIndex   = "chunk_index"
	payloadText    = "text"
)

// VectorStore keeps embedded passages grouped by document type.
type VectorStore interface {
	EnsureCollection(ctx context.Context) error
	// Replace drops every passage of docType and stores docs in its place.
	Replace(ctx context.Context, docType string, docs []VectorDocument) error
	Search(ctx context.Context, vector []float32, docType string, limit int) ([]SearchResult, error)
}

type VectorDocument struct {
	Source string
	Index  int
	Text   string
	Vector []float32
}

type SearchResult struct {
	Source string
	Index  int
	Score  float32
	Text   string
}

type QdrantOptions struct {
	URL        string
	APIKey     string
	Collection string
	VectorSize uint64
}

type qdrantStore struct {
	client     *qdrant.Client
	collection string
	vectorSize uint64
	log        *zap.Logger
}

func NewQdrantStore(opts QdrantOptions, log *zap.Logger) (VectorStore, error) {
	host, port, useTLS, err := parseQdrantURL(opts.URL)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: opts.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	size := opts.VectorSize
	if size == 0 {
		size = defaultVectorSize
	}

	return &qdrantStore{
		client:     client,
		collection: opts.Collection,
		vectorSize: size,
		log:        logger.OrNop(log).With(zap.String("collection", opts.Collection)),
	}, nil
}

// parseQdrantURL maps an http(s) URL onto the gRPC endpoint the client dials.
func parseQdrantURL(raw string) (host string, port int, useTLS bool, err error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid Qdrant URL: %w", err)
	}
	if parsed.Hostname() == "" {
		return "", 0, false, errors.New("invalid Qdrant URL: missing host")
	}

	port = defaultQdrantPort
	if p := parsed.Port(); p != "" {
		if port, err = strconv.Atoi(p); err != nil {
			return "", 0, false, fmt.Errorf("invalid Qdrant port %q: %w", p, err)
		}
	}

	return parsed.Hostname(), port, parsed.Scheme == "https", nil
}

// EnsureCollection implements VectorStore. It also indexes the doc_type payload used by every filter.
func (s *qdrantStore) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		s.log.Debug("qdrant collection already exists")
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: s.collection,
		FieldName:      payloadDocType,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", payloadDocType, err)
	}

	s.log.Info("qdrant collection created", zap.Uint64("vector_size", s.vectorSize))
	return nil
}

// Replace implements VectorStore.
func (s *qdrantStore) Replace(ctx context.Context, docType string, docs []VectorDocument) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelectorFilter(docTypeFilter(docType)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s points: %w", docType, err)
	}

	if len(docs) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(docs))
	for _, doc := range docs {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID(docType, doc.Source, doc.Index)),
			Vectors: qdrant.NewVectors(doc.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadDocType: docType,
				payloadSource:  doc.Source,
				payloadIndex:   int64(doc.Index),
				payloadText:    doc.Text,
			}),
		})
	}

	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d points: %w", len(points), err)
	}

	s.log.Debug("qdrant points replaced", zap.String("doc_type", docType), zap.Int("points", len(points)))
	return nil
}

// Search implements VectorStore.
func (s *qdrantStore) Search(ctx context.Context, vector []float32, docType string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		return nil, nil
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         docTypeFilter(docType),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", docType, err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		results = append(results, SearchResult{
			Source: payloadString(point.Payload, payloadSource),
			Index:  int(payloadInt(point.Payload, payloadIndex)),
			Score:  point.Score,
			Text:   payloadString(point.Payload, payloadText),
		})
	}
	return results, nil
}

func docTypeFilter(docType string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch(payloadDocType, docType)},
	}
}

// pointID is stable per passage, so re-indexing the same document overwrites its points.
func pointID(docType, source string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s/%s/%d", docType, source, index))).String()
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func payloadInt(payload map[string]*qdrant.Value, key string) int64 {
	if v, ok := payload[key]; ok {
		return v.GetIntegerValue()
	}
	return 0
}
