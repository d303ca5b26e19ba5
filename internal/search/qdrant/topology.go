package qdrant

import (
	"fmt"

	qc "github.com/qdrant/go-client/qdrant"

	"github.com/bull/foundry-sharepoint/internal/search"
)

// PayloadIndex is a payload field to index.
type PayloadIndex struct {
	Field string
	Type  qc.FieldType
}

// Collection is the Qdrant translation of an index topology.
type Collection struct {
	Vectors        map[string]*qc.VectorParams
	PayloadIndexes []PayloadIndex
}

// CollectionConfig translates an index into named vectors and payload
// indexes. Each vector field takes distance, HNSW parameters and quantization
// from its profile.
func CollectionConfig(index *search.Index) (*Collection, error) {
	if index.VectorSearch == nil {
		return nil, fmt.Errorf("index %s has no vector search configuration", index.Name)
	}
	vs := index.VectorSearch
	if len(vs.Vectorizers) > 0 {
		return nil, fmt.Errorf("%w: integrated vectorizers on index %s", search.ErrUnsupported, index.Name)
	}
	cfg := &Collection{Vectors: make(map[string]*qc.VectorParams)}

	for _, f := range index.Fields {
		if !f.IsVector() {
			if pi, ok := payloadIndex(f); ok {
				cfg.PayloadIndexes = append(cfg.PayloadIndexes, pi)
			}
			continue
		}

		profile, ok := vs.Profile(f.VectorSearchProfile)
		if !ok {
			return nil, fmt.Errorf("field %s: unknown vector profile %q", f.Name, f.VectorSearchProfile)
		}
		algorithm, ok := vs.Algorithm(profile.Algorithm)
		if !ok {
			return nil, fmt.Errorf("profile %s: unknown algorithm %q", profile.Name, profile.Algorithm)
		}
		distance, err := distanceFor(algorithm.Metric())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}

		params := &qc.VectorParams{
			Size:     uint64(f.Dimensions),
			Distance: distance,
		}
		if algorithm.HNSW != nil {
			params.HnswConfig = &qc.HnswConfigDiff{
				M:           qc.PtrOf(uint64(algorithm.HNSW.M)),
				EfConstruct: qc.PtrOf(uint64(algorithm.HNSW.EfConstruction)),
			}
		}
		if profile.Compression != "" {
			compression, ok := vs.Compression(profile.Compression)
			if !ok {
				return nil, fmt.Errorf("profile %s: unknown compression %q", profile.Name, profile.Compression)
			}
			params.QuantizationConfig = quantizationFor(compression)
		}
		if f.Stored != nil && !*f.Stored {
			// Unretrievable originals are kept on disk only.
			params.OnDisk = qc.PtrOf(true)
		}

		cfg.Vectors[f.Name] = params
	}

	if len(cfg.Vectors) == 0 {
		return nil, fmt.Errorf("index %s has no vector fields", index.Name)
	}
	return cfg, nil
}

func distanceFor(metric string) (qc.Distance, error) {
	switch metric {
	case search.MetricCosine:
		return qc.Distance_Cosine, nil
	case search.MetricEuclidean:
		return qc.Distance_Euclid, nil
	case "dotProduct":
		return qc.Distance_Dot, nil
	default:
		return qc.Distance_UnknownDistance, fmt.Errorf("%w: metric %q", search.ErrUnsupported, metric)
	}
}

func quantizationFor(c search.Compression) *qc.QuantizationConfig {
	if c.Kind == search.KindBinaryQuantization {
		return qc.NewQuantizationBinary(&qc.BinaryQuantization{AlwaysRam: qc.PtrOf(true)})
	}
	return qc.NewQuantizationScalar(&qc.ScalarQuantization{
		Type:      qc.QuantizationType_Int8,
		AlwaysRam: qc.PtrOf(true),
	})
}

func payloadIndex(f search.Field) (PayloadIndex, bool) {
	if f.Key || f.Filterable == nil || !*f.Filterable {
		return PayloadIndex{}, false
	}
	switch f.Type {
	case search.TypeInt32:
		return PayloadIndex{Field: f.Name, Type: qc.FieldType_FieldTypeInteger}, true
	case search.TypeDateTimeOffset:
		return PayloadIndex{Field: f.Name, Type: qc.FieldType_FieldTypeDatetime}, true
	default:
		return PayloadIndex{Field: f.Name, Type: qc.FieldType_FieldTypeKeyword}, true
	}
}
