package qdrant

import (
	"context"
	"fmt"

	qc "github.com/qdrant/go-client/qdrant"

	"github.com/bull/foundry-sharepoint/internal/search"
)

const batchSize = 100

// Upload upserts documents as points. The key field becomes the point id and
// must be a UUID; []float32 values become named vectors; everything else is
// payload. Documents that cannot be converted are reported as failed results.
func (s *Store) Upload(ctx context.Context, index, keyField string, docs []map[string]any) ([]search.ActionResult, error) {
	results := make([]search.ActionResult, 0, len(docs))
	points := make([]*qc.PointStruct, 0, len(docs))
	pending := make([]string, 0, len(docs))

	for _, doc := range docs {
		key, _ := doc[keyField].(string)
		point, err := toPoint(doc, keyField)
		if err != nil {
			results = append(results, search.ActionResult{Key: key, ErrorMessage: err.Error(), StatusCode: 400})
			continue
		}
		points = append(points, point)
		pending = append(pending, key)
	}

	for i := 0; i < len(points); i += batchSize {
		end := min(i+batchSize, len(points))

		_, err := s.client.Upsert(ctx, &qc.UpsertPoints{
			CollectionName: index,
			Wait:           qc.PtrOf(true),
			Points:         points[i:end],
		})
		for _, key := range pending[i:end] {
			if err != nil {
				results = append(results, search.ActionResult{Key: key, ErrorMessage: err.Error(), StatusCode: 500})
				continue
			}
			results = append(results, search.ActionResult{Key: key, Succeeded: true, StatusCode: 201})
		}
	}

	return results, nil
}

// toPoint splits a document into point id, named vectors and payload.
func toPoint(doc map[string]any, keyField string) (*qc.PointStruct, error) {
	key, ok := doc[keyField].(string)
	if !ok || key == "" {
		return nil, fmt.Errorf("document has no string key %q", keyField)
	}

	vectors := make(map[string]*qc.Vector)
	payload := make(map[string]any)
	for name, value := range doc {
		switch v := value.(type) {
		case []float32:
			vectors[name] = qc.NewVector(v...)
		default:
			payload[name] = v
		}
	}

	values, err := qc.TryValueMap(payload)
	if err != nil {
		return nil, fmt.Errorf("convert payload: %w", err)
	}

	return &qc.PointStruct{
		Id:      qc.NewIDUUID(key),
		Vectors: qc.NewVectorsMap(vectors),
		Payload: values,
	}, nil
}

// FindKeys scrolls every point whose payload field equals value and returns
// the point ids.
func (s *Store) FindKeys(ctx context.Context, index, keyField, field, value string) ([]string, error) {
	var (
		keys   []string
		offset *qc.PointId
	)
	filter := &qc.Filter{Must: []*qc.Condition{qc.NewMatch(field, value)}}
	limit := uint32(batchSize)

	for {
		results, err := s.client.Scroll(ctx, &qc.ScrollPoints{
			CollectionName: index,
			Filter:         filter,
			Limit:          qc.PtrOf(limit),
			Offset:         offset,
			WithPayload:    qc.NewWithPayload(false),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scroll %s: %w", index, err)
		}

		for _, r := range results {
			// The offset point opens the next page as well
			if offset != nil && r.Id.GetUuid() == offset.GetUuid() {
				continue
			}
			keys = append(keys, r.Id.GetUuid())
		}

		// Fewer results than the limit means this was the last page
		if uint32(len(results)) < limit {
			break
		}
		offset = results[len(results)-1].Id
	}

	return keys, nil
}

// DeleteByKey deletes points by id.
func (s *Store) DeleteByKey(ctx context.Context, index, keyField string, keys []string) ([]search.ActionResult, error) {
	if len(keys) == 0 {
		return nil, search.ErrEmptyKeySet
	}

	ids := make([]*qc.PointId, len(keys))
	for i, key := range keys {
		ids[i] = qc.NewIDUUID(key)
	}

	_, err := s.client.Delete(ctx, &qc.DeletePoints{
		CollectionName: index,
		Wait:           qc.PtrOf(true),
		Points:         qc.NewPointsSelector(ids...),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete points from %s: %w", index, err)
	}

	results := make([]search.ActionResult, len(keys))
	for i, key := range keys {
		results[i] = search.ActionResult{Key: key, Succeeded: true, StatusCode: 200}
	}
	return results, nil
}
