package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// PageParams selects a 1-based page of a listing.
type PageParams struct {
	Page  int
	Limit int
}

// Normalize replaces non-positive values with the defaults.
func (p PageParams) Normalize() PageParams {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	return p
}

// Skip is the number of records before the requested page.
func (p PageParams) Skip() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Limit
}

// Page is one page of a newest-first listing.
type Page[T any] struct {
	Data       []T   `json:"data" bson:"data"`
	TotalCount int64 `json:"totalCount" bson:"totalCount"`
	TotalPages int64 `json:"totalPages" bson:"totalPages"`
}

// TotalPages returns ceil(count/limit), and 0 when count is 0.
func TotalPages(count int64, limit int) int64 {
	if count <= 0 || limit <= 0 {
		return 0
	}
	l := int64(limit)
	return (count + l - 1) / l
}

// NewPage assembles a Page. A nil data slice is replaced by an empty one so
// an empty result encodes as [] rather than null.
func NewPage[T any](data []T, total int64, params PageParams) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		Data:       data,
		TotalCount: total,
		TotalPages: TotalPages(total, params.Normalize().Limit),
	}
}

// PageOf slices an in-memory, already ordered result set.
func PageOf[T any](all []T, params PageParams) Page[T] {
	params = params.Normalize()
	start := min(params.Skip(), len(all))
	end := min(start+params.Limit, len(all))
	out := make([]T, end-start)
	copy(out, all[start:end])
	return NewPage(out, int64(len(all)), params)
}

// PaginationStages returns the stages shared by every listing: newest first
// by sortField, then a facet computing the page and the total count.
func PaginationStages(params PageParams, sortField string) mongo.Pipeline {
	params = params.Normalize()
	if sortField == "" {
		sortField = "createdAt"
	}
	return mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: sortField, Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$facet", Value: bson.D{
			{Key: "data", Value: bson.A{
				bson.D{{Key: "$skip", Value: params.Skip()}},
				bson.D{{Key: "$limit", Value: params.Limit}},
			}},
			{Key: "total", Value: bson.A{
				bson.D{{Key: "$count", Value: "count"}},
			}},
		}}},
	}
}

type facetResult[T any] struct {
	Data  []T `bson:"data"`
	Total []struct {
		Count int64 `bson:"count"`
	} `bson:"total"`
}

// Paginate runs prefix (match, lookup and similar stages) followed by
// PaginationStages and decodes the result into a Page.
func Paginate[T any](ctx context.Context, coll *mongo.Collection, prefix mongo.Pipeline, params PageParams, sortField string) (Page[T], error) {
	params = params.Normalize()

	pipeline := make(mongo.Pipeline, 0, len(prefix)+2)
	pipeline = append(pipeline, prefix...)
	pipeline = append(pipeline, PaginationStages(params, sortField)...)

	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return Page[T]{}, errors.Join(ErrPaginationFailed, err)
	}
	defer cur.Close(ctx)

	var results []facetResult[T]
	if err := cur.All(ctx, &results); err != nil {
		return Page[T]{}, errors.Join(ErrPaginationFailed, err)
	}

	if len(results) == 0 || len(results[0].Total) == 0 {
		return NewPage[T](nil, 0, params), nil
	}
	return NewPage(results[0].Data, results[0].Total[0].Count, params), nil
}
