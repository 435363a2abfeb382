package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"elsahm-admin/apperr"
	db "elsahm-admin/database"
	"elsahm-admin/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ComplaintRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewComplaintRepository(m *db.Mongo, timeout time.Duration) *ComplaintRepository {
	return &ComplaintRepository{
		coll:    m.Collection(db.ComplaintsCollection),
		timeout: timeout,
	}
}

// Collection exposes the underlying collection for change streams.
func (r *ComplaintRepository) Collection() *mongo.Collection {
	return r.coll
}

func parseComplaintID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.ErrNotFound
	}
	return oid, nil
}

// ListFilter builds the query for a complaint filter.
func ListFilter(f models.ComplaintFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if keyword := strings.TrimSpace(f.Keyword); keyword != "" {
		pattern := regexp.QuoteMeta(keyword)
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
			{"userName": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	return filter
}

// List returns complaints newest first.
func (r *ComplaintRepository) List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	if f.Skip > 0 {
		opts.SetSkip(f.Skip)
	}

	cursor, err := r.coll.Find(ctx, ListFilter(f), opts)
	if err != nil {
		return nil, apperr.NewRemoteError("list complaints", err)
	}
	defer cursor.Close(ctx)

	complaints := []models.Complaint{}
	if err := cursor.All(ctx, &complaints); err != nil {
		return nil, apperr.NewRemoteError("decode complaints", err)
	}
	return complaints, nil
}

func (r *ComplaintRepository) Get(ctx context.Context, id string) (*models.Complaint, error) {
	oid, err := parseComplaintID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var complaint models.Complaint
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&complaint)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.NewRemoteError("get complaint", err)
	}
	return &complaint, nil
}

func (r *ComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	complaint.ID = primitive.NewObjectID()
	if complaint.Status == "" {
		complaint.Status = models.StatusOpen
	}
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = time.Now()
	}
	if complaint.Responses == nil {
		complaint.Responses = []models.Response{}
	}

	if _, err := r.coll.InsertOne(ctx, complaint); err != nil {
		return apperr.NewRemoteError("create complaint", err)
	}
	return nil
}

// AppendUpdate is the pipeline update that pushes resp and, for operator
// replies, moves an open complaint to in-progress in the same write.
func AppendUpdate(resp models.Response, adminReply bool, now time.Time) mongo.Pipeline {
	set := bson.D{
		{Key: "responses", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$responses", bson.A{}}}},
			bson.D{{Key: "$literal", Value: bson.A{resp}}},
		}}}},
		{Key: "updatedAt", Value: now},
	}
	if adminReply {
		set = append(set, bson.E{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$eq", Value: bson.A{"$status", models.StatusOpen}}},
			models.StatusInProgress,
			"$status",
		}}}})
	}
	return mongo.Pipeline{{{Key: "$set", Value: set}}}
}

// AppendResponse appends resp unless the complaint is closed and returns
// the updated complaint.
func (r *ComplaintRepository) AppendResponse(ctx context.Context, id string, resp models.Response, adminReply bool) (*models.Complaint, error) {
	oid, err := parseComplaintID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{"_id": oid, "status": bson.M{"$ne": models.StatusClosed}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Complaint
	err = r.coll.FindOneAndUpdate(ctx, filter, AppendUpdate(resp, adminReply, time.Now()), opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// either missing or closed
		n, countErr := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
		if countErr != nil {
			return nil, apperr.NewRemoteError("append response", countErr)
		}
		if n == 0 {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.ErrComplaintClosed
	}
	if err != nil {
		return nil, apperr.NewRemoteError("append response", err)
	}
	return &updated, nil
}

func (r *ComplaintRepository) SetStatus(ctx context.Context, id string, status models.ComplaintStatus) error {
	oid, err := parseComplaintID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now(),
		},
	})
	if err != nil {
		return apperr.NewRemoteError("set complaint status", err)
	}
	if result.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *ComplaintRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseComplaintID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return apperr.NewRemoteError("delete complaint", err)
	}
	if result.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Count counts complaints with the given status, or all when status is empty.
func (r *ComplaintRepository) Count(ctx context.Context, status models.ComplaintStatus) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, ListFilter(models.ComplaintFilter{Status: status}))
	if err != nil {
		return 0, apperr.NewRemoteError("count complaints", err)
	}
	return n, nil
}
