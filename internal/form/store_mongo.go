package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps forms and responses as documents, mirroring the
// document-store layout the web client used before the Go backend.
type MongoStore struct {
	forms     *mongo.Collection
	responses *mongo.Collection
	now       func() time.Time
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		forms:     db.Collection("forms"),
		responses: db.Collection("responses"),
		now:       time.Now,
	}
}

// EnsureIndexes creates the indexes list queries rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	if _, err := s.forms.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "updatedAt", Value: -1}},
	}); err != nil {
		return fmt.Errorf("forms index: %w", err)
	}
	if _, err := s.responses.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "formId", Value: 1}, {Key: "submittedAt", Value: -1}},
	}); err != nil {
		return fmt.Errorf("responses index: %w", err)
	}
	return nil
}

type formDoc struct {
	ID         string    `bson:"_id"`
	OwnerID    string    `bson:"ownerId"`
	Title      string    `bson:"title"`
	Published  bool      `bson:"published"`
	QuizType   string    `bson:"quizType"`
	Definition bson.M    `bson:"definition"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

type resultDoc struct {
	Type         string             `bson:"type"`
	Score        float64            `bson:"score"`
	MaxScore     float64            `bson:"maxScore"`
	OutcomeID    *string            `bson:"outcomeId,omitempty"`
	OutcomeTitle *string            `bson:"outcomeTitle,omitempty"`
	Totals       map[string]float64 `bson:"totals,omitempty"`
}

type responseDoc struct {
	ID          string    `bson:"_id"`
	FormID      string    `bson:"formId"`
	Payload     bson.M    `bson:"payload"`
	Result      resultDoc `bson:"result"`
	SubmittedAt time.Time `bson:"submittedAt"`
}

// toDoc converts a JSON-shaped value into a native document so the custom
// JSON encodings of Definition survive the trip.
func toDoc(v any) (bson.M, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := bson.M{}
	if err := bson.UnmarshalExtJSON(b, false, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromDoc(m bson.M, out any) error {
	if m == nil {
		m = bson.M{}
	}
	b, err := bson.MarshalExtJSON(m, false, false)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (d formDoc) toForm() (Form, error) {
	f := Form{ID: d.ID, OwnerID: d.OwnerID, Published: d.Published, CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC()}
	if err := fromDoc(d.Definition, &f.Definition); err != nil {
		return Form{}, fmt.Errorf("decode form %q: %w", d.ID, err)
	}
	return f, nil
}

func (s *MongoStore) PutForm(ctx context.Context, f Form) (Form, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	def, err := toDoc(f.Definition)
	if err != nil {
		return Form{}, err
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	_, err = s.forms.UpdateOne(ctx,
		bson.M{"_id": f.ID},
		bson.M{
			"$set": bson.M{
				"ownerId":    f.OwnerID,
				"title":      f.Definition.Title,
				"published":  f.Published,
				"quizType":   string(f.Definition.QuizType),
				"definition": def,
				"updatedAt":  now,
			},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		return Form{}, fmt.Errorf("put form: %w", err)
	}
	return s.GetForm(ctx, f.ID)
}

func (s *MongoStore) GetForm(ctx context.Context, id string) (Form, error) {
	var d formDoc
	err := s.forms.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Form{}, fmt.Errorf("form %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Form{}, err
	}
	return d.toForm()
}

func (s *MongoStore) ListForms(ctx context.Context, opts ListOpts) ([]Summary, error) {
	limit, offset := clampPage(opts)
	filter := bson.M{}
	if opts.OwnerID != "" {
		filter["ownerId"] = opts.OwnerID
	}
	if q := strings.TrimSpace(opts.Q); q != "" {
		filter["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"definition": 0})
	cursor, err := s.forms.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []formDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(docs))
	for _, d := range docs {
		out = append(out, Summary{
			ID:        d.ID,
			Title:     d.Title,
			OwnerID:   d.OwnerID,
			Published: d.Published,
			QuizType:  QuizType(d.QuizType),
			UpdatedAt: d.UpdatedAt.UTC(),
		})
	}
	return out, nil
}

func (s *MongoStore) UpdateForm(ctx context.Context, f Form) (Form, error) {
	n, err := s.forms.CountDocuments(ctx, bson.M{"_id": f.ID})
	if err != nil {
		return Form{}, err
	}
	if n == 0 {
		return Form{}, fmt.Errorf("form %q: %w", f.ID, ErrNotFound)
	}
	return s.PutForm(ctx, f)
}

func (s *MongoStore) DeleteForm(ctx context.Context, id string) error {
	res, err := s.forms.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("form %q: %w", id, ErrNotFound)
	}
	_, err = s.responses.DeleteMany(ctx, bson.M{"formId": id})
	return err
}

func (s *MongoStore) SaveResponse(ctx context.Context, r Response) (Response, error) {
	n, err := s.forms.CountDocuments(ctx, bson.M{"_id": r.FormID})
	if err != nil {
		return Response{}, err
	}
	if n == 0 {
		return Response{}, fmt.Errorf("form %q: %w", r.FormID, ErrNotFound)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = s.now()
	}
	r.SubmittedAt = r.SubmittedAt.UTC().Truncate(time.Millisecond)
	payload, err := toDoc(r.Payload)
	if err != nil {
		return Response{}, err
	}
	doc := responseDoc{
		ID:      r.ID,
		FormID:  r.FormID,
		Payload: payload,
		Result: resultDoc{
			Type:         string(r.Result.Type),
			Score:        r.Result.Score,
			MaxScore:     r.Result.MaxScore,
			OutcomeID:    r.Result.OutcomeID,
			OutcomeTitle: r.Result.OutcomeTitle,
			Totals:       r.Result.Totals,
		},
		SubmittedAt: r.SubmittedAt,
	}
	if _, err := s.responses.InsertOne(ctx, doc); err != nil {
		return Response{}, fmt.Errorf("save response: %w", err)
	}
	return r, nil
}

func (d responseDoc) toResponse() (Response, error) {
	r := Response{
		ID:     d.ID,
		FormID: d.FormID,
		Result: Result{
			Type:         ResultType(d.Result.Type),
			Score:        d.Result.Score,
			MaxScore:     d.Result.MaxScore,
			OutcomeID:    d.Result.OutcomeID,
			OutcomeTitle: d.Result.OutcomeTitle,
			Totals:       d.Result.Totals,
		},
		SubmittedAt: d.SubmittedAt.UTC(),
	}
	if err := fromDoc(d.Payload, &r.Payload); err != nil {
		return Response{}, fmt.Errorf("decode response %q: %w", d.ID, err)
	}
	return r, nil
}

func (s *MongoStore) GetResponse(ctx context.Context, id string) (Response, error) {
	var d responseDoc
	err := s.responses.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Response{}, fmt.Errorf("response %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Response{}, err
	}
	return d.toResponse()
}

func (s *MongoStore) ListResponses(ctx context.Context, formID string, opts ListOpts) ([]Response, error) {
	limit, offset := clampPage(opts)
	findOpts := options.Find().
		SetSort(bson.D{{Key: "submittedAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := s.responses.Find(ctx, bson.M{"formId": formID}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []responseDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Response, 0, len(docs))
	for _, d := range docs {
		r, err := d.toResponse()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
