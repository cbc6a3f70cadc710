package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tempmailhq/tempmail-api/internal/core/domain"
	"github.com/tempmailhq/tempmail-api/internal/core/ports"
)

const collectionMessages = "messages"

type MessageRepository struct {
	col *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{col: db.Collection(collectionMessages)}
}

func (r *MessageRepository) Insert(ctx context.Context, m *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, m)
	return err
}

// CountFeed counts the whole matching set for a feed, independent of any
// cursor position.
func (r *MessageRepository) CountFeed(ctx context.Context, emailID string, feed domain.Direction) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, feedFilter(emailID, feed))
}

// FindFeedPage returns up to q.Limit rows ordered by
// (orderTime DESC, _id DESC), applying the keyset predicate when a cursor
// is present: strictly older rows, plus same-instant rows with a strictly
// smaller id. BSON datetimes carry millisecond precision, matching the
// cursor's millisecond timestamps exactly.
func (r *MessageRepository) FindFeedPage(ctx context.Context, q ports.MessageFeedQuery) ([]*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	orderField := "received_at"
	if q.Feed == domain.DirectionSent {
		orderField = "sent_at"
	}

	filter := feedFilter(q.EmailID, q.Feed)
	if q.After != nil {
		ts := time.UnixMilli(q.After.Timestamp).UTC()
		keyset := bson.M{"$or": bson.A{
			bson.M{orderField: bson.M{"$lt": ts}},
			bson.M{orderField: ts, "_id": bson.M{"$lt": q.After.ID}},
		}}
		filter = bson.M{"$and": bson.A{filter, keyset}}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: orderField, Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(q.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []*domain.Message
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CountSentSince counts the user's outbound messages with sent_at >= since,
// across all mailboxes. user_id is denormalized onto message documents for
// exactly this query.
func (r *MessageRepository) CountSentSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{
		"user_id":   userID,
		"direction": string(domain.DirectionSent),
		"sent_at":   bson.M{"$gte": since},
	})
}

func (r *MessageRepository) DeleteByEmailIDs(ctx context.Context, emailIDs []string) error {
	if len(emailIDs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{"email_id": bson.M{"$in": emailIDs}})
	return err
}

// feedFilter builds the base filter for a feed. Outbound matches
// direction == "sent"; inbound matches direction != "sent" or absent, so
// legacy rows written before the direction tag count as inbound.
func feedFilter(emailID string, feed domain.Direction) bson.M {
	filter := bson.M{"email_id": emailID}
	if feed == domain.DirectionSent {
		filter["direction"] = string(domain.DirectionSent)
		return filter
	}
	filter["$or"] = bson.A{
		bson.M{"direction": bson.M{"$ne": string(domain.DirectionSent)}},
		bson.M{"direction": bson.M{"$exists": false}},
	}
	return filter
}

// EnsureIndexes creates the indexes backing the feed and quota queries.
func (r *MessageRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "email_id", Value: 1},
			{Key: "direction", Value: 1},
			{Key: "received_at", Value: -1},
			{Key: "_id", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "email_id", Value: 1},
			{Key: "direction", Value: 1},
			{Key: "sent_at", Value: -1},
			{Key: "_id", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "direction", Value: 1},
			{Key: "sent_at", Value: -1},
		}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
