package repository

import (
	"context"
	"errors"
	"fmt"

	"realtime_chat_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrInvalidID id is not an ObjectID hex string
var ErrInvalidID = errors.New("invalid object id")

// MessageRepository definition message document access
type MessageRepository interface {
	// InsertMessage 寫入一筆訊息, 回填 _id
	InsertMessage(ctx context.Context, msg *domain.Message) error
	// FindConversation 取得 a 與 b 之間的所有訊息, 依 createdAt 升冪
	FindConversation(ctx context.Context, a, b string) ([]domain.Message, error)
	EnsureIndexes(ctx context.Context) error
}

type messageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create a MessageRepository on the messages collection
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{
		coll: db.Collection("messages"),
	}
}

func (r *messageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "receiverId", Value: 1}, {Key: "createdAt", Value: 1}}, Options: options.Index().SetName("conversation")},
	})
	if err != nil {
		return fmt.Errorf("create message indexes: %w", err)
	}
	return nil
}

func (r *messageRepository) InsertMessage(ctx context.Context, msg *domain.Message) error {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *messageRepository) FindConversation(ctx context.Context, a, b string) ([]domain.Message, error) {
	aID, err := primitive.ObjectIDFromHex(a)
	if err != nil {
		return nil, ErrInvalidID
	}
	bID, err := primitive.ObjectIDFromHex(b)
	if err != nil {
		return nil, ErrInvalidID
	}

	filter := bson.M{"$or": bson.A{
		bson.M{"senderId": aID, "receiverId": bID},
		bson.M{"senderId": bID, "receiverId": aID},
	}}
	// 同一毫秒的訊息以 _id 決定先後
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}

	messages := []domain.Message{}
	if err := cur.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	return messages, nil
}
