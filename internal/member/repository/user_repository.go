package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"realtime_chat_service/internal/member/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrUserNotFound no user matched
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser email or fullName already used
	ErrDuplicateUser = errors.New("user already exists")
	// ErrInvalidID id is not an ObjectID hex string
	ErrInvalidID = errors.New("invalid user id")
)

// UserRepository definition user document access
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByFullName(ctx context.Context, fullName string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateProfilePic(ctx context.Context, id, url string) (*domain.User, error)
	// IncrementNotification atomic $inc of notifications.<senderID>
	IncrementNotification(ctx context.Context, recipientID, senderID string) error
	// ResetNotification $unset of notifications.<senderID>
	ResetNotification(ctx context.Context, recipientID, senderID string) error
	UpdateLastSeen(ctx context.Context, id string, at time.Time) error
	EnsureIndexes(ctx context.Context) error
}

type userRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository create a UserRepository on the users collection
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{
		coll: db.Collection("users"),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

func notificationField(senderID string) (string, error) {
	if _, err := objectID(senderID); err != nil {
		return "", err
	}
	return "notifications." + senderID, nil
}

func (r *userRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
		{Keys: bson.D{{Key: "fullName", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_full_name")},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Notifications == nil {
		user.Notifications = domain.Notifications{}
	}

	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("insert user: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var u domain.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) FindByFullName(ctx context.Context, fullName string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"fullName": fullName})
}

func (r *userRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	opts := options.Find().SetProjection(bson.M{"password": 0})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := []domain.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (r *userRepository) UpdateProfilePic(ctx context.Context, id, url string) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"profilePic": url, "updatedAt": time.Now().UTC()}}

	var u domain.User
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile pic: %w", err)
	}
	return &u, nil
}

func (r *userRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) IncrementNotification(ctx context.Context, recipientID, senderID string) error {
	field, err := notificationField(senderID)
	if err != nil {
		return err
	}
	if err := r.updateByID(ctx, recipientID, bson.M{"$inc": bson.M{field: 1}}); err != nil {
		return fmt.Errorf("increment %s: %w", field, err)
	}
	return nil
}

func (r *userRepository) ResetNotification(ctx context.Context, recipientID, senderID string) error {
	field, err := notificationField(senderID)
	if err != nil {
		return err
	}
	if err := r.updateByID(ctx, recipientID, bson.M{"$unset": bson.M{field: ""}}); err != nil {
		return fmt.Errorf("reset %s: %w", field, err)
	}
	return nil
}

func (r *userRepository) UpdateLastSeen(ctx context.Context, id string, at time.Time) error {
	if err := r.updateByID(ctx, id, bson.M{"$set": bson.M{"lastSeen": at.UTC()}}); err != nil {
		return fmt.Errorf("update last seen: %w", err)
	}
	return nil
}
