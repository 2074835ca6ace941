package repository

import (
	"context"
	"fmt"

	"wink-server/internal/model"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

// FirestoreUserRepository читает профили из коллекции users. Только точечные чтения,
// без транзакций и кэша.
type FirestoreUserRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

func NewFirestoreUserRepository(client *firestore.Client, logger *zap.Logger) *FirestoreUserRepository {
	return &FirestoreUserRepository{
		client: client,
		logger: logger.Named("FirestoreUserRepo"),
	}
}

// GetByID returns model.ErrUserNotFound when users/{userID} does not exist.
func (r *FirestoreUserRepository) GetByID(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, model.ErrUserNotFound
	}

	snap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			r.logger.Debug("User document not found", zap.String("user_id", userID))
			return nil, model.ErrUserNotFound
		}
		r.logger.Error("Failed to read user document", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}

	var user model.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", userID, err)
	}
	user.ID = userID
	return &user, nil
}
