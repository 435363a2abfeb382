package repository

import (
	"context"
	"errors"
	"time"

	"elsahm-admin/apperr"
	db "elsahm-admin/database"
	"elsahm-admin/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	client       *mongo.Client
	users        *mongo.Collection
	transactions *mongo.Collection
	timeout      time.Duration
}

func NewUserRepository(m *db.Mongo, timeout time.Duration) *UserRepository {
	return &UserRepository{
		client:       m.Client,
		users:        m.Collection(db.UsersCollection),
		transactions: m.Collection(db.BalanceTransactionsCollection),
		timeout:      timeout,
	}
}

// UserIDFilter matches a user by id. Users created by the app carry string
// uids; older documents may carry ObjectIDs, so a hex id matches both.
func UserIDFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
	}
	return bson.M{"_id": id}
}

func (r *UserRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	user, _, err := r.findUser(ctx, id)
	if errors.Is(err, apperr.ErrUserNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, apperr.NewRemoteError("get user", err)
	}
	return user, nil
}

// findUser reads a user together with its stored _id, which is a string
// or an ObjectID depending on who created the document.
func (r *UserRepository) findUser(ctx context.Context, id string) (*models.User, bson.RawValue, error) {
	raw, err := r.users.FindOne(ctx, UserIDFilter(id)).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, bson.RawValue{}, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, bson.RawValue{}, err
	}

	var user models.User
	if err := bson.Unmarshal(raw, &user); err != nil {
		return nil, bson.RawValue{}, err
	}
	return &user, raw.Lookup("_id"), nil
}

// CreditBalance adds amount to the user's balance and records the audit
// entry in one transaction. Nothing is written when the user is missing.
func (r *UserRepository) CreditBalance(ctx context.Context, userID string, amount float64, notes, performedBy string) (*models.BalanceTransaction, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		return nil, apperr.NewRemoteError("start session", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return r.credit(sc, userID, amount, notes, performedBy)
	})
	if err != nil {
		return nil, creditError(err)
	}
	return result.(*models.BalanceTransaction), nil
}

// credit is the body of the balance transaction. The update targets the
// exact _id that was read, so the balance and the audit entry always
// describe the same document.
func (r *UserRepository) credit(ctx context.Context, userID string, amount float64, notes, performedBy string) (*models.BalanceTransaction, error) {
	user, id, err := r.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tx := models.NewBalanceTransaction(userID, user.Balance, amount, notes, performedBy, now)

	if _, err := r.users.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, bson.M{
		"$set": bson.M{
			"balance":     tx.NewBalance,
			"lastUpdated": now,
		},
	}); err != nil {
		return nil, err
	}

	if _, err := r.transactions.InsertOne(ctx, tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// creditError keeps ErrUserNotFound as is and wraps everything else as a
// remote failure.
func creditError(err error) error {
	if errors.Is(err, apperr.ErrUserNotFound) {
		return apperr.ErrUserNotFound
	}
	return apperr.NewRemoteError("credit balance", err)
}

func (r *UserRepository) ListTransactions(ctx context.Context, userID string) ([]models.BalanceTransaction, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.transactions.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, apperr.NewRemoteError("list transactions", err)
	}
	defer cursor.Close(ctx)

	txs := []models.BalanceTransaction{}
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, apperr.NewRemoteError("decode transactions", err)
	}
	return txs, nil
}

func (r *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, apperr.NewRemoteError("count users", err)
	}
	return n, nil
}

// TotalBalance sums every wallet balance.
func (r *UserRepository) TotalBalance(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.users.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$balance"}}},
		}}},
	})
	if err != nil {
		return 0, apperr.NewRemoteError("sum balances", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, apperr.NewRemoteError("decode balance sum", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
