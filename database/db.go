package db

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared with the mobile app.
const (
	ComplaintsCollection          = "complaints"
	UsersCollection               = "users"
	NotificationsCollection       = "notifications"
	BalanceTransactionsCollection = "balance_transactions"
)

// Mongo bundles the client and the application database.
type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect เริ่มต้นการเชื่อมต่อ MongoDB
func Connect(ctx context.Context, uri, database string) (*Mongo, error) {
	clientOptions := options.Client().ApplyURI(uri)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Printf("Connected to MongoDB database %s", database)
	return &Mongo{
		Client:   client,
		Database: client.Database(database),
	}, nil
}

// Collection คืนค่าคอลเลกชันจากชื่อที่กำหนด
func (m *Mongo) Collection(name string) *mongo.Collection {
	return m.Database.Collection(name)
}

// Disconnect ยกเลิกการเชื่อมต่อ MongoDB
func (m *Mongo) Disconnect() {
	if m == nil || m.Client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		log.Println("Failed to disconnect MongoDB:", err)
		return
	}
	log.Println("Disconnected from MongoDB")
}

// EnsureIndexes creates the indexes the console queries rely on.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := m.Collection(ComplaintsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = m.Collection(BalanceTransactionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}
