package repository

import (
	"context"
	"time"
	"vehicletracker/internal/core/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RideRepository is the append-only history journal. Reads return rides in
// the order they were appended.
type RideRepository interface {
	Append(ctx context.Context, ride *model.Ride) error
	FindAll(ctx context.Context) ([]*model.Ride, error)
	FindByVehicleID(ctx context.Context, vehicleID string) ([]*model.Ride, error)
	FindByRideNo(ctx context.Context, rideNo int) ([]*model.Ride, error)
	// FindLastByVehicleID returns the vehicle's ride with the largest ride_no,
	// or nil when the vehicle has none.
	FindLastByVehicleID(ctx context.Context, vehicleID string) (*model.Ride, error)
	Ping(ctx context.Context) error
}

type MongoRideRepository struct {
	collection *mongo.Collection
}

func NewMongoRideRepository(db *mongo.Database) *MongoRideRepository {
	return &MongoRideRepository{
		collection: db.Collection("rides"),
	}
}

func (r *MongoRideRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "vehicle_id", Value: 1}, {Key: "ride_no", Value: -1}}},
		{Keys: bson.D{{Key: "ride_no", Value: 1}}},
	})
	return err
}

func (r *MongoRideRepository) Append(ctx context.Context, ride *model.Ride) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, ride)
	return err
}

func (r *MongoRideRepository) FindAll(ctx context.Context) ([]*model.Ride, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoRideRepository) FindByVehicleID(ctx context.Context, vehicleID string) ([]*model.Ride, error) {
	return r.find(ctx, bson.M{"vehicle_id": vehicleID})
}

func (r *MongoRideRepository) FindByRideNo(ctx context.Context, rideNo int) ([]*model.Ride, error) {
	return r.find(ctx, bson.M{"ride_no": rideNo})
}

func (r *MongoRideRepository) FindLastByVehicleID(ctx context.Context, vehicleID string) (*model.Ride, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// ties on ride_no resolve to the earliest insert
	opts := options.FindOne().SetSort(bson.D{{Key: "ride_no", Value: -1}, {Key: "_id", Value: 1}})
	var ride model.Ride
	err := r.collection.FindOne(ctx, bson.M{"vehicle_id": vehicleID}, opts).Decode(&ride)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ride, nil
}

func (r *MongoRideRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.collection.Database().Client().Ping(ctx, nil)
}

func (r *MongoRideRepository) find(ctx context.Context, filter bson.M) ([]*model.Ride, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// ObjectIDs grow with insertion, so _id order is journal order
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rides []*model.Ride
	if err = cursor.All(ctx, &rides); err != nil {
		return nil, err
	}
	return rides, nil
}
