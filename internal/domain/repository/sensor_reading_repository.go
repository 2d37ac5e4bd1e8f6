package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/regeshengen/water-quality-api/internal/domain/model"
)

// SensorReadingRepository is read-only; readings are written by the
// ingestion pipeline.
type SensorReadingRepository interface {
	// ListByProduct returns up to limit readings, newest first.
	ListByProduct(ctx context.Context, productID string, limit int) ([]model.SensorReading, error)
	// LatestByProduct returns nil, nil when the product has no readings.
	LatestByProduct(ctx context.Context, productID string) (*model.SensorReading, error)
}

// sensorReadingDocument mirrors the stored document. Field names are owned
// by the ingestion pipeline.
type sensorReadingDocument struct {
	ID                bson.ObjectID `bson:"_id,omitempty"`
	ProductID         string        `bson:"product_id"`
	SensorID          string        `bson:"sensor_id"`
	Timestamp         time.Time     `bson:"timestamp"`
	TemperatureC      float64       `bson:"temperatura_celsius"`
	WaterLevelPercent float64       `bson:"nivel_agua_percentual"`
	TurbidityNTU      float64       `bson:"turbidez_ntu"`
}

func (d *sensorReadingDocument) toModel() model.SensorReading {
	r := model.SensorReading{
		ProductID:         d.ProductID,
		SensorID:          d.SensorID,
		Timestamp:         d.Timestamp,
		TemperatureC:      d.TemperatureC,
		WaterLevelPercent: d.WaterLevelPercent,
		TurbidityNTU:      d.TurbidityNTU,
	}
	if !d.ID.IsZero() {
		r.ID = d.ID.Hex()
	}
	return r
}

type mongoSensorReadingRepository struct {
	coll *mongo.Collection
}

func NewMongoSensorReadingRepository(coll *mongo.Collection) SensorReadingRepository {
	return &mongoSensorReadingRepository{coll: coll}
}

var newestFirst = bson.D{{Key: "timestamp", Value: -1}}

func listByProductOptions(limit int) *options.FindOptionsBuilder {
	return options.Find().SetSort(newestFirst).SetLimit(int64(limit))
}

func latestByProductOptions() *options.FindOneOptionsBuilder {
	return options.FindOne().SetSort(newestFirst)
}

func (r *mongoSensorReadingRepository) ListByProduct(ctx context.Context, productID string, limit int) ([]model.SensorReading, error) {
	cursor, err := r.coll.Find(ctx, bson.D{{Key: "product_id", Value: productID}}, listByProductOptions(limit))
	if err != nil {
		return nil, fmt.Errorf("mongoSensorReadingRepository.ListByProduct: %w", err)
	}

	var docs []sensorReadingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongoSensorReadingRepository.ListByProduct: %w", err)
	}

	readings := make([]model.SensorReading, 0, len(docs))
	for i := range docs {
		readings = append(readings, docs[i].toModel())
	}
	return readings, nil
}

func (r *mongoSensorReadingRepository) LatestByProduct(ctx context.Context, productID string) (*model.SensorReading, error) {
	var doc sensorReadingDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "product_id", Value: productID}}, latestByProductOptions()).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongoSensorReadingRepository.LatestByProduct: %w", err)
	}
	reading := doc.toModel()
	return &reading, nil
}

// EnsureSensorReadingIndexes creates the compound index both queries use.
// It is idempotent.
func EnsureSensorReadingIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "product_id", Value: 1}, {Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("product_id_timestamp_desc"),
	})
	if err != nil {
		return fmt.Errorf("creating sensor reading index: %w", err)
	}
	return nil
}
