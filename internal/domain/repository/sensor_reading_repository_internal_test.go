package repository

import (
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func TestListByProductOptions(t *testing.T) {
	var got options.FindOptions
	for _, set := range listByProductOptions(25).List() {
		if err := set(&got); err != nil {
			t.Fatalf("applying find option: %v", err)
		}
	}

	if got.Limit == nil || *got.Limit != 25 {
		t.Fatalf("expected limit 25, got %v", got.Limit)
	}
	if !reflect.DeepEqual(got.Sort, newestFirst) {
		t.Fatalf("expected sort %v, got %v", newestFirst, got.Sort)
	}
}

func TestLatestByProductOptions(t *testing.T) {
	var got options.FindOneOptions
	for _, set := range latestByProductOptions().List() {
		if err := set(&got); err != nil {
			t.Fatalf("applying find-one option: %v", err)
		}
	}
	if !reflect.DeepEqual(got.Sort, newestFirst) {
		t.Fatalf("expected sort %v, got %v", newestFirst, got.Sort)
	}
}

func TestNewestFirstSortsOnTimestampDescending(t *testing.T) {
	want := bson.D{{Key: "timestamp", Value: -1}}
	if !reflect.DeepEqual(newestFirst, want) {
		t.Fatalf("expected %v, got %v", want, newestFirst)
	}
}

func TestSensorReadingDocumentDecodesStoredFields(t *testing.T) {
	id := bson.NewObjectID()
	ts := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: id},
		{Key: "product_id", Value: "EXT_ID_12345"},
		{Key: "sensor_id", Value: "tank-1"},
		{Key: "timestamp", Value: ts},
		{Key: "temperatura_celsius", Value: 21.5},
		{Key: "nivel_agua_percentual", Value: 80.25},
		{Key: "turbidez_ntu", Value: 1.75},
	})
	if err != nil {
		t.Fatal(err)
	}

	var doc sensorReadingDocument
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	got := doc.toModel()

	if got.ID != id.Hex() || got.ProductID != "EXT_ID_12345" || got.SensorID != "tank-1" {
		t.Errorf("unexpected identity fields %+v", got)
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("expected timestamp %v, got %v", ts, got.Timestamp)
	}
	if got.TemperatureC != 21.5 || got.WaterLevelPercent != 80.25 || got.TurbidityNTU != 1.75 {
		t.Errorf("unexpected measurements %+v", got)
	}
}
