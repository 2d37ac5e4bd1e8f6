package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/regeshengen/water-quality-api/internal/common"
	"github.com/regeshengen/water-quality-api/internal/domain/mocks"
	"github.com/regeshengen/water-quality-api/internal/domain/model"
)

func seedReadings(repo *mocks.MockSensorReadingRepository, productID string, n int) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		repo.Add(model.SensorReading{
			ProductID:         productID,
			SensorID:          "tank-1",
			Timestamp:         base.Add(time.Duration(i) * time.Minute),
			TemperatureC:      21.5,
			WaterLevelPercent: 80,
			TurbidityNTU:      1.2,
		})
	}
}

func TestSensorReadingService_ListByProduct(t *testing.T) {
	repo := mocks.NewMockSensorReadingRepository()
	seedReadings(repo, "EXT_1", 150)
	svc := NewSensorReadingService(repo)

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default", 0, model.MaxSensorReadings},
		{"negative", -5, model.MaxSensorReadings},
		{"above cap", 500, model.MaxSensorReadings},
		{"explicit", 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readings, err := svc.ListByProduct(context.Background(), "EXT_1", tt.limit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(readings) != tt.want {
				t.Fatalf("expected %d readings, got %d", tt.want, len(readings))
			}
			for i := 1; i < len(readings); i++ {
				if readings[i].Timestamp.After(readings[i-1].Timestamp) {
					t.Fatalf("readings not newest first at %d", i)
				}
			}
		})
	}
}

func TestSensorReadingService_ListByProductEmpty(t *testing.T) {
	svc := NewSensorReadingService(mocks.NewMockSensorReadingRepository())
	readings, err := svc.ListByProduct(context.Background(), "EXT_NONE", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if readings == nil || len(readings) != 0 {
		t.Fatalf("expected an empty non-nil slice, got %#v", readings)
	}
}

func TestSensorReadingService_LatestByProduct(t *testing.T) {
	repo := mocks.NewMockSensorReadingRepository()
	seedReadings(repo, "EXT_1", 3)
	svc := NewSensorReadingService(repo)
	ctx := context.Background()

	latest, err := svc.LatestByProduct(ctx, "EXT_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 5, 1, 12, 2, 0, 0, time.UTC)
	if latest == nil || !latest.Timestamp.Equal(want) {
		t.Fatalf("expected reading at %v, got %+v", want, latest)
	}

	none, err := svc.LatestByProduct(ctx, "EXT_NONE")
	if err != nil || none != nil {
		t.Fatalf("expected nil, nil for a product without readings, got %v, %v", none, err)
	}
}

func TestSensorReadingService_Errors(t *testing.T) {
	repo := mocks.NewMockSensorReadingRepository()
	svc := NewSensorReadingService(repo)
	ctx := context.Background()

	if _, err := svc.ListByProduct(ctx, " ", 0); !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}

	repo.Err = errors.New("mongo unavailable")
	tests := []struct {
		name string
		call func() error
		msg  string
	}{
		{"list", func() error { _, err := svc.ListByProduct(ctx, "EXT_1", 10); return err }, "failed to list sensor readings"},
		{"latest", func() error { _, err := svc.LatestByProduct(ctx, "EXT_1"); return err }, "failed to load latest sensor reading"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, common.ErrBadRequest) {
				t.Fatalf("expected ErrBadRequest, got %v", err)
			}
			var detailed *common.DetailedError
			if !errors.As(err, &detailed) {
				t.Fatalf("expected *common.DetailedError, got %T", err)
			}
			if detailed.Message != tt.msg || detailed.Detail != "mongo unavailable" {
				t.Errorf("unexpected error %q / %q", detailed.Message, detailed.Detail)
			}
		})
	}
}
