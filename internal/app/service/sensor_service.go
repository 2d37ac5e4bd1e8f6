package service

import (
	"context"
	"strings"

	"github.com/regeshengen/water-quality-api/internal/common"
	"github.com/regeshengen/water-quality-api/internal/domain/model"
	"github.com/regeshengen/water-quality-api/internal/domain/repository"
)

type SensorReadingService struct {
	readingRepo repository.SensorReadingRepository
}

func NewSensorReadingService(readingRepo repository.SensorReadingRepository) *SensorReadingService {
	return &SensorReadingService{readingRepo: readingRepo}
}

// ListByProduct returns the newest readings for a product code. limit is
// clamped to [1, model.MaxSensorReadings]; zero or less means the maximum.
func (s *SensorReadingService) ListByProduct(ctx context.Context, productCode string, limit int) ([]model.SensorReading, error) {
	productCode = strings.TrimSpace(productCode)
	if productCode == "" {
		return nil, common.Errorf("product id is required: %w", common.ErrBadRequest)
	}

	readings, err := s.readingRepo.ListByProduct(ctx, productCode, clampReadingLimit(limit))
	if err != nil {
		return nil, common.StoreError("failed to list sensor readings", err)
	}
	if readings == nil {
		readings = []model.SensorReading{}
	}
	return readings, nil
}

// LatestByProduct returns nil without error when the product has no readings.
func (s *SensorReadingService) LatestByProduct(ctx context.Context, productCode string) (*model.SensorReading, error) {
	productCode = strings.TrimSpace(productCode)
	if productCode == "" {
		return nil, common.Errorf("product id is required: %w", common.ErrBadRequest)
	}

	reading, err := s.readingRepo.LatestByProduct(ctx, productCode)
	if err != nil {
		return nil, common.StoreError("failed to load latest sensor reading", err)
	}
	return reading, nil
}

func clampReadingLimit(limit int) int {
	if limit <= 0 || limit > model.MaxSensorReadings {
		return model.MaxSensorReadings
	}
	return limit
}
