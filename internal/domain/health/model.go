package health

import (
	"context"
	"time"
)

type Metric string

const (
	MetricBP      Metric = "bp"
	MetricWeight  Metric = "weight"
	MetricGlucose Metric = "glucose"
)

func ValidMetric(m Metric) bool {
	switch m {
	case MetricBP, MetricWeight, MetricGlucose:
		return true
	default:
		return false
	}
}

type BPLog struct {
	ID        string
	UserID    string
	Systolic  int
	Diastolic int
	CreatedAt time.Time
}

type WeightLog struct {
	ID        string
	UserID    string
	Kg        float64
	CreatedAt time.Time
}

type GlucoseLog struct {
	ID        string
	UserID    string
	MgDL      int
	CreatedAt time.Time
}

type Repository interface {
	ListBPSince(ctx context.Context, since time.Time, limit int) ([]BPLog, error)
	ListWeightSince(ctx context.Context, since time.Time, limit int) ([]WeightLog, error)
	ListGlucoseSince(ctx context.Context, since time.Time, limit int) ([]GlucoseLog, error)

	Count(ctx context.Context, m Metric) (int, error)
	CountByUser(ctx context.Context, m Metric, userID string) (int, error)

	// ListCreatedSince junta los timestamps de los tres tipos (gráfico semanal).
	ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
}

// Level clasifica una lectura contra los umbrales clínicos del panel.
type Level string

const (
	LevelNormal Level = "normal"
	LevelHigh   Level = "high"
	LevelLow    Level = "low"
)

// ClassifyBP: alta si sistólica > 140 o diastólica > 90;
// baja si sistólica < 90 o diastólica < 60.
func ClassifyBP(systolic, diastolic int) Level {
	switch {
	case systolic > 140 || diastolic > 90:
		return LevelHigh
	case systolic < 90 || diastolic < 60:
		return LevelLow
	default:
		return LevelNormal
	}
}

// ClassifyGlucose: alta > 140 mg/dL, baja < 70 mg/dL.
func ClassifyGlucose(mgdl int) Level {
	switch {
	case mgdl > 140:
		return LevelHigh
	case mgdl < 70:
		return LevelLow
	default:
		return LevelNormal
	}
}
