package storage

import "swapForge/internal/model"

// Storage defines a sink for engine output records.
type Storage interface {
	PutPositions(positions []model.Position) error
	PutProfitAnalysis(analysis model.ProfitAnalysis) error
	PutVolumeSummary(summary model.VolumeSummary) error
}
