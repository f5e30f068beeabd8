// Package amazon is a placeholder integration. Create echoes the
// request with a coming_soon status and never contacts any remote
// system.
package amazon

import (
	"marketpush/internal/logger"
	"marketpush/internal/models"
)

type Service struct {
	logger *logger.Logger
}

func New(logger *logger.Logger) *Service {
	return &Service{logger: logger}
}

func (s *Service) Create(req *models.ProductRequest, imgs []models.ImageFile) (*models.PublishResult, error) {
	s.logger.Warn("Amazon integration is coming soon")

	return &models.PublishResult{
		Status:      models.StatusComingSoon,
		Marketplace: "Amazon",
		Message:     "Amazon marketplace integration is currently under development",
		TotalImages: len(imgs),
		Echo: &models.StubEcho{
			Title:       req.Title,
			Description: req.Description,
			ImageCount:  len(imgs),
		},
	}, nil
}
