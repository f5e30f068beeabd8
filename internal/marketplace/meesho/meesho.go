// Package meesho is a placeholder integration, mirroring the amazon
// stub.
package meesho

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
	s.logger.Warn("Meesho integration is coming soon")

	return &models.PublishResult{
		Status:      models.StatusComingSoon,
		Marketplace: "Meesho",
		Message:     "Meesho marketplace integration is currently under development",
		TotalImages: len(imgs),
		Echo: &models.StubEcho{
			Title:       req.Title,
			Description: req.Description,
			ImageCount:  len(imgs),
		},
	}, nil
}
