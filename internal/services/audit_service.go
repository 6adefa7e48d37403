package services

import (
	"context"

	"github.com/yoockh/visadesk/internal/models"
	mongorepo "github.com/yoockh/visadesk/internal/repositories/mongo"
	"github.com/yoockh/visadesk/internal/utils"
)

const defaultHistoryLimit = 20

type AuditService interface {
	History(ctx context.Context, holderID int64) ([]models.IntakeAudit, error)
}

type auditService struct {
	repo mongorepo.IntakeAuditRepository
}

// NewAuditService accepts a nil repo; History then returns an empty list.
func NewAuditService(repo mongorepo.IntakeAuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) History(ctx context.Context, holderID int64) ([]models.IntakeAudit, error) {
	const op = "AuditService.History"

	if holderID <= 0 {
		return nil, utils.Invalid(op, "Invalid record id", map[string]bool{"id": true})
	}
	if s.repo == nil {
		return []models.IntakeAudit{}, nil
	}

	out, err := s.repo.ListByHolder(ctx, holderID, defaultHistoryLimit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "Failed to fetch audit history", err)
	}
	if out == nil {
		out = []models.IntakeAudit{}
	}
	return out, nil
}
