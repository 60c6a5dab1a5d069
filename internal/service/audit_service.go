package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/entbridge-go-api/internal/dto"
	"github.com/noah-isme/entbridge-go-api/internal/repository"
)

const (
	auditDefaultPageSize = 20
	auditMaxPageSize     = 100
)

// AuditService reads the append-only audit trail. Entries are written by the
// mutating services inside their own transactions.
type AuditService interface {
	List(ctx context.Context, req dto.AuditListRequest) (dto.AuditListResponse, error)
}

type auditService struct {
	logs   repository.AuditLogRepository
	logger zerolog.Logger
}

// NewAuditService constructs the audit trail reader.
func NewAuditService(logs repository.AuditLogRepository, logger zerolog.Logger) AuditService {
	return &auditService{
		logs:   logs,
		logger: logger.With().Str("component", "audit_service").Logger(),
	}
}

func (s *auditService) List(ctx context.Context, req dto.AuditListRequest) (dto.AuditListResponse, error) {
	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = auditDefaultPageSize
	}
	if pageSize > auditMaxPageSize {
		pageSize = auditMaxPageSize
	}

	filter := repository.AuditLogFilter{
		Page:       page,
		PageSize:   pageSize,
		Action:     req.Action,
		EntityType: req.EntityType,
	}
	if req.ActorID != 0 {
		actorID := req.ActorID
		filter.ActorID = &actorID
	}

	entries, total, err := s.logs.List(ctx, filter)
	if err != nil {
		return dto.AuditListResponse{}, err
	}

	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewAuditEntryResponse(entry))
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}

	return dto.AuditListResponse{
		Items: items,
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: totalPages,
		},
	}, nil
}
