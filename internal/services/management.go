package services

import (
	"context"

	"lending-system/internal/authz"
	"lending-system/internal/dto"
	"lending-system/internal/entities"
	"lending-system/internal/repositories"
	"lending-system/pkg/constants"

	"go.uber.org/zap"
)

type ManagementServiceInterface interface {
	Detail(ctx context.Context, actor authz.Actor, reservationID uint64) (*dto.ManagementDetailDTO, error)
}

type ManagementService struct {
	reservationRepo repositories.ReservationRepositoryInterface
	assignmentRepo  repositories.AssignmentRepositoryInterface
	rackRepo        repositories.RackRepositoryInterface
	supervisorRepo  repositories.SupervisorRepositoryInterface
	evidenceRepo    repositories.EvidenceRepositoryInterface
	userRepo        repositories.UserRepositoryInterface
	logger          *zap.Logger
}

func NewManagementService(
	reservationRepo repositories.ReservationRepositoryInterface,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	rackRepo repositories.RackRepositoryInterface,
	supervisorRepo repositories.SupervisorRepositoryInterface,
	evidenceRepo repositories.EvidenceRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	logger *zap.Logger,
) ManagementServiceInterface {
	return &ManagementService{
		reservationRepo: reservationRepo,
		assignmentRepo:  assignmentRepo,
		rackRepo:        rackRepo,
		supervisorRepo:  supervisorRepo,
		evidenceRepo:    evidenceRepo,
		userRepo:        userRepo,
		logger:          logger,
	}
}

// Detail собирает все, что нужно администратору для выдачи по заявке.
func (s *ManagementService) Detail(ctx context.Context, actor authz.Actor, reservationID uint64) (*dto.ManagementDetailDTO, error) {
	if err := authorize(actor, authz.ReservationsManage, nil); err != nil {
		return nil, err
	}

	r, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	devices, err := s.assignmentRepo.ListByReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	needed := r.Quantity - len(devices)
	if needed < 0 {
		needed = 0
	}

	racks := []entities.Rack{}
	if needed > 0 && r.Status == constants.ReservationApproved {
		if racks, err = s.rackRepo.ListEligible(ctx, needed); err != nil {
			return nil, err
		}
	}

	supervisors, err := s.supervisorRepo.ListByReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	assigned := make(map[uint64]bool, len(supervisors))
	for _, sa := range supervisors {
		assigned[sa.SupervisorID] = true
	}

	candidates, err := s.userRepo.ListByRole(ctx, constants.RoleSupervisor)
	if err != nil {
		return nil, err
	}
	available := make([]dto.UserProfileDTO, 0, len(candidates))
	for i := range candidates {
		if !assigned[candidates[i].ID] {
			available = append(available, toProfile(&candidates[i]))
		}
	}

	evidences, err := s.evidenceRepo.ListByReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	return &dto.ManagementDetailDTO{
		Reservation:          *r,
		Devices:              devices,
		Needed:               needed,
		EligibleRacks:        racks,
		Supervisors:          supervisors,
		AvailableSupervisors: available,
		Evidences:            evidences,
	}, nil
}
