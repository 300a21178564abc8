package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"parklot/internal/clock"
	"parklot/internal/domain"
	"parklot/internal/events"
	"parklot/internal/metrics"
	"parklot/internal/models"
	"parklot/internal/schedule"

	"github.com/rs/zerolog"
)

// vehicleNumberRe matches Indian-style plates: two letters, two digits,
// two letters, four digits (e.g. KA05MH1234).
var vehicleNumberRe = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z]{2}[0-9]{4}$`)

// CreateReservationRequest carries the caller's intent to book a slot.
type CreateReservationRequest struct {
	SlotID        int64     `json:"slot_id"`
	VehicleNumber string    `json:"vehicle_number"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
}

// ReservationService owns the reservation lifecycle: validation,
// pricing, admission and cancellation.
type ReservationService struct {
	ledger      domain.Ledger
	catalog     domain.Catalog
	cache       domain.Cache
	rates       domain.RateTable
	eventBus    domain.EventPublisher
	clock       clock.Clock
	maxDuration time.Duration
	logger      *zerolog.Logger
}

func NewReservationService(
	ledger domain.Ledger,
	catalog domain.Catalog,
	cache domain.Cache,
	rates domain.RateTable,
	eventBus domain.EventPublisher,
	clk clock.Clock,
	maxDuration time.Duration,
	logger *zerolog.Logger,
) *ReservationService {
	if maxDuration <= 0 {
		maxDuration = models.MaxReservationDurationHours * time.Hour
	}
	return &ReservationService{
		ledger:      ledger,
		catalog:     catalog,
		cache:       cache,
		rates:       rates,
		eventBus:    eventBus,
		clock:       clk,
		maxDuration: maxDuration,
		logger:      logger,
	}
}

// ValidateWindow checks the requested window against the clock and the
// configured duration cap.
func (s *ReservationService) ValidateWindow(start, end time.Time) error {
	if !start.Before(end) {
		return fmt.Errorf("%w: start must be before end", domain.ErrInvalidWindow)
	}
	if start.Before(s.clock.Now()) {
		return fmt.Errorf("%w: start time is in the past", domain.ErrInvalidWindow)
	}
	if end.Sub(start) > s.maxDuration {
		return fmt.Errorf("%w: window exceeds maximum duration of %s", domain.ErrInvalidWindow, s.maxDuration)
	}
	return nil
}

// Create validates the request, prices the window and admits the
// reservation. The conflict check and insert happen atomically in the
// ledger; a lost race surfaces as ErrSlotNotAvailable.
func (s *ReservationService) Create(ctx context.Context, actor domain.Actor, req CreateReservationRequest) (*models.Reservation, error) {
	start := req.StartTime.UTC()
	end := req.EndTime.UTC()

	if err := s.ValidateWindow(start, end); err != nil {
		return nil, err
	}
	if !vehicleNumberRe.MatchString(req.VehicleNumber) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidVehicleNumber, req.VehicleNumber)
	}

	slot, err := s.catalog.GetSlot(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}
	if !slot.IsActive {
		return nil, domain.ErrSlotNotAvailable
	}

	rate, err := s.rates.RateFor(slot.VehicleType)
	if err != nil {
		return nil, err
	}

	reservation := &models.Reservation{
		SlotID:        slot.ID,
		HolderID:      actor.HolderID,
		VehicleNumber: req.VehicleNumber,
		StartTime:     start,
		EndTime:       end,
		Cost:          schedule.Cost(rate, end.Sub(start)),
	}

	admitStart := time.Now()
	err = s.ledger.AdmitReservation(ctx, reservation)
	metrics.ObserveAdmission(time.Since(admitStart).Seconds())
	if err != nil {
		if errors.Is(err, domain.ErrSlotNotAvailable) {
			metrics.IncAdmissionConflict()
		}
		return nil, err
	}

	metrics.IncReservationCreated()
	s.publishEvent(events.EventReservationCreated, reservation, actor)

	s.logger.Info().
		Int64("reservation_id", reservation.ID).
		Int64("slot_id", reservation.SlotID).
		Str("holder_id", reservation.HolderID).
		Float64("cost", reservation.Cost).
		Msg("reservation created")

	return reservation, nil
}

// Get returns one reservation, consulting the cache first. Non-admin
// actors only see their own reservations.
func (s *ReservationService) Get(ctx context.Context, actor domain.Actor, id int64) (*models.Reservation, error) {
	if cached, err := s.cache.GetReservation(ctx, id); err == nil && cached != nil {
		if !actor.CanAccess(cached.HolderID) {
			return nil, domain.ErrForbidden
		}
		return cached, nil
	}

	reservation, err := s.ledger.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(reservation.HolderID) {
		return nil, domain.ErrForbidden
	}

	if err := s.cache.SetReservation(ctx, reservation); err != nil {
		s.logger.Warn().Err(err).Int64("reservation_id", id).Msg("cache set failed")
	}
	return reservation, nil
}

// Cancel transitions a reservation to cancelled. The write is guarded
// by the reservation version; on a version conflict the current state
// is re-read and the cancel retried a bounded number of times.
func (s *ReservationService) Cancel(ctx context.Context, actor domain.Actor, id int64) (*models.Reservation, error) {
	for attempt := 1; ; attempt++ {
		reservation, err := s.ledger.GetReservation(ctx, id)
		if err != nil {
			return nil, err
		}
		if !actor.CanAccess(reservation.HolderID) {
			return nil, domain.ErrForbidden
		}
		if reservation.IsCancelled() {
			return nil, domain.ErrAlreadyCancelled
		}

		err = s.ledger.CancelReservationWithVersion(ctx, id, reservation.Version)
		if err == nil {
			if cerr := s.cache.InvalidateReservation(ctx, id); cerr != nil {
				s.logger.Warn().Err(cerr).Int64("reservation_id", id).Msg("cache invalidate failed")
			}

			updated, gerr := s.ledger.GetReservation(ctx, id)
			if gerr != nil {
				return nil, gerr
			}

			metrics.IncReservationCancelled()
			s.publishEvent(events.EventReservationCancelled, updated, actor)
			s.logger.Info().
				Int64("reservation_id", id).
				Str("holder_id", updated.HolderID).
				Msg("reservation cancelled")
			return updated, nil
		}

		if !errors.Is(err, domain.ErrConcurrentModification) || attempt >= models.CancelMaxAttempts {
			return nil, err
		}
		s.logger.Debug().
			Int64("reservation_id", id).
			Int("attempt", attempt).
			Msg("cancel version conflict, retrying")
	}
}

// ListForHolder returns the actor's reservation history, newest first.
// Admins may list any holder.
func (s *ReservationService) ListForHolder(ctx context.Context, actor domain.Actor, holderID string) ([]*models.Reservation, error) {
	if holderID == "" {
		holderID = actor.HolderID
	}
	if !actor.CanAccess(holderID) {
		return nil, domain.ErrForbidden
	}
	return s.ledger.GetHolderReservations(ctx, holderID)
}

func (s *ReservationService) publishEvent(eventType string, reservation *models.Reservation, actor domain.Actor) {
	if s.eventBus == nil {
		return
	}

	payload := events.ReservationEventPayload{
		ReservationID: reservation.ID,
		SlotID:        reservation.SlotID,
		HolderID:      reservation.HolderID,
		VehicleNumber: reservation.VehicleNumber,
		StartTime:     reservation.StartTime,
		EndTime:       reservation.EndTime,
		Cost:          reservation.Cost,
		Status:        reservation.Status,
		ActorID:       actor.HolderID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("reservation_id", reservation.ID).Msg("publish event error")
	}
}
