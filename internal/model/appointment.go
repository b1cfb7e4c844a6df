package model

import (
	"fmt"
	"time"

	"gitlab.com/timkado/api/lead-console/internal/apperrors"
	validation "gitlab.com/timkado/api/lead-console/internal/validator"
	"gitlab.com/timkado/api/lead-console/pkg/utils"
)

// SlotStatus is the booking state of an appointment slot.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotBooked    SlotStatus = "booked"
	SlotCancelled SlotStatus = "cancelled"
)

const timeOfDayLayout = "15:04"

// AppointmentSlot is a bookable time window.
type AppointmentSlot struct {
	ID             string     `json:"id"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        time.Time  `json:"end_time"`
	Status         SlotStatus `json:"status" validate:"oneof=available booked cancelled"`
	LeadID         string     `json:"lead_id,omitempty"`
	ReasonForVisit string     `json:"reason_for_visit,omitempty"`
	BookedByMethod string     `json:"booked_by_method,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Validate checks that booking details only appear on booked slots.
func (s *AppointmentSlot) Validate() error {
	if err := validation.Validate(s); err != nil {
		return err
	}
	if !s.EndTime.After(s.StartTime) {
		return apperrors.NewValidation(fmt.Errorf("slot %s ends before it starts", s.ID))
	}
	if s.Status != SlotBooked && (s.LeadID != "" || s.ReasonForVisit != "") {
		return apperrors.NewValidation(fmt.Errorf("slot %s is %s but carries booking details", s.ID, s.Status))
	}
	return nil
}

// SlotRange is the date window for listing slots.
type SlotRange struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// Validate checks both dates and their order.
func (r SlotRange) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	if r.EndDate < r.StartDate {
		return apperrors.NewValidation(fmt.Errorf("end_date %s is before start_date %s", r.EndDate, r.StartDate))
	}
	return nil
}

// CreateBulkSlotsRequest asks the backend to generate slots over a date range.
type CreateBulkSlotsRequest struct {
	StartDate           string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate             string `json:"end_date" validate:"required,datetime=2006-01-02"`
	StartTimeOfDay      string `json:"start_time_of_day" validate:"required,datetime=15:04"`
	EndTimeOfDay        string `json:"end_time_of_day" validate:"required,datetime=15:04"`
	SlotDurationMinutes int    `json:"slot_duration_minutes" validate:"gt=0,lte=1440"`
}

// Validate checks formats and that the ranges are not inverted.
func (r *CreateBulkSlotsRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	if r.EndDate < r.StartDate {
		return apperrors.NewValidation(fmt.Errorf("end_date %s is before start_date %s", r.EndDate, r.StartDate))
	}
	startTOD, _ := time.Parse(timeOfDayLayout, r.StartTimeOfDay)
	endTOD, _ := time.Parse(timeOfDayLayout, r.EndTimeOfDay)
	if !endTOD.After(startTOD) {
		return apperrors.NewValidation(fmt.Errorf("end_time_of_day %s must be after start_time_of_day %s", r.EndTimeOfDay, r.StartTimeOfDay))
	}
	return nil
}

// SlotWindow is one generated slot in a preview.
type SlotWindow struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Bounds on what Preview will generate.
const (
	MaxPreviewDays  = 366
	MaxPreviewSlots = 10000
)

// Preview lists the slots the backend will create for r: weekdays only,
// starting at StartTimeOfDay and stepping by the duration while the start is
// before EndTimeOfDay. The last slot may run past EndTimeOfDay. Ranges longer
// than MaxPreviewDays or producing more than MaxPreviewSlots are rejected
// before anything is allocated.
func (r *CreateBulkSlotsRequest) Preview() ([]SlotWindow, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	startDate, _ := utils.ParseDate(r.StartDate)
	endDate, _ := utils.ParseDate(r.EndDate)
	if endDate.After(startDate.AddDate(0, 0, MaxPreviewDays-1)) {
		return nil, apperrors.NewValidation(fmt.Errorf("preview covers at most %d days", MaxPreviewDays))
	}
	startTOD, _ := time.Parse(timeOfDayLayout, r.StartTimeOfDay)
	endTOD, _ := time.Parse(timeOfDayLayout, r.EndTimeOfDay)
	step := time.Duration(r.SlotDurationMinutes) * time.Minute

	perDay := int((endTOD.Sub(startTOD) + step - 1) / step)
	weekdays := 0
	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		if isWeekday(day) {
			weekdays++
		}
	}
	total := weekdays * perDay
	if total > MaxPreviewSlots {
		return nil, apperrors.NewValidation(fmt.Errorf("preview would generate %d slots, limit is %d", total, MaxPreviewSlots))
	}

	slots := make([]SlotWindow, 0, total)
	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		if !isWeekday(day) {
			continue
		}
		cur := atTimeOfDay(day, startTOD)
		dayEnd := atTimeOfDay(day, endTOD)
		for cur.Before(dayEnd) {
			slots = append(slots, SlotWindow{StartTime: cur, EndTime: cur.Add(step)})
			cur = cur.Add(step)
		}
	}
	return slots, nil
}

func isWeekday(day time.Time) bool {
	wd := day.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func atTimeOfDay(day, tod time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, time.UTC)
}

// BookSlotRequest reserves an available slot for a lead.
type BookSlotRequest struct {
	LeadID         string `json:"lead_id" validate:"required"`
	ReasonForVisit string `json:"reason_for_visit" validate:"required,notblank"`
	BookedByMethod string `json:"booked_by_method,omitempty"`
}

// BulkSlotsResult is the backend's answer to a bulk slot creation.
type BulkSlotsResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
