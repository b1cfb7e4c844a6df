package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"gitlab.com/timkado/api/lead-console/internal/model"
	validation "gitlab.com/timkado/api/lead-console/internal/validator"
)

const appointmentsPath = "/api/appointments"

// ListAppointmentSlots returns slots whose dates fall in window.
func (c *Client) ListAppointmentSlots(ctx context.Context, window model.SlotRange) ([]model.AppointmentSlot, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	r, _ := jsonRequest("list_appointment_slots", http.MethodGet, appointmentsPath, nil)
	r.query = url.Values{
		"start_date": []string{window.StartDate},
		"end_date":   []string{window.EndDate},
	}

	var slots []model.AppointmentSlot
	if err := c.do(ctx, r, &slots); err != nil {
		return nil, fmt.Errorf("list appointment slots: %w", err)
	}
	return slots, nil
}

// CreateBulkSlots asks the backend to generate slots for a date range.
func (c *Client) CreateBulkSlots(ctx context.Context, payload model.CreateBulkSlotsRequest) (*model.BulkSlotsResult, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	r, err := jsonRequest("create_bulk_slots", http.MethodPost, appointmentsPath+"/create-bulk-slots", payload)
	if err != nil {
		return nil, err
	}

	var result model.BulkSlotsResult
	if err := c.do(ctx, r, &result); err != nil {
		return nil, fmt.Errorf("create bulk slots: %w", err)
	}
	return &result, nil
}

// BookSlot reserves a slot. The backend answers 409 when it is taken.
func (c *Client) BookSlot(ctx context.Context, slotID string, payload model.BookSlotRequest) (*model.AppointmentSlot, error) {
	if err := requireID("slot id", slotID); err != nil {
		return nil, err
	}
	if err := validation.Validate(payload); err != nil {
		return nil, err
	}
	r, err := jsonRequest("book_slot", http.MethodPut, escapedPath(appointmentsPath, slotID)+"/book", payload)
	if err != nil {
		return nil, err
	}

	var slot model.AppointmentSlot
	if err := c.do(ctx, r, &slot); err != nil {
		return nil, fmt.Errorf("book slot %s: %w", slotID, err)
	}
	return &slot, nil
}
