package echoapi

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/attendance"
	"github.com/trezcool/ratiba/core/schedule"
)

type (
	ScanRequest struct {
		Payload string `json:"payload" validate:"required"`
	}

	OpenSessionRequest struct {
		Year      string `json:"year" validate:"required,keysegment"`
		Term      string `json:"term" validate:"required,keysegment"`
		SubjectID string `json:"subject_id" validate:"required,keysegment"`
	}

	SessionResponse struct {
		Key     string `json:"key"`
		Payload string `json:"payload"`
	}

	EventResponse struct {
		Kind          string    `json:"kind"`
		ParticipantID string    `json:"participant_id"`
		Name          string    `json:"name"`
		Reason        string    `json:"reason,omitempty"`
		Duplicate     bool      `json:"duplicate"`
		At            time.Time `json:"at"`
	}

	SlotResponse struct {
		RuleID      string `json:"rule_id"`
		SubjectID   string `json:"subject_id"`
		SubjectName string `json:"subject_name"`
		Room        string `json:"room,omitempty"`
		Note        string `json:"note,omitempty"`
		StartTime   string `json:"start_time"`
		EndTime     string `json:"end_time"`
		State       string `json:"state"`
		Cancelled   bool   `json:"cancelled"`
		WrongParity bool   `json:"wrong_parity"`
	}

	DayResponse struct {
		Date  string         `json:"date"`
		Slots []SlotResponse `json:"slots"`
	}

	RuleResponse struct {
		schedule.Rule
		ConflictWarning string `json:"conflict_warning,omitempty"`
	}

	DestroyMultipleRequest struct {
		IDs []string `query:"id"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (sr *ScanRequest) Validate(validate *validator.Validate) error {
	sr.Payload = core.CleanString(sr.Payload)
	return validate.Struct(sr)
}

func (or *OpenSessionRequest) Validate(validate *validator.Validate) error {
	or.Year = core.CleanString(or.Year)
	or.Term = core.CleanString(or.Term)
	or.SubjectID = core.CleanString(or.SubjectID)
	return validate.Struct(or)
}

func (or *OpenSessionRequest) sessionKey() attendance.SessionKey {
	return attendance.SessionKey{Year: or.Year, Term: or.Term, SubjectID: or.SubjectID}
}

func newEventResponse(evt attendance.Event) EventResponse {
	return EventResponse{
		Kind:          string(evt.Kind),
		ParticipantID: evt.ParticipantID,
		Name:          evt.Name,
		Reason:        evt.Reason,
		Duplicate:     evt.Duplicate,
		At:            evt.At,
	}
}

func newSlotResponse(slot schedule.Slot) SlotResponse {
	return SlotResponse{
		RuleID:      slot.Rule.ID.String(),
		SubjectID:   slot.Rule.SubjectID,
		SubjectName: slot.Rule.SubjectName,
		Room:        slot.Rule.Room,
		Note:        slot.Rule.Note,
		StartTime:   slot.Start.String(),
		EndTime:     slot.End.String(),
		State:       slot.State.String(),
		Cancelled:   slot.Cancelled,
		WrongParity: slot.WrongParity,
	}
}

func newDayResponse(date time.Time, slots []schedule.Slot) DayResponse {
	resp := DayResponse{
		Date:  schedule.FormatDate(date),
		Slots: make([]SlotResponse, 0, len(slots)),
	}
	for _, slot := range slots {
		resp.Slots = append(resp.Slots, newSlotResponse(slot))
	}
	return resp
}
