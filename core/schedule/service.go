package schedule

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Snapshot assembles a fresh read-only view for the resolver.
func (svc *Service) Snapshot() (Snapshot, error) {
	rules, err := svc.repo.QueryAllRules()
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "querying rules")
	}
	cancellations, err := svc.repo.QueryAllCancellations()
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "querying cancellations")
	}
	return Snapshot{Rules: rules, Cancellations: cancellations}, nil
}

// ResolveDay resolves the whole timetable for one date.
func (svc *Service) ResolveDay(date, now time.Time) ([]Slot, error) {
	snap, err := svc.Snapshot()
	if err != nil {
		return nil, err
	}
	return Resolve(snap, date, now), nil
}

// Rules

// CreateRule saves a new rule for the owner. A detected conflict is returned
// alongside the saved rule as a warning; it never blocks the save.
func (svc *Service) CreateRule(ownerID string, nr NewRule) (Rule, *Conflict, error) {
	now := time.Now().UTC()
	rule := Rule{
		OwnerID:       ownerID,
		SubjectID:     nr.SubjectID,
		SubjectName:   nr.SubjectName,
		DayOfWeek:     time.Weekday(nr.DayOfWeek),
		StartTime:     nr.StartTime,
		EndTime:       nr.EndTime,
		WeekParity:    nr.parity(),
		Room:          nr.Room,
		Note:          nr.Note,
		SpecificDate:  nr.SpecificDate,
		SpecificDates: nr.SpecificDates,
		Special:       nr.Special,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	conflict, err := svc.findOwnerConflict(rule)
	if err != nil {
		return Rule{}, nil, err
	}
	rule, err = svc.repo.CreateRule(rule)
	return rule, conflict, err
}

func (svc *Service) UpdateRule(id uuid.UUID, ownerID string, ur UpdateRule) (Rule, *Conflict, error) {
	rule, err := svc.ownedRule(id, ownerID)
	if err != nil {
		return Rule{}, nil, err
	}
	rule.SubjectID = ur.SubjectID
	rule.SubjectName = ur.SubjectName
	rule.DayOfWeek = time.Weekday(ur.DayOfWeek)
	rule.StartTime = ur.StartTime
	rule.EndTime = ur.EndTime
	rule.WeekParity = ur.parity()
	rule.Room = ur.Room
	rule.Note = ur.Note
	rule.SpecificDate = ur.SpecificDate
	rule.SpecificDates = ur.SpecificDates
	rule.Special = ur.Special
	rule.UpdatedAt = time.Now().UTC()

	conflict, err := svc.findOwnerConflict(rule)
	if err != nil {
		return Rule{}, nil, err
	}
	rule, err = svc.repo.UpdateRule(rule)
	return rule, conflict, err
}

func (svc *Service) GetRule(id uuid.UUID) (Rule, error) {
	return svc.repo.GetRuleByID(id)
}

func (svc *Service) QueryAllRules() ([]Rule, error) {
	return svc.repo.QueryAllRules()
}

func (svc *Service) QueryRulesByOwner(ownerID string) ([]Rule, error) {
	return svc.repo.QueryRulesByOwner(ownerID)
}

func (svc *Service) DeleteRules(ownerID string, ids ...uuid.UUID) error {
	for _, id := range ids {
		if _, err := svc.ownedRule(id, ownerID); err != nil {
			return err
		}
	}
	return svc.repo.DeleteRulesByID(ids...)
}

// findOwnerConflict checks the candidate against the owner's other rules.
func (svc *Service) findOwnerConflict(candidate Rule) (*Conflict, error) {
	existing, err := svc.repo.QueryRulesByOwner(candidate.OwnerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying rules for conflict check")
	}
	return FindConflict(candidate, existing), nil
}

// ownedRule fetches a rule and enforces record ownership.
// An empty ownerID is an administrator and skips the check.
func (svc *Service) ownedRule(id uuid.UUID, ownerID string) (Rule, error) {
	rule, err := svc.repo.GetRuleByID(id)
	if err != nil {
		return Rule{}, err
	}
	if ownerID != "" && rule.OwnerID != ownerID {
		return Rule{}, ErrNotOwner
	}
	return rule, nil
}

// Cancellations

func (svc *Service) CreateCancellation(ownerID string, nc NewCancellation) (Cancellation, error) {
	now := time.Now().UTC()
	return svc.repo.CreateCancellation(Cancellation{
		OwnerID:   ownerID,
		DateFrom:  nc.DateFrom,
		DateTo:    nc.DateTo,
		TimeFrom:  nc.TimeFrom,
		TimeTo:    nc.TimeTo,
		Note:      nc.Note,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) UpdateCancellation(id uuid.UUID, ownerID string, nc NewCancellation) (Cancellation, error) {
	rec, err := svc.ownedCancellation(id, ownerID)
	if err != nil {
		return Cancellation{}, err
	}
	rec.DateFrom = nc.DateFrom
	rec.DateTo = nc.DateTo
	rec.TimeFrom = nc.TimeFrom
	rec.TimeTo = nc.TimeTo
	rec.Note = nc.Note
	rec.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCancellation(rec)
}

func (svc *Service) QueryAllCancellations() ([]Cancellation, error) {
	return svc.repo.QueryAllCancellations()
}

func (svc *Service) QueryCancellationsByOwner(ownerID string) ([]Cancellation, error) {
	return svc.repo.QueryCancellationsByOwner(ownerID)
}

func (svc *Service) DeleteCancellations(ownerID string, ids ...uuid.UUID) error {
	for _, id := range ids {
		if _, err := svc.ownedCancellation(id, ownerID); err != nil {
			return err
		}
	}
	return svc.repo.DeleteCancellationsByID(ids...)
}

func (svc *Service) ownedCancellation(id uuid.UUID, ownerID string) (Cancellation, error) {
	rec, err := svc.repo.GetCancellationByID(id)
	if err != nil {
		return Cancellation{}, err
	}
	if ownerID != "" && rec.OwnerID != ownerID {
		return Cancellation{}, ErrNotOwner
	}
	return rec, nil
}
