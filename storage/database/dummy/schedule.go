package dummydb

import (
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core/schedule"
)

type scheduleRepository struct {
	rules         *ruleTable
	cancellations *cancellationTable
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *DB) *scheduleRepository {
	return &scheduleRepository{rules: db.rules, cancellations: db.cancellations}
}

func (repo *scheduleRepository) CreateRule(r schedule.Rule) (schedule.Rule, error) {
	repo.rules.Lock()
	defer repo.rules.Unlock()

	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	repo.rules.table[r.ID] = &r
	return r, nil
}

func (repo *scheduleRepository) GetRuleByID(id uuid.UUID) (schedule.Rule, error) {
	repo.rules.RLock()
	defer repo.rules.RUnlock()

	if r, ok := repo.rules.table[id]; ok {
		return *r, nil
	}
	return schedule.Rule{}, schedule.ErrRuleNotFound
}

func (repo *scheduleRepository) QueryAllRules() ([]schedule.Rule, error) {
	repo.rules.RLock()
	defer repo.rules.RUnlock()
	return repo.queryRules(func(schedule.Rule) bool { return true }), nil
}

func (repo *scheduleRepository) QueryRulesByOwner(ownerID string) ([]schedule.Rule, error) {
	repo.rules.RLock()
	defer repo.rules.RUnlock()
	return repo.queryRules(func(r schedule.Rule) bool { return r.OwnerID == ownerID }), nil
}

func (repo *scheduleRepository) queryRules(match func(schedule.Rule) bool) []schedule.Rule {
	rules := make([]schedule.Rule, 0, len(repo.rules.table))
	for _, r := range repo.rules.table {
		if match(*r) {
			rules = append(rules, *r)
		}
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].DayOfWeek != rules[j].DayOfWeek {
			return rules[i].DayOfWeek < rules[j].DayOfWeek
		}
		return rules[i].StartTime < rules[j].StartTime
	})
	return rules
}

func (repo *scheduleRepository) UpdateRule(r schedule.Rule) (schedule.Rule, error) {
	repo.rules.Lock()
	defer repo.rules.Unlock()

	if _, ok := repo.rules.table[r.ID]; !ok {
		return schedule.Rule{}, schedule.ErrRuleNotFound
	}
	repo.rules.table[r.ID] = &r
	return r, nil
}

func (repo *scheduleRepository) DeleteRulesByID(ids ...uuid.UUID) error {
	repo.rules.Lock()
	defer repo.rules.Unlock()

	for _, id := range ids {
		delete(repo.rules.table, id)
	}
	return nil
}

func (repo *scheduleRepository) CreateCancellation(c schedule.Cancellation) (schedule.Cancellation, error) {
	repo.cancellations.Lock()
	defer repo.cancellations.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	repo.cancellations.table[c.ID] = &c
	return c, nil
}

func (repo *scheduleRepository) GetCancellationByID(id uuid.UUID) (schedule.Cancellation, error) {
	repo.cancellations.RLock()
	defer repo.cancellations.RUnlock()

	if c, ok := repo.cancellations.table[id]; ok {
		return *c, nil
	}
	return schedule.Cancellation{}, schedule.ErrCancellationNotFound
}

func (repo *scheduleRepository) QueryAllCancellations() ([]schedule.Cancellation, error) {
	repo.cancellations.RLock()
	defer repo.cancellations.RUnlock()
	return repo.queryCancellations(func(schedule.Cancellation) bool { return true }), nil
}

func (repo *scheduleRepository) QueryCancellationsByOwner(ownerID string) ([]schedule.Cancellation, error) {
	repo.cancellations.RLock()
	defer repo.cancellations.RUnlock()
	return repo.queryCancellations(func(c schedule.Cancellation) bool { return c.OwnerID == ownerID }), nil
}

func (repo *scheduleRepository) queryCancellations(match func(schedule.Cancellation) bool) []schedule.Cancellation {
	recs := make([]schedule.Cancellation, 0, len(repo.cancellations.table))
	for _, c := range repo.cancellations.table {
		if match(*c) {
			recs = append(recs, *c)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].DateFrom < recs[j].DateFrom })
	return recs
}

func (repo *scheduleRepository) UpdateCancellation(c schedule.Cancellation) (schedule.Cancellation, error) {
	repo.cancellations.Lock()
	defer repo.cancellations.Unlock()

	if _, ok := repo.cancellations.table[c.ID]; !ok {
		return schedule.Cancellation{}, schedule.ErrCancellationNotFound
	}
	repo.cancellations.table[c.ID] = &c
	return c, nil
}

func (repo *scheduleRepository) DeleteCancellationsByID(ids ...uuid.UUID) error {
	repo.cancellations.Lock()
	defer repo.cancellations.Unlock()

	for _, id := range ids {
		delete(repo.cancellations.table, id)
	}
	return nil
}
