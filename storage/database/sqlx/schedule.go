package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core/schedule"
)

type scheduleRepository struct {
	db *sqlx.DB
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *sqlx.DB) *scheduleRepository {
	return &scheduleRepository{db: db}
}

type ruleRow struct {
	ID            uuid.UUID   `db:"id"`
	OwnerID       string      `db:"owner_id"`
	SubjectID     string      `db:"subject_id"`
	SubjectName   string      `db:"subject_name"`
	DayOfWeek     int         `db:"day_of_week"`
	StartTime     string      `db:"start_time"`
	EndTime       string      `db:"end_time"`
	WeekParity    string      `db:"week_parity"`
	Room          null.String `db:"room"`
	Note          null.String `db:"note"`
	SpecificDate  null.String `db:"specific_date"`
	SpecificDates null.String `db:"specific_dates"`
	Special       bool        `db:"special"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func toRuleRow(r schedule.Rule) ruleRow {
	return ruleRow{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		SubjectID:     r.SubjectID,
		SubjectName:   r.SubjectName,
		DayOfWeek:     int(r.DayOfWeek),
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		WeekParity:    string(r.WeekParity),
		Room:          null.NewString(r.Room, r.Room != ""),
		Note:          null.NewString(r.Note, r.Note != ""),
		SpecificDate:  null.NewString(r.SpecificDate, r.SpecificDate != ""),
		SpecificDates: null.NewString(r.SpecificDates, r.SpecificDates != ""),
		Special:       r.Special,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

func (row ruleRow) rule() schedule.Rule {
	return schedule.Rule{
		ID:            row.ID,
		OwnerID:       row.OwnerID,
		SubjectID:     row.SubjectID,
		SubjectName:   row.SubjectName,
		DayOfWeek:     time.Weekday(row.DayOfWeek),
		StartTime:     row.StartTime,
		EndTime:       row.EndTime,
		WeekParity:    schedule.Parity(row.WeekParity),
		Room:          row.Room.String,
		Note:          row.Note.String,
		SpecificDate:  row.SpecificDate.String,
		SpecificDates: row.SpecificDates.String,
		Special:       row.Special,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func rules(rows []ruleRow) []schedule.Rule {
	out := make([]schedule.Rule, len(rows))
	for i, row := range rows {
		out[i] = row.rule()
	}
	return out
}

const ruleCols = `id, owner_id, subject_id, subject_name, day_of_week, start_time, end_time,
week_parity, room, note, specific_date, specific_dates, special, created_at, updated_at`

func (repo *scheduleRepository) CreateRule(r schedule.Rule) (schedule.Rule, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	_, err := repo.db.NamedExec(`
INSERT INTO timetable_rule (`+ruleCols+`)
VALUES (:id, :owner_id, :subject_id, :subject_name, :day_of_week, :start_time, :end_time,
        :week_parity, :room, :note, :specific_date, :specific_dates, :special, :created_at, :updated_at)`,
		toRuleRow(r),
	)
	if err != nil {
		return schedule.Rule{}, errors.Wrap(err, "inserting rule")
	}
	return r, nil
}

func (repo *scheduleRepository) GetRuleByID(id uuid.UUID) (schedule.Rule, error) {
	var row ruleRow
	err := repo.db.Get(&row, `SELECT `+ruleCols+` FROM timetable_rule WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return schedule.Rule{}, schedule.ErrRuleNotFound
	}
	if err != nil {
		return schedule.Rule{}, errors.Wrap(err, "getting rule")
	}
	return row.rule(), nil
}

func (repo *scheduleRepository) QueryAllRules() ([]schedule.Rule, error) {
	var rows []ruleRow
	err := repo.db.Select(&rows, `SELECT `+ruleCols+` FROM timetable_rule ORDER BY day_of_week, start_time`)
	if err != nil {
		return nil, errors.Wrap(err, "querying rules")
	}
	return rules(rows), nil
}

func (repo *scheduleRepository) QueryRulesByOwner(ownerID string) ([]schedule.Rule, error) {
	var rows []ruleRow
	err := repo.db.Select(&rows,
		`SELECT `+ruleCols+` FROM timetable_rule WHERE owner_id = $1 ORDER BY day_of_week, start_time`,
		ownerID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying rules by owner")
	}
	return rules(rows), nil
}

func (repo *scheduleRepository) UpdateRule(r schedule.Rule) (schedule.Rule, error) {
	res, err := repo.db.NamedExec(`
UPDATE timetable_rule
SET subject_id = :subject_id, subject_name = :subject_name, day_of_week = :day_of_week,
    start_time = :start_time, end_time = :end_time, week_parity = :week_parity,
    room = :room, note = :note, specific_date = :specific_date,
    specific_dates = :specific_dates, special = :special, updated_at = :updated_at
WHERE id = :id`,
		toRuleRow(r),
	)
	if err != nil {
		return schedule.Rule{}, errors.Wrap(err, "updating rule")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.Rule{}, schedule.ErrRuleNotFound
	}
	return r, nil
}

func (repo *scheduleRepository) DeleteRulesByID(ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM timetable_rule WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	_, err = repo.db.Exec(repo.db.Rebind(query), args...)
	return errors.Wrap(err, "deleting rules")
}

// Cancellations

type cancellationRow struct {
	ID        uuid.UUID   `db:"id"`
	OwnerID   string      `db:"owner_id"`
	DateFrom  string      `db:"date_from"`
	DateTo    null.String `db:"date_to"`
	TimeFrom  null.String `db:"time_from"`
	TimeTo    null.String `db:"time_to"`
	Note      null.String `db:"note"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func toCancellationRow(c schedule.Cancellation) cancellationRow {
	return cancellationRow{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		DateFrom:  c.DateFrom,
		DateTo:    null.NewString(c.DateTo, c.DateTo != ""),
		TimeFrom:  null.NewString(c.TimeFrom, c.TimeFrom != ""),
		TimeTo:    null.NewString(c.TimeTo, c.TimeTo != ""),
		Note:      null.NewString(c.Note, c.Note != ""),
		CreatedAt: c.CreatedAt.UTC(),
		UpdatedAt: c.UpdatedAt.UTC(),
	}
}

func (row cancellationRow) cancellation() schedule.Cancellation {
	return schedule.Cancellation{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		DateFrom:  row.DateFrom,
		DateTo:    row.DateTo.String,
		TimeFrom:  row.TimeFrom.String,
		TimeTo:    row.TimeTo.String,
		Note:      row.Note.String,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func cancellations(rows []cancellationRow) []schedule.Cancellation {
	out := make([]schedule.Cancellation, len(rows))
	for i, row := range rows {
		out[i] = row.cancellation()
	}
	return out
}

const cancellationCols = `id, owner_id, date_from, date_to, time_from, time_to, note, created_at, updated_at`

func (repo *scheduleRepository) CreateCancellation(c schedule.Cancellation) (schedule.Cancellation, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := repo.db.NamedExec(`
INSERT INTO cancellation (`+cancellationCols+`)
VALUES (:id, :owner_id, :date_from, :date_to, :time_from, :time_to, :note, :created_at, :updated_at)`,
		toCancellationRow(c),
	)
	if err != nil {
		return schedule.Cancellation{}, errors.Wrap(err, "inserting cancellation")
	}
	return c, nil
}

func (repo *scheduleRepository) GetCancellationByID(id uuid.UUID) (schedule.Cancellation, error) {
	var row cancellationRow
	err := repo.db.Get(&row, `SELECT `+cancellationCols+` FROM cancellation WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return schedule.Cancellation{}, schedule.ErrCancellationNotFound
	}
	if err != nil {
		return schedule.Cancellation{}, errors.Wrap(err, "getting cancellation")
	}
	return row.cancellation(), nil
}

func (repo *scheduleRepository) QueryAllCancellations() ([]schedule.Cancellation, error) {
	var rows []cancellationRow
	err := repo.db.Select(&rows, `SELECT `+cancellationCols+` FROM cancellation ORDER BY date_from`)
	if err != nil {
		return nil, errors.Wrap(err, "querying cancellations")
	}
	return cancellations(rows), nil
}

func (repo *scheduleRepository) QueryCancellationsByOwner(ownerID string) ([]schedule.Cancellation, error) {
	var rows []cancellationRow
	err := repo.db.Select(&rows,
		`SELECT `+cancellationCols+` FROM cancellation WHERE owner_id = $1 ORDER BY date_from`,
		ownerID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying cancellations by owner")
	}
	return cancellations(rows), nil
}

func (repo *scheduleRepository) UpdateCancellation(c schedule.Cancellation) (schedule.Cancellation, error) {
	res, err := repo.db.NamedExec(`
UPDATE cancellation
SET date_from = :date_from, date_to = :date_to, time_from = :time_from,
    time_to = :time_to, note = :note, updated_at = :updated_at
WHERE id = :id`,
		toCancellationRow(c),
	)
	if err != nil {
		return schedule.Cancellation{}, errors.Wrap(err, "updating cancellation")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.Cancellation{}, schedule.ErrCancellationNotFound
	}
	return c, nil
}

func (repo *scheduleRepository) DeleteCancellationsByID(ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM cancellation WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	_, err = repo.db.Exec(repo.db.Rebind(query), args...)
	return errors.Wrap(err, "deleting cancellations")
}
