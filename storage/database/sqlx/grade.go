package sqlxrepos

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/grade"
)

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *sqlx.DB) *gradeRepository {
	return &gradeRepository{db: db}
}

type gradeRow struct {
	ID          uuid.UUID `db:"id"`
	StudentID   string    `db:"student_id"`
	SubjectID   string    `db:"subject_id"`
	SubjectName string    `db:"subject_name"`
	Label       string    `db:"label"`
	Points      float64   `db:"points"`
	MaxPoints   float64   `db:"max_points"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row gradeRow) grade() grade.Grade {
	return grade.Grade{
		ID:          row.ID,
		StudentID:   row.StudentID,
		SubjectID:   row.SubjectID,
		SubjectName: row.SubjectName,
		Label:       row.Label,
		Points:      row.Points,
		MaxPoints:   row.MaxPoints,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

const gradeCols = `id, student_id, subject_id, subject_name, label, points, max_points, created_at, updated_at`

func (repo *gradeRepository) QueryAllGrades() ([]grade.Grade, error) {
	var rows []gradeRow
	if err := repo.db.Select(&rows, `SELECT `+gradeCols+` FROM grade`); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	return grades(rows), nil
}

func (repo *gradeRepository) QueryGradesByStudent(studentID string) ([]grade.Grade, error) {
	var rows []gradeRow
	err := repo.db.Select(&rows, `SELECT `+gradeCols+` FROM grade WHERE student_id = $1`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying grades by student")
	}
	return grades(rows), nil
}

func grades(rows []gradeRow) []grade.Grade {
	out := make([]grade.Grade, len(rows))
	for i, row := range rows {
		out[i] = row.grade()
	}
	return out
}
