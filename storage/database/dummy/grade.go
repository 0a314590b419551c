package dummydb

import (
	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core/grade"
)

type gradeRepository struct {
	grades *gradeTable
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) *gradeRepository {
	return &gradeRepository{grades: db.grades}
}

// SetGrade inserts or replaces a grade. Test seeding helper.
func (repo *gradeRepository) SetGrade(g grade.Grade) grade.Grade {
	repo.grades.Lock()
	defer repo.grades.Unlock()

	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	repo.grades.table[g.ID] = &g
	return g
}

// RemoveGrade deletes a grade. Test seeding helper.
func (repo *gradeRepository) RemoveGrade(id uuid.UUID) {
	repo.grades.Lock()
	defer repo.grades.Unlock()
	delete(repo.grades.table, id)
}

func (repo *gradeRepository) QueryAllGrades() ([]grade.Grade, error) {
	repo.grades.RLock()
	defer repo.grades.RUnlock()
	return repo.query(func(grade.Grade) bool { return true }), nil
}

func (repo *gradeRepository) QueryGradesByStudent(studentID string) ([]grade.Grade, error) {
	repo.grades.RLock()
	defer repo.grades.RUnlock()
	return repo.query(func(g grade.Grade) bool { return g.StudentID == studentID }), nil
}

func (repo *gradeRepository) query(match func(grade.Grade) bool) []grade.Grade {
	grades := make([]grade.Grade, 0, len(repo.grades.table))
	for _, g := range repo.grades.table {
		if match(*g) {
			grades = append(grades, *g)
		}
	}
	return grades
}
