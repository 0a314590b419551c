// Package grade holds the minimal earned-grade record the change detector
// watches. Grade entry itself lives in another service.
package grade

import (
	"time"

	"github.com/google/uuid"
)

type Grade struct {
	ID          uuid.UUID `json:"id"`
	StudentID   string    `json:"student_id"`
	SubjectID   string    `json:"subject_id"`
	SubjectName string    `json:"subject_name"`
	Label       string    `json:"label"`
	Points      float64   `json:"points"`
	MaxPoints   float64   `json:"max_points"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type Repository interface {
	QueryAllGrades() ([]Grade, error)
	QueryGradesByStudent(studentID string) ([]Grade, error)
}
