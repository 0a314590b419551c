package dummydb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core/grade"
	"github.com/trezcool/ratiba/core/schedule"
)

type (
	DB struct {
		rules         *ruleTable
		cancellations *cancellationTable
		grades        *gradeTable
	}

	ruleTable struct {
		sync.RWMutex
		table map[uuid.UUID]*schedule.Rule
	}

	cancellationTable struct {
		sync.RWMutex
		table map[uuid.UUID]*schedule.Cancellation
	}

	gradeTable struct {
		sync.RWMutex
		table map[uuid.UUID]*grade.Grade
	}
)

func Open() (*DB, error) {
	db := &DB{
		rules:         &ruleTable{table: make(map[uuid.UUID]*schedule.Rule)},
		cancellations: &cancellationTable{table: make(map[uuid.UUID]*schedule.Cancellation)},
		grades:        &gradeTable{table: make(map[uuid.UUID]*grade.Grade)},
	}
	return db, nil
}
