package main

import (
	"fmt"

	"github.com/trezcool/ratiba/core/attendance"
)

func (cli *commandLine) enroll(year, term, subject, participantID string) error {
	key := attendance.SessionKey{Year: year, Term: term, SubjectID: subject}
	if !attendance.ValidSessionKey(key) {
		return fmt.Errorf("invalid session key %q", key)
	}

	res, err := cli.db.Exec(
		`INSERT INTO enrollment (year, term, subject_id, participant_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT DO NOTHING`,
		year, term, subject, participantID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		fmt.Printf("%s is already enrolled in %s\n", participantID, key)
		return nil
	}
	fmt.Printf("enrolled %s in %s\n", participantID, key)
	return nil
}
