package main

import (
	"fmt"

	echoapi "github.com/trezcool/ratiba/api"
)

func (cli *commandLine) generateToken(participantID, name string, isTeacher bool) error {
	claims := echoapi.NewClaims(cli.conf, participantID, name, isTeacher)
	token, err := echoapi.GenerateToken(cli.conf, claims)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
