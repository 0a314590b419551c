package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/storage/database"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf *core.Config
	db   *sqlx.DB
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createdb                                                - create the database and app user if missing")
	fmt.Println("  migrate up|down|status [ARGS]                           - run database migrations")
	fmt.Println("  enroll -year YEAR -term TERM -subject SUBJECT -id ID    - enroll a participant in a subject")
	fmt.Println("  gentoken -id ID [-name NAME] [-teacher]                 - generate an access token for a participant")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	enrollCmd := flag.NewFlagSet("enroll", flag.ExitOnError)
	enrollYear := enrollCmd.String("year", "", "The school year, e.g. 2026.")
	enrollTerm := enrollCmd.String("term", "", "The term within the year, e.g. T1.")
	enrollSubject := enrollCmd.String("subject", "", "The subject ID.")
	enrollID := enrollCmd.String("id", "", "The participant ID.")

	genTokenCmd := flag.NewFlagSet("gentoken", flag.ExitOnError)
	genTokenID := genTokenCmd.String("id", "", "The participant ID.")
	genTokenName := genTokenCmd.String("name", "", "The participant's display name.")
	genTokenTeacher := genTokenCmd.Bool("teacher", false, "Grant the teacher portal.")

	switch args[1] {
	case "createdb":
		return database.CreateIfNotExist(cli.conf)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		if err := cli.openDB(); err != nil {
			return err
		}
		return cli.migrate(args[2:])
	case "enroll":
		if err := enrollCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *enrollYear == "" || *enrollTerm == "" || *enrollSubject == "" || *enrollID == "" {
			enrollCmd.Usage()
			return errHelp
		}
		if err := cli.openDB(); err != nil {
			return err
		}
		return cli.enroll(*enrollYear, *enrollTerm, *enrollSubject, *enrollID)
	case "gentoken":
		if err := genTokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *genTokenID == "" {
			genTokenCmd.Usage()
			return errHelp
		}
		return cli.generateToken(*genTokenID, *genTokenName, *genTokenTeacher)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) openDB() error {
	db, err := database.Open(cli.conf)
	if err != nil {
		return err
	}
	cli.db = db
	return nil
}

func (cli *commandLine) closeDB() {
	if cli.db != nil {
		_ = cli.db.Close()
	}
}
