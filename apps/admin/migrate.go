package main

import (
	"github.com/jmoiron/sqlx"

	"github.com/Ma114119/Combits-2025/storage/database"
)

var gooseRunFunc = func(db *sqlx.DB, command string, args ...string) error { // mockable
	return database.RunGoose(db, command, args...)
}

func (cli *commandLine) migrate(args []string) error {
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(cli.db, args[0], arguments...)
}
