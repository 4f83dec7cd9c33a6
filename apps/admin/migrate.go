package main

import (
	"github.com/pkg/errors"
	"github.com/trezcool/goose"

	"github.com/trezcool/ecurie/fs"
)

var gooseRunFunc = goose.RunFS // mockable

var migrateCommands = map[string]bool{
	"up": true, "up-by-one": true, "up-to": true,
	"down": true, "down-to": true, "redo": true, "status": true,
}

func (cli *commandLine) migrate(args []string) error {
	command := args[0]
	if !migrateCommands[command] {
		return errors.Errorf("%q: no such command", command)
	}
	if (command == "up-to" || command == "down-to") && len(args) < 2 {
		return errors.Errorf("%s requires a VERSION", command)
	}

	db, err := cli.openDB()
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	return gooseRunFunc(command, db, appfs.FS, "migrations", args[1:]...)
}
