package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/trezcool/ecurie/core"
	"github.com/trezcool/ecurie/storage/database"
)

func main() {
	logger := log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	if err != nil {
		logger.Fatalf("loading config: %v", err)
	}

	cli := &commandLine{
		conf: conf,
		openDB: func() (*sql.DB, error) {
			db, err := database.Open(conf)
			if err != nil {
				return nil, err
			}
			return db.DB, nil
		},
	}
	if err = newRootCmd(cli).Execute(); err != nil {
		os.Exit(1)
	}
}
