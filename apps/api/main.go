package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"

	echoapi "github.com/trezcool/ecurie/apps/api/echo"
	"github.com/trezcool/ecurie/core"
	"github.com/trezcool/ecurie/core/training"
	logsvc "github.com/trezcool/ecurie/services/logger"
	"github.com/trezcool/ecurie/storage/database"
	inmemdb "github.com/trezcool/ecurie/storage/database/inmem"
	redisrepos "github.com/trezcool/ecurie/storage/database/redis"
	sqlxrepos "github.com/trezcool/ecurie/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up storage
	repo, closeRepo, err := setUpRepository(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up %s storage: %v", conf.Storage.Engine, err), err)
	}
	defer func() {
		if err = closeRepo(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// set up services
	trainingSvc := training.NewService(repo, conf.Training.SaveRetries)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	training.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("storage").Set(conf.Storage.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		&echoapi.Options{
			Address:     conf.Server.Address,
			Debug:       conf.Debug,
			TestMode:    conf.TestMode,
			SecretKey:   conf.SecretKey,
			Logger:      logger,
			TrainingSvc: trainingSvc,
			Validate:    validate,
			Translator:  translator,
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		if err != http.ErrServerClosed {
			logger.Error(fmt.Sprintf("server error: %v", err), err)
		}

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

// setUpRepository opens the storage engine selected by the config.
func setUpRepository(conf *core.Config) (training.Repository, func() error, error) {
	switch conf.Storage.Engine {
	case core.StoragePostgres:
		db, err := database.Setup(conf)
		if err != nil {
			return nil, nil, err
		}
		return sqlxrepos.NewTrainingRepository(db), db.Close, nil

	case core.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Address,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, nil, err
		}
		return redisrepos.NewTrainingRepository(client), client.Close, nil

	default:
		db, err := inmemdb.Open()
		if err != nil {
			return nil, nil, err
		}
		return inmemdb.NewTrainingRepository(db), func() error { return nil }, nil
	}
}
