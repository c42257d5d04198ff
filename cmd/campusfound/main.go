package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/campusfound/campusfound/internal/database"
	"github.com/campusfound/campusfound/internal/imagestore"
	"github.com/campusfound/campusfound/internal/mailer"
	"github.com/campusfound/campusfound/internal/notifier"
	"github.com/campusfound/campusfound/internal/retention"
	"github.com/campusfound/campusfound/internal/scheduler"
	"github.com/campusfound/campusfound/internal/server"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/muesli/coral"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const dbname = "campusfound.db"

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	cfg string
)

func main() {
	c := &coral.Command{
		Use:     "campusfound",
		Short:   "Campus lost-and-found server",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    coral.ExactArgs(0),
	}
	initCmd.Flags().StringVarP(&cfg, "config", "c", "", "Configuration file")
	c.AddCommand(initCmd)

	reindexCmd.Flags().StringVarP(&cfg, "config", "c", "", "Configuration file")
	c.AddCommand(reindexCmd)

	serverCmd.Flags().StringVarP(&cfg, "config", "c", "", "Configuration file")
	c.AddCommand(serverCmd)

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

// konfiguration loads the yaml configuration file, if any, and overrides it
// with CAMPUSFOUND_ prefixed environment variables.
func konfiguration() (*koanf.Koanf, error) {
	konf := koanf.New(".")

	if cfg != "" {
		if err := konf.Load(file.Provider(cfg), yaml.Parser()); err != nil {
			return nil, errors.Wrap(err, "could not load configuration file")
		}
	}

	err := konf.Load(env.Provider("CAMPUSFOUND_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "CAMPUSFOUND_")), "_", ".")
	}), nil)
	return konf, errors.Wrap(err, "could not load environment")
}

func dbnameWithPath(path string) string {
	if len(path) == 0 {
		return dbname
	}
	return filepath.Join(path, dbname)
}

func retentionConfig(konf *koanf.Koanf) retention.Config {
	rcfg := retention.DefaultConfig()
	if v := konf.String("retention.user.deletion.strategy"); v != "" {
		rcfg.Strategy = v
	}
	if v := konf.Int("retention.inactivity.days"); v > 0 {
		rcfg.InactivityDays = v
	}
	if v := konf.Int("retention.grace.period.days"); v > 0 {
		rcfg.GracePeriodDays = v
	}
	rcfg.FrontendURL = konf.String("frontend.url")
	return rcfg
}

var (
	initCmd = &coral.Command{
		Use:   "init",
		Short: "Init the database",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := konfiguration()
			if err != nil {
				return err
			}

			return database.StormInit(dbnameWithPath(konf.String("database.path")))
		},
	}

	//
	reindexCmd = &coral.Command{
		Use:   "reindex",
		Short: "Reindex the database",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := konfiguration()
			if err != nil {
				return err
			}

			return database.StormReIndex(dbnameWithPath(konf.String("database.path")))
		},
	}

	//
	//
	serverCmd = &coral.Command{
		Use:   "server",
		Short: "Start server",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := konfiguration()
			if err != nil {
				return err
			}

			db, err := database.StormOpen(dbnameWithPath(konf.String("database.path")))
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			logger := logrus.New()

			smtp := mailer.NewSMTP(
				konf.String("smtp.host"),
				konf.Int("smtp.port"),
				konf.String("smtp.username"),
				konf.String("smtp.password"),
				konf.String("smtp.from"),
			)

			images, err := imagestore.NewCloudinary(konf.String("cloudinary.url"))
			if err != nil {
				return errors.Wrap(err, "could not configure image store")
			}

			dispatcher := notifier.New(db, smtp, konf.String("frontend.url"))

			rengine, err := retention.NewEngine(db, dispatcher, images, retentionConfig(konf), logger)
			if err != nil {
				return errors.Wrap(err, "could not configure retention engine")
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			crons := scheduler.New(rengine, db, scheduler.Config{
				SessionSweepSchedule: konf.String("schedules.session.sweep"),
				ItemWarnSchedule:     konf.String("schedules.item.warn"),
				ItemMarkSchedule:     konf.String("schedules.item.mark"),
				ItemPurgeSchedule:    konf.String("schedules.item.purge"),
				UserWarnSchedule:     konf.String("schedules.user.warn"),
				UserMarkSchedule:     konf.String("schedules.user.mark"),
				UserPurgeSchedule:    konf.String("schedules.user.purge"),
			}, logger)
			if err := crons.Start(ctx); err != nil {
				return errors.Wrap(err, "could not start scheduler")
			}
			defer crons.Stop()

			engine := server.EchoEngine(server.IOC{
				Version:                    version,
				Database:                   db,
				Notifier:                   dispatcher,
				Engine:                     rengine,
				NoRegistration:             konf.Bool("no_registration"),
				AccessTokenExpirationTime:  konf.MustDuration("session.access_token_ttl"),
				RefreshTokenExpirationTime: konf.MustDuration("session.refresh_token_ttl"),
			})
			server.PrintRoutes(engine)

			address := konf.String("address")
			message := "could not run server"
			log.Printf("Server listening on %s\n", address)
			parts := strings.Split(address, ":")
			if len(parts) == 2 && parts[0] == "unix" {
				socketFile := parts[1]
				if _, err := os.Stat(socketFile); err == nil {
					log.Printf("Removing existing %s\n", socketFile)
					os.Remove(socketFile)
				}
				defer os.Remove(socketFile)
				listener, err := net.Listen(parts[0], socketFile)
				if err != nil {
					return err
				}
				return errors.Wrap(engine.Server.Serve(listener), message)
			}
			return errors.Wrap(engine.Start(address), message)
		},
	}
)
