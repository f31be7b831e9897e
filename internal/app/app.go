package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"gorm.io/gorm"

	"async-standup/internal/config"
	"async-standup/internal/db"
	"async-standup/internal/domain/identity"
	"async-standup/internal/domain/social"
	"async-standup/internal/domain/standups"
	"async-standup/internal/domain/team"
	"async-standup/internal/mailer"
	"async-standup/internal/repository/inmemory"
	identityrepo "async-standup/internal/repository/postgres/identity"
	socialrepo "async-standup/internal/repository/postgres/social"
	standupsrepo "async-standup/internal/repository/postgres/standups"
	teamrepo "async-standup/internal/repository/postgres/team"
	"async-standup/internal/transport/httpserver"
	"async-standup/internal/transport/httpserver/handler"
	"async-standup/pkg/logger"
)

const sessionSecretBytes = 32

type App struct {
	cfg        config.Config
	log        logger.Logger
	httpServer *http.Server
	db         *gorm.DB
	sentry     bool
}

type repositories struct {
	identity identity.Repository
	team     team.Repository
	standups standups.Repository
	social   social.Repository
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log}

	if cfg.SentryDSN != "" {
		log.Info("app: initializing sentry")
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Env,
			AttachStacktrace: true,
		}); err != nil {
			log.Error("app: sentry init failed", "err", err)
		} else {
			a.sentry = true
		}
	}

	log.Info("app: initializing storage", "driver", cfg.StorageDriver)
	repos, err := a.openStorage()
	if err != nil {
		return nil, err
	}

	secret := cfg.Session.Secret
	if secret == "" {
		secret, err = identity.GenerateToken(sessionSecretBytes)
		if err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		log.Warn("app: SESSION_SECRET is empty, sessions will not survive a restart")
	}

	identities := identity.NewService(repos.identity, []byte(secret), cfg.Session.TTL)
	members := team.NewService(repos.team, a.newNotifier(), log)
	standupsService := standups.NewService(repos.standups)
	socialService := social.NewService(repos.social)

	if err := a.bootstrap(identities); err != nil {
		return nil, err
	}

	log.Info("app: initializing router")
	handlers := handler.New(identities, members, standupsService, socialService, cfg.Session, log)
	router := httpserver.NewRouter(cfg, handlers, log)

	log.Info("app: initializing http server")
	a.httpServer = httpserver.New(cfg, router)

	return a, nil
}

func (a *App) openStorage() (repositories, error) {
	if a.cfg.StorageDriver == config.StorageDriverMemory {
		a.log.Warn("app: using in-memory storage, data is lost on restart")
		store := inmemory.NewStore()
		return repositories{
			identity: store.Identity(),
			team:     store.Team(),
			standups: store.Standups(),
			social:   store.Social(),
		}, nil
	}

	dbConn, err := db.Open(a.cfg.StorageDriver, a.cfg.DB, a.log)
	if err != nil {
		return repositories{}, err
	}
	a.db = dbConn

	if err := db.Migrate(dbConn, a.cfg.StorageDriver, a.log); err != nil {
		return repositories{}, err
	}

	return repositories{
		identity: identityrepo.NewPostgres(dbConn),
		team:     teamrepo.NewPostgres(dbConn),
		standups: standupsrepo.NewPostgres(dbConn),
		social:   socialrepo.NewPostgres(dbConn),
	}, nil
}

func (a *App) newNotifier() team.Notifier {
	if a.cfg.Mail.SendGridAPIKey == "" {
		a.log.Warn("app: SENDGRID_API_KEY is empty, activation links are logged instead of mailed")
		return mailer.NewLogMailer(a.cfg.Mail.BaseURL, a.log)
	}
	return mailer.NewSendGrid(a.cfg.Mail, a.log)
}

func (a *App) bootstrap(identities *identity.Service) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.cfg.Admin.Username != "" && a.cfg.Admin.Password != "" {
		created, err := identities.EnsureAdmin(ctx, a.cfg.Admin.Username, a.cfg.Admin.Password)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		if created {
			a.log.Info("app: bootstrap admin created", "username", a.cfg.Admin.Username)
		}
	}

	purged, err := identities.PurgeExpiredSessions(ctx)
	if err != nil {
		return fmt.Errorf("purge expired sessions: %w", err)
	}
	if purged > 0 {
		a.log.Info("app: expired sessions purged", "count", purged)
	}
	return nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.sentry {
		sentry.Flush(2 * time.Second)
	}
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
