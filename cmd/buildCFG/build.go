package buildCFG

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"

	"eventsphere/internal/handler"
	"eventsphere/internal/mailer"
	"eventsphere/internal/service"
)

const (
	defaultPort          = "8080"
	defaultMigrationsDir = "migrations/postgres"
	defaultScanTTL       = 30 * time.Minute
	defaultSweepInterval = time.Minute
)

type ServerConfig struct {
	Port string
}

type RabbitConfig struct {
	Enabled  bool
	Url      string
	Exchange string
	Queue    string
}

type PostgresExtras struct {
	MigrationsDir      string
	RollbackOnShutdown bool
}

type AuthConfig struct {
	Secret string
	TTL    time.Duration
	Cookie handler.CookieConfig
}

type ScannerConfig struct {
	SessionTTL    time.Duration
	Cooldown      time.Duration
	SweepInterval time.Duration
}

func BuildServerConfig(cfg *config.Config, log *zerolog.Logger) ServerConfig {
	port := cfg.GetString("server.port")
	if port == "" {
		log.Warn().Msgf("server.port not set, using %s", defaultPort)
		port = defaultPort
	}
	return ServerConfig{Port: port}
}

func BuildDBConfig(cfg *config.Config, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	master := cfg.GetString("postgres.master_dsn")
	if master == "" {
		return "", nil, nil, fmt.Errorf("postgres.master_dsn is required")
	}
	slaves := cfg.GetStringSlice("postgres.slave_dsns")

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.GetInt("postgres.max_open_conns"),
		MaxIdleConns:    cfg.GetInt("postgres.max_idle_conns"),
		ConnMaxLifetime: cfg.GetDuration("postgres.conn_max_lifetime"),
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 5
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = 30 * time.Minute
	}
	log.Info().Int("slaves", len(slaves)).Int("max_open_conns", opts.MaxOpenConns).Msg("database config loaded")
	return master, slaves, opts, nil
}

func BuildPostgresExtras(cfg *config.Config) PostgresExtras {
	dir := cfg.GetString("postgres.migrations_dir")
	if dir == "" {
		dir = defaultMigrationsDir
	}
	return PostgresExtras{
		MigrationsDir:      dir,
		RollbackOnShutdown: cfg.GetBool("postgres.rollback_on_shutdown"),
	}
}

func BuildRabbitConfig(cfg *config.Config, log *zerolog.Logger) (RabbitConfig, error) {
	rc := RabbitConfig{
		Enabled:  cfg.GetBool("rabbitmq.enabled"),
		Url:      cfg.GetString("rabbitmq.url"),
		Exchange: cfg.GetString("rabbitmq.exchange"),
		Queue:    cfg.GetString("rabbitmq.queue"),
	}
	if !rc.Enabled {
		log.Warn().Msg("rabbitmq disabled, notifications will not be sent")
		return rc, nil
	}
	if rc.Url == "" || rc.Exchange == "" || rc.Queue == "" {
		return rc, fmt.Errorf("rabbitmq.url, rabbitmq.exchange and rabbitmq.queue are required")
	}
	return rc, nil
}

func BuildAuthConfig(cfg *config.Config) (AuthConfig, error) {
	ac := AuthConfig{
		Secret: cfg.GetString("auth.jwt_secret"),
		TTL:    cfg.GetDuration("auth.token_ttl"),
		Cookie: handler.CookieConfig{
			Secure: cfg.GetBool("auth.secure_cookie"),
			Domain: cfg.GetString("auth.cookie_domain"),
		},
	}
	if ac.Secret == "" {
		return ac, fmt.Errorf("auth.jwt_secret is required")
	}
	return ac, nil
}

func BuildMailerConfig(cfg *config.Config) mailer.Config {
	return mailer.Config{
		Enabled:  cfg.GetBool("mailer.enabled"),
		Host:     cfg.GetString("mailer.host"),
		Port:     cfg.GetInt("mailer.port"),
		Username: cfg.GetString("mailer.username"),
		Password: cfg.GetString("mailer.password"),
		From:     cfg.GetString("mailer.from"),
	}
}

func BuildScannerConfig(cfg *config.Config) ScannerConfig {
	sc := ScannerConfig{
		SessionTTL:    cfg.GetDuration("scanner.session_ttl"),
		Cooldown:      cfg.GetDuration("scanner.cooldown"),
		SweepInterval: cfg.GetDuration("scanner.sweep_interval"),
	}
	if sc.SessionTTL <= 0 {
		sc.SessionTTL = defaultScanTTL
	}
	if sc.Cooldown <= 0 {
		sc.Cooldown = -1 // registry default
	}
	if sc.SweepInterval <= 0 {
		sc.SweepInterval = defaultSweepInterval
	}
	return sc
}

func BuildServiceOptions(cfg *config.Config) service.Options {
	return service.Options{
		TicketAttempts: cfg.GetInt("registration.ticket_attempts"),
		ReminderLead:   cfg.GetDuration("registration.reminder_lead"),
		QRSize:         cfg.GetInt("registration.qr_size"),
	}
}
