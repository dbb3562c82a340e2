package app

import (
	"bitwise74/dashboard-api/aws"
	"bitwise74/dashboard-api/db"
	"bitwise74/dashboard-api/internal"
	"bitwise74/dashboard-api/internal/service"
	"bitwise74/dashboard-api/pkg/security"
	"bitwise74/dashboard-api/pkg/validators"
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// New builds every dependency from the loaded configuration, starts the
// background jobs and returns the router
func New(ctx context.Context) (*gin.Engine, error) {
	d := &internal.Deps{}

	if err := MakeLogger(viper.GetString("app.log_level")); err != nil {
		return nil, fmt.Errorf("failed to build logger, %w", err)
	}

	gdb, err := db.New(viper.GetString("db.driver"), viper.GetString("db.dsn"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	d.DB = gdb

	v, err := validators.New()
	if err != nil {
		return nil, fmt.Errorf("failed to compile request schemas, %w", err)
	}
	d.Validator = v

	hasher := security.NewHasher()
	d.Tokens = security.NewTokenCodec(viper.GetString("jwt.secret"), viper.GetDuration("jwt.expiry"))

	resetLink := viper.GetString("reset.link")

	var mailer service.Mailer = &service.LogMailer{LinkBase: resetLink}
	if viper.GetBool("mail.enabled") {
		mailer = &service.SMTPMailer{
			Host:     viper.GetString("mail.host"),
			Port:     viper.GetInt("mail.port"),
			From:     viper.GetString("mail.sender_address"),
			Password: viper.GetString("mail.password"),
			LinkBase: resetLink,
		}
	}

	d.Users = &service.Users{
		DB:       gdb,
		Hasher:   hasher,
		Tokens:   d.Tokens,
		Mailer:   mailer,
		ResetTTL: viper.GetDuration("reset.ttl"),
	}
	d.Sources = &service.Sources{DB: gdb}
	d.Dashboards = service.NewDashboards(gdb, hasher)
	d.Prober = service.NewProber(viper.GetDuration("probe.timeout"))

	if viper.GetBool("storage.enabled") {
		s3, err := aws.NewS3(ctx, aws.Options{
			Provider:        viper.GetString("storage.provider"),
			Bucket:          viper.GetString("storage.bucket"),
			Region:          viper.GetString("storage.region"),
			AccessKeyID:     viper.GetString("storage.access_key_id"),
			SecretAccessKey: viper.GetString("storage.secret_access_key"),
			AccountID:       viper.GetString("storage.account_id"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
		}

		d.Snapshots = s3
	} else {
		zap.L().Warn("Object storage is disabled, dashboard exports won't work")
	}

	// Unused reset tickets pile up otherwise
	service.TicketCleanup(viper.GetDuration("reset.cleanup_interval"), viper.GetDuration("reset.ttl"), gdb)

	return NewRouter(d, Options{
		AllowOrigins: corsOrigins(),
		RateLimit:    viper.GetInt("security.rate_limit"),
		BodyLimit:    viper.GetInt64("security.body_limit"),
	}), nil
}

// corsOrigins accepts both a TOML array and a comma separated env value
func corsOrigins() []string {
	var out []string

	for _, o := range viper.GetStringSlice("host.cors") {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}
