package main

import (
	"context"

	"github.com/phrazzld/paramstore/internal/service/auth"
)

func runToken(ctx context.Context, c *cli, args []string) error {
	var (
		configPath string
		subject    string
	)
	fs := c.flagSet("token", &configPath)
	fs.StringVar(&subject, "subject", "", "operator the token is issued to")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if subject == "" {
		return usageError("token needs --subject")
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, c.stderr)
	if err != nil {
		return err
	}
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return err
	}
	token, err := jwtService.GenerateToken(ctx, subject)
	if err != nil {
		return err
	}
	log.Info("admin token issued", "subject", subject, "lifetime", jwtService.TokenLifetime().String())
	c.printf("%s\n", token)
	return nil
}
