package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/tbx/internal/shared"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes a config file populated with defaults to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = defaultConfigPath
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	return r.writePlain("✓ Config written to %s\n", path)
}

// SetupDatabase initializes the run journal database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := r.journal()
	if err != nil {
		return err
	}

	version, err := shared.CurrentVersion(db)
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Journal ready at %s (schema version %d)\n", r.config.Database.Path, version)
}

// SetupAuth stores the session credentials of a browser request in a .env file.
//
// Accepts a cURL command copied from DevTools. Existing entries of the file are kept.
func (r *Runner) SetupAuth(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")
	envFile := cmd.String("env-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var curlHeaders *shared.CurlHeaders
	var err error

	if curlFile != "" {
		curlHeaders, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		curlHeaders, err = shared.ParseCurlCommand(curlCmd)
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	token, err := curlHeaders.Token()
	if err != nil {
		return err
	}

	env := map[string]string{}
	if _, err := os.Stat(envFile); err == nil {
		if env, err = godotenv.Read(envFile); err != nil {
			return fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}
	env["TBX_TOKEN"] = token
	env["TBX_COOKIE"] = curlHeaders.Cookie

	if err := godotenv.Write(env, envFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", envFile, err)
	}
	if err := os.Chmod(envFile, 0600); err != nil {
		r.logger.Warn("failed to restrict env file permissions", "path", envFile, "error", err)
	}

	r.logger.Info("session credentials saved", "path", envFile)

	r.writePlain("✓ Trello session credentials saved to %s\n", envFile)
	r.writePlain("Next steps:\n")
	r.writePlain("1. Keep %s out of version control, it grants access to your account\n", envFile)
	r.writePlain("2. Run 'tbx board show --board <id>' to test authentication\n")
	return nil
}
