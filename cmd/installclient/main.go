package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/quillpress/quillpress/httpserver"
)

var flags []cli.Flag = []cli.Flag{
	&cli.StringFlag{
		Name:  "server-addr",
		Value: "http://127.0.0.1:8080",
		Usage: "installation server address to request",
	},
	&cli.StringFlag{
		Name:     "name",
		Required: true,
		Usage:    "display name of the owner account",
	},
	&cli.StringFlag{
		Name:     "email",
		Required: true,
		Usage:    "email address of the owner account",
	},
	&cli.StringFlag{
		Name:     "username",
		Required: true,
		Usage:    "username of the owner account, normalized to a slug",
	},
	&cli.StringFlag{
		Name:     "password",
		Required: true,
		Usage:    "password of the owner account, at least 8 characters",
	},
	&cli.StringFlag{
		Name:  "driver",
		Value: "sqlite",
		Usage: "database driver: 'sqlite' or 'postgres'",
	},
	&cli.StringFlag{
		Name:  "db-host",
		Usage: "database host",
	},
	&cli.StringFlag{
		Name:  "db-port",
		Usage: "database port",
	},
	&cli.StringFlag{
		Name:     "db-database",
		Required: true,
		Usage:    "database name, or file path for the sqlite driver",
	},
	&cli.StringFlag{
		Name:  "db-user",
		Usage: "database user",
	},
	&cli.StringFlag{
		Name:  "db-password",
		Usage: "database password",
	},
	&cli.StringFlag{
		Name:  "db-prefix",
		Usage: "table name prefix",
	},
}

func main() {
	app := &cli.App{
		Name:  "quillpress-install-client",
		Usage: "Run the installation workflow against a Quillpress installation server",
		Flags: flags,
		Action: func(cCtx *cli.Context) error {
			return runInstall(cCtx)
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runInstall(cCtx *cli.Context) error {
	form := url.Values{}
	form.Set("cmd", "install")
	for _, field := range []string{
		"name", "email", "username", "password",
		"driver", "db-host", "db-port", "db-database",
		"db-user", "db-password", "db-prefix",
	} {
		if v := cCtx.String(field); v != "" {
			form.Set(field, v)
		}
	}

	endpoint := strings.TrimRight(cCtx.String("server-addr"), "/") + "/api/install"
	resp, err := http.Post(endpoint, "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("install request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read install response: %w", err)
	}

	var parsed httpserver.InstallResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("unexpected install response (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	encodedResp, _ := json.Marshal(parsed)
	fmt.Println(string(encodedResp))

	if !parsed.Success {
		return fmt.Errorf("installation failed: %s", parsed.Message)
	}

	fmt.Println("installation successful, admin panel at", parsed.Redirect)
	return nil
}
