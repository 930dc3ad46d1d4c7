package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/mogaika/m3_browser/config"
)

func main() {
	var configPath, encoding, textureDir string

	app := &cli.Command{
		Name:  "m3tool",
		Usage: "Inspect and convert M3 models",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "yaml config file", Destination: &configPath},
			&cli.StringFlag{Name: "encoding", Usage: "charmap of model strings", Destination: &encoding},
			&cli.StringFlag{Name: "textures", Usage: "folder texture paths are resolved against", Destination: &textureDir},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			var cfg config.Config
			if configPath != "" {
				var err error
				if cfg, err = config.Load(configPath); err != nil {
					return ctx, err
				}
			}
			if textureDir != "" {
				cfg.TextureDir = textureDir
			}
			return ctx, cfg.Resolve(config.Flags{Encoding: encoding})
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			infoCmd(),
			dumpCmd(),
			exportCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
