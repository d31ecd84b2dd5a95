package main

import (
	"context"
	"fmt"
	"os"

	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"github.com/urfave/cli/v2"

	"github.com/hearthbooks/hearth/pkg/config"
	"github.com/hearthbooks/hearth/pkg/database"
	"github.com/hearthbooks/hearth/pkg/itemstore"
	"github.com/hearthbooks/hearth/pkg/library"
	"github.com/hearthbooks/hearth/pkg/models"
	"github.com/hearthbooks/hearth/pkg/scanner"
	"github.com/hearthbooks/hearth/pkg/settings"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	app := &cli.App{
		Name:        "hearthctl",
		Usage:       "CLI to interact with a hearth library database",
		Description: "CLI to interact with a hearth library database",
		Commands: []*cli.Command{
			{
				Name:  "create-library",
				Usage: "create a library watching one or more folders",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "media-type", Value: "book"},
					&cli.StringSliceFlag{Name: "folder", Required: true},
				},
				Action: func(c *cli.Context) error {
					svc, err := newServices(cfg)
					if err != nil {
						return err
					}

					lib := models.NewLibrary(c.String("name"), c.String("media-type"), c.StringSlice("folder"))
					if err := svc.store.SaveLibrary(c.Context, lib); err != nil {
						return err
					}
					fmt.Printf("Created library %s\n", lib.ID)
					return nil
				},
			},
			{
				Name:  "scan",
				Usage: "scan a library synchronously",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "library", Required: true},
				},
				Action: func(c *cli.Context) error {
					svc, err := newServices(cfg)
					if err != nil {
						return err
					}

					ctx := log.WithContext(c.Context)
					lib, err := svc.store.RetrieveLibrary(ctx, c.String("library"))
					if err != nil {
						return err
					}

					summary, err := svc.library.ScanLibrary(ctx, lib)
					if err != nil {
						return err
					}
					return printJSON(summary)
				},
			},
			{
				Name:      "parse",
				Usage:     "show what a relative item directory path parses into",
				ArgsUsage: "<relative path>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "subtitles", Usage: "split subtitles on \" - \""},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("expected exactly one relative path", 1)
					}
					parsed := scanner.ParseMediaDir("", c.Args().First(), c.Bool("subtitles"))
					return printJSON(parsed.Metadata)
				},
			},
			{
				Name:  "list-items",
				Usage: "list the items of a library",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "library", Required: true},
				},
				Action: func(c *cli.Context) error {
					svc, err := newServices(cfg)
					if err != nil {
						return err
					}

					items, err := svc.store.ListItemsByLibrary(c.Context, c.String("library"))
					if err != nil {
						return err
					}
					for _, item := range items {
						if err := printJSON(item.ToSummary()); err != nil {
							return err
						}
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("command failed")
	}
}

type services struct {
	store   *itemstore.Service
	library *library.Service
}

func newServices(cfg *config.Config) (*services, error) {
	db, err := database.New(cfg)
	if err != nil {
		return nil, err
	}

	store := itemstore.New(db)
	if err := store.Init(context.Background()); err != nil {
		return nil, err
	}

	settingsService, err := settings.Load(cfg.SettingsFilePath)
	if err != nil {
		return nil, err
	}

	return &services{
		store:   store,
		library: library.New(store, scanner.New(), settingsService, nil),
	}, nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
