package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/config"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/drive"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/ingest"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/mapping"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/service"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/storage"
	"github.com/urfave/cli/v2"
)

const dateFlagLayout = "2006-01-02"

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Load orders, unify, analyze, forecast and save",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Usage: "Order history workbook (.xlsx)"},
			&cli.StringFlag{Name: "drive-file", Usage: "Google Drive file ID of the order workbook"},
		},
		Action: func(c *cli.Context) error {
			summary, err := runFlow(c)
			if err != nil {
				return err
			}
			fmt.Printf("Unified %d products from %d order lines.\n", summary.Products, summary.Lines)
			fmt.Printf("Generated %d forecasts for %s - %s.\n",
				summary.Forecasts, summary.Start.Format(displayDate), summary.End.Format(displayDate))
			return nil
		},
	}
}

// runFlow runs the full flow from --file or --drive-file.
func runFlow(c *cli.Context) (service.RunSummary, error) {
	a := appFrom(c)

	switch {
	case c.String("drive-file") != "":
		files, err := a.Drive(c.Context)
		if err != nil {
			return service.RunSummary{}, err
		}
		src := drive.NewOrderSource(files, ingest.NewExcelIngester())
		return a.WithSource(src).Run(c.Context, c.String("drive-file"))
	case c.String("file") != "":
		return a.Forecasts.Run(c.Context, c.String("file"))
	default:
		return service.RunSummary{}, fmt.Errorf("either --file or --drive-file is required")
	}
}

func forecastCommand() *cli.Command {
	return &cli.Command{
		Name:  "forecast",
		Usage: "Print the saved forecasts",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "min-confidence", Usage: "Hide forecasts below this confidence (default: settings)", Value: -1},
		},
		Action: func(c *cli.Context) error {
			a := appFrom(c)
			threshold := c.Float64("min-confidence")
			if threshold < 0 {
				threshold = a.Settings.MinConfidenceThreshold
			}
			printForecasts(os.Stdout, a.Forecasts.Forecasts(c.Context, threshold))
			return nil
		},
	}
}

func recommendCommand() *cli.Command {
	return &cli.Command{
		Name:  "recommend",
		Usage: "Run the flow and print order recommendations for a period",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Usage: "Order history workbook (.xlsx)", Required: true},
			&cli.StringFlag{Name: "start", Usage: "Period start, YYYY-MM-DD (default: today)"},
			&cli.StringFlag{Name: "end", Usage: "Period end, YYYY-MM-DD (default: start + DaysAhead)"},
		},
		Action: func(c *cli.Context) error {
			a := appFrom(c)
			if _, err := a.Forecasts.Run(c.Context, c.String("file")); err != nil {
				return err
			}

			start, end := a.Forecasts.DefaultWindow()
			var err error
			if v := c.String("start"); v != "" {
				if start, err = time.ParseInLocation(dateFlagLayout, v, time.Local); err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
				end = start.AddDate(0, 0, a.Settings.DaysAhead)
			}
			if v := c.String("end"); v != "" {
				if end, err = time.ParseInLocation(dateFlagLayout, v, time.Local); err != nil {
					return fmt.Errorf("invalid --end: %w", err)
				}
				end = end.Add(24*time.Hour - time.Nanosecond)
			}

			printForecasts(os.Stdout, a.Forecasts.Recommendations(start, end))
			return nil
		},
	}
}

func batchesCommand() *cli.Command {
	return &cli.Command{
		Name:  "batches",
		Usage: "Print saved forecasts grouped into order batches",
		Action: func(c *cli.Context) error {
			printBatches(os.Stdout, appFrom(c).Forecasts.Batches())
			return nil
		},
	}
}

func calendarCommand() *cli.Command {
	return &cli.Command{
		Name:  "calendar",
		Usage: "Print saved forecasts by placement day",
		Action: func(c *cli.Context) error {
			printCalendar(os.Stdout, appFrom(c).Forecasts.Calendar())
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the order table workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "Output path (default: export dir)"},
			&cli.BoolFlag{Name: "upload", Usage: "Also upload the workbook to object storage"},
		},
		Action: func(c *cli.Context) error {
			a := appFrom(c)
			out := c.String("out")
			if out == "" {
				out = filepath.Join(a.Config.App.ExportDir, fmt.Sprintf("order_table_%s.xlsx", time.Now().Format("20060102_150405")))
			}

			key, err := a.Forecasts.ExportFile(c.Context, out, c.Bool("upload"))
			if err != nil {
				return err
			}
			fmt.Printf("Order table written to %s\n", out)
			if key != "" {
				fmt.Printf("Uploaded as %s\n", key)
			}
			return nil
		},
	}
}

func mappingCommand() *cli.Command {
	idFlag := &cli.StringFlag{Name: "id", Usage: "Group ID", Required: true}
	nameFlag := &cli.StringFlag{Name: "name", Usage: "Group name", Required: true}

	return &cli.Command{
		Name:  "mapping",
		Usage: "Edit the mapping database",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List mapping groups",
				Action: func(c *cli.Context) error {
					printGroups(os.Stdout, appFrom(c).Mappings.Groups())
					return nil
				},
			},
			{
				Name:  "add",
				Usage: "Add an empty group",
				Flags: []cli.Flag{nameFlag},
				Action: func(c *cli.Context) error {
					g, err := appFrom(c).Mappings.AddGroup(c.Context, c.String("name"))
					if err != nil {
						return err
					}
					fmt.Printf("Added group %s (%s)\n", g.Name, g.ID)
					return nil
				},
			},
			{
				Name:  "rename",
				Usage: "Rename a group",
				Flags: []cli.Flag{idFlag, nameFlag},
				Action: func(c *cli.Context) error {
					return appFrom(c).Mappings.RenameGroup(c.Context, c.String("id"), c.String("name"))
				},
			},
			{
				Name:  "update",
				Usage: "Set the unified article or primary name of a group",
				Flags: []cli.Flag{
					idFlag,
					&cli.StringFlag{Name: "article", Usage: "Unified article"},
					&cli.StringFlag{Name: "primary-name", Usage: "Primary name"},
				},
				Action: func(c *cli.Context) error {
					var u mapping.GroupUpdate
					if c.IsSet("article") {
						v := c.String("article")
						u.UnifiedArticle = &v
					}
					if c.IsSet("primary-name") {
						v := c.String("primary-name")
						u.PrimaryName = &v
					}
					_, err := appFrom(c).Mappings.UpdateGroup(c.Context, c.String("id"), u)
					return err
				},
			},
			{
				Name:  "delete",
				Usage: "Delete a group",
				Flags: []cli.Flag{idFlag},
				Action: func(c *cli.Context) error {
					return appFrom(c).Mappings.DeleteGroup(c.Context, c.String("id"))
				},
			},
			{
				Name:  "import",
				Usage: "Rebuild the database from the saved product mapping",
				Action: func(c *cli.Context) error {
					a := appFrom(c)
					groups, err := a.Mappings.Import(c.Context, a.Forecasts.Products())
					if err != nil {
						return err
					}
					fmt.Printf("Imported %d groups\n", len(groups))
					return nil
				},
			},
		},
	}
}

func settingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or create the forecast settings file",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the active settings",
				Action: func(c *cli.Context) error {
					printSettings(os.Stdout, appFrom(c).Settings)
					return nil
				},
			},
			{
				Name:  "init",
				Usage: "Write the default settings file",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
				},
				Action: func(c *cli.Context) error {
					path := appFrom(c).Config.App.SettingsFile
					if _, err := os.Stat(path); err == nil && !c.Bool("force") {
						return fmt.Errorf("%s already exists, use --force to overwrite", path)
					}
					if err := config.SaveSettings(path, config.DefaultForecastSettings()); err != nil {
						return err
					}
					fmt.Printf("Default settings written to %s\n", path)
					return nil
				},
			},
		},
	}
}

func fetchCommand() *cli.Command {
	outFlag := &cli.StringFlag{Name: "out", Usage: "Download directory (default: APP_DOWNLOAD_DIR)"}

	return &cli.Command{
		Name:  "fetch",
		Usage: "Download order workbooks",
		Subcommands: []*cli.Command{
			{
				Name:  "drive",
				Usage: "Download workbooks from a Google Drive folder",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "folder", Usage: "Folder ID (default: DRIVE_FOLDER_ID)"},
					&cli.StringFlag{Name: "path", Usage: "Folder path below My Drive, instead of an ID"},
					outFlag,
				},
				Action: func(c *cli.Context) error {
					a := appFrom(c)
					files, err := a.Drive(c.Context)
					if err != nil {
						return err
					}

					folderID := c.String("folder")
					if folderID == "" {
						folderID = a.Config.Drive.FolderID
					}
					if p := c.String("path"); p != "" {
						if folderID, err = files.FindFolderByPath(c.Context, p); err != nil {
							return err
						}
					}

					paths, err := drive.NewDownloader(files).DownloadWorkbooks(c.Context, drive.DownloadOptions{
						FolderID:    folderID,
						DownloadDir: downloadDir(c),
					})
					if err != nil {
						return err
					}
					printPaths(os.Stdout, paths)
					return nil
				},
			},
			{
				Name:  "s3",
				Usage: "Download workbooks from object storage",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "prefix", Usage: "Object key prefix (default: STORAGE_SOURCE_PREFIX)"},
					outFlag,
				},
				Action: func(c *cli.Context) error {
					a := appFrom(c)
					if a.Storage == nil {
						return fmt.Errorf("object storage is not enabled")
					}

					prefix := c.String("prefix")
					if prefix == "" {
						prefix = a.Config.Storage.SourcePrefix
					}
					paths, err := storage.DownloadWorkbooks(c.Context, a.Storage, prefix, downloadDir(c))
					if err != nil {
						return err
					}
					printPaths(os.Stdout, paths)
					return nil
				},
			},
		},
	}
}

func downloadDir(c *cli.Context) string {
	if dir := c.String("out"); dir != "" {
		return dir
	}
	return appFrom(c).Config.App.DownloadDir
}
