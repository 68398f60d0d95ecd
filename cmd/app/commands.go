package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/starford/ncdash/internal"
	"github.com/starford/ncdash/internal/dashboard"
	"github.com/starford/ncdash/internal/mcpserver"
	"github.com/starford/ncdash/internal/models"
)

// withService loads the config, builds the components with logs on stderr
// and hands the service to fn.
func withService(cmd *cli.Command, fn func(svc *dashboard.Service) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	comps, err := internal.Build(cfg, internal.NewLogger(cfg, os.Stderr))
	if err != nil {
		return err
	}
	defer comps.Close()
	return fn(comps.Service)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeImage writes the bytes behind res to path, or prints the reference
// when path is empty.
func writeImage(svc *dashboard.Service, res *dashboard.PlotResult, path string) error {
	if path == "" {
		return printJSON(res)
	}
	data, err := svc.ImageBytes(res.Ref)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "%s -> %s (cached: %t)\n", res.Key, path, res.Cached)
	return nil
}

func plotFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "dataset", Aliases: []string{"d"}, Usage: "Dataset id", Required: true},
		&cli.StringFlag{Name: "variable", Aliases: []string{"v"}, Usage: "Variable name", Required: true},
		&cli.IntFlag{Name: "depth", Usage: "Depth index"},
		&cli.IntFlag{Name: "time", Usage: "Time index"},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the image to this file"},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the dashboard tools over MCP on stdio",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withService(cmd, func(svc *dashboard.Service) error {
				return mcpserver.New(svc).ServeStdio()
			})
		},
	}
}

func datasetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "datasets",
		Usage: "List the datasets known to the backend",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withService(cmd, func(svc *dashboard.Service) error {
				list, err := svc.FetchDataSets(ctx)
				if err != nil {
					return err
				}
				return printJSON(list)
			})
		},
	}
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show the dimensions and variables of a dataset",
		ArgsUsage: "<dataset-id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return fmt.Errorf("dataset id is required")
			}
			return withService(cmd, func(svc *dashboard.Service) error {
				ds, err := svc.EnsureInfo(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(ds.Info)
			})
		},
	}
}

func plotCommand() *cli.Command {
	flags := append(plotFlags(),
		&cli.StringFlag{Name: "dimension", Usage: "4d, 3d or 1d", Value: string(models.Dim4D)},
	)
	return &cli.Command{
		Name:  "plot",
		Usage: "Render one image of a variable",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withService(cmd, func(svc *dashboard.Service) error {
				p := dashboard.PlotParams{
					Dataset:    cmd.String("dataset"),
					Variable:   cmd.String("variable"),
					Dimension:  models.Dimension(cmd.String("dimension")),
					DepthIndex: int(cmd.Int("depth")),
					TimeIndex:  int(cmd.Int("time")),
				}
				if _, err := svc.EnsureInfo(ctx, p.Dataset); err != nil {
					return err
				}
				res, err := svc.GeneratePlot(ctx, p)
				if err != nil {
					return err
				}
				return writeImage(svc, res, cmd.String("out"))
			})
		},
	}
}

func transectCommand() *cli.Command {
	flags := append(plotFlags(),
		&cli.FloatFlag{Name: "start-lat", Required: true},
		&cli.FloatFlag{Name: "start-lon", Required: true},
		&cli.FloatFlag{Name: "end-lat", Required: true},
		&cli.FloatFlag{Name: "end-lon", Required: true},
		&cli.BoolFlag{Name: "invert", Usage: "Flip the depth axis"},
	)
	return &cli.Command{
		Name:  "transect",
		Usage: "Render a vertical section between two points",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withService(cmd, func(svc *dashboard.Service) error {
				res, err := svc.GenerateTransect(ctx, dashboard.TransectParams{
					Dataset:  cmd.String("dataset"),
					Variable: cmd.String("variable"),
					Points: [][2]float64{
						{cmd.Float("start-lat"), cmd.Float("start-lon")},
						{cmd.Float("end-lat"), cmd.Float("end-lon")},
					},
					DepthIndex:  int(cmd.Int("depth")),
					TimeIndex:   int(cmd.Int("time")),
					InvertYAxis: cmd.Bool("invert"),
				})
				if err != nil {
					return err
				}
				return writeImage(svc, res, cmd.String("out"))
			})
		},
	}
}

func sessionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "sessions",
		Usage: "List sessions, or create one with --create",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "create", Usage: "Create a session"},
			&cli.StringFlag{Name: "dataset", Aliases: []string{"d"}, Usage: "Dataset of the new session"},
			&cli.StringFlag{Name: "parent", Usage: "Parent session id"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withService(cmd, func(svc *dashboard.Service) error {
				if !cmd.Bool("create") {
					list, err := svc.ListSessions(ctx)
					if err != nil {
						return err
					}
					return printJSON(list)
				}
				sess, err := svc.CreateSession(ctx, cmd.String("dataset"), cmd.String("parent"))
				if err != nil {
					return err
				}
				return printJSON(sess)
			})
		},
	}
}

func animateCommand() *cli.Command {
	flags := append(plotFlags()[:4],
		&cli.StringFlag{Name: "axis", Usage: "time or depth", Value: string(dashboard.AxisTime)},
		&cli.DurationFlag{Name: "interval", Usage: "Frame interval", Value: dashboard.DefaultFrameInterval},
	)
	return &cli.Command{
		Name:  "animate",
		Usage: "Render every frame along the time or depth axis",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withService(cmd, func(svc *dashboard.Service) error {
				return animate(ctx, cmd, svc)
			})
		},
	}
}

func animate(ctx context.Context, cmd *cli.Command, svc *dashboard.Service) error {
	axis := dashboard.Axis(cmd.String("axis"))
	base := dashboard.PlotParams{
		Dataset:    cmd.String("dataset"),
		Variable:   cmd.String("variable"),
		DepthIndex: int(cmd.Int("depth")),
		TimeIndex:  int(cmd.Int("time")),
	}
	ds, err := svc.EnsureInfo(ctx, base.Dataset)
	if err != nil {
		return err
	}

	var (
		anim     *dashboard.Animator
		frameErr error
	)
	frame := func(ctx context.Context, index int) {
		p := base
		if axis == dashboard.AxisDepth {
			p.DepthIndex = index
		} else {
			p.TimeIndex = index
		}
		res, err := svc.GeneratePlot(ctx, p)
		if err != nil {
			frameErr = err
			anim.Pause()
			return
		}
		_ = printJSON(map[string]any{"index": index, "key": res.Key, "ref": res.Ref, "cached": res.Cached})
	}

	anim, err = dashboard.NewAnimator(axis, ds.Info.Dims[string(axis)], cmd.Duration("interval"), frame)
	if err != nil {
		return err
	}
	frame(ctx, anim.Index())
	if frameErr != nil {
		return frameErr
	}
	<-anim.Play(ctx)
	if frameErr != nil {
		return frameErr
	}
	return ctx.Err()
}

func imagesCommand() *cli.Command {
	return &cli.Command{
		Name:  "images",
		Usage: "List catalogued images of a dataset, or search them with --query",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dataset", Aliases: []string{"d"}, Usage: "Dataset id"},
			&cli.StringFlag{Name: "variable", Aliases: []string{"v"}, Usage: "Variable name"},
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Search dataset ids, variables and keys"},
			&cli.IntFlag{Name: "limit", Usage: "Max search results", Value: 20},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withService(cmd, func(svc *dashboard.Service) error {
				var (
					recs []dashboard.ImageRecord
					err  error
				)
				if q := cmd.String("query"); q != "" {
					recs, err = svc.SearchImages(q, int(cmd.Int("limit")))
				} else {
					recs, err = svc.ImageHistory(cmd.String("dataset"), cmd.String("variable"))
				}
				if err != nil {
					return err
				}
				return printJSON(recs)
			})
		},
	}
}
