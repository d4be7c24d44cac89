// Command fastrackplan runs the graph dynamic planner against the
// point-mass example space from a JSON configuration file.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/urfave/cli/v2"

	"go.viam.com/fastrack/fastrackcfg"
	"go.viam.com/fastrack/graphplanner"
	"go.viam.com/fastrack/logging"
	"go.viam.com/fastrack/pointmass"
	"go.viam.com/fastrack/subplanner"
)

func main() {
	app := &cli.App{
		Name:  "fastrackplan",
		Usage: "run fastrack's graph dynamic planner against the point-mass example",
		Commands: []*cli.Command{
			{
				Name:  "plan",
				Usage: "plan a trajectory between two point-mass states and print it as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Required: true, Usage: "path to a fastrack JSON config"},
					&cli.StringFlag{Name: "start", Usage: "start position as x,y,z (defaults to origin)"},
					&cli.StringFlag{Name: "goal", Required: true, Usage: "goal position as x,y,z"},
				},
				Action: runPlan,
			},
			{
				Name:  "version",
				Usage: "print the fastrackplan version",
				Action: func(c *cli.Context) error {
					fmt.Println("fastrackplan dev")
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "fastrackplan:", err)
		os.Exit(1)
	}
}

func runPlan(c *cli.Context) error {
	logger := logging.NewLogger("fastrackplan")

	cfg, err := fastrackcfg.Load(c.String("config"))
	if err != nil {
		return err
	}

	space := &pointmass.Space{
		PositionMin: r3.Vector{X: -50, Y: -50, Z: -50},
		PositionMax: r3.Vector{X: 50, Y: 50, Z: 50},
		VelocityMin: r3.Vector{X: -5, Y: -5, Z: -5},
		VelocityMax: r3.Vector{X: 5, Y: 5, Z: 5},
	}

	sp := subplanner.WithBudget[pointmass.State]{
		Inner:  subplanner.StraightLine[pointmass.State]{Space: space, Speed: 1, Steps: 10, Logger: logger},
		Budget: cfg.MaxRuntime,
	}

	planner := graphplanner.New[pointmass.State](space, sp, graphplanner.DurationCost[pointmass.State], graphplanner.Options{
		NumNeighbors: cfg.NumNeighbors,
		SearchRadius: cfg.SearchRadius,
		MaxRuntime:   cfg.MaxRuntime,
	}, logger)

	start, err := parsePosition(c.String("start"))
	if err != nil {
		return err
	}
	goal, err := parsePosition(c.String("goal"))
	if err != nil {
		return err
	}

	traj, err := planner.Plan(context.Background(), start, goal, 0)
	if err != nil {
		return err
	}
	if traj.Empty() {
		return fmt.Errorf("no feasible trajectory found within %s", cfg.MaxRuntime)
	}

	out, err := json.MarshalIndent(traj, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func parsePosition(s string) (pointmass.State, error) {
	if s == "" {
		return pointmass.State{}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return pointmass.State{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return pointmass.State{}, fmt.Errorf("parsing %q: %w", p, err)
		}
		v[i] = f
	}
	return pointmass.State{Position: r3.Vector{X: v[0], Y: v[1], Z: v[2]}}, nil
}
