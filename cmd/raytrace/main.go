// Command raytrace drives the recirculation-surface raytracer through a
// fixed sequence of passes (base render, optional refinement, optional
// shading) against one of the two built-in scenarios. Per spec.md §6, the
// core exposes a library API; this is the example driver, rewritten onto
// cobra per SPEC_FULL.md's CLI section (the teacher's stdlib flag.Parse()
// surface, pkg/renderer's per-scene switch, and timing/stats printfs
// inform this structure, see DESIGN.md).
package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dstelter/rsraytracer/pkg/config"
	"github.com/dstelter/rsraytracer/pkg/core"
	"github.com/dstelter/rsraytracer/pkg/render"
	"github.com/dstelter/rsraytracer/pkg/scenegeo"
	"github.com/dstelter/rsraytracer/pkg/shader"
)

type runConfig struct {
	scenario      string
	flowFile      string
	resMultiplier int
	outDir        string
	numWorkers    int
	refine        int
	normals       string
	shadows       bool
	sharpen       bool
	verbose       bool
}

func main() {
	cfg := &runConfig{}
	root := newRootCommand(cfg)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(cfg *runConfig) *cobra.Command {
	root := &cobra.Command{
		Use:   "raytrace",
		Short: "Render recirculation surfaces of a 3D time-dependent flow",
	}
	root.PersistentFlags().StringVar(&cfg.outDir, "out", "output/run", "directory to save progress and output textures to")
	root.PersistentFlags().IntVar(&cfg.numWorkers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")
	root.PersistentFlags().BoolVar(&cfg.verbose, "verbose", false, "enable debug-level logging")

	root.AddCommand(newRenderCommand(cfg))
	root.AddCommand(newRefineCommand(cfg))
	root.AddCommand(newShadeCommand(cfg))
	return root
}

func newLogger(cfg *runConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()
}

// newRenderCommand runs (or resumes, if --out already has a progress
// sidecar) the base pass plus the space.ppm pass, per spec.md's S1/S2
// scenarios.
func newRenderCommand(cfg *runConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Run (or resume) the base recirculation-surface render pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cfg)
			setup, err := buildSetup(cfg, log)
			if err != nil {
				return err
			}

			rt := render.NewRaytracer(setup.Scene, setup.Camera, config.DefaultGlobals(), cfg.outDir, workerCount(cfg.numWorkers), log)
			if err := rt.LoadProgress(); err != nil {
				return fmt.Errorf("loading progress: %w", err)
			}
			log.Info().Int("start_index", rt.Store.StartIndex()).Msg("starting base pass")

			start := time.Now()
			if err := rt.Render(cmd.Context()); err != nil {
				return fmt.Errorf("base pass: %w", err)
			}
			log.Info().Dur("elapsed", time.Since(start)).Msg("base pass complete")

			if err := rt.RenderSpace(cmd.Context()); err != nil {
				return fmt.Errorf("space pass: %w", err)
			}
			fmt.Printf("wrote t0.ppm, tau.ppm, space.ppm to %s\n", cfg.outDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.scenario, "scenario", "doublegyre", "doublegyre | tabulated")
	cmd.Flags().StringVar(&cfg.flowFile, "flow-file", "", "path to a tabulated flow text file (scenario=tabulated)")
	cmd.Flags().IntVar(&cfg.resMultiplier, "res-multiplier", 1, "base resolution multiplier for the built-in scenario")
	return cmd
}

// newRefineCommand re-renders a completed base pass at --multiplier times
// its resolution, adopting parent results where possible, then runs the
// post-processing edge-retest pass (spec §4.8, S3).
func newRefineCommand(cfg *runConfig) *cobra.Command {
	var multiplier int
	var refineDir string
	cmd := &cobra.Command{
		Use:   "refine",
		Short: "Re-render a completed base pass at a higher resolution",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cfg)
			setup, err := buildSetup(cfg, log)
			if err != nil {
				return err
			}

			base := render.NewRaytracer(setup.Scene, setup.Camera, config.DefaultGlobals(), cfg.outDir, workerCount(cfg.numWorkers), log)
			if err := base.LoadProgress(); err != nil {
				return fmt.Errorf("loading base progress: %w", err)
			}

			rr := render.NewRefinementRaytracer(base, multiplier, refineDir, workerCount(cfg.numWorkers), log)
			log.Info().Int("multiplier", multiplier).Msg("starting refinement pass")
			if err := rr.Render(cmd.Context()); err != nil {
				return fmt.Errorf("refinement pass: %w", err)
			}
			log.Info().Msg("starting post-processing edge retest")
			if err := rr.PostProcessing(cmd.Context()); err != nil {
				return fmt.Errorf("post-processing: %w", err)
			}
			fmt.Printf("wrote refinement output to %s\n", refineDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.scenario, "scenario", "doublegyre", "doublegyre | tabulated")
	cmd.Flags().StringVar(&cfg.flowFile, "flow-file", "", "path to a tabulated flow text file (scenario=tabulated)")
	cmd.Flags().IntVar(&cfg.resMultiplier, "res-multiplier", 1, "base resolution multiplier for the built-in scenario")
	cmd.Flags().IntVar(&multiplier, "multiplier", 3, "refinement resolution multiplier (odd values exercise pixel adoption)")
	cmd.Flags().StringVar(&refineDir, "refine-out", "", "directory for the refinement pass (default: <out>/refine-<multiplier>)")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if refineDir == "" {
			refineDir = fmt.Sprintf("%s/refine-%d", cfg.outDir, multiplier)
		}
		return nil
	}
	return cmd
}

// newShadeCommand computes normals and shadows over a completed pass and
// writes the shaded t0/tau output textures, per spec §4.9.
func newShadeCommand(cfg *runConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shade",
		Short: "Shade a completed render pass (normals, shadows, composition)",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cfg)
			setup, err := buildSetup(cfg, log)
			if err != nil {
				return err
			}

			rt := render.NewRaytracer(setup.Scene, setup.Camera, config.DefaultGlobals(), cfg.outDir, workerCount(cfg.numWorkers), log)
			if err := rt.LoadProgress(); err != nil {
				return fmt.Errorf("loading progress: %w", err)
			}

			strategy, err := parseStrategy(cfg.normals)
			if err != nil {
				return err
			}

			material := scenegeo.NewPhong(scenegeo.NewConstantColorSource(core.NewVec3(1, 1, 1)), 0.3, 0.6, 0.2, 8)
			sh := shader.NewShader(rt, setup.Scene.RecSurface, config.DefaultGlobals(), setup.Scene.Light, material, log)

			if ok, _ := sh.LoadNormals(cfg.outDir, strategy); !ok {
				sh.ComputeNormals(strategy)
				if err := sh.SaveNormals(cfg.outDir, strategy); err != nil {
					log.Warn().Err(err).Msg("failed to persist normals sidecar")
				}
			}

			if cfg.shadows {
				if ok, _ := sh.LoadShadow(cfg.outDir); !ok {
					sh.ComputeShadows()
					if cfg.sharpen {
						sh.SharpenShadows()
					}
					if err := sh.SaveShadow(cfg.outDir); err != nil {
						log.Warn().Err(err).Msg("failed to persist shadow sidecar")
					}
				}
			}

			if err := sh.WriteTextures(cfg.outDir, strategy, cfg.shadows, cfg.shadows && cfg.sharpen); err != nil {
				return fmt.Errorf("writing shaded textures: %w", err)
			}
			t0Name, tauName := shader.OutputNames(strategy, cfg.shadows, cfg.shadows && cfg.sharpen)
			fmt.Printf("wrote %s, %s to %s\n", t0Name, tauName, cfg.outDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.scenario, "scenario", "doublegyre", "doublegyre | tabulated")
	cmd.Flags().StringVar(&cfg.flowFile, "flow-file", "", "path to a tabulated flow text file (scenario=tabulated)")
	cmd.Flags().IntVar(&cfg.resMultiplier, "res-multiplier", 1, "base resolution multiplier for the built-in scenario")
	cmd.Flags().StringVar(&cfg.normals, "normals", "hybrid", "none | neighbors | sampling | hybrid")
	cmd.Flags().BoolVar(&cfg.shadows, "shadows", true, "compute and apply shadows")
	cmd.Flags().BoolVar(&cfg.sharpen, "sharpen", true, "iteratively sharpen shadow edges (requires --shadows)")
	return cmd
}

func parseStrategy(name string) (shader.Strategy, error) {
	switch name {
	case "none":
		return shader.StrategyNone, nil
	case "neighbors":
		return shader.StrategyNeighbors, nil
	case "sampling":
		return shader.StrategySampling, nil
	case "hybrid":
		return shader.StrategyHybrid, nil
	default:
		return shader.StrategyNone, fmt.Errorf("unknown normal strategy %q", name)
	}
}

func buildSetup(cfg *runConfig, log zerolog.Logger) (*scenegeo.Setup, error) {
	switch cfg.scenario {
	case "doublegyre":
		return scenegeo.NewDoubleGyre3DSetup(cfg.resMultiplier, log), nil
	case "tabulated":
		if cfg.flowFile == "" {
			return nil, fmt.Errorf("--flow-file is required for scenario=tabulated")
		}
		f, err := os.Open(cfg.flowFile)
		if err != nil {
			return nil, fmt.Errorf("opening flow file: %w", err)
		}
		defer f.Close()
		return scenegeo.NewTabulatedFlowSetup(f, cfg.resMultiplier, log)
	default:
		return nil, fmt.Errorf("unknown scenario %q (want doublegyre|tabulated)", cfg.scenario)
	}
}

func workerCount(n int) int {
	if n > 0 {
		return n
	}
	return max(1, runtime.NumCPU())
}
