package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/gulp/internal/capture"
	"github.com/1broseidon/gulp/internal/config"
	"github.com/1broseidon/gulp/internal/geom"
	"github.com/1broseidon/gulp/internal/logging"
	"github.com/1broseidon/gulp/internal/output"
	"github.com/1broseidon/gulp/internal/picker"
	"github.com/1broseidon/gulp/internal/render"
	"github.com/1broseidon/gulp/internal/selection"
	"github.com/1broseidon/gulp/internal/windows"
	"github.com/1broseidon/gulp/internal/x11"
)

// flags holds the raw command-line values. Config-backed flags only take
// effect when set explicitly.
type flags struct {
	configPath string

	fontFamily      string
	fontSize        int
	fontWeight      string
	borderColor     string
	borderThickness int
	borderRounding  int
	dimOpacity      float64
	logLevel        string
	fps             int
	noSnap          bool
	noAnimation     bool
	format          string

	ocr         bool
	point       bool
	aspectRatio string
	outputPath  string

	generateConfig      bool
	generateCompletions string
	explainConfig       string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "gulp",
		Short: "Select a region of the screen",
		Long: `gulp dims every monitor and lets you drag out a rectangle, or click a
window to select it. The result is printed as coordinates, saved as an
image, or run through OCR.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, f, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	bindFlags(cmd, f)
	return cmd
}

func bindFlags(cmd *cobra.Command, f *flags) {
	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/gulp/config.yaml)")

	fl.StringVar(&f.fontFamily, "font-family", config.DefaultFontFamily, "font for the size label (family name or .ttf/.otf path)")
	fl.IntVar(&f.fontSize, "font-size", config.DefaultFontSize, "size label font size")
	fl.StringVar(&f.fontWeight, "font-weight", config.DefaultFontWeight, "size label font weight (Normal or Bold)")
	fl.StringVarP(&f.borderColor, "border-color", "b", config.DefaultBorderColor, "border colour as #RRGGBB or #RGB")
	fl.IntVarP(&f.borderThickness, "border-thickness", "t", config.DefaultBorderThickness, "border thickness in pixels")
	fl.IntVarP(&f.borderRounding, "border-rounding", "r", 0, "border corner radius in pixels")
	fl.Float64VarP(&f.dimOpacity, "dim-opacity", "d", config.DefaultDimOpacity, "opacity of the dimmed area (0.0-1.0)")
	fl.StringVarP(&f.logLevel, "log", "l", config.DefaultLogLevel, "log level (off, error, warn, info, debug)")
	fl.IntVar(&f.fps, "fps", 0, "redraw rate cap (0 follows each monitor's refresh rate)")
	fl.BoolVar(&f.noSnap, "no-snap", false, "disable snapping to windows")
	fl.BoolVar(&f.noAnimation, "no-animation", false, "disable the snap animation")
	fl.StringVarP(&f.format, "format", "f", config.DefaultOutputFormat, "coordinate format (%x %y %w %h %X %Y)")

	fl.BoolVar(&f.ocr, "ocr", false, "recognise text in the selection and copy it to the clipboard")
	fl.BoolVarP(&f.point, "point", "p", false, "select a single point")
	fl.StringVarP(&f.aspectRatio, "aspect-ratio", "a", "", "constrain the selection to W:H")
	fl.StringVarP(&f.outputPath, "output", "o", "", "save the selection as an image (- for stdout)")

	fl.BoolVar(&f.generateConfig, "generate-config", false, "write the default config file and exit")
	fl.StringVar(&f.generateCompletions, "generate-completions", "", "print a completion script (bash, zsh, fish, powershell)")
	fl.StringVar(&f.explainConfig, "explain-config", "", "show an effective config value and where it came from")

	_ = cmd.RegisterFlagCompletionFunc("generate-completions", cobra.FixedCompletions(
		[]string{"bash", "zsh", "fish", "powershell"}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("font-weight", cobra.FixedCompletions(
		[]string{"Normal", "Bold"}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("log", cobra.FixedCompletions(
		[]string{"off", "error", "warn", "info", "debug"}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("explain-config", cobra.FixedCompletions(
		config.Paths(), cobra.ShellCompDirectiveNoFileComp))
}

func run(cmd *cobra.Command, f *flags, stdout, stderr io.Writer) error {
	if f.generateCompletions != "" {
		return writeCompletions(cmd, f.generateCompletions, stdout)
	}

	path := f.configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if f.generateConfig {
		if err := config.WriteDefaults(path, false); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Wrote default config to %s\n", path)
		return nil
	}

	bootLog := zerolog.New(zerolog.ConsoleWriter{Out: stderr}).Level(zerolog.WarnLevel)
	res := config.Load(path, bootLog)

	if f.explainConfig != "" {
		return explain(stdout, res, f.explainConfig)
	}

	cfg := res.Config
	applyFlags(cmd, f, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.Init(cfg.Display.Log, stderr)
	log := logging.WithComponent("main")
	if res.File != "" {
		log.Info().Str("path", res.File).Msg("loaded config")
	}

	if f.outputPath == capture.StdoutPath {
		if file, ok := stdout.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
			return errors.New("refusing to write image data to a terminal; redirect stdout or pass a file path")
		}
	}

	aspect, err := parseAspectRatio(f.aspectRatio)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rect, outputs, err := pick(ctx, cfg, selection.Options{PointMode: f.point, AspectRatio: aspect})
	if err != nil {
		return err
	}

	completer := capture.NewCompleter(capture.Options{
		Format:     cfg.Output.Format,
		OutputPath: f.outputPath,
		OCR:        f.ocr,
	}, stdout, logging.WithComponent("capture"))
	return completer.Complete(rect, outputs)
}

// pick opens the display, runs one selection session and tears the overlays
// down before returning, so capture sees the bare desktop.
func pick(ctx context.Context, cfg *config.Config, selOpts selection.Options) (rect geom.Rect, outputs []geom.Rect, err error) {
	var manager *windows.Manager
	if !cfg.Features.NoSnap {
		backend := windows.Detect(logging.WithComponent("windows"), cfg.Snap.IPCTimeout)
		manager = windows.NewManager(backend, logging.WithComponent("windows"))
		defer func() {
			if err := manager.Close(); err != nil {
				logging.WithComponent("windows").Warn().Err(err).Msg("failed to close window backend")
			}
		}()
	}

	border, err := render.ParseHex(cfg.Border.Color)
	if err != nil {
		return rect, nil, err
	}
	renderer, err := render.New(render.Options{
		BorderColor:     border,
		BorderThickness: cfg.Border.Thickness,
		BorderRounding:  cfg.Border.Rounding,
		DimOpacity:      cfg.Display.DimOpacity,
		FontFamily:      cfg.Font.Family,
		FontSize:        float64(cfg.Font.Size),
		FontWeight:      cfg.Font.Weight,
	}, logging.WithComponent("render"))
	if err != nil {
		return rect, nil, err
	}

	disp, err := x11.Open(logging.WithComponent("x11"))
	if err != nil {
		return rect, nil, fmt.Errorf("open display: %w", err)
	}
	defer disp.Close()

	sched := output.NewScheduler(renderer, cfg.Display.FPS, logging.WithComponent("output"))
	p := picker.New(picker.Options{
		Selection:       selOpts,
		NoAnimation:     cfg.Features.NoAnimation,
		RefreshInterval: cfg.Snap.RefreshInterval,
	}, disp, manager, sched, logging.WithComponent("picker"))

	rect, err = p.Run(ctx)
	if err != nil {
		return rect, nil, err
	}
	return rect, sched.Geometries(), nil
}

func explain(w io.Writer, res *config.LoadResult, path string) error {
	value, src, err := config.Explain(res, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "path: %s\n", path)
	fmt.Fprintf(w, "source: %s\n", formatSource(src))
	fmt.Fprintf(w, "value: %v\n", value)
	return nil
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	default:
		return "default"
	}
}

func writeCompletions(cmd *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case "bash":
		return cmd.GenBashCompletionV2(w, true)
	case "zsh":
		return cmd.GenZshCompletion(w)
	case "fish":
		return cmd.GenFishCompletion(w, true)
	case "powershell":
		return cmd.GenPowerShellCompletionWithDesc(w)
	default:
		return fmt.Errorf("unsupported shell %q (want bash, zsh, fish or powershell)", shell)
	}
}
