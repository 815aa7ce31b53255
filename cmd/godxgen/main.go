package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"godxgen/internal/generation"
	"godxgen/internal/metadata"
)

type cli struct {
	MetadataPath string   `default:"Windows.Win32.winmd" help:"Path to the .winmd metadata file."`
	Output       string   `default:"dxgi.go" help:"Path of the generated bindings file."`
	Package      string   `default:"dxgi" help:"Package name for the generated file."`
	Namespace    []string `help:"Metadata namespaces to include; defaults to the DXGI surface."`
	Download     bool     `help:"Fetch the newest win32metadata package when the metadata file is missing."`
	Verbose      bool     `short:"v" help:"Verbose logging."`
}

func main() {
	var args cli
	ctx := kong.Parse(&args,
		kong.Name("godxgen"),
		kong.Description("Generates Go bindings for the DXGI surface from Windows Metadata."),
		kong.UsageOnError(),
	)

	logger, err := newLogger(args.Verbose)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to set up logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	ctx.FatalIfErrorf(run(args, logger))
}

func run(args cli, logger *zap.Logger) error {
	if _, err := os.Stat(args.MetadataPath); errors.Is(err, os.ErrNotExist) {
		if !args.Download {
			return errors.Newf("metadata file %s does not exist (pass --download to fetch it)", args.MetadataPath)
		}
		logger.Info("downloading metadata", zap.String("path", args.MetadataPath))
		if err := metadata.DownloadMetadata(args.MetadataPath); err != nil {
			return err
		}
	}

	namespaces := args.Namespace
	if len(namespaces) == 0 {
		namespaces = metadata.DefaultNamespaces
	}

	reader, err := metadata.NewReader(args.MetadataPath, namespaces)
	if err != nil {
		return err
	}
	store, err := reader.ReadStore()
	if err != nil {
		return err
	}
	logger.Info("decoded metadata store",
		zap.Int("constants", len(store.Constants)),
		zap.Int("functions", len(store.Functions)),
		zap.Int("enums", len(store.Enums)),
		zap.Int("structs", len(store.Structs)),
		zap.Int("interfaces", len(store.Interfaces)),
		zap.Int("delegates", len(store.Delegates)),
	)

	file, renames, err := generation.NewGenerator(store, args.Package).Generate()
	if err != nil {
		return err
	}
	for _, r := range renames {
		logger.Info(r.String())
	}

	if err := file.Save(args.Output); err != nil {
		return errors.Wrapf(err, "writing %s", args.Output)
	}
	logger.Info("wrote bindings", zap.String("path", args.Output))
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableCaller = true
	return cfg.Build()
}
