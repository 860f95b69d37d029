package main

import (
	"context"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"

	"github.com/chaos-io/bgeraser/config"
	"github.com/chaos-io/bgeraser/rembg"
	"github.com/chaos-io/bgeraser/util"
	nhttp "github.com/chaos-io/bgeraser/util/http"
)

func main() {
	cfg := config.Default()
	cfg.BindFlags(flag.CommandLine)
	input := flag.StringP("input", "i", "", "image path or http(s) URL")
	output := flag.StringP("output", "o", util.DefaultExportName, "output PNG path")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config: ", err)
	}

	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		log.Fatal(err)
	}
	slog.SetDefault(logger)

	if err := run(context.Background(), cfg, afero.NewOsFs(), *input, *output); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config, fs afero.Fs, input, output string) error {
	defer util.Trace("remove background")()

	img, err := loadImage(ctx, cfg, fs, input)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}

	res, err := rembg.NewThresholdRemover(cfg.Threshold, cfg.Workers, cfg.MaxWidth).Remove(ctx, img)
	if err != nil {
		return err
	}

	if err := util.SavePNG(fs, output, res.Image); err != nil {
		return err
	}

	total := res.Image.Bounds().Dx() * res.Image.Bounds().Dy()
	fmt.Printf("background %s, threshold %d, removed %d/%d pixels -> %s\n",
		res.Background, res.Threshold, res.Removed, total, output)
	return nil
}

func loadImage(ctx context.Context, cfg *config.Config, fs afero.Fs, input string) (image.Image, error) {
	if util.IsURL(input) {
		img, _, err := util.DownloadImage(ctx, nhttp.NewHTTPClientWithTimeout(cfg.DownloadTimeout), input, 0)
		return img, err
	}
	img, _, err := util.OpenImageFs(fs, input)
	return img, err
}
