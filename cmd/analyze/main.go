// Command analyze classifies a single saved radar screenshot and prints the
// resulting analysis JSON. It exists for calibrating hue windows against
// archived frames without driving a browser.
//
// Usage:
//
//	go run ./cmd/analyze -image data/screenshots/windy_20260115_083000.png
//	go run ./cmd/analyze -image frame.png -provider govmap -sat-min 90
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"

	"github.com/rainalert/radar-monitor/internal/classify"
	"github.com/rainalert/radar-monitor/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	imagePath := flag.String("image", "", "path to a radar screenshot (png or jpeg)")
	providerID := flag.String("provider", domain.ProviderWindy, "provider id for labels and unit normalization")
	satMin := flag.Float64("sat-min", 100, "saturation floor on the 0-255 scale")
	valMin := flag.Float64("val-min", 100, "value floor on the 0-255 scale")
	flag.Parse()

	if *imagePath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -image")
	}

	provider, ok := domain.ProviderByID(*providerID)
	if !ok {
		return &domain.UnknownProviderError{ID: *providerID}
	}

	f, err := os.Open(*imagePath)
	if err != nil {
		return err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return &domain.ImageLoadError{Source: *imagePath, Cause: err}
	}
	fmt.Fprintf(os.Stderr, "decoded %s image %dx%d\n", format, img.Bounds().Dx(), img.Bounds().Dy())

	windows := classify.DefaultWindows()
	windows.SatMin = *satMin / 255.0
	windows.ValMin = *valMin / 255.0

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	classifier := classify.New(windows, domain.DefaultThresholds(), clockwork.NewRealClock(), quiet)

	analysis, err := classifier.Classify(img, provider.ID)
	if err != nil {
		return err
	}
	analysis = analysis.NormalizeRates(provider.RateUnitFactor)

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(analysis)
}
