package viz

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
)

// SnapshotPNG renders an HTML report to PNG through headless Chrome. It
// needs a Chrome binary on the host and is skipped unless PNG output is
// requested.
func SnapshotPNG(ctx context.Context, htmlPath, pngPath string) error {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	ctx, cancelBrowser := chromedp.NewContext(ctx)
	defer cancelBrowser()

	var buf []byte
	err = chromedp.Run(ctx,
		chromedp.Navigate("file://"+abs),
		chromedp.WaitVisible("svg", chromedp.ByQuery),
		chromedp.FullScreenshot(&buf, 90),
	)
	if err != nil {
		return fmt.Errorf("render %s: %w", htmlPath, err)
	}
	return os.WriteFile(pngPath, buf, 0o644)
}
