package browser

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestOptionsDefaults(t *testing.T) {
	var o Options
	o.setDefaults()
	if o.Selector != ".referral__grid-wrap" || o.Scale != 2 || o.Timeout != DefaultTimeout || o.Width != 1600 || o.Height != 1200 {
		t.Errorf("defaults = %+v", o)
	}

	o = Options{Selector: "svg", Scale: 1, Width: 300, Height: 200, Timeout: time.Second}
	o.setDefaults()
	if o.Selector != "svg" || o.Scale != 1 || o.Width != 300 || o.Height != 200 || o.Timeout != time.Second {
		t.Errorf("explicit values overwritten: %+v", o)
	}
}

func TestScreenshot(t *testing.T) {
	if testing.Short() || !Available() {
		t.Skip("headless Chrome not available")
	}
	page := []byte(`<!DOCTYPE html><html><body><div class="referral__grid-wrap" style="width:50px;height:40px;background:#333"></div></body></html>`)
	png, err := Screenshot(context.Background(), page, Options{Scale: 1})
	if err != nil {
		t.Fatalf("Screenshot() error: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("result is not a PNG")
	}
}
