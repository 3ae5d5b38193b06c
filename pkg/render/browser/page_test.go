package browser

import (
	"context"
	"encoding/base64"
	"math"
	"testing"

	"github.com/chromedp/chromedp"

	"github.com/matzehuels/reftree/pkg/grid"
	"github.com/matzehuels/reftree/pkg/render/sink"
	"github.com/matzehuels/reftree/pkg/tree"
	"github.com/matzehuels/reftree/pkg/viewport"
)

// dragToBottom opens the last card's tooltip, drags the canvas as far up as
// it goes and reports where it stopped.
const dragToBottom = `(() => {
  const wrap = document.querySelector('.referral__grid-wrap');
  const canvas = document.querySelector('.referral__grid-canvas');
  const grid = document.querySelector('.referral__grid');
  [...document.querySelectorAll('.referral__grid-card-user')].pop().click();
  const tip = document.querySelector('.referral__grid-user-tooltip.__open');
  const r = wrap.getBoundingClientRect();
  const at = (type, target, dy) => target.dispatchEvent(new MouseEvent(type, {
    bubbles: true, clientX: r.left + 10, clientY: r.top + 10 + dy,
  }));
  at('mousedown', wrap, 0);
  at('mousemove', document, -10000);
  at('mouseup', document, -10000);
  return {
    y: new DOMMatrix(getComputedStyle(canvas).transform).m42,
    wrapH: wrap.clientHeight,
    gridH: grid.scrollHeight,
    bottom: tip.offsetTop + tip.offsetHeight,
    inCanvas: tip.parentElement === canvas,
  };
})()`

func TestPageOpenTooltipKeepsMargin(t *testing.T) {
	if testing.Short() || !Available() {
		t.Skip("headless Chrome not available")
	}
	tr, _ := tree.Index([]tree.Descriptor{
		{ID: "a", Label: "Ada"},
		{ID: "b", ParentID: "a", Label: "Bo", Content: "<p>joined 2024</p><p>gold tier</p>"},
	})
	page, err := sink.RenderHTML(grid.Build(tr), sink.WithViewport(800, 150))
	if err != nil {
		t.Fatalf("RenderHTML() error: %v", err)
	}

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	var got struct {
		Y        float64 `json:"y"`
		WrapH    float64 `json:"wrapH"`
		GridH    float64 `json:"gridH"`
		Bottom   float64 `json:"bottom"`
		InCanvas bool    `json:"inCanvas"`
	}
	err = chromedp.Run(ctx,
		chromedp.Navigate("data:text/html;base64,"+base64.StdEncoding.EncodeToString(page)),
		chromedp.WaitVisible(".referral__grid-wrap", chromedp.ByQuery),
		chromedp.Evaluate(dragToBottom, &got),
	)
	if err != nil {
		t.Fatalf("chromedp: %v", err)
	}

	if !got.InCanvas {
		t.Error("open tooltip should be moved into the canvas")
	}
	if got.Bottom <= got.GridH {
		t.Fatalf("tooltip bottom %.1f does not overflow the grid height %.1f", got.Bottom, got.GridH)
	}
	want := got.WrapH - (got.Bottom + viewport.DefaultOverlayMargin)
	if math.Abs(got.Y-want) > 0.5 {
		t.Errorf("offset after dragging to the bottom = %.1f, want %.1f", got.Y, want)
	}
}
