package sink

import (
	"bytes"
	"html/template"

	"github.com/matzehuels/reftree/pkg/grid"
	"github.com/matzehuels/reftree/pkg/tooltip"
	"github.com/matzehuels/reftree/pkg/viewport"
)

// Default size of the HTML page's pan window.
const (
	DefaultViewportWidth  = 960
	DefaultViewportHeight = 640
)

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

type pageCell struct {
	ID       string
	ParentID string
	Label    string
	Status   string
	Active   bool
	Content  template.HTML
}

type pageConfig struct {
	Offset        float64 `json:"offset"`
	Stroke        string  `json:"stroke"`
	StrokeWidth   float64 `json:"strokeWidth"`
	LineCap       string  `json:"lineCap"`
	TooltipGap    float64 `json:"tooltipGap"`
	OverlayMargin float64 `json:"overlayMargin"`
}

type pageTheme struct {
	Background template.CSS
	CardFill   template.CSS
	CardStroke template.CSS
	Text       template.CSS
	Muted      template.CSS
	Active     template.CSS
}

type page struct {
	Title   string
	Columns template.CSS
	Width   float64
	Height  float64
	ViewW   float64
	ViewH   float64
	Padding float64
	CardH   float64
	ColGap  float64
	RowGap  float64
	Theme   pageTheme
	Cells   []pageCell
	Config  pageConfig
}

// RenderHTML renders the interactive page. Cell content is inserted as
// trusted HTML.
func RenderHTML(l grid.Layout, opts ...Option) ([]byte, error) {
	o := newOptions(opts)
	s := newScene(l, o.metrics, o.offset)

	p := page{
		Title:   o.title,
		Columns: template.CSS(l.Template()),
		Width:   s.boxes.Width,
		Height:  s.boxes.Height,
		ViewW:   o.viewport[0],
		ViewH:   o.viewport[1],
		Padding: o.metrics.Padding,
		CardH:   o.metrics.CardHeight,
		ColGap:  o.metrics.ColGap,
		RowGap:  o.metrics.RowGap,
		Theme: pageTheme{
			Background: template.CSS(o.theme.Background),
			CardFill:   template.CSS(o.theme.CardFill),
			CardStroke: template.CSS(o.theme.CardStroke),
			Text:       template.CSS(o.theme.Text),
			Muted:      template.CSS(o.theme.Muted),
			Active:     template.CSS(o.theme.Active),
		},
		Config: pageConfig{
			Offset:        o.offset,
			Stroke:        o.stroke.Color,
			StrokeWidth:   o.stroke.Width,
			LineCap:       o.stroke.Cap,
			TooltipGap:    tooltip.Gap,
			OverlayMargin: viewport.DefaultOverlayMargin,
		},
	}
	for _, row := range l.Rows {
		for _, c := range row {
			p.Cells = append(p.Cells, pageCell{
				ID:       c.ID,
				ParentID: c.ParentID,
				Label:    c.DisplayLabel(),
				Status:   StatusLabel(c),
				Active:   c.Active,
				Content:  template.HTML(c.Content),
			})
		}
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  body { margin: 0; background: {{.Theme.Background}}; color: {{.Theme.Text}}; font-family: system-ui, sans-serif; }
  .referral__grid-wrap { position: relative; overflow: hidden; width: {{.ViewW}}px; height: {{.ViewH}}px; margin: 24px auto; cursor: grab; touch-action: none; user-select: none; }
  .referral__grid-canvas { position: absolute; top: 0; left: 0; width: {{.Width}}px; min-height: {{.Height}}px; will-change: transform; }
  .referral__grid-lines { position: absolute; top: 0; left: 0; pointer-events: none; }
  .referral__grid { position: relative; display: grid; grid-template-columns: {{.Columns}}; column-gap: {{.ColGap}}px; row-gap: {{.RowGap}}px; padding: {{.Padding}}px; width: calc({{.Width}}px - {{.Padding}}px * 2); }
  .referral__grid-item { height: {{.CardH}}px; }
  .referral__grid-card { box-sizing: border-box; height: 100%; border-radius: 10px; background: {{.Theme.CardFill}}; border: 1px solid {{.Theme.CardStroke}}; display: flex; flex-direction: column; align-items: center; justify-content: center; gap: 4px; }
  .referral__grid-card-user { background: none; border: 0; color: inherit; font: inherit; font-size: 14px; cursor: pointer; }
  .referral__grid-status { font-size: 11px; color: {{.Theme.Muted}}; }
  .referral__grid-card.active .referral__grid-status { color: {{.Theme.Active}}; }
  .referral__grid-user-tooltip { min-width: 180px; padding: 10px; border-radius: 6px; background: {{.Theme.CardFill}}; border: 1px solid {{.Theme.CardStroke}}; font-size: 12px; }
  .referral__grid-user-tooltip.__open { position: absolute; z-index: 999999; }
</style>
</head>
<body>
<div class="referral__grid-wrap">
  <div class="referral__grid-canvas">
    <canvas class="referral__grid-lines"></canvas>
    <div class="referral__grid">
{{- range .Cells}}
      {{if .ID}}<div class="referral__grid-item" data-id="{{.ID}}"{{if .ParentID}} data-parent="{{.ParentID}}"{{end}}>
        <div class="referral__grid-card{{if .Active}} active{{end}}">
          <button class="referral__grid-card-user" type="button">{{.Label}}</button>
          <span class="referral__grid-status">{{.Status}}</span>
          <div class="referral__grid-user-tooltip" hidden>{{if .Content}}{{.Content}}{{else}}{{.Label}}{{end}}</div>
        </div>
      </div>{{else}}<div class="referral__grid-item"></div>{{end}}
{{- end}}
    </div>
  </div>
</div>
<script>
(() => {
  const cfg = {{.Config}};
  const wrap = document.querySelector('.referral__grid-wrap');
  const canvas = document.querySelector('.referral__grid-canvas');
  const grid = document.querySelector('.referral__grid');
  const lines = document.querySelector('.referral__grid-lines');
  const ctx = lines.getContext('2d');
  let active = null, home = null;

  const local = el => {
    const r = el.getBoundingClientRect(), c = canvas.getBoundingClientRect();
    return { left: r.left - c.left, top: r.top - c.top, width: r.width, height: r.height };
  };

  function draw() {
    lines.width = canvas.clientWidth;
    lines.height = canvas.clientHeight;
    ctx.clearRect(0, 0, lines.width, lines.height);
    ctx.strokeStyle = cfg.stroke;
    ctx.lineWidth = cfg.strokeWidth;
    ctx.lineCap = cfg.lineCap;

    const items = [...grid.querySelectorAll('.referral__grid-item[data-id]')];
    const byId = new Map(items.map(i => [i.dataset.id, i]));
    const kids = new Map();
    items.forEach(i => {
      const p = i.dataset.parent;
      if (!p) return;
      if (!kids.has(p)) kids.set(p, []);
      kids.get(p).push(i);
    });
    const line = pts => {
      ctx.beginPath();
      ctx.moveTo(pts[0][0], pts[0][1]);
      pts.slice(1).forEach(p => ctx.lineTo(p[0], p[1]));
      ctx.stroke();
    };
    kids.forEach((children, id) => {
      const parent = byId.get(id);
      if (!parent) return;
      const p = local(parent.querySelector('.referral__grid-card'));
      const px = p.left + p.width / 2, pb = p.top + p.height, mid = pb + cfg.offset;
      const cs = children.map(ch => {
        const r = local(ch.querySelector('.referral__grid-card'));
        return { x: r.left + r.width / 2, top: r.top };
      });
      if (cs.length === 1) {
        line([[px, pb], [px, mid], [cs[0].x, mid], [cs[0].x, cs[0].top]]);
        return;
      }
      line([[px, pb], [px, mid]]);
      line([[Math.min(...cs.map(c => c.x)), mid], [Math.max(...cs.map(c => c.x)), mid]]);
      cs.forEach(c => line([[c.x, mid], [c.x, c.top]]));
    });
  }

  let x = 0, y = 0, down = false, touch = false, axis = null, sx = 0, sy = 0, ox = 0, oy = 0;
  const clamp = (v, lo, hi) => Math.min(Math.max(v, lo), hi);
  const range = (view, content) => content <= view ? [(view - content) / 2, (view - content) / 2] : [view - content, 0];

  function bounds() {
    let h = grid.scrollHeight;
    if (active) {
      const bottom = local(active).top + active.offsetHeight;
      if (bottom > h) h = bottom + cfg.overlayMargin;
    }
    return [range(wrap.clientWidth, grid.scrollWidth), range(wrap.clientHeight, h)];
  }
  function apply() {
    const [bx, by] = bounds();
    x = clamp(x, bx[0], bx[1]);
    y = clamp(y, by[0], by[1]);
    canvas.style.transform = 'translate(' + x + 'px, ' + y + 'px)';
    document.dispatchEvent(new CustomEvent('referralPanUpdated', { detail: { x, y } }));
  }
  function center() {
    x = (wrap.clientWidth - grid.scrollWidth) / 2;
    y = 0;
    apply();
  }
  function begin(px, py, isTouch) {
    down = true; touch = isTouch; axis = null;
    sx = px; sy = py; ox = x; oy = y;
  }
  function move(px, py, isTouch) {
    if (!down || touch !== isTouch) return;
    const dx = px - sx, dy = py - sy;
    if (!axis) {
      if (dx === 0 && dy === 0) return;
      axis = Math.abs(dx) > Math.abs(dy) ? 'x' : 'y';
    }
    if (axis === 'x') x = ox + dx; else y = oy + dy;
    apply();
  }

  function close() {
    if (!active) return;
    active.classList.remove('__open');
    active.hidden = true;
    active.style.left = active.style.top = '';
    home.appendChild(active);
    active = home = null;
    document.dispatchEvent(new Event('referralTooltipUpdated'));
  }
  // An open tooltip is a child of the canvas, never of the grid.
  function open(tip, card) {
    home = card;
    canvas.appendChild(tip);
    tip.hidden = false;
    tip.classList.add('__open');
    const r = local(card);
    tip.style.left = r.left + 'px';
    tip.style.top = (r.top + r.height + cfg.tooltipGap) + 'px';
    active = tip;
    document.dispatchEvent(new Event('referralTooltipUpdated'));
  }
  document.addEventListener('click', e => {
    const btn = e.target.closest('.referral__grid-card-user');
    if (!btn) { close(); return; }
    const card = btn.closest('.referral__grid-card');
    if (card === home) { close(); return; }
    const tip = card.querySelector('.referral__grid-user-tooltip');
    if (!tip) return;
    close();
    open(tip, card);
  }, { passive: true });

  wrap.addEventListener('mousedown', e => begin(e.pageX, e.pageY, false), { passive: true });
  document.addEventListener('mousemove', e => { move(e.pageX, e.pageY, false); draw(); }, { passive: true });
  document.addEventListener('mouseup', () => { down = false; axis = null; }, { passive: true });
  wrap.addEventListener('touchstart', e => begin(e.touches[0].pageX, e.touches[0].pageY, true), { passive: true });
  wrap.addEventListener('touchmove', e => {
    if (down && touch) e.preventDefault();
    move(e.touches[0].pageX, e.touches[0].pageY, true);
    draw();
  }, { passive: false });
  wrap.addEventListener('touchend', () => { down = false; touch = false; axis = null; }, { passive: true });

  window.addEventListener('resize', () => { center(); draw(); }, { passive: true });
  document.addEventListener('referralTooltipUpdated', () => { apply(); draw(); }, { passive: true });

  document.querySelectorAll('.referral__grid-card.active .referral__grid-status').forEach(s => { s.textContent = 'Active'; });
  center();
  draw();
  document.dispatchEvent(new Event('referralGridReady'));
})();
</script>
</body>
</html>
`
