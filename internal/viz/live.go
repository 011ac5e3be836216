package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mhsim/internal/ensemble"
	"github.com/san-kum/mhsim/internal/gaussian"
	"github.com/san-kum/mhsim/internal/metrics"
	"github.com/san-kum/mhsim/internal/metropolis"
	"go.uber.org/zap"
)

const (
	width       = 80
	height      = 24
	trailLength = 8
	histBins    = 30
	maxSpeed    = 64
)

type TickMsg time.Time

// tracker feeds every tick into the panel statistics. The histogram is
// rebuilt whenever the target changes so its range follows the viewport.
type tracker struct {
	momX, momY *metrics.Moments
	rate       *metrics.AcceptanceRate
	hist       *metrics.Histogram
	all        []metrics.Metric
}

func newTracker(t metropolis.Target) *tracker {
	tr := &tracker{
		momX: metrics.NewMoments(metrics.X),
		momY: metrics.NewMoments(metrics.Y),
		rate: metrics.NewAcceptanceRate(),
	}
	tr.all = []metrics.Metric{tr.momX, tr.momY, tr.rate}
	tr.rebuild(t)
	return tr
}

func (tr *tracker) OnTick(snapshot []metropolis.Point, stats ensemble.TickStats) {
	for _, m := range tr.all {
		m.OnTick(snapshot, stats)
	}
	tr.hist.OnTick(snapshot, stats)
}

func (tr *tracker) rebuild(t metropolis.Target) {
	lo := t.X.Mean - span*t.X.StdDev
	hi := t.X.Mean + span*t.X.StdDev
	tr.hist = metrics.NewHistogram(metrics.X, lo, hi, histBins)
	for _, m := range tr.all {
		m.Reset()
	}
}

// param is one tunable target field.
type param struct {
	name   string
	axis   ensemble.AxisSelector
	stddev bool
}

// Model is the Bubble Tea model of the live view.
type Model struct {
	ens      *ensemble.Ensemble
	log      *zap.Logger
	canvas   *Canvas
	stats    *tracker
	trails   [][]metropolis.Point
	running  bool
	fps      int
	speed    int
	params   []param
	selected int
	theme    int
	styles   styles
	status   string
	failed   bool
	hidden   int
	showHelp bool
}

// NewModel wires a view to ens. The view registers itself as an observer.
func NewModel(ens *ensemble.Ensemble, fps int, theme string, log *zap.Logger) Model {
	if fps <= 0 {
		fps = 30
	}
	if log == nil {
		log = zap.NewNop()
	}
	params := []param{
		{name: "x.mean", axis: ensemble.AxisX},
		{name: "x.stddev", axis: ensemble.AxisX, stddev: true},
	}
	if ens.Dim() == metropolis.Dim2 {
		params = append(params,
			param{name: "y.mean", axis: ensemble.AxisY},
			param{name: "y.stddev", axis: ensemble.AxisY, stddev: true},
		)
	}
	th, idx := ThemeByName(theme)
	tr := newTracker(ens.Target())
	ens.AddObserver(tr)

	return Model{
		ens:     ens,
		log:     log,
		canvas:  NewCanvas(width, height),
		stats:   tr,
		running: true,
		fps:     fps,
		speed:   1,
		params:  params,
		theme:   idx,
		styles:  newStyles(th),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Update handles input events and advances the ensemble.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "r":
			m.reset()
		case "+", "=":
			m.resize(1)
		case "-", "_":
			m.resize(-1)
		case "tab":
			m.selected = (m.selected + 1) % len(m.params)
		case "up", "k":
			m.adjust(1)
		case "down", "j":
			m.adjust(-1)
		case "c":
			m.toggleCoupling()
		case "f":
			if m.speed < maxSpeed {
				m.speed *= 2
			}
		case "s":
			if m.speed > 1 {
				m.speed /= 2
			}
		case "t":
			m.theme = (m.theme + 1) % len(themes)
			m.styles = newStyles(themes[m.theme])
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			for i := 0; i < m.speed; i++ {
				m.step()
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	m.ens.Tick()
	if m.ens.Dim() != metropolis.Dim2 {
		return
	}
	snap := m.ens.Snapshot()
	if len(m.trails) != len(snap) {
		m.trails = make([][]metropolis.Point, len(snap))
	}
	for i, p := range snap {
		tr := append(m.trails[i], p)
		if len(tr) > trailLength {
			tr = tr[1:]
		}
		m.trails[i] = tr
	}
}

func (m *Model) reset() {
	m.ens.Reset()
	m.stats.rebuild(m.ens.Target())
	m.trails = nil
	m.setStatus(false, "reset %d walkers", m.ens.Len())
}

func (m *Model) resize(dir int) {
	n := m.ens.Len()
	delta := n / 10
	if delta < 1 {
		delta = 1
	}
	if err := m.ens.Resize(n + dir*delta); err != nil {
		m.setStatus(true, "%v", err)
		return
	}
	m.trails = nil
	m.setStatus(false, "%d walkers", m.ens.Len())
}

// adjust moves a mean by a quarter of its stddev or scales a stddev by 5%.
// Rejected updates leave the target unchanged.
func (m *Model) adjust(dir int) {
	p := m.params[m.selected]
	t := m.ens.Target()
	a := t.X
	if p.axis == ensemble.AxisY {
		a = t.Y
	}
	if p.stddev {
		if dir > 0 {
			a.StdDev *= 1.05
		} else {
			a.StdDev *= 0.95
		}
	} else {
		a.Mean += float64(dir) * 0.25 * a.StdDev
	}
	if err := m.ens.Configure(a.Mean, a.StdDev, p.axis); err != nil {
		m.setStatus(true, "%s rejected: %v", p.name, err)
		return
	}
	m.stats.rebuild(m.ens.Target())
	m.trails = nil
	m.setStatus(false, "%s = %.3f", p.name, m.value(p))
}

func (m *Model) toggleCoupling() {
	if m.ens.Dim() != metropolis.Dim2 {
		m.setStatus(true, "coupling applies to 2D walks only")
		return
	}
	next := metropolis.IndependentDraws
	if m.ens.Coupling() == metropolis.IndependentDraws {
		next = metropolis.SharedDraw
	}
	if err := m.ens.SetCoupling(next); err != nil {
		m.setStatus(true, "%v", err)
		return
	}
	m.setStatus(false, "coupling %s", next)
}

func (m *Model) setStatus(failed bool, format string, args ...any) {
	m.failed = failed
	m.status = fmt.Sprintf(format, args...)
	if failed {
		m.log.Warn("live view", zap.String("status", m.status))
	}
}

func (m Model) value(p param) float64 {
	t := m.ens.Target()
	a := t.X
	if p.axis == ensemble.AxisY {
		a = t.Y
	}
	if p.stddev {
		return a.StdDev
	}
	return a.Mean
}

// View renders the canvas and the side panel.
func (m Model) View() string {
	m.draw()
	canvasView := m.styles.canvas.Render(m.canvas.String())
	st := m.styles

	var s strings.Builder
	s.WriteString(st.header.Render(fmt.Sprintf("METROPOLIS %dD", m.ens.Dim())) + "\n")
	state := "RUNNING"
	if !m.running {
		state = "PAUSED"
	}
	s.WriteString(fmt.Sprintf("%s  x%d\n", state, m.speed))
	if m.status != "" {
		if m.failed {
			s.WriteString(st.err.Render(m.status) + "\n")
		} else {
			s.WriteString(st.value.Render(m.status) + "\n")
		}
	}

	if m.stats.hist.Total() > 0 {
		chart := asciigraph.Plot(m.stats.hist.Density(),
			asciigraph.Height(5), asciigraph.Width(histBins), asciigraph.Caption("x histogram"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Tick", fmt.Sprintf("%d", m.ens.Ticks()))
	row("Walkers", fmt.Sprintf("%d", m.ens.Len()))
	row("Accept", fmt.Sprintf("%.1f%%", 100*m.stats.rate.Value()))
	if n := m.stats.rate.Anomalies(); n > 0 {
		row("Anomalies", st.warning.Render(fmt.Sprintf("%d", n)))
	}
	row("Samples", fmt.Sprintf("%d", m.stats.momX.Count()))
	if m.hidden > 0 {
		row("Off-screen", st.warning.Render(fmt.Sprintf("%d", m.hidden)))
	}
	row("Mean x", fmt.Sprintf("%.3f ± %.3f", m.stats.momX.Value(), m.stats.momX.StdDev()))
	if m.ens.Dim() == metropolis.Dim2 {
		row("Mean y", fmt.Sprintf("%.3f ± %.3f", m.stats.momY.Value(), m.stats.momY.StdDev()))
		row("Coupling", m.ens.Coupling().String())
	}

	s.WriteString("\nTARGET\n")
	for i, p := range m.params {
		line := fmt.Sprintf("%-10s %.3f", p.name, m.value(p))
		if i == m.selected {
			s.WriteString(st.selected.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.label.Render(line) + "\n")
		}
	}
	s.WriteString(st.help.Render("SP:Pause N:Step R:Reset Q:Quit\n+/-:Walkers ↑↓:Tune ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  N        - Single tick (paused)     ║
║  R        - Reset walkers            ║
║  + / -    - Grow/shrink ensemble     ║
║  Tab      - Select parameter         ║
║  Up/K     - Increase parameter       ║
║  Down/J   - Decrease parameter       ║
║  C        - Toggle coupling (2D)     ║
║  F / S    - Faster/slower            ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
`

func (m *Model) draw() {
	m.canvas.Clear()
	m.hidden = 0
	target := m.ens.Target()
	vp := NewViewport(target, m.ens.Dim(), m.canvas)
	if m.ens.Dim() == metropolis.Dim2 {
		m.drawPlane(vp, target)
		return
	}
	m.drawCurve(vp, target.X)
}

func (m *Model) drawCurve(vp Viewport, a metropolis.Axis) {
	px, py := -1, 0
	for x := 0; x < vp.W; x++ {
		d, err := gaussian.Density(a.Mean, a.StdDev, vp.UnmapX(x))
		if err != nil {
			return
		}
		cx, cy := vp.Map(vp.UnmapX(x), d)
		if px >= 0 {
			m.canvas.DrawLine(px, py, cx, cy)
		}
		px, py = cx, cy
	}
	for _, p := range m.ens.Snapshot() {
		d, err := gaussian.Density(a.Mean, a.StdDev, p.X)
		if err != nil || math.IsNaN(d) {
			continue
		}
		if !vp.Contains(p.X, d) {
			m.hidden++
			continue
		}
		x, y := vp.Map(p.X, d)
		m.canvas.Dot(x, y, 1)
		m.canvas.Set(x, vp.H-1)
	}
}

func (m *Model) drawPlane(vp Viewport, t metropolis.Target) {
	cx, cy := vp.Map(t.X.Mean, t.Y.Mean)
	for d := -3; d <= 3; d++ {
		m.canvas.Set(cx+d, cy)
		m.canvas.Set(cx, cy+d)
	}
	for _, tr := range m.trails {
		for _, p := range tr {
			m.canvas.Set(vp.Map(p.X, p.Y))
		}
	}
	for _, p := range m.ens.Snapshot() {
		if !vp.Contains(p.X, p.Y) {
			m.hidden++
			continue
		}
		x, y := vp.Map(p.X, p.Y)
		m.canvas.Dot(x, y, 1)
	}
}

// Run blocks until the user quits the live view.
func Run(ens *ensemble.Ensemble, fps int, theme string, log *zap.Logger) error {
	p := tea.NewProgram(NewModel(ens, fps, theme, log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
