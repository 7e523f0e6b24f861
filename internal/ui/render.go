package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"swampcaptcha/internal/arcade"
	"swampcaptcha/internal/chat"
	flow "swampcaptcha/internal/progress"
)

const smsText = "SMS from Mom: Bring milk"

func (r *Root) headerText() string {
	p := r.flow.Progress()
	left := "SWAMP CAPTCHA"
	right := fmt.Sprintf("%d/%d", p.Completed, flow.TotalChallenges)
	if p.Failures > 0 {
		right += fmt.Sprintf("  strikes %d/%d", p.Failures, flow.BotThreshold)
	}
	gap := max(1, r.cols-2-len(left)-len(right))
	return left + strings.Repeat(" ", gap) + right
}

func (r *Root) statusText() string {
	width := max(1, r.cols-2)
	if r.statusFlash != "" {
		return trimForWidth(r.statusFlash, width)
	}
	return ansi.Truncate(r.help.View(r.keys), width, "…")
}

func (r *Root) renderTooSmall() string {
	return r.theme.Fail.Render(fmt.Sprintf("Terminal too small: %dx%d", r.cols, r.rows)) + "\n" +
		r.theme.Muted.Render("Resize to at least 48x22.")
}

func (r *Root) renderLanding() string {
	p := r.flow.Progress()
	lines := []string{
		r.theme.OverlayTitle.Render("Welcome to Super tough CAPTCHA"),
		"",
		r.theme.PanelBody.Render(fmt.Sprintf("Complete %d challenges to prove you are human", flow.TotalChallenges)),
		"",
		r.theme.Button.Render("Log in"),
		"",
		r.theme.Muted.Render(fmt.Sprintf("%d/%d", p.Completed, flow.TotalChallenges)),
	}
	return r.theme.Overlay.Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}

func (r *Root) renderSuccess() string {
	return r.theme.Overlay.Render(lipgloss.JoinVertical(lipgloss.Center,
		r.theme.Pass.Render("Access granted!"),
		"",
		r.theme.PanelBody.Render("You are human."),
	))
}

func (r *Root) renderBot() string {
	return r.theme.Overlay.Render(lipgloss.JoinVertical(lipgloss.Center,
		r.theme.Fail.Render("Nice try, you bot!"),
		"",
		r.theme.PanelBody.Render(fmt.Sprintf("You've failed the CAPTCHA %d times.", flow.BotThreshold)),
		r.theme.Muted.Render("Your robotic nature has been exposed."),
		r.theme.Muted.Render("Only humans can master the Nokia 3310 Snake game."),
		"",
		r.theme.Button.Render("Try Again (Human)"),
	))
}

func (r *Root) renderArcade() string {
	s := r.game.Session()
	cfg := r.game.Config()
	fit := BoardLayout(r.cols, r.rows, cfg.GridSize)
	boardW := fit.Grid * fit.CellSize * cellAspect
	boardH := fit.Grid * fit.CellSize

	board := r.renderBoard(s, fit)
	if card := r.statusCard(s.Status); card != "" {
		board = composeOverlay(board, card, max(boardW, lipgloss.Width(card)), max(boardH, lipgloss.Height(card)))
	}

	score := fmt.Sprintf("Score: %d/%d", s.Score, cfg.TargetScore)
	bar := r.batteryBar(max(6, boardW-6))
	battery := fmt.Sprintf("%s %3d%%", bar, s.Battery)

	return r.theme.Overlay.Render(lipgloss.JoinVertical(lipgloss.Center,
		r.theme.OverlayTitle.Render("NOKIA"),
		r.renderSMS(boardW),
		board,
		"",
		r.theme.PanelBody.Render(score),
		battery,
	))
}

func (r *Root) renderBoard(s arcade.Session, fit arcade.CanvasLayout) string {
	frame := arcade.Frame(s, fit.Grid)
	rows := make([]string, 0, fit.Grid*fit.CellSize)
	for _, row := range frame {
		var b strings.Builder
		for _, kind := range row {
			b.WriteString(r.cellGlyph(kind, fit.CellSize*cellAspect))
		}
		line := b.String()
		for i := 0; i < fit.CellSize; i++ {
			rows = append(rows, line)
		}
	}
	return strings.Join(rows, "\n")
}

func (r *Root) cellGlyph(kind arcade.CellKind, width int) string {
	switch kind {
	case arcade.CellHead:
		if r.ascii {
			return r.theme.SnakeHead.Render(strings.Repeat("@", width))
		}
		return r.theme.SnakeHead.Render(strings.Repeat("█", width))
	case arcade.CellBody:
		if r.ascii {
			return r.theme.SnakeBody.Render(strings.Repeat("#", width))
		}
		return r.theme.SnakeBody.Render(strings.Repeat("▓", width))
	case arcade.CellApple:
		return r.theme.Apple.Render(padRune(strings.Repeat(" ", (width-2)/2)+"()", width))
	default:
		if r.ascii {
			return r.theme.Screen.Render(padRune(" .", width))
		}
		return r.theme.Screen.Render(strings.Repeat(" ", width))
	}
}

func (r *Root) statusCard(status arcade.Status) string {
	var lines []string
	switch status {
	case arcade.StatusPaused:
		lines = []string{"Game Paused", "", "[enter] Continue"}
	case arcade.StatusBatteryDead:
		lines = []string{"Battery empty.", "Insert €1.99 to recharge.", "", "[p] Pay Now", "[b] Borrow Charger"}
	case arcade.StatusWon:
		lines = []string{"CAPTCHA PASSED!", "", "Playing ringtone..."}
	default:
		return ""
	}
	width := 0
	for _, l := range lines {
		width = max(width, len([]rune(l)))
	}
	return r.drawPanel("", lines, width+4, len(lines)+2)
}

// renderSMS slides the distraction banner in from the left as the spring
// settles. The row is always present so the board does not jump.
func (r *Root) renderSMS(width int) string {
	pos := r.smsPos
	if r.motion == "off" {
		pos = r.smsTarget()
	}
	if pos <= 0.02 {
		return strings.Repeat(" ", width)
	}
	pos = min(pos, 1)
	text := "✉ " + smsText
	if r.ascii {
		text = "[SMS] " + strings.TrimPrefix(smsText, "SMS ")
	}
	shown := int(pos * float64(ansi.StringWidth(text)))
	return r.theme.Pending.Render(padRune(ansi.Truncate(text, shown, ""), width))
}

func (r *Root) batteryBar(width int) string {
	m := r.battery
	m.SetWidth(width)
	return m.ViewAs(float64(r.game.Session().Battery) / float64(arcade.MaxBattery))
}

func (r *Root) chatWidth() int {
	return min(76, max(30, r.cols-8))
}

func (r *Root) renderChat() string {
	width := r.chatWidth()

	parts := []string{
		r.theme.OverlayTitle.Render("Challenge 2: Get past the ogre"),
		"",
		r.chatView.View(),
	}
	switch {
	case r.talk.Complete():
		parts = append(parts, r.theme.Pass.Render("The ogre steps aside. Opening the gate..."))
	case r.talk.Busy():
		parts = append(parts, r.spin.View()+" "+r.theme.Muted.Render("Shrek is thinking..."))
	}
	parts = append(parts, r.input.View())

	return r.theme.Overlay.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// transcriptContent renders every message; the viewport decides what fits.
func (r *Root) transcriptContent() string {
	inner := r.chatWidth() - 6
	var lines []string
	for i, m := range r.talk.Messages() {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, r.speakerLine(m))
		lines = append(lines, r.messageLines(m, inner)...)
	}
	return strings.Join(lines, "\n")
}

func (r *Root) layoutTranscript() {
	r.chatView.SetWidth(r.chatWidth() - 6)
	r.chatView.SetHeight(max(3, r.rows-13))
	r.syncTranscript()
}

// syncTranscript reloads the transcript and follows the newest message.
func (r *Root) syncTranscript() {
	if r.talk == nil {
		return
	}
	r.chatView.SetContent(r.transcriptContent())
	r.chatView.GotoBottom()
}

func (r *Root) speakerLine(m chat.Message) string {
	who := r.theme.Ogre.Render("Shrek")
	if m.Speaker == chat.SpeakerUser {
		who = r.theme.User.Render("You")
	}
	if m.At.IsZero() {
		return who
	}
	return who + " " + r.theme.Muted.Render(humanize.Time(m.At))
}

// messageLines renders counterpart replies as markdown. User text is wrapped
// as typed.
func (r *Root) messageLines(m chat.Message, width int) []string {
	text := m.Text
	if m.Speaker == chat.SpeakerCounterpart && r.markdown != nil {
		if rendered, err := r.markdown.Render(text); err == nil {
			text = strings.Trim(rendered, "\n")
		}
	} else {
		text = lipgloss.NewStyle().Width(width).Render(text)
	}
	return strings.Split(text, "\n")
}

func (r *Root) drawPanel(title string, lines []string, width, height int) string {
	width = max(4, width)
	height = max(3, height)
	innerW := width - 2
	innerH := height - 2

	h := "─"
	v := "│"
	tl := "┌"
	tr := "┐"
	bl := "└"
	br := "┘"
	if r.ascii {
		h = "-"
		v = "|"
		tl, tr, bl, br = "+", "+", "+", "+"
	}

	top := tl + strings.Repeat(h, innerW) + tr
	if title != "" && innerW > 2 {
		runes := []rune(top)
		for i, ch := range []rune(" " + title + " ") {
			pos := 1 + i
			if pos >= len(runes)-1 {
				break
			}
			runes[pos] = ch
		}
		top = string(runes)
	}

	out := make([]string, 0, height)
	out = append(out, top)
	for row := 0; row < innerH; row++ {
		line := ""
		if row < len(lines) {
			line = lines[row]
		}
		out = append(out, v+padRune(centerRune(line, innerW), innerW)+v)
	}
	out = append(out, bl+strings.Repeat(h, innerW)+br)
	return strings.Join(out, "\n")
}

func centerRune(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return strings.Repeat(" ", (width-n)/2) + s
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func padRune(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(s, "\t", "    "))
	if len(r) > width {
		r = r[:width]
	}
	if len(r) < width {
		r = append(r, []rune(strings.Repeat(" ", width-len(r)))...)
	}
	return string(r)
}

// composeOverlay centers overlay on base. Both are flattened to plain text
// first, so the base loses its colours under a modal.
func composeOverlay(base, overlay string, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return base
	}
	base = ansi.Strip(base)
	overlay = ansi.Strip(overlay)
	baseLines := strings.Split(base, "\n")
	if len(baseLines) < rows {
		baseLines = append(baseLines, make([]string, rows-len(baseLines))...)
	}
	for i := 0; i < rows; i++ {
		baseLines[i] = padRune(baseLines[i], cols)
	}

	overlayLines := strings.Split(strings.TrimRight(overlay, "\n"), "\n")
	ow := 1
	for _, line := range overlayLines {
		ow = max(ow, len([]rune(line)))
	}
	ow = min(ow, cols)
	oh := min(len(overlayLines), rows)
	startRow := (rows - oh) / 2
	startCol := max(0, (cols-ow)/2)

	for i := 0; i < oh; i++ {
		row := startRow + i
		dst := []rune(baseLines[row])
		src := []rune(overlayLines[i])
		if len(src) > ow {
			src = src[:ow]
		}
		for j := 0; j < ow && startCol+j < len(dst); j++ {
			dst[startCol+j] = ' '
		}
		for j := 0; j < len(src) && startCol+j < len(dst); j++ {
			dst[startCol+j] = src[j]
		}
		baseLines[row] = string(dst)
	}
	return strings.Join(baseLines[:rows], "\n")
}

func trimForWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(ansi.Strip(s), "\n", " "))
	if len(r) <= width {
		return string(r)
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
