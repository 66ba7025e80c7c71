package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/briefdeck/briefdeck/internal/layout"
	"github.com/briefdeck/briefdeck/internal/model"
	"github.com/briefdeck/briefdeck/internal/store"
)

// Monochrome theme with category accents, adaptive for light and dark terminals.
var (
	fgDim  = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#999999"}
	accent = lipgloss.AdaptiveColor{Light: "#4f46e5", Dark: "#818cf8"}

	titleBarStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.AdaptiveColor{Light: "#e0e0e0", Dark: "#333333"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"}).
			Padding(0, 1)

	statsStyle = lipgloss.NewStyle().
			Foreground(fgDim).
			Padding(0, 1)

	spinnerStyle = lipgloss.NewStyle().
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	cursorRowStyle = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#e0e0e0", Dark: "#282828"})

	dimStyle = lipgloss.NewStyle().
			Foreground(fgDim)

	footerStyle = lipgloss.NewStyle().
			Foreground(fgDim).
			Padding(0, 1)

	errorBannerStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#ffffff"}).
				Background(lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#7f1d1d"}).
				Padding(0, 1)

	flashStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#996600", Dark: "#ffcc00"})

	loadingStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(fgDim)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(fgDim).
			Padding(0, 1)

	largeCardStyle = cardStyle.
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	cardTitleStyle = lipgloss.NewStyle().Bold(true)
)

// masonryVisibleRows is how many card rows the masonry view scrolls by.
const masonryVisibleRows = 3

// senderWidth is the sender column width in the email list.
const senderWidth = 24

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	var body string
	switch m.view {
	case ViewNewspaper:
		body = m.newspaperView()
	case ViewMasonry:
		body = m.masonryView()
	default:
		body = m.dashboardView()
	}

	header := m.headerView()
	footer := m.footerView()
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	return lipgloss.JoinVertical(lipgloss.Left, header, fitHeight(body, bodyHeight, m.width), footer)
}

// headerView renders the title bar, the stats line and any error banners.
func (m Model) headerView() string {
	title := "briefdeck"
	if m.version != "" && m.version != "dev" {
		title = fmt.Sprintf("briefdeck [%s]", m.version)
	}
	line1 := fmt.Sprintf("%s - %s", title, m.view.Title())

	stats := fmt.Sprintf("%d emails | %d analyzed | sort: %s | filter: %s | %d col",
		len(m.state.Emails), len(m.state.Content), m.sort.Label(), m.filter, m.layout.columns)
	if m.loading() {
		stats += "  " + m.spinner.View()
	}

	lines := []string{
		titleBarStyle.Render(padRight(line1, m.width-2)),
		statsStyle.Render(padRight(stats, m.width-2)),
	}
	for _, msg := range m.errorMessages() {
		lines = append(lines, errorBannerStyle.Render(padRight(truncateRunes(msg, m.width-2), m.width-2)))
	}
	return strings.Join(lines, "\n")
}

// errorMessages collects the failures to show above stale data.
func (m Model) errorMessages() []string {
	var msgs []string
	for _, s := range []string{m.state.Error, m.state.CategoriesError, m.state.ContentError, m.state.AnalyzeError} {
		if s != "" {
			msgs = append(msgs, s)
		}
	}
	if m.insightsErr != nil {
		msgs = append(msgs, "Analytics unavailable: "+m.insightsErr.Error())
	}
	return msgs
}

// footerView renders the key help or the flash message.
func (m Model) footerView() string {
	if m.flashMessage != "" {
		return flashStyle.Render(padRight(" "+m.flashMessage, m.width))
	}
	return footerStyle.MaxWidth(m.width).Render(m.help.View(m.keys))
}

// placeholder renders the loading or empty message for a collection.
func (m Model) placeholder(status store.Status, what string) string {
	switch status {
	case store.StatusUninitialized, store.StatusLoading:
		return loadingStyle.Render(fmt.Sprintf("%s Loading %s...", m.spinner.View(), what))
	case store.StatusFailed:
		return dimStyle.Render(fmt.Sprintf("No %s available.", what))
	default:
		return dimStyle.Render(fmt.Sprintf("No %s yet.", what))
	}
}

// listRows is the number of email rows the dashboard shows.
func (m Model) listRows() int {
	// Title, stats, overview (3), section headings (3), detail panel (6), footer.
	return max(m.height-16, 3)
}

// dashboardView renders analytics, the email list and the selected email.
func (m Model) dashboardView() string {
	var b strings.Builder

	b.WriteString(m.overviewView())
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Recent emails"))
	b.WriteString("\n")
	if len(m.state.Emails) == 0 {
		b.WriteString(m.placeholder(m.state.EmailsStatus, "emails"))
		b.WriteString("\n")
	} else {
		end := min(m.rowOffset+m.listRows(), len(m.state.Emails))
		for i := m.rowOffset; i < end; i++ {
			b.WriteString(m.emailRow(m.state.Emails[i], i == m.cursor))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.selectedView())

	if m.summary != nil {
		b.WriteString("\n\n")
		b.WriteString(sectionStyle.Render("Daily summary " + m.summary.Date))
		b.WriteString("\n")
		for _, line := range summaryHighlights(m.summary.ContentMarkdown, 4) {
			b.WriteString(truncateRunes(line, m.width))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// overviewView renders the analytics overview, or store-derived counts
// when analytics are not available.
func (m Model) overviewView() string {
	if m.overview == nil {
		processed := 0
		for _, e := range m.state.Emails {
			if e.Processed {
				processed++
			}
		}
		return dimStyle.Render(fmt.Sprintf("%d emails loaded, %d processed", len(m.state.Emails), processed))
	}

	ov := m.overview
	line := fmt.Sprintf("Total %d | Processed %d (%.1f%%) | This week %d",
		ov.TotalEmails, ov.ProcessedEmails, ov.ProcessingRate, ov.EmailsThisWeek)

	var dist []string
	for _, d := range ov.CategoryDistribution {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(d.Color)).Render("■")
		dist = append(dist, fmt.Sprintf("%s %s %d", swatch, d.Category, d.Count))
	}
	if len(dist) == 0 {
		return line
	}
	return line + "\n" + strings.Join(dist, "  ")
}

// emailRow renders one line of the dashboard email list.
func (m Model) emailRow(e model.Email, isCursor bool) string {
	marker := "○"
	if e.Processed {
		marker = "●"
	}
	if e.ID == m.analyzing {
		marker = m.spinner.View()
	}
	prefix := "  "
	if isCursor {
		prefix = "> "
	}

	date := e.ReceivedAt.Format("Jan 02 15:04")
	sender := truncateRunes(e.DisplaySender(), senderWidth)
	// prefix, marker, three separators, sender and date
	subjectWidth := max(m.width-lipgloss.Width(prefix)-1-3-senderWidth-lipgloss.Width(date), 8)
	line := fmt.Sprintf("%s%s %s %s %s",
		prefix, marker, padRight(truncateRunes(e.Subject, subjectWidth), subjectWidth),
		padRight(sender, senderWidth), date)

	if isCursor {
		return cursorRowStyle.Render(padRight(line, m.width))
	}
	return padRight(line, m.width)
}

// selectedView renders the store's selected email and its analysis.
func (m Model) selectedView() string {
	sel := m.state.SelectedEmail
	if sel == nil {
		return dimStyle.Render("Press enter to select an email.")
	}

	lines := []string{
		sectionStyle.Render(truncateRunes(sel.Subject, m.width)),
		dimStyle.Render(truncateRunes(fmt.Sprintf("From %s, %s", sel.DisplaySender(), sel.ReceivedAt.Format("Mon Jan 2 15:04")), m.width)),
	}
	if c, ok := contentForEmail(m.state.Content, sel.ID); ok {
		lines = append(lines, truncateRunes(fmt.Sprintf("%s | importance %d | %d min read", c.Category, c.ImportanceScore, c.ReadingTime), m.width))
		lines = append(lines, wrapText(c.Summary, m.width)...)
		for _, kp := range c.KeyPoints {
			lines = append(lines, truncateRunes("• "+kp, m.width))
		}
	} else {
		lines = append(lines, dimStyle.Render("Not analyzed yet. Press a to analyze."))
	}
	return strings.Join(lines, "\n")
}

func contentForEmail(contents []model.AnalyzedContent, emailID string) (model.AnalyzedContent, bool) {
	for _, c := range contents {
		if c.EmailID == emailID {
			return c, true
		}
	}
	return model.AnalyzedContent{}, false
}

// summaryHighlights picks the numbered story headings from a daily summary,
// falling back to its first non-empty lines.
func summaryHighlights(markdown string, n int) []string {
	var stories, plain []string
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "### "):
			stories = append(stories, strings.TrimPrefix(line, "### "))
		case !strings.HasPrefix(line, "#"):
			plain = append(plain, line)
		}
	}
	if len(stories) == 0 {
		stories = plain
	}
	if len(stories) > n {
		stories = stories[:n]
	}
	return stories
}

// newspaperView renders two headline stories above per-category columns.
func (m Model) newspaperView() string {
	if len(m.state.Content) == 0 {
		return m.placeholder(m.state.ContentStatus, "stories")
	}
	headlines, groups := m.newspaperItems()
	if len(headlines) == 0 {
		return dimStyle.Render("No stories in this category.")
	}

	idx := 0
	var top []string
	headlineWidth := m.width
	if len(headlines) > 1 && m.layout.columns > 1 {
		headlineWidth = (m.width - 1) / 2
	}
	for _, h := range headlines {
		top = append(top, renderCard(h, layout.TierLarge, headlineWidth, idx == m.cursor))
		idx++
	}
	var headlineBlock string
	if headlineWidth < m.width {
		headlineBlock = lipgloss.JoinHorizontal(lipgloss.Top, top[0], " ", top[1])
	} else {
		headlineBlock = lipgloss.JoinVertical(lipgloss.Left, top...)
	}

	cols := max(m.layout.columns, 1)
	colWidth := columnWidth(m.width, cols)
	columns := make([][]string, cols)
	for g, group := range groups {
		c := g % cols
		title := group.Category
		if title == "" {
			title = "Other"
		}
		columns[c] = append(columns[c], sectionStyle.Render(truncateRunes(title, colWidth)))
		for _, it := range group.Items {
			line := truncateRunes(fmt.Sprintf("%d  %s", int(clampImportance(it.Importance)), it.Title), colWidth-2)
			if idx == m.cursor {
				line = cursorRowStyle.Render(padRight("> "+line, colWidth))
			} else {
				line = padRight("  "+line, colWidth)
			}
			columns[c] = append(columns[c], line)
			idx++
		}
		columns[c] = append(columns[c], "")
	}
	return headlineBlock + "\n" + joinColumns(columns, colWidth)
}

// masonryView renders the layout plan as columns of tier-sized cards.
func (m Model) masonryView() string {
	items := m.items()
	if len(items) == 0 {
		if len(m.state.Content) == 0 {
			return m.placeholder(m.state.ContentStatus, "stories")
		}
		return dimStyle.Render("No stories in this category.")
	}

	plan := m.layout.engine.Plan(items, m.layout.columns)
	colWidth := columnWidth(m.width, plan.Columns)
	columns := make([][]string, plan.Columns)
	for c := range plan.Columns {
		for _, pl := range plan.Column(c) {
			if pl.Row < m.rowOffset {
				continue
			}
			columns[c] = append(columns[c], renderCard(items[pl.Index], pl.Tier, colWidth, pl.Index == m.cursor))
		}
	}
	return joinColumns(columns, colWidth)
}

// columnWidth splits width into cols columns separated by one space.
func columnWidth(width, cols int) int {
	return max((width-(cols-1))/cols, 12)
}

// joinColumns lays blocks side by side, each padded to width.
func joinColumns(columns [][]string, width int) string {
	blocks := make([]string, 0, 2*len(columns))
	for i, col := range columns {
		if i > 0 {
			blocks = append(blocks, " ")
		}
		blocks = append(blocks, lipgloss.NewStyle().Width(width).Render(strings.Join(col, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}

// renderCard renders one content item. Larger tiers show more text.
func renderCard(it model.ContentItem, tier layout.Tier, width int, isCursor bool) string {
	style := cardStyle
	summaryLines := 0
	switch tier {
	case layout.TierLarge:
		style = largeCardStyle
		summaryLines = 4
	case layout.TierMedium:
		summaryLines = 2
	}
	if isCursor {
		style = style.BorderForeground(accent)
	}

	inner := max(width-4, 4) // border and padding
	lines := []string{cardTitleStyle.Render(truncateRunes(it.Title, inner))}
	if summaryLines > 0 {
		summary := wrapText(it.Summary, inner)
		if len(summary) > summaryLines {
			summary = summary[:summaryLines]
			summary[summaryLines-1] = truncateRunes(summary[summaryLines-1]+" ...", inner)
		}
		lines = append(lines, summary...)
	}

	meta := fmt.Sprintf("%s | %d | %dm", it.Category, int(clampImportance(it.Importance)), it.ReadingTime)
	if tier == layout.TierLarge && len(it.Tags) > 0 {
		meta += " | #" + strings.Join(it.Tags, " #")
	}
	lines = append(lines, dimStyle.Render(truncateRunes(meta, inner)))

	return style.Width(width - 2).Render(strings.Join(lines, "\n"))
}
