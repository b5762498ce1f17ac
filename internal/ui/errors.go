package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"fxd/internal/domain"
	"fxd/internal/storage"
)

// ErrorViewer displays fixture failures in an interactive TUI
type ErrorViewer struct {
	storage storage.Storage
}

// NewErrorViewer creates a new ErrorViewer
func NewErrorViewer(st storage.Storage) *ErrorViewer {
	return &ErrorViewer{storage: st}
}

// View displays fixture failures in an interactive TUI. R toggles the
// resolved mark of the selected failure and persists it to storage.
func (ev *ErrorViewer) View(results *domain.RunResultsOutput) error {
	if len(results.Details) == 0 {
		color.Green("✓ No fixture failures found!")
		return nil
	}

	b := newBrowser(ev, results)
	if err := b.app.SetRoot(b.layout(), true).SetFocus(b.list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// browser holds the widgets of one viewer session
type browser struct {
	ev      *ErrorViewer
	results *domain.RunResultsOutput

	app     *tview.Application
	list    *tview.List
	header  *tview.TextView
	stats   *tview.TextView
	details *tview.TextView
}

func newBrowser(ev *ErrorViewer, results *domain.RunResultsOutput) *browser {
	b := &browser{
		ev:      ev,
		results: results,
		app:     tview.NewApplication(),
		list:    tview.NewList().ShowSecondaryText(false).SetHighlightFullLine(true),
		header:  tview.NewTextView().SetTextAlign(tview.AlignCenter).SetDynamicColors(true),
		stats:   tview.NewTextView().SetDynamicColors(true).SetWrap(false).SetWordWrap(false),
		details: tview.NewTextView().SetDynamicColors(true).SetWrap(true).SetWordWrap(true),
	}

	for i, failure := range results.Details {
		b.list.AddItem(listItemText(failure, i+1, failure.Resolved), "", 0, nil)
	}
	b.list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	b.list.SetChangedFunc(func(int, string, string, rune) { b.showSelected() })
	b.list.SetInputCapture(b.listKeys)
	b.details.SetInputCapture(b.detailKeys)

	b.updateHeader()
	b.showSelected()
	return b
}

// layout: header on top, failure list on the left third, stats and
// details on the right.
func (b *browser) layout() tview.Primitive {
	detailsPane := tview.NewFlex().
		AddItem(b.details, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)
	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(b.stats, 3, 0, false).
		AddItem(detailsPane, 0, 1, false)
	body := tview.NewFlex().
		AddItem(b.list, 0, 1, true).
		AddItem(right, 0, 2, false)

	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(b.header, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(body, 0, 1, true)
}

func (b *browser) updateHeader() {
	unresolved := 0
	for _, f := range b.results.Details {
		if !f.Resolved {
			unresolved++
		}
	}
	b.header.SetText(fmt.Sprintf(" Fixture Failures (%d total, %d unresolved) | ↑↓ navigate, [yellow]R[white] mark resolved, → details, ← back, Ctrl+C exit ",
		len(b.results.Details), unresolved))
}

func (b *browser) showSelected() {
	index := b.list.GetCurrentItem()
	if index < 0 || index >= len(b.results.Details) {
		return
	}
	failure := b.results.Details[index]
	b.stats.SetText(b.ev.formatFailureStats(failure, index+1))
	b.details.SetText(b.ev.formatFailureDetails(failure)).ScrollToBeginning()
}

func (b *browser) toggleResolved(index int) {
	failure := &b.results.Details[index]
	failure.Resolved = !failure.Resolved
	b.list.SetItemText(index, listItemText(*failure, index+1, failure.Resolved), "")
	b.updateHeader()
	b.showSelected()
	if err := b.ev.storage.SaveOutput(b.results); err != nil {
		b.stats.SetText(fmt.Sprintf("[red]failed to save resolved status: %s[white]", tview.Escape(err.Error())))
	}
}

func (b *browser) listKeys(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEnter, tcell.KeyRight:
		b.app.SetFocus(b.details)
		return nil
	case tcell.KeyCtrlC:
		b.app.Stop()
		return nil
	case tcell.KeyRune:
		if r := event.Rune(); r == 'r' || r == 'R' {
			if index := b.list.GetCurrentItem(); index >= 0 && index < len(b.results.Details) {
				b.toggleResolved(index)
			}
			return nil
		}
	}
	return event
}

func (b *browser) detailKeys(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyLeft, tcell.KeyEsc:
		b.app.SetFocus(b.list)
		return nil
	case tcell.KeyCtrlC:
		b.app.Stop()
		return nil
	}
	return event
}

func listItemText(failure domain.Failure, number int, resolved bool) string {
	name := failure.TestName
	if name == "" {
		name = fmt.Sprintf("Fixture %d", number)
	}
	if resolved {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", number, tview.Escape(name))
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", number, tview.Escape(name))
}

// formatFailureDetails formats a failure for display using tview color tags ([red], [cyan], etc.)
func (ev *ErrorViewer) formatFailureDetails(failure domain.Failure) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[red]✗ %s[white] [gray](%s)[white]\n\n", tview.Escape(failure.TestName), failure.Kind)
	fmt.Fprintf(&b, "[cyan]Fixture: %s[white]\n\n", tview.Escape(failure.FilePath))

	if failure.Message != "" && failure.Kind != domain.KindMismatch {
		fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n\n", tview.Escape(failure.Message))
	}

	if failure.Diff != "" {
		b.WriteString("[yellow]Diff (expected → actual):[white]\n")
		b.WriteString(colorDiff(failure.Diff))
		b.WriteString("\n")
	} else if failure.Kind == domain.KindMismatch {
		fmt.Fprintf(&b, "[yellow]Expected:[white]\n%s\n\n", tview.Escape(failure.Expected))
		fmt.Fprintf(&b, "[yellow]Actual:[white]\n%s\n", tview.Escape(failure.Actual))
	} else if failure.Actual != "" {
		fmt.Fprintf(&b, "[yellow]Decompiler output:[white]\n%s\n", tview.Escape(failure.Actual))
	}

	return b.String()
}

// colorDiff tags a unified diff: removed lines red, added lines green, hunk headers cyan
func colorDiff(diff string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		escaped := tview.Escape(line)
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			fmt.Fprintf(&b, "[gray]%s[white]\n", escaped)
		case strings.HasPrefix(line, "@@"):
			fmt.Fprintf(&b, "[cyan]%s[white]\n", escaped)
		case strings.HasPrefix(line, "-"):
			fmt.Fprintf(&b, "[red]%s[white]\n", escaped)
		case strings.HasPrefix(line, "+"):
			fmt.Fprintf(&b, "[green]%s[white]\n", escaped)
		default:
			b.WriteString(escaped + "\n")
		}
	}
	return b.String()
}

// formatFailureStats formats the stats header for a failure
func (ev *ErrorViewer) formatFailureStats(failure domain.Failure, number int) string {
	path := failure.FilePath
	if path == "" {
		path = "Unknown path"
	}

	name := failure.TestName
	if name == "" {
		name = fmt.Sprintf("Fixture %d", number)
	}

	return fmt.Sprintf("[cyan]group:[white] [yellow]%s[white]  [cyan]path:[white] [yellow]%s[white]::[yellow]%s[white]\n",
		tview.Escape(failure.Group), tview.Escape(path), tview.Escape(name))
}
