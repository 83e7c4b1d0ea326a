package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"nyseclock/internal/api"
	"nyseclock/internal/domain"
	"nyseclock/internal/market"
	"nyseclock/internal/util"
	"nyseclock/pkg/nyseclock"
)

const watchInterval = time.Second

// Styles.
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4")).Padding(0, 1)
	openStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	extendedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	closedStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	reasonStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1).Width(30)
	labelStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	countStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
)

func statusStyle(status string) lipgloss.Style {
	switch domain.Status(status) {
	case domain.StatusOpen:
		return openStyle
	case domain.StatusPremarket, domain.StatusAftermarket:
		return extendedStyle
	default:
		return closedStyle
	}
}

// fetchFunc returns the market status as of now.
type fetchFunc func(ctx context.Context, now time.Time) (api.StatusJSON, error)

type tickMsg time.Time

type statusMsg struct {
	status api.StatusJSON
	err    error
}

type watchKeys struct {
	Refresh key.Binding
	Quit    key.Binding
}

func (k watchKeys) ShortHelp() []key.Binding  { return []key.Binding{k.Refresh, k.Quit} }
func (k watchKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

func newWatchKeys() watchKeys {
	return watchKeys{
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

type watchModel struct {
	ctx   context.Context
	fetch fetchFunc
	now   func() time.Time
	keys  watchKeys
	help  help.Model

	status api.StatusJSON
	err    error
	loaded bool
}

func newWatchModel(ctx context.Context, fetch fetchFunc, now func() time.Time) watchModel {
	return watchModel{
		ctx:   ctx,
		fetch: fetch,
		now:   now,
		keys:  newWatchKeys(),
		help:  help.New(),
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(watchInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m watchModel) fetchCmd() tea.Cmd {
	ctx, fetch, now := m.ctx, m.fetch, m.now()
	return func() tea.Msg {
		st, err := fetch(ctx, now)
		return statusMsg{status: st, err: err}
	}
}

func (m watchModel) Init() tea.Cmd {
	return m.fetchCmd()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m, m.fetchCmd()
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tickMsg:
		return m, m.fetchCmd()

	case statusMsg:
		// A failed refresh keeps the last good status on screen.
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.status
			m.loaded = true
		}
		return m, tickCmd()
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("NYSE Market Status"))
	b.WriteString("\n\n")

	if !m.loaded {
		if m.err != nil {
			b.WriteString(warnStyle.Render("error: " + m.err.Error()))
		} else {
			b.WriteString(reasonStyle.Render("loading..."))
		}
		b.WriteString("\n\n" + m.help.View(m.keys))
		return b.String()
	}

	st := m.status
	b.WriteString("Market is " + statusStyle(st.Status).Render(st.Status))
	b.WriteString("\n")
	if st.Reason != "" {
		b.WriteString(reasonStyle.Render("Closed for " + st.Reason))
		b.WriteString("\n")
	}
	if st.Advisory != "" {
		b.WriteString(warnStyle.Render(st.Advisory))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(warnStyle.Render("refresh failed: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	now := m.now()
	ny := market.MustNYSEZone().Location()
	cards := make([]string, 0, 2)
	for _, ev := range st.Upcoming {
		if len(cards) == 2 {
			break
		}
		cards = append(cards, cardStyle.Render(fmt.Sprintf("%s\n%s\n%s",
			labelStyle.Render(ev.Label),
			ev.At.In(ny).Format("Mon Jan 2 15:04 MST"),
			countStyle.Render(util.FormatCountdown(ev.At.Sub(now))),
		)))
	}
	if len(cards) > 0 {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
		b.WriteString("\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Show a live market status screen with countdowns to the next boundaries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var (
				fetch fetchFunc
				now   = time.Now
			)
			if opts.serverURL != "" {
				client := nyseclock.NewClient(opts.serverURL)
				fetch = func(ctx context.Context, _ time.Time) (api.StatusJSON, error) {
					remote, err := client.GetStatus(ctx)
					if err != nil {
						return api.StatusJSON{}, err
					}
					return statusFromRemote(remote), nil
				}
			} else {
				engine, start, err := opts.localEngine(ctx)
				if err != nil {
					return err
				}
				// With --at the clock runs forward from that instant.
				launched := time.Now()
				now = func() time.Time { return start.Add(time.Since(launched)) }
				fetch = func(_ context.Context, at time.Time) (api.StatusJSON, error) {
					return api.NewStatusJSON(engine.Snapshot(at)), nil
				}
			}

			p := tea.NewProgram(
				newWatchModel(ctx, fetch, now),
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err := p.Run()
			return err
		},
	}
}
