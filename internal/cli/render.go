package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/studylog/internal/errors"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	DangerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

// Table renders rows under headers with a rounded border.
func Table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Render()
}

// Bar draws value as a horizontal bar scaled against limit.
func Bar(value, limit float64, width int) string {
	if limit <= 0 || width <= 0 {
		return ""
	}
	n := max(0, min(width, int(value/limit*float64(width))))
	return barStyle.Render(strings.Repeat("█", n)) + MutedStyle.Render(strings.Repeat("░", width-n))
}

// Num formats a float without trailing zeros.
func Num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func Percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// OptionalNum renders a missing value as "-".
func OptionalNum(p *float64) string {
	if p == nil {
		return "-"
	}
	return Num(*p)
}

func (c *Context) Success(format string, args ...any) {
	c.Println(SuccessStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

func (c *Context) Warn(format string, args ...any) {
	c.Println(WarningStyle.Render("⚠ " + fmt.Sprintf(format, args...)))
}

// Title prints a section heading.
func (c *Context) Title(s string) {
	c.Println(TitleStyle.Render(s))
}

// Rejected reports a duplicate or validation failure from a repository as a
// warning and swallows it. Any other error is returned unchanged.
func (c *Context) Rejected(err error) error {
	if err == nil || !errors.IsRecoverable(err) {
		return err
	}
	c.Println(WarningStyle.Render(errors.Warning(err)))
	return nil
}
