package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/shelf/internal/models"
)

// Styles used by the Render* helpers. Exported so the TUI shares the same look.
var (
	TitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	AccentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	MutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Italic(true)
	StarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	CardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
)

// RenderMember renders a profile card. counts may be nil.
func RenderMember(m *models.Member, counts *models.FollowCounts) string {
	if m == nil {
		return MutedStyle.Render("not signed in")
	}

	lines := []string{TitleStyle.Render(m.Name) + " " + MutedStyle.Render("@"+m.Handle)}
	if m.Email != "" {
		lines = append(lines, m.Email)
	}
	if m.Bio != "" {
		lines = append(lines, "", m.Bio)
	}
	if counts != nil {
		lines = append(lines, "", RenderCounts(*counts))
	}
	return CardStyle.Render(strings.Join(lines, "\n"))
}

// RenderCounts renders follower totals on one line.
func RenderCounts(c models.FollowCounts) string {
	return fmt.Sprintf("%s followers · %s following",
		AccentStyle.Render(fmt.Sprint(c.Followers)),
		AccentStyle.Render(fmt.Sprint(c.Following)))
}

// RenderItems renders a numbered item list. favorites marks items with a star.
func RenderItems(items []models.MediaItem, favorites map[models.MediaRef]bool) string {
	if len(items) == 0 {
		return MutedStyle.Render("nothing here yet")
	}

	var b strings.Builder
	for i, item := range items {
		mark := "  "
		if favorites[item.Ref] {
			mark = StarStyle.Render("★ ")
		}
		fmt.Fprintf(&b, "%s%3d. %s", mark, i+1, itemLine(item))
		b.WriteString(" " + MutedStyle.Render(item.Ref.String()))
		if i < len(items)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Stars renders a 0-5 rating in half steps.
func Stars(rating float64) string {
	full := int(rating)
	half := rating-float64(full) >= 0.5
	s := strings.Repeat("★", full)
	if half {
		s += "½"
	}
	return StarStyle.Render(s)
}

// RenderAverage renders a rating summary.
func RenderAverage(avg models.ReviewAverage) string {
	if avg.Count == 0 {
		return MutedStyle.Render("no reviews yet")
	}
	return fmt.Sprintf("%s %.1f (%d reviews)", Stars(avg.Average), avg.Average, avg.Count)
}

// RenderReviews renders reviews newest first as they come from the backend.
func RenderReviews(reviews []models.Review) string {
	if len(reviews) == 0 {
		return MutedStyle.Render("no reviews yet")
	}

	blocks := make([]string, 0, len(reviews))
	for _, r := range reviews {
		who := "@" + r.Handle
		if r.Handle == "" {
			who = fmt.Sprintf("member %d", r.MemberID)
		}
		head := fmt.Sprintf("%s %s", AccentStyle.Render(who), Stars(r.Rating))
		if !r.CreatedAt.IsZero() {
			head += " " + MutedStyle.Render(r.CreatedAt.Format("2006-01-02"))
		}
		if r.Text != "" {
			head += "\n" + r.Text
		}
		blocks = append(blocks, head)
	}
	return strings.Join(blocks, "\n\n")
}
