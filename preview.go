package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bodul/crossword/internal/crossword"
)

var (
	colorCyan = lipgloss.Color("36")
	colorGray = lipgloss.Color("245")
	colorDim  = lipgloss.Color("236")

	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleLetter = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("232")).Background(lipgloss.Color("255"))
	styleBlack  = lipgloss.NewStyle().Background(colorDim)
	styleNumber = lipgloss.NewStyle().Foreground(colorGray).Background(lipgloss.Color("255"))
	styleHeader = lipgloss.NewStyle().Bold(true).Underline(true)
	styleClue   = lipgloss.NewStyle().Foreground(colorGray)
)

// renderPuzzle draws the grid and its numbered clues for a terminal. With
// reveal unset, letter cells show only their clue number.
func renderPuzzle(p *crossword.Puzzle, reveal bool) (string, error) {
	letters, err := p.Letters()
	if err != nil {
		return "", err
	}

	clues := p.Clues()
	numbers := make(map[crossword.Cell]int, len(clues))
	for _, c := range clues {
		numbers[crossword.Cell{X: c.X, Y: c.Y}] = c.Number
	}

	var grid strings.Builder
	for y, row := range letters {
		for x, l := range row {
			switch {
			case l == 0:
				grid.WriteString(styleBlack.Render("   "))
			case reveal:
				grid.WriteString(styleLetter.Render(" " + string(l) + " "))
			default:
				label := "   "
				if n, ok := numbers[crossword.Cell{X: x, Y: y}]; ok {
					label = fmt.Sprintf("%-3d", n)
				}
				grid.WriteString(styleNumber.Render(label))
			}
		}
		if y < len(letters)-1 {
			grid.WriteByte('\n')
		}
	}

	var list strings.Builder
	current := crossword.Direction("")
	for _, c := range clues {
		if c.Direction != current {
			current = c.Direction
			if list.Len() > 0 {
				list.WriteByte('\n')
			}
			heading := "Across"
			if current == crossword.Vertical {
				heading = "Down"
			}
			list.WriteString(styleHeader.Render(heading) + "\n")
		}
		line := fmt.Sprintf("%2d. %s (%d)", c.Number, c.Text, len(c.Word))
		list.WriteString(styleClue.Render(line) + "\n")
	}

	title := p.Title
	if title == "" {
		title = "Crossword"
	}
	header := styleTitle.Render(fmt.Sprintf("%s (%dx%d, %d words)", title, p.Width, p.Height, p.Score()))
	body := lipgloss.JoinHorizontal(lipgloss.Top, grid.String(), "    ", list.String())
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body), nil
}
