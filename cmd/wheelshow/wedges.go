package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lox/wheelshow/internal/wheel"
)

// WedgesCmd prints the standard wheel
type WedgesCmd struct{}

func (c *WedgesCmd) Run() error {
	fmt.Println(wedgeTable(wheel.Standard()))
	return nil
}

func wedgeTable(wedges []wheel.Wedge) string {
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("#", "Wedge", "Kind").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cell.Bold(true)
			}
			if col == 0 {
				return cell.Align(lipgloss.Right)
			}
			return cell
		})

	for i, w := range wedges {
		t.Row(fmt.Sprint(i), w.Label, w.Kind.String())
	}
	return t.String()
}
