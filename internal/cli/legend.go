package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/jsontree/pkg/style"
)

// legendCommand prints the node color key.
func (c *CLI) legendCommand() *cobra.Command {
	var theme string

	cmd := &cobra.Command{
		Use:   "legend",
		Short: "Print the node color legend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			themes := style.Themes()
			if theme != "" {
				t, err := style.ThemeByName(theme)
				if err != nil {
					return err
				}
				themes = []style.Theme{t}
			}
			fmt.Println(legendTable(themes))
			return nil
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "show a single theme: light, dark")
	_ = cmd.RegisterFlagCompletionFunc("theme", completeThemes)

	return cmd
}

// legendTable renders one row per legend entry and one color column per theme.
func legendTable(themes []style.Theme) string {
	headers := []string{""}
	for _, t := range themes {
		headers = append(headers, t.Name)
	}

	var rows [][]string
	for i, entry := range style.Legend(style.Light) {
		row := []string{entry.Label}
		for _, t := range themes {
			c := style.Legend(t)[i].Color
			row = append(row, swatch(c)+" "+c)
		}
		rows = append(rows, row)
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		}).
		Render()
}
