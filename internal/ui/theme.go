package ui

import "charm.land/lipgloss/v2"

type Theme struct {
	Header       lipgloss.Style
	Status       lipgloss.Style
	PanelTitle   lipgloss.Style
	PanelBorder  lipgloss.Style
	PanelBody    lipgloss.Style
	Overlay      lipgloss.Style
	OverlayTitle lipgloss.Style
	Accent       lipgloss.Style
	Button       lipgloss.Style
	Pass         lipgloss.Style
	Fail         lipgloss.Style
	Pending      lipgloss.Style
	Muted        lipgloss.Style
	Info         lipgloss.Style

	Screen    lipgloss.Style
	SnakeHead lipgloss.Style
	SnakeBody lipgloss.Style
	Apple     lipgloss.Style
	User      lipgloss.Style
	Ogre      lipgloss.Style

	BatteryColors []string
}

func DefaultTheme() Theme {
	return ThemeForVariant("swamp")
}

func ThemeForVariant(variant string) Theme {
	switch variant {
	case "cozy":
		return cozyTheme()
	case "nokia":
		return nokiaTheme()
	default:
		return swampTheme()
	}
}

func swampTheme() Theme {
	ogre := lipgloss.Color("#8BC34A")
	moss := lipgloss.Color("#4E7A27")
	mud := lipgloss.Color("#7A5230")
	brick := lipgloss.Color("#FF6F91")
	amber := lipgloss.Color("#FFC857")
	ink := lipgloss.Color("#0F1A0C")
	bog := lipgloss.Color("#1E2E17")
	reed := lipgloss.Color("#EAF5DC")
	lcd := lipgloss.Color("#9BBC0F")
	lcdInk := lipgloss.Color("#0F380F")

	return Theme{
		Header: lipgloss.NewStyle().
			Background(ink).
			Foreground(reed).
			Padding(0, 1),
		Status: lipgloss.NewStyle().
			Background(bog).
			Foreground(reed).
			Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().
			Foreground(ogre).
			Bold(true),
		PanelBorder: lipgloss.NewStyle().
			Foreground(moss),
		PanelBody: lipgloss.NewStyle().
			Foreground(reed),
		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ogre).
			Background(ink).
			Foreground(reed).
			Padding(1, 2),
		OverlayTitle: lipgloss.NewStyle().
			Foreground(ogre).
			Bold(true),
		Accent: lipgloss.NewStyle().
			Foreground(ogre).
			Bold(true),
		Button: lipgloss.NewStyle().
			Background(moss).
			Foreground(reed).
			Bold(true).
			Padding(0, 2),
		Pass:    lipgloss.NewStyle().Foreground(ogre).Bold(true),
		Fail:    lipgloss.NewStyle().Foreground(brick).Bold(true),
		Pending: lipgloss.NewStyle().Foreground(amber),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#9CAF88")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("#B5D99C")),

		Screen:    lipgloss.NewStyle().Background(lcd).Foreground(lcdInk),
		SnakeHead: lipgloss.NewStyle().Background(lcd).Foreground(lcdInk).Bold(true),
		SnakeBody: lipgloss.NewStyle().Background(lcd).Foreground(lipgloss.Color("#306230")),
		Apple:     lipgloss.NewStyle().Background(lcd).Foreground(mud).Bold(true),
		User:      lipgloss.NewStyle().Foreground(amber).Bold(true),
		Ogre:      lipgloss.NewStyle().Foreground(ogre).Bold(true),

		BatteryColors: []string{"#FF6F91", "#FFC857", "#8BC34A"},
	}
}

func cozyTheme() Theme {
	honey := lipgloss.Color("#F2B872")
	sage := lipgloss.Color("#80C4A3")
	rose := lipgloss.Color("#D17A86")
	night := lipgloss.Color("#1E2430")
	slate := lipgloss.Color("#30394A")
	paper := lipgloss.Color("#F4F6FA")
	sky := lipgloss.Color("#86B6F6")

	return Theme{
		Header:      lipgloss.NewStyle().Background(night).Foreground(paper).Padding(0, 1),
		Status:      lipgloss.NewStyle().Background(slate).Foreground(paper).Padding(0, 1),
		PanelTitle:  lipgloss.NewStyle().Foreground(honey).Bold(true),
		PanelBorder: lipgloss.NewStyle().Foreground(slate),
		PanelBody:   lipgloss.NewStyle().Foreground(paper),
		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(honey).
			Background(night).
			Foreground(paper).
			Padding(1, 2),
		OverlayTitle: lipgloss.NewStyle().Foreground(honey).Bold(true),
		Accent:       lipgloss.NewStyle().Foreground(sky).Bold(true),
		Button:       lipgloss.NewStyle().Background(sky).Foreground(night).Bold(true).Padding(0, 2),
		Pass:         lipgloss.NewStyle().Foreground(sage).Bold(true),
		Fail:         lipgloss.NewStyle().Foreground(rose).Bold(true),
		Pending:      lipgloss.NewStyle().Foreground(honey),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("#A3ACC2")),
		Info:         lipgloss.NewStyle().Foreground(sky),

		Screen:    lipgloss.NewStyle().Background(slate).Foreground(paper),
		SnakeHead: lipgloss.NewStyle().Background(slate).Foreground(sage).Bold(true),
		SnakeBody: lipgloss.NewStyle().Background(slate).Foreground(sage),
		Apple:     lipgloss.NewStyle().Background(slate).Foreground(rose).Bold(true),
		User:      lipgloss.NewStyle().Foreground(sky).Bold(true),
		Ogre:      lipgloss.NewStyle().Foreground(sage).Bold(true),

		BatteryColors: []string{"#D17A86", "#F2B872", "#80C4A3"},
	}
}

func nokiaTheme() Theme {
	lime := lipgloss.Color("#9CF5A2")
	amber := lipgloss.Color("#E5D47A")
	red := lipgloss.Color("#FF6B6B")
	deep := lipgloss.Color("#07150A")
	forest := lipgloss.Color("#12301A")
	glow := lipgloss.Color("#C5F7C4")

	return Theme{
		Header:      lipgloss.NewStyle().Background(deep).Foreground(glow).Padding(0, 1),
		Status:      lipgloss.NewStyle().Background(forest).Foreground(glow).Padding(0, 1),
		PanelTitle:  lipgloss.NewStyle().Foreground(amber).Bold(true),
		PanelBorder: lipgloss.NewStyle().Foreground(forest),
		PanelBody:   lipgloss.NewStyle().Foreground(glow),
		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(amber).
			Background(deep).
			Foreground(glow).
			Padding(1, 2),
		OverlayTitle: lipgloss.NewStyle().Foreground(amber).Bold(true),
		Accent:       lipgloss.NewStyle().Foreground(lime).Bold(true),
		Button:       lipgloss.NewStyle().Reverse(true).Bold(true).Padding(0, 2),
		Pass:         lipgloss.NewStyle().Foreground(lime).Bold(true),
		Fail:         lipgloss.NewStyle().Foreground(red).Bold(true),
		Pending:      lipgloss.NewStyle().Foreground(amber),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("#73A17A")),
		Info:         lipgloss.NewStyle().Foreground(lime),

		Screen:    lipgloss.NewStyle().Foreground(glow),
		SnakeHead: lipgloss.NewStyle().Foreground(lime).Bold(true),
		SnakeBody: lipgloss.NewStyle().Foreground(lime),
		Apple:     lipgloss.NewStyle().Foreground(amber).Bold(true),
		User:      lipgloss.NewStyle().Foreground(amber).Bold(true),
		Ogre:      lipgloss.NewStyle().Foreground(lime).Bold(true),

		BatteryColors: []string{"#FF6B6B", "#E5D47A", "#9CF5A2"},
	}
}
