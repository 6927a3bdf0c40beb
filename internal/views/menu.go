package views

import "net/url"

type MenuItem struct {
	Label string `json:"label"`
	Sub   string `json:"sub"`
	Href  string `json:"href"`
}

type MenuSection struct {
	Category string     `json:"category"`
	Title    string     `json:"title"`
	Items    []MenuItem `json:"items"`
}

var menu = []struct {
	category string
	items    [][2]string
}{
	{"peripherals", [][2]string{
		{"Monitor", "monitor"},
		{"Mouse", "mouse"},
		{"Keyboard", "keyboard"},
		{"Headset", "headset"},
		{"Mouse Pad", "mousepad"},
		{"Gamepad", "gamepad"},
		{"Laptop Cooler", "cooler"},
		{"Gaming Chair", "chair"},
	}},
	{"components", [][2]string{
		{"Case", "case"},
		{"CPU", "cpu"},
		{"Motherboard", "motherboard"},
		{"RAM", "ram"},
		{"GPU", "gpu"},
		{"SSD", "ssd"},
		{"PSU", "psu"},
		{"Cooling", "cooling"},
	}},
}

// Menu returns the sub-category navigation, a fresh copy per call.
func Menu() []MenuSection {
	sections := make([]MenuSection, 0, len(menu))
	for _, m := range menu {
		sec := MenuSection{
			Category: m.category,
			Title:    CategoryTitle(m.category),
			Items:    make([]MenuItem, 0, len(m.items)),
		}
		for _, it := range m.items {
			sec.Items = append(sec.Items, MenuItem{
				Label: it[0],
				Sub:   it[1],
				Href:  "/category/" + m.category + "?" + url.Values{"sub": {it[1]}}.Encode(),
			})
		}
		sections = append(sections, sec)
	}
	return sections
}
