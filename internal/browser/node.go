package browser

// Node is one element of the accessibility tree produced by the in-page
// snapshot script. Field names mirror the JSON shape the script returns.
// Locator is set only for nodes eligible for a ref (interactive elements,
// headings, images); Bounds accompanies it for screenshot annotation.
type Node struct {
	Role      string     `json:"role"`
	Name      string     `json:"name,omitempty"`
	Level     int        `json:"level,omitempty"`
	Value     string     `json:"value,omitempty"`
	Disabled  bool       `json:"disabled,omitempty"`
	Checked   bool       `json:"checked,omitempty"`
	Expanded  bool       `json:"expanded,omitempty"`
	Collapsed bool       `json:"collapsed,omitempty"`
	Required  bool       `json:"required,omitempty"`
	Focused   bool       `json:"focused,omitempty"`
	Locator   string     `json:"locator,omitempty"`
	Bounds    [4]float64 `json:"bounds,omitempty"` // [x, y, w, h] in viewport pixels
	Children  []Node     `json:"children,omitempty"`
}

// PageInfo is the title and URL captured at snapshot time.
type PageInfo struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}
