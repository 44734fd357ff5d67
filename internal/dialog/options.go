package dialog

import "chatlearn/internal/store"

// The chat UI renders menus from this exact structure; field names and
// nesting must not change.

// OptionValue is the payload the chat UI echoes back when an option is
// picked.
type OptionValue struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
}

// MenuOption is one selectable entry.
type MenuOption struct {
	Label string      `json:"label"`
	Value OptionValue `json:"value"`
}

// OptionGroup is a titled list of options.
type OptionGroup struct {
	ResponseType string   `json:"response_type"`
	Description  string   `json:"description"`
	Title        string   `json:"title"`
	Options      []MenuOption `json:"options"`
}

// CustomOptions is the wrapper shape the chat UI consumes.
type CustomOptions struct {
	OptionResponse []OptionGroup `json:"optionResponse"`
}

// LabelValue is a fixed additional option appended to a built menu.
type LabelValue struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func newOption(label, text string) MenuOption {
	o := MenuOption{Label: label}
	o.Value.Input.Text = text
	return o
}

// buildOptions turns an array of records into a single option group. Records
// whose label field is empty are skipped; input order is preserved. A
// non-empty valuePrefix is prepended to each value with a space.
func buildOptions(items []map[string]interface{}, title, labelField, valueField, valuePrefix string) *CustomOptions {
	group := OptionGroup{
		ResponseType: "option",
		Title:        title,
		Options:      []MenuOption{},
	}
	for _, item := range items {
		label := stringOf(item[labelField])
		if label == "" {
			continue
		}
		text := stringOf(item[valueField])
		if valuePrefix != "" {
			text = valuePrefix + " " + text
		}
		group.Options = append(group.Options, newOption(label, text))
	}
	return &CustomOptions{OptionResponse: []OptionGroup{group}}
}

// appendOptions adds fixed options after the existing ones. Entries are
// appended as-is, never merged or deduplicated, so label collisions keep
// both options.
func appendOptions(menu *CustomOptions, additional []LabelValue) *CustomOptions {
	if menu == nil || len(menu.OptionResponse) == 0 {
		return menu
	}
	for _, lv := range additional {
		if lv.Label == "" {
			continue
		}
		menu.OptionResponse[0].Options = append(menu.OptionResponse[0].Options, newOption(lv.Label, lv.Value))
	}
	return menu
}

// docsToMaps converts a slice of store documents for the option builder.
func docsToMaps(docs []store.Doc) []map[string]interface{} {
	out := make([]map[string]interface{}, len(docs))
	for i, d := range docs {
		out[i] = map[string]interface{}(d)
	}
	return out
}
