package jira

import "strings"

// ADF is an Atlassian Document Format document, required for description
// fields on API v3.
type ADF struct {
	Type    string    `json:"type"`
	Version int       `json:"version"`
	Content []ADFNode `json:"content"`
}

// ADFNode is one block or inline node.
type ADFNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text,omitempty"`
	Content []ADFNode `json:"content,omitempty"`
}

// TextToADF converts plain text to an ADF document. Blank lines separate
// paragraphs; lines starting with "- " or "* " form bullet lists. Richer
// markdown is passed through as text.
func TextToADF(text string) ADF {
	doc := ADF{Type: "doc", Version: 1}

	for _, block := range strings.Split(strings.TrimSpace(text), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if items := bulletItems(block); items != nil {
			doc.Content = append(doc.Content, bulletList(items))
			continue
		}
		doc.Content = append(doc.Content, ADFNode{
			Type:    "paragraph",
			Content: []ADFNode{{Type: "text", Text: block}},
		})
	}

	if len(doc.Content) == 0 {
		doc.Content = []ADFNode{{Type: "paragraph"}}
	}
	return doc
}

// bulletItems returns the item texts when every line of the block is a
// bullet, nil otherwise.
func bulletItems(block string) []string {
	lines := strings.Split(block, "\n")
	items := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "- "):
			items = append(items, strings.TrimPrefix(line, "- "))
		case strings.HasPrefix(line, "* "):
			items = append(items, strings.TrimPrefix(line, "* "))
		default:
			return nil
		}
	}
	return items
}

func bulletList(items []string) ADFNode {
	list := ADFNode{Type: "bulletList"}
	for _, item := range items {
		list.Content = append(list.Content, ADFNode{
			Type: "listItem",
			Content: []ADFNode{{
				Type:    "paragraph",
				Content: []ADFNode{{Type: "text", Text: item}},
			}},
		})
	}
	return list
}
