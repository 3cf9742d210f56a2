package mailbox

import "strings"

// htmlToText strips markup from an HTML body so a message without a plain
// text part still yields usable text for extraction and embedding.
func htmlToText(html string) string {
	// Remove script and style tags with their contents
	html = removeTagsWithContent(html, "script")
	html = removeTagsWithContent(html, "style")

	// Replace common HTML entities
	html = strings.ReplaceAll(html, "&nbsp;", " ")
	html = strings.ReplaceAll(html, "&lt;", "<")
	html = strings.ReplaceAll(html, "&gt;", ">")
	html = strings.ReplaceAll(html, "&amp;", "&")
	html = strings.ReplaceAll(html, "&quot;", "\"")
	html = strings.ReplaceAll(html, "&#39;", "'")
	html = strings.ReplaceAll(html, "<br>", "\n")
	html = strings.ReplaceAll(html, "<br/>", "\n")
	html = strings.ReplaceAll(html, "<br />", "\n")
	html = strings.ReplaceAll(html, "</p>", "\n\n")
	html = strings.ReplaceAll(html, "</div>", "\n")

	// Remove all remaining HTML tags
	var result strings.Builder
	inTag := false
	for _, char := range html {
		if char == '<' {
			inTag = true
			continue
		}
		if char == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(char)
		}
	}

	// Clean up whitespace
	text := result.String()
	text = strings.TrimSpace(text)

	// Remove excessive newlines
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}

	return text
}

// removeTagsWithContent removes HTML tags and their content
func removeTagsWithContent(html, tag string) string {
	openTag := "<" + tag
	closeTag := "</" + tag + ">"

	for {
		start := strings.Index(strings.ToLower(html), strings.ToLower(openTag))
		if start == -1 {
			break
		}

		// Find the closing tag
		end := strings.Index(strings.ToLower(html[start:]), strings.ToLower(closeTag))
		if end == -1 {
			break
		}
		end += start + len(closeTag)

		// Remove the section
		html = html[:start] + html[end:]
	}

	return html
}
