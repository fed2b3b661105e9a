package receipt

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Text lays the document out as fixed-width lines
func Text(doc Document) string {
	w := doc.Width
	if w <= 0 {
		w = ScreenWidth
	}

	var b strings.Builder
	rule := strings.Repeat("-", w)

	if doc.Restaurant != "" {
		writeCentered(&b, doc.Restaurant, w)
	}
	writeCentered(&b, doc.Title, w)
	writeCentered(&b, doc.Greeting, w)
	b.WriteString(rule + "\n")

	writeRow(&b, "Order ID:", doc.OrderID, w)
	writeRow(&b, "Date:", doc.Date, w)
	writeRow(&b, "Order Type:", doc.OrderType, w)
	writeRow(&b, "Status:", string(doc.Status), w)
	b.WriteString(rule + "\n")

	writeCentered(&b, "ORDER ITEMS", w)
	for _, line := range doc.Lines {
		for _, part := range wrap(line.Name, w) {
			b.WriteString(part + "\n")
		}
		writeRow(&b, fmt.Sprintf("  %s x %d", money(line.Price), line.Quantity), money(line.Amount), w)
	}
	b.WriteString(rule + "\n")

	writeRow(&b, "Subtotal:", money(doc.Subtotal), w)
	writeRow(&b, "Tax:", money(doc.Tax), w)
	writeRow(&b, "Total:", money(doc.Total), w)
	b.WriteString(rule + "\n")

	for _, part := range wrap(doc.Footer, w) {
		writeCentered(&b, part, w)
	}

	if len(doc.Controls) > 0 {
		controls := make([]string, len(doc.Controls))
		for i, c := range doc.Controls {
			controls[i] = "[" + c + "]"
		}
		b.WriteString("\n")
		writeCentered(&b, strings.Join(controls, " "), w)
	}
	return b.String()
}

// writeRow puts left and right on one line, or on two when they do not fit
func writeRow(b *strings.Builder, left, right string, w int) {
	gap := w - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		b.WriteString(truncate(left, w) + "\n")
		pad := w - utf8.RuneCountInString(right)
		if pad < 0 {
			pad = 0
		}
		b.WriteString(strings.Repeat(" ", pad) + truncate(right, w) + "\n")
		return
	}
	b.WriteString(left + strings.Repeat(" ", gap) + right + "\n")
}

func writeCentered(b *strings.Builder, s string, w int) {
	s = truncate(s, w)
	pad := (w - utf8.RuneCountInString(s)) / 2
	b.WriteString(strings.Repeat(" ", pad) + s + "\n")
}

// wrap breaks s on spaces into lines of at most w runes
func wrap(s string, w int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := ""
	for _, word := range words {
		word = truncate(word, w)
		switch {
		case current == "":
			current = word
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= w:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	return append(lines, current)
}

func truncate(s string, w int) string {
	if utf8.RuneCountInString(s) <= w {
		return s
	}
	return string([]rune(s)[:w])
}
