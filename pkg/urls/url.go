package urls

// URL represents a link discovered on an archive page
type URL struct {
	Location string // absolute URL, fragment stripped when the extractor asks for it
	Title    string // anchor text
}

// Locations returns the Location of every entry, in order.
func Locations(urls []URL) []string {
	result := make([]string, 0, len(urls))
	for _, u := range urls {
		result = append(result, u.Location)
	}
	return result
}
