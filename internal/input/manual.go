package input

// ParseURLList extracts target URLs from free-form text, one or more
// per line, in first-seen order with duplicates dropped. Surrounding
// labels and punctuation are ignored; only the URLs themselves are
// taken.
func ParseURLList(text string) ([]string, error) {
	seen := make(map[string]struct{})
	var urls []string

	for _, url := range urlPattern.FindAllString(text, -1) {
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		urls = append(urls, url)
	}

	if len(urls) == 0 {
		return nil, ErrNoURLsFound
	}
	return urls, nil
}
