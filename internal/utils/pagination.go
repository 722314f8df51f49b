package utils

import "strconv"

const DefaultPageSize = 10

// Page décrit une page 0-indexée.
type Page struct {
	Number int
	Size   int
}

// ParsePage lit les paramètres page/size. Les valeurs invalides retombent
// sur la première page de DefaultPageSize éléments.
func ParsePage(page, size string) Page {
	p := Page{Number: 0, Size: DefaultPageSize}
	if n, err := strconv.Atoi(page); err == nil && n >= 0 {
		p.Number = n
	}
	if n, err := strconv.Atoi(size); err == nil && n > 0 && n <= 100 {
		p.Size = n
	}
	return p
}

// Paginate découpe s et renvoie le nombre total de pages.
func Paginate[T any](s []T, p Page) (items []T, totalPages int) {
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	totalPages = (len(s) + p.Size - 1) / p.Size
	if p.Number < 0 || p.Number >= totalPages {
		return []T{}, totalPages
	}
	start := p.Number * p.Size
	end := start + p.Size
	if end > len(s) {
		end = len(s)
	}
	return s[start:end], totalPages
}
