package utils

import "strconv"

// Page is a normalised page number and size
type Page struct {
	Number int // 1-based page number
	Size   int // Items per page
}

// Offset returns the number of rows to skip
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// ParsePage reads a page number, treating missing, malformed or < 1 values as 1
func ParsePage(raw string, size int) Page {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		n = 1
	}
	return Page{Number: n, Size: size}
}

// TotalPages returns how many pages total items span
func TotalPages(total int64, size int) int64 {
	if size <= 0 {
		return 0
	}
	return (total + int64(size) - 1) / int64(size)
}
