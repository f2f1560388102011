package shared

// Page bounds a list query
type Page struct {
	Number int
	Size   int
}

// DefaultPage returns the first page of 20 items
func DefaultPage() Page {
	return Page{Number: 1, Size: 20}
}

// Normalize clamps the page to sane bounds
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = 20
	}
	if p.Size > 200 {
		p.Size = 200
	}
	return p
}

// Offset returns the number of rows to skip
func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Number - 1) * p.Size
}
