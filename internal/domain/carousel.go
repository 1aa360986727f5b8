package domain

// CarouselVisible is the number of cards shown at once.
const CarouselVisible = 3

// Carousel tracks the position of the actions carousel. The zero value
// starts at the first page.
type Carousel struct {
	index int
}

// CarouselPages is the number of distinct positions for n items:
// max(1, n-2). It is never zero, so index arithmetic cannot divide by zero.
func CarouselPages(n int) int {
	return max(1, n-(CarouselVisible-1))
}

// Index returns the current position normalized for n items.
func (c *Carousel) Index(n int) int {
	pages := CarouselPages(n)
	return ((c.index % pages) + pages) % pages
}

// Next advances one position, wrapping to the first page after the last.
func (c *Carousel) Next(n int) int {
	c.index = (c.Index(n) + 1) % CarouselPages(n)
	return c.index
}

// Prev moves back one position, wrapping to the last page before the first.
func (c *Carousel) Prev(n int) int {
	pages := CarouselPages(n)
	c.index = (c.Index(n) - 1 + pages) % pages
	return c.index
}

// GoTo jumps to position i. Positions outside [0, pages) are ignored and
// reported with ok=false.
func (c *Carousel) GoTo(i, n int) (ok bool) {
	if i < 0 || i >= CarouselPages(n) {
		return false
	}
	c.index = i
	return true
}

// Reset returns to the first page.
func (c *Carousel) Reset() {
	c.index = 0
}

// Window returns the half-open range [start, end) of items visible at the
// current position.
func (c *Carousel) Window(n int) (start, end int) {
	start = c.Index(n)
	end = min(n, start+CarouselVisible)
	if start > end {
		start = end
	}
	return start, end
}
